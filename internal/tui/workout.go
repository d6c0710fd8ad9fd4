package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekhagen/ettpass/internal/session"
	"github.com/ekhagen/ettpass/internal/store"
)

type workoutMode int

const (
	workoutPick workoutMode = iota
	workoutChecklist
)

type workoutModel struct {
	repo    *store.Repository
	engine  *session.Engine
	width   int
	height  int

	mode   workoutMode
	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "confirm_finish", "confirm_reset"
	confirm    *bool
}

func newWorkoutModel(repo *store.Repository, engine *session.Engine) workoutModel {
	confirm := false
	return workoutModel{
		repo:    repo,
		engine:  engine,
		confirm: &confirm,
	}
}

func (m *workoutModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m workoutModel) update(msg tea.Msg) (workoutModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case dataChangedMsg:
		// The loaded plan may have been deleted or emptied under us.
		if m.mode == workoutChecklist {
			p := m.repo.PlanByID(m.engine.PlanID())
			if p == nil || len(p.Items) == 0 {
				m.mode = workoutPick
				m.cursor = 0
				return m, statusCmd("Workout plan changed, back to plan list", true)
			}
			m.cursor = clampCursor(m.cursor, len(p.Items))
		} else {
			m.cursor = clampCursor(m.cursor, len(m.repo.Plans))
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == workoutChecklist {
			return m.updateChecklist(msg)
		}
		return m.updatePick(msg)
	}
	return m, nil
}

func (m workoutModel) updatePick(msg tea.KeyMsg) (workoutModel, tea.Cmd) {
	plans := sortedPlans(m.repo)
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(plans)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if m.cursor < len(plans) {
			p := plans[m.cursor]
			if !m.engine.Load(p.ID) {
				return m, statusCmd(fmt.Sprintf("%q has no exercises yet", p.Name), true)
			}
			m.mode = workoutChecklist
			m.cursor = 0
		}
	}
	return m, nil
}

func (m workoutModel) updateChecklist(msg tea.KeyMsg) (workoutModel, tea.Cmd) {
	p := m.repo.PlanByID(m.engine.PlanID())
	if p == nil {
		m.mode = workoutPick
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Back):
		m.mode = workoutPick
		m.cursor = 0
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(p.Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Toggle):
		m.engine.Toggle(m.cursor)
	case key.Matches(msg, keys.Finish):
		left := len(p.Items) - m.engine.Completed()
		prompt := "Save this workout to history?"
		if left > 0 {
			prompt = fmt.Sprintf("%d exercises unchecked. Save the whole workout to history anyway?", left)
		}
		return m.showConfirm("confirm_finish", prompt)
	case key.Matches(msg, keys.Reset):
		return m.showConfirm("confirm_reset", "Uncheck everything and restart the clock?")
	}
	return m, nil
}

func (m workoutModel) showConfirm(formType, prompt string) (workoutModel, tea.Cmd) {
	*m.confirm = false
	m.formType = formType
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(prompt).Affirmative("Yes").Negative("No").Value(m.confirm),
		),
	).WithShowHelp(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m workoutModel) updateForm(msg tea.Msg) (workoutModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		switch m.formType {
		case "confirm_finish":
			if *m.confirm {
				sum, err := m.engine.Finish()
				if err != nil {
					return m, statusCmd(fmt.Sprintf("Save error: %v", err), true)
				}
				m.mode = workoutPick
				m.cursor = 0
				text := fmt.Sprintf("Saved %q, %d rows", sum.PlanName, sum.Rows)
				if sum.Minutes != nil {
					text = fmt.Sprintf("Saved %q, %d rows in %d min", sum.PlanName, sum.Rows, *sum.Minutes)
				}
				return m, tea.Batch(dataChanged, statusCmd(text, false))
			}
		case "confirm_reset":
			if *m.confirm {
				m.engine.Reset()
				return m, statusCmd("Workout reset", false)
			}
		}
	}

	return m, cmd
}

func (m workoutModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Confirm"), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	if m.mode == workoutChecklist {
		return m.viewChecklist(w)
	}
	return m.viewPick(w)
}

func (m workoutModel) viewPick(w int) string {
	title := titleStyle.Render("Start a Workout")
	plans := sortedPlans(m.repo)

	if len(plans) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No plans yet. Create one under Plans (3)."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, p := range plans {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		count := mutedStyle.Render(fmt.Sprintf("  %d exercises", len(p.Items)))
		rows = append(rows, style.Render(fmt.Sprintf("%s%-24s", cursor, p.Name))+count)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: start"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m workoutModel) viewChecklist(w int) string {
	p := m.repo.PlanByID(m.engine.PlanID())
	if p == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("Plan no longer exists."))
	}

	elapsed := accentStyle.Render(formatElapsed(m.engine.Elapsed()))
	progress := mutedStyle.Render(fmt.Sprintf("%d/%d done", m.engine.Completed(), len(p.Items)))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(p.Name), "  ", elapsed, "  ", progress,
	)

	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")
	for i, it := range p.Items {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		if m.engine.Done(i) {
			check = successStyle.Render("[x]")
		}
		meta := mutedStyle.Render("  " + itemMeta(it.Weight, it.Sets, it.Reps))
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-22s", cursor, check, stationName(m.repo, it.StationID)))+meta)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  space: toggle  f: finish  r: reset  esc: back"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	h := total / 3600
	mm := (total % 3600) / 60
	ss := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mm, ss)
	}
	return fmt.Sprintf("%02d:%02d", mm, ss)
}
