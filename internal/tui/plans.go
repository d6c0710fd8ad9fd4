package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekhagen/ettpass/internal/store"
)

type plansMode int

const (
	plansList plansMode = iota
	plansDetail
)

type plansModel struct {
	repo   *store.Repository
	width  int
	height int

	mode       plansMode
	cursor     int    // plan cursor (list mode)
	itemCursor int    // item cursor (detail mode)
	openPlanID string // plan shown in detail mode

	formActive bool
	form       *huh.Form
	formType   string // "plan", "rename_plan", "add_item", "edit_item", "confirm_delete", "confirm_clear"

	formName      *string
	formStationID *string
	formWeight    *string
	formSets      *string
	formReps      *string
	confirm       *bool

	pendingID  string
	pendingIdx int
}

func newPlansModel(repo *store.Repository) plansModel {
	name, stationID, weight, sets, reps := "", "", "", "", ""
	confirm := false
	return plansModel{
		repo:          repo,
		formName:      &name,
		formStationID: &stationID,
		formWeight:    &weight,
		formSets:      &sets,
		formReps:      &reps,
		confirm:       &confirm,
	}
}

func (m *plansModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m plansModel) openPlan() *store.Plan {
	return m.repo.PlanByID(m.openPlanID)
}

func (m plansModel) update(msg tea.Msg) (plansModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case dataChangedMsg:
		m.cursor = clampCursor(m.cursor, len(m.repo.Plans))
		if m.mode == plansDetail && m.openPlan() == nil {
			m.mode = plansList
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == plansDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m plansModel) updateList(msg tea.KeyMsg) (plansModel, tea.Cmd) {
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
			m.mode = plansDetail
			m.openPlanID = plans[m.cursor].ID
			m.itemCursor = 0
		}
	case key.Matches(msg, keys.New):
		*m.formName = ""
		m.formType = "plan"
		return m.showNameForm("Plan Name")
	case key.Matches(msg, keys.Edit):
		if m.cursor < len(plans) {
			p := plans[m.cursor]
			*m.formName = p.Name
			m.formType = "rename_plan"
			m.pendingID = p.ID
			return m.showNameForm("Plan Name")
		}
	case key.Matches(msg, keys.Delete):
		if m.cursor < len(plans) {
			p := plans[m.cursor]
			m.pendingID = p.ID
			return m.showConfirm("confirm_delete", fmt.Sprintf("Delete plan %q?", p.Name))
		}
	}
	return m, nil
}

func (m plansModel) updateDetail(msg tea.KeyMsg) (plansModel, tea.Cmd) {
	p := m.openPlan()
	if p == nil {
		m.mode = plansList
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Back):
		m.mode = plansList
	case key.Matches(msg, keys.Up):
		if m.itemCursor > 0 {
			m.itemCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.itemCursor < len(p.Items)-1 {
			m.itemCursor++
		}
	case key.Matches(msg, keys.New):
		if len(m.repo.Stations) == 0 {
			return m, statusCmd("No stations to add. Create one first.", true)
		}
		return m.showAddItemForm()
	case key.Matches(msg, keys.Edit):
		if m.itemCursor < len(p.Items) {
			return m.showEditItemForm(p.Items[m.itemCursor])
		}
	case key.Matches(msg, keys.Delete):
		if m.itemCursor < len(p.Items) {
			m.pendingIdx = m.itemCursor
			name := stationName(m.repo, p.Items[m.itemCursor].StationID)
			return m.showConfirm("confirm_remove_item", fmt.Sprintf("Remove %q from the plan?", name))
		}
	case key.Matches(msg, keys.Clear):
		if len(p.Items) > 0 {
			return m.showConfirm("confirm_clear", fmt.Sprintf("Remove all %d exercises from %q?", len(p.Items), p.Name))
		}
	}
	return m, nil
}

func (m plansModel) showNameForm(title string) (plansModel, tea.Cmd) {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Value(m.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m plansModel) showAddItemForm() (plansModel, tea.Cmd) {
	stations := sortedStations(m.repo)
	opts := make([]huh.Option[string], 0, len(stations))
	for _, st := range stations {
		opts = append(opts, huh.NewOption(st.Name, st.ID))
	}
	*m.formStationID = stations[0].ID
	m.formType = "add_item"
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Station").Options(opts...).Value(m.formStationID),
		),
	).WithShowHelp(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m plansModel) showEditItemForm(it store.PlanItem) (plansModel, tea.Cmd) {
	*m.formWeight = weightStr(it.Weight)
	*m.formSets = intStr(it.Sets)
	*m.formReps = intStr(it.Reps)
	m.formType = "edit_item"
	m.pendingIdx = m.itemCursor
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Weight (kg, empty = none)").Value(m.formWeight),
			huh.NewInput().Title("Sets (empty = none)").Value(m.formSets),
			huh.NewInput().Title("Reps (empty = none)").Value(m.formReps),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m plansModel) showConfirm(formType, prompt string) (plansModel, tea.Cmd) {
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

func (m plansModel) updateForm(msg tea.Msg) (plansModel, tea.Cmd) {
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
		case "plan":
			if *m.formName != "" {
				if _, err := m.repo.CreatePlan(strings.TrimSpace(*m.formName)); err != nil {
					return m, statusCmd(fmt.Sprintf("Save error: %v", err), true)
				}
			}
			return m, dataChanged
		case "rename_plan":
			if *m.formName != "" {
				if err := m.repo.RenamePlan(m.pendingID, strings.TrimSpace(*m.formName)); err != nil {
					return m, statusCmd(fmt.Sprintf("Save error: %v", err), true)
				}
			}
			return m, dataChanged
		case "add_item":
			if err := m.repo.AddPlanItem(m.openPlanID, *m.formStationID); err != nil {
				return m, statusCmd(fmt.Sprintf("Save error: %v", err), true)
			}
			return m, dataChanged
		case "edit_item":
			err := m.repo.UpdatePlanItem(m.openPlanID, m.pendingIdx,
				parseOptFloat(*m.formWeight), parseOptInt(*m.formSets), parseOptInt(*m.formReps))
			if err != nil {
				return m, statusCmd(fmt.Sprintf("Save error: %v", err), true)
			}
			return m, dataChanged
		case "confirm_delete":
			if *m.confirm {
				if err := m.repo.DeletePlan(m.pendingID); err != nil {
					return m, statusCmd(fmt.Sprintf("Delete error: %v", err), true)
				}
				m.cursor = clampCursor(m.cursor, len(m.repo.Plans))
				return m, tea.Batch(dataChanged, statusCmd("Plan deleted", false))
			}
		case "confirm_remove_item":
			if *m.confirm {
				if err := m.repo.RemovePlanItem(m.openPlanID, m.pendingIdx); err != nil {
					return m, statusCmd(fmt.Sprintf("Remove error: %v", err), true)
				}
				if p := m.openPlan(); p != nil {
					m.itemCursor = clampCursor(m.itemCursor, len(p.Items))
				}
				return m, dataChanged
			}
		case "confirm_clear":
			if *m.confirm {
				if err := m.repo.ClearPlanItems(m.openPlanID); err != nil {
					return m, statusCmd(fmt.Sprintf("Clear error: %v", err), true)
				}
				m.itemCursor = 0
				return m, tea.Batch(dataChanged, statusCmd("Plan emptied", false))
			}
		}
	}

	return m, cmd
}

func (m plansModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := "New Plan"
		switch m.formType {
		case "rename_plan":
			title = "Rename Plan"
		case "add_item":
			title = "Add Exercise"
		case "edit_item":
			title = "Edit Exercise"
		case "confirm_delete", "confirm_remove_item", "confirm_clear":
			title = "Confirm"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	if m.mode == plansDetail {
		return m.viewDetail(w)
	}
	return m.viewList(w)
}

func (m plansModel) viewList(w int) string {
	title := titleStyle.Render("Plans")
	plans := sortedPlans(m.repo)

	if len(plans) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No plans yet. Press n to create one."),
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
	rows = append(rows, mutedStyle.Render("  enter: open  n: new  e: rename  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m plansModel) viewDetail(w int) string {
	p := m.openPlan()
	if p == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("Plan no longer exists."))
	}

	var rows []string
	rows = append(rows, titleStyle.Render(p.Name))
	rows = append(rows, "")

	if len(p.Items) == 0 {
		rows = append(rows, mutedStyle.Render("No exercises yet. Press n to add one."))
	}
	for i, it := range p.Items {
		cursor := "  "
		style := normalItemStyle
		if i == m.itemCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		meta := mutedStyle.Render("  " + itemMeta(it.Weight, it.Sets, it.Reps))
		rows = append(rows, style.Render(fmt.Sprintf("%s%-24s", cursor, stationName(m.repo, it.StationID)))+meta)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: add  e: edit  d: remove  c: clear  esc: back"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
