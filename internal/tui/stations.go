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

type stationsModel struct {
	repo   *store.Repository
	width  int
	height int

	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "station", "edit_station", "confirm_delete", "confirm_clear"

	// Form field pointers (survive value copies)
	formName   *string
	formWeight *string
	formSets   *string
	formReps   *string
	confirm    *bool

	editingID string
	pendingID string
}

func newStationsModel(repo *store.Repository) stationsModel {
	name, weight, sets, reps := "", "", "", ""
	confirm := false
	return stationsModel{
		repo:       repo,
		formName:   &name,
		formWeight: &weight,
		formSets:   &sets,
		formReps:   &reps,
		confirm:    &confirm,
	}
}

func (m *stationsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m stationsModel) update(msg tea.Msg) (stationsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case dataChangedMsg:
		m.cursor = clampCursor(m.cursor, len(m.repo.Stations))
		return m, nil

	case tea.KeyMsg:
		stations := sortedStations(m.repo)
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(stations)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showStationForm(nil)
		case key.Matches(msg, keys.Edit):
			if m.cursor < len(stations) {
				st := stations[m.cursor]
				return m.showStationForm(&st)
			}
		case key.Matches(msg, keys.Delete):
			if m.cursor < len(stations) {
				st := stations[m.cursor]
				m.pendingID = st.ID
				return m.showConfirm("confirm_delete",
					fmt.Sprintf("Delete %q? It is removed from every plan too.", st.Name))
			}
		case key.Matches(msg, keys.Clear):
			if len(stations) > 0 {
				return m.showConfirm("confirm_clear",
					fmt.Sprintf("Clear all %d stations? Every plan is emptied too.", len(stations)))
			}
		}
	}
	return m, nil
}

func (m stationsModel) showStationForm(st *store.Station) (stationsModel, tea.Cmd) {
	if st != nil {
		*m.formName = st.Name
		*m.formWeight = weightStr(st.DefaultWeight)
		*m.formSets = intStr(st.DefaultSets)
		*m.formReps = intStr(st.DefaultReps)
		m.formType = "edit_station"
		m.editingID = st.ID
	} else {
		*m.formName, *m.formWeight, *m.formSets, *m.formReps = "", "", "", ""
		m.formType = "station"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Station Name").Value(m.formName),
			huh.NewInput().Title("Default Weight (kg, empty = none)").Value(m.formWeight),
			huh.NewInput().Title("Default Sets (empty = none)").Value(m.formSets),
			huh.NewInput().Title("Default Reps (empty = none)").Value(m.formReps),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m stationsModel) showConfirm(formType, prompt string) (stationsModel, tea.Cmd) {
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

func (m stationsModel) updateForm(msg tea.Msg) (stationsModel, tea.Cmd) {
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
		case "station":
			if *m.formName != "" {
				if _, err := m.repo.CreateStation(strings.TrimSpace(*m.formName),
					parseOptFloat(*m.formWeight), parseOptInt(*m.formSets), parseOptInt(*m.formReps)); err != nil {
					return m, statusCmd(fmt.Sprintf("Save error: %v", err), true)
				}
			}
			return m, dataChanged
		case "edit_station":
			if *m.formName != "" {
				if err := m.repo.UpdateStation(m.editingID, strings.TrimSpace(*m.formName),
					parseOptFloat(*m.formWeight), parseOptInt(*m.formSets), parseOptInt(*m.formReps)); err != nil {
					return m, statusCmd(fmt.Sprintf("Save error: %v", err), true)
				}
			}
			return m, dataChanged
		case "confirm_delete":
			if *m.confirm {
				if err := m.repo.DeleteStation(m.pendingID); err != nil {
					return m, statusCmd(fmt.Sprintf("Delete error: %v", err), true)
				}
				m.cursor = clampCursor(m.cursor, len(m.repo.Stations))
				return m, tea.Batch(dataChanged, statusCmd("Station deleted", false))
			}
		case "confirm_clear":
			if *m.confirm {
				if err := m.repo.ClearAllStations(); err != nil {
					return m, statusCmd(fmt.Sprintf("Clear error: %v", err), true)
				}
				m.cursor = 0
				return m, tea.Batch(dataChanged, statusCmd("All stations cleared", false))
			}
		}
	}

	return m, cmd
}

func (m stationsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Station")
		switch m.formType {
		case "edit_station":
			title = titleStyle.Render("Edit Station")
		case "confirm_delete", "confirm_clear":
			title = titleStyle.Render("Confirm")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Stations")
	stations := sortedStations(m.repo)

	if len(stations) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No stations yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, st := range stations {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		meta := mutedStyle.Render("  " + itemMeta(st.DefaultWeight, st.DefaultSets, st.DefaultReps))
		rows = append(rows, style.Render(fmt.Sprintf("%s%-24s", cursor, st.Name))+meta)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  c: clear all"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		return max(0, n-1)
	}
	return cursor
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func dataChanged() tea.Msg {
	return dataChangedMsg{}
}
