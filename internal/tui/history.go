package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekhagen/ettpass/internal/rebuild"
	"github.com/ekhagen/ettpass/internal/store"
)

type historyModel struct {
	repo   *store.Repository
	width  int
	height int

	offset int // scroll offset into the ledger (0 = newest)

	chart barchart.Model

	formActive bool
	form       *huh.Form
	formType   string // "confirm_clear", "confirm_rebuild"
	confirm    *bool
}

func newHistoryModel(repo *store.Repository) historyModel {
	confirm := false
	m := historyModel{
		repo:    repo,
		chart:   barchart.New(60, 10),
		confirm: &confirm,
	}
	m.buildChart()
	return m
}

func (m *historyModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.buildChart()
}

func (m historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case dataChangedMsg:
		m.offset = clampCursor(m.offset, len(m.repo.History))
		m.buildChart()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.offset > 0 {
				m.offset--
			}
		case key.Matches(msg, keys.Down):
			if m.offset < len(m.repo.History)-1 {
				m.offset++
			}
		case key.Matches(msg, keys.Rebuild):
			return m.showConfirm("confirm_rebuild",
				"Rebuild stations and plans from history? Existing data is kept; only missing entries are added.")
		case key.Matches(msg, keys.Clear):
			if len(m.repo.History) > 0 {
				return m.showConfirm("confirm_clear",
					fmt.Sprintf("Delete all %d history rows? This cannot be undone.", len(m.repo.History)))
			}
		}
	}
	return m, nil
}

func (m historyModel) showConfirm(formType, prompt string) (historyModel, tea.Cmd) {
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

func (m historyModel) updateForm(msg tea.Msg) (historyModel, tea.Cmd) {
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
		case "confirm_clear":
			if *m.confirm {
				if err := m.repo.ClearHistory(); err != nil {
					return m, statusCmd(fmt.Sprintf("Clear error: %v", err), true)
				}
				m.offset = 0
				m.buildChart()
				return m, tea.Batch(dataChanged, statusCmd("History cleared", false))
			}
		case "confirm_rebuild":
			if *m.confirm {
				res, err := rebuild.Run(m.repo)
				if err != nil {
					return m, statusCmd(fmt.Sprintf("Rebuild error: %v", err), true)
				}
				text := fmt.Sprintf("Rebuilt: +%d stations, +%d plans, +%d exercises",
					res.StationsAdded, res.PlansAdded, res.ItemsAdded)
				return m, tea.Batch(dataChanged, statusCmd(text, false))
			}
		}
	}

	return m, cmd
}

// buildChart charts total volume (weight × sets × reps) per day over the last
// seven days. Rows missing any of the three numbers contribute nothing.
func (m *historyModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	m.chart = barchart.New(chartWidth, 10)

	volumes := make(map[string]float64)
	for _, row := range m.repo.History {
		if len(row.Date) < 10 {
			continue
		}
		volumes[row.Date[:10]] += rowVolume(row)
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	var bars []barchart.BarData
	for i := 6; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		v := volumes[d.Format("2006-01-02")]
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if v == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: []barchart.BarValue{{Name: "volume", Value: v, Style: style}},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func rowVolume(row store.HistoryRow) float64 {
	w, err := strconv.ParseFloat(row.Weight, 64)
	if err != nil {
		return 0
	}
	sets, err := strconv.Atoi(row.Sets)
	if err != nil {
		return 0
	}
	reps, err := strconv.Atoi(row.Reps)
	if err != nil {
		return 0
	}
	return w * float64(sets) * float64(reps)
}

func (m historyModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Confirm"), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("History")
	count := mutedStyle.Render(fmt.Sprintf("%d rows", len(m.repo.History)))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", count)

	if len(m.repo.History) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			mutedStyle.Render("No workouts recorded yet."),
		)
		return panelStyle.Width(w).Render(content)
	}

	chartView := m.chart.View()
	tableView := m.renderTable(w)
	nav := mutedStyle.Render("  ↑/↓: scroll  x: export  i: import  b: rebuild plans  c: clear")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", chartView, "", tableView, "", nav),
	)
}

func (m historyModel) renderTable(w int) string {
	visible := m.height - 20
	if visible < 5 {
		visible = 5
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-19s %-14s %-20s %6s %5s %5s",
		"Date", "Plan", "Station", "kg", "Sets", "Reps")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 74))))

	end := min(m.offset+visible, len(m.repo.History))
	for _, row := range m.repo.History[m.offset:end] {
		rows = append(rows, fmt.Sprintf("  %-19s %-14s %-20s %6s %5s %5s",
			row.Date, truncate(row.PlanName, 14), truncate(row.StationName, 20),
			optStr(row.Weight), optStr(row.Sets), optStr(row.Reps)))
	}
	if end < len(m.repo.History) {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(m.repo.History)-end)))
	}

	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
