package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekhagen/ettpass/internal/export"
	"github.com/ekhagen/ettpass/internal/session"
	"github.com/ekhagen/ettpass/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	repo      *store.Repository
	engine    *session.Engine
	exportDir string

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	// Import runs in two stages: a path prompt, then a confirmation that
	// names what is about to be replaced.
	importActive  bool
	importStage   int // 1 = path, 2 = confirm
	importForm    *huh.Form
	importPath    *string
	importConfirm *bool
	pendingBackup *export.Backup
	pendingRows   []store.HistoryRow

	workout  workoutModel
	stations stationsModel
	plans    plansModel
	history  historyModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(repo *store.Repository, exportDir string) App {
	h := help.New()
	h.ShowAll = false

	engine := session.New(repo)
	path := ""
	confirm := false

	return App{
		repo:          repo,
		engine:        engine,
		exportDir:     exportDir,
		activeView:    viewWorkout,
		workout:       newWorkoutModel(repo, engine),
		stations:      newStationsModel(repo),
		plans:         newPlansModel(repo),
		history:       newHistoryModel(repo),
		help:          h,
		importPath:    &path,
		importConfirm: &confirm,
	}
}

func (a App) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.workout.setSize(a.width, contentHeight)
		a.stations.setSize(a.width, contentHeight)
		a.plans.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		if a.importActive {
			return a.updateImport(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Import):
			return a.startImport()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewWorkout
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewStations
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewPlans
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewHistory
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			return a, nil
		}

	case tickMsg:
		// Only the workout view shows a clock.
		var cmd tea.Cmd
		a.workout, cmd = a.workout.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case dataChangedMsg:
		// Every view holds cursors into shared collections.
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.workout, cmd = a.workout.update(msg)
		cmds = append(cmds, cmd)
		a.stations, cmd = a.stations.update(msg)
		cmds = append(cmds, cmd)
		a.plans, cmd = a.plans.update(msg)
		cmds = append(cmds, cmd)
		a.history, cmd = a.history.update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		return a, nil

	case importDoneMsg:
		a.status = msg.text
		a.statusErr = false
		return a, nil
	}

	// Form fields animate via their own messages, not just key presses.
	if a.importActive && a.importForm != nil {
		return a.updateImport(msg)
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewWorkout:
		a.workout, cmd = a.workout.update(msg)
	case viewStations:
		a.stations, cmd = a.stations.update(msg)
	case viewPlans:
		a.plans, cmd = a.plans.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewWorkout:
		return a.workout.formActive
	case viewStations:
		return a.stations.formActive
	case viewPlans:
		return a.plans.formActive
	case viewHistory:
		return a.history.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewWorkout:
		content = a.workout.view()
	case viewStations:
		content = a.stations.view()
	case viewPlans:
		content = a.plans.view()
	case viewHistory:
		content = a.history.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}
	if a.importActive && a.importForm != nil {
		content = a.renderImport()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(fmt.Sprintf("%d %s", i+1, name)))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(fmt.Sprintf("%d %s", i+1, name)))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("ett pass till")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Session indicator in footer
	sessionInfo := ""
	if a.engine.Loaded() {
		sessionInfo = successStyle.Render(" ● " + formatElapsed(a.engine.Elapsed()))
	}

	left := footerStyle.Render(helpView)
	right := sessionInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

// --- Export ---

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export")
	formats := []string{"CSV (history)", "JSON (full backup)"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	repo := a.repo
	dir := a.exportDir
	return func() tea.Msg {
		var path string
		if format == 0 {
			path = filepath.Join(dir, export.CSVFileName)
			if err := export.WriteCSV(repo.History, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			dateStr := time.Now().Format("2006-01-02")
			path = filepath.Join(dir, fmt.Sprintf("ett-pass-till-%s.json", dateStr))
			if err := export.WriteBackup(repo.Stations, repo.Plans, repo.History, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}
		return exportDoneMsg{path: path}
	}
}

// --- Import ---

func (a App) startImport() (tea.Model, tea.Cmd) {
	*a.importPath = ""
	a.importActive = true
	a.importStage = 1
	a.pendingBackup = nil
	a.pendingRows = nil
	a.importForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Import file (.csv replaces history, .json replaces everything)").
				Value(a.importPath),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return a, a.importForm.Init()
}

func (a App) updateImport(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		a.importActive = false
		a.importForm = nil
		return a, nil
	}

	form, cmd := a.importForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.importForm = f
	}

	if a.importForm.State != huh.StateCompleted {
		return a, cmd
	}

	if a.importStage == 1 {
		return a.loadImportFile()
	}
	return a.applyImport()
}

// loadImportFile parses the chosen file and moves to the confirm stage.
func (a App) loadImportFile() (tea.Model, tea.Cmd) {
	a.importActive = false
	a.importForm = nil

	path := strings.TrimSpace(*a.importPath)
	if path == "" {
		return a, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return a, statusCmd(fmt.Sprintf("Read error: %v", err), true)
	}

	var prompt string
	if strings.EqualFold(filepath.Ext(path), ".json") {
		b, err := export.ParseBackup(data)
		if err != nil {
			return a, statusCmd(fmt.Sprintf("Import error: %v", err), true)
		}
		a.pendingBackup = b
		prompt = fmt.Sprintf("Replace everything with this backup? (%d stations, %d plans, %d history rows)",
			len(b.Stations), len(b.Plans), len(b.History))
	} else {
		rows, err := export.ParseCSV(data)
		if err != nil {
			return a, statusCmd(fmt.Sprintf("Import error: %v", err), true)
		}
		a.pendingRows = rows
		prompt = fmt.Sprintf("Replace history with %d imported rows? Stations and plans are kept.", len(rows))
	}

	*a.importConfirm = false
	a.importActive = true
	a.importStage = 2
	a.importForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(prompt).Affirmative("Yes").Negative("No").Value(a.importConfirm),
		),
	).WithShowHelp(true)
	return a, a.importForm.Init()
}

func (a App) applyImport() (tea.Model, tea.Cmd) {
	a.importActive = false
	a.importForm = nil

	if !*a.importConfirm {
		a.pendingBackup = nil
		a.pendingRows = nil
		return a, nil
	}

	if b := a.pendingBackup; b != nil {
		a.pendingBackup = nil
		if err := a.repo.ReplaceAll(b.Stations, b.Plans, b.History); err != nil {
			return a, statusCmd(fmt.Sprintf("Import error: %v", err), true)
		}
		text := fmt.Sprintf("Imported backup: %d stations, %d plans, %d rows",
			len(b.Stations), len(b.Plans), len(b.History))
		return a, tea.Batch(dataChanged, func() tea.Msg { return importDoneMsg{text: text} })
	}

	rows := a.pendingRows
	a.pendingRows = nil
	a.repo.History = rows
	if err := a.repo.SaveHistory(); err != nil {
		return a, statusCmd(fmt.Sprintf("Import error: %v", err), true)
	}
	text := fmt.Sprintf("Imported %d history rows", len(rows))
	return a, tea.Batch(dataChanged, func() tea.Msg { return importDoneMsg{text: text} })
}

func (a App) renderImport() string {
	title := titleStyle.Render("Import")
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", a.importForm.View())
	w := a.width - 4
	return activePanelStyle.Width(w).Render(content)
}
