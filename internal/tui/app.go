package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/campustasks/internal/export"
	"github.com/sadopc/campustasks/internal/source"
	"github.com/sadopc/campustasks/internal/store"
	"go.uber.org/zap"
)

const loadTimeout = 20 * time.Second

// Options wires the App to its data sources.
type Options struct {
	Store   *store.Store
	Catalog *source.Catalog
	Advisor *source.Advisor
	Logger  *zap.Logger

	// Theme and Debounce are used until stored settings load.
	Theme    string
	Debounce time.Duration
	// ExportDir defaults to the home directory.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	store     *store.Store
	catalog   *source.Catalog
	log       *zap.Logger
	ctx       uiContext
	exportDir string
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	loading bool
	result  source.Result

	tasks    tasksModel
	mapView  mapModel
	stats    statsModel
	settings settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(opts Options) App {
	h := help.New()
	h.ShowAll = false

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ctx := defaultContext()
	if opts.Theme != "" {
		ctx.theme = opts.Theme
	}
	if opts.Debounce > 0 {
		ctx.debounce = opts.Debounce
	}
	advisor := opts.Advisor
	if advisor == nil {
		advisor = source.NewAdvisor(nil, log)
	}

	return App{
		store:      opts.Store,
		catalog:    opts.Catalog,
		log:        log.Named("tui"),
		ctx:        ctx,
		exportDir:  opts.ExportDir,
		activeView: viewTasks,
		loading:    true,
		tasks:      newTasksModel(ctx, newChatModel(ctx, opts.Store, advisor)),
		mapView:    newMapModel(ctx),
		stats:      newStatsModel(ctx),
		settings:   newSettingsModel(opts.Store, ctx),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.loadTasks(),
		a.settings.refresh(),
		a.tasks.Init(),
	)
}

func (a App) loadTasks() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		res, err := a.catalog.Load(ctx)
		return tasksLoadedMsg{result: res, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.tasks.setSize(a.width, contentHeight)
		a.mapView.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
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
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Reload):
			a.loading = true
			a.status = "Reloading…"
			return a, a.loadTasks()
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTasks
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewMap
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewStats
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			if a.activeView == viewSettings {
				return a, a.settings.refresh()
			}
			return a, nil
		}

	case tasksLoadedMsg:
		a.loading = false
		if msg.err != nil {
			a.log.Error("load tasks", zap.Error(msg.err))
			a.status, a.statusErr = fmt.Sprintf("Load error: %v", msg.err), true
			return a, nil
		}
		a.result = msg.result
		a.tasks.setTasks(msg.result.Tasks)
		a.syncViews()
		a.status, a.statusErr = fmt.Sprintf("%d tasks loaded", len(msg.result.Tasks)), false
		return a, nil

	case settingsDataMsg:
		a.applyContext(contextFrom(a.ctx, msg.settings))
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case settingsSavedMsg:
		a.applyContext(msg.ctx)
		a.settings.settings = msg.settings
		a.status, a.statusErr = "Settings saved", false
		return a, nil

	case searchSettledMsg, transcriptMsg, answerMsg:
		// These belong to the Tasks view whichever tab is showing.
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		a.syncViews()
		return a, cmd

	case statusMsg:
		a.status, a.statusErr = msg.text, msg.isError
		return a, nil

	case exportDoneMsg:
		a.status, a.statusErr = fmt.Sprintf("Exported %d tasks to %s", msg.count, msg.path), false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
		a.syncViews()
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.capturing()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

// syncViews hands the current filtered set to the views that draw it.
func (a *App) syncViews() {
	a.mapView.setTasks(a.tasks.filtered)
	a.stats.setTasks(a.tasks.filtered)
}

func (a *App) applyContext(ctx uiContext) {
	a.ctx = ctx
	a.tasks.setContext(ctx)
	a.mapView.ctx = ctx
	a.stats.ctx = ctx
	a.settings.ctx = ctx
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTasks:
		content = a.tasks.view()
	case viewMap:
		content = a.mapView.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}
	if a.loading && len(a.tasks.all) == 0 {
		content = mutedStyle.Render("  Loading tasks…")
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker(contentHeight)
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
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("campustasks")
	badge := a.renderOrigin()
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, title, " ", badge)
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, tabRow),
	)
}

// renderOrigin says whether the list came from the backend or is the local
// demo catalog, and why.
func (a App) renderOrigin() string {
	switch {
	case a.result.Origin == "":
		return ""
	case a.result.Live():
		return liveBadgeStyle.Render("live")
	}
	reason := "offline demo data"
	if a.result.Reason != nil {
		reason += ": " + truncate(a.result.Reason.Error(), 48)
	}
	return offlineBadgeStyle.Render(reason)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderExportPicker(_ int) string {
	title := a.ctx.title().Render(fmt.Sprintf("Export %d tasks", len(a.tasks.filtered)))
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := a.ctx.text()
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

// doExport writes the currently filtered tasks.
func (a App) doExport(format int) tea.Cmd {
	tasks := a.tasks.filtered
	dir := a.exportDir
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("campustasks-export-%s.csv", dateStr))
			if err := export.ToCSV(tasks, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, fmt.Sprintf("campustasks-export-%s.json", dateStr))
			if err := export.ToJSON(tasks, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path, count: len(tasks)}
	}
}
