package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/campustasks/internal/task"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorFgLight   = lipgloss.Color("#24283B")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

var categoryColors = map[task.Category]lipgloss.Color{
	task.CategoryAcademic: colorHighlight,
	task.CategorySocial:   colorAccent,
	task.CategoryCampus:   colorSuccess,
}

var difficultyColors = map[task.Difficulty]lipgloss.Color{
	task.DifficultyEasy:   colorSuccess,
	task.DifficultyMedium: colorWarning,
	task.DifficultyHard:   colorError,
}

var statusColors = map[task.Status]lipgloss.Color{
	task.StatusAvailable:  colorSecondary,
	task.StatusInProgress: colorWarning,
	task.StatusCompleted:  colorMuted,
}

func categoryColor(c task.Category) lipgloss.Color {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return colorMuted
}

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Text
	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// Badges
	liveBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1A1B26")).
			Background(colorSuccess).
			Padding(0, 1)

	offlineBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#1A1B26")).
				Background(colorWarning).
				Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)
)

// uiContext carries the user's display preferences into every view.
type uiContext struct {
	theme    string
	debounce time.Duration
}

func defaultContext() uiContext {
	return uiContext{theme: "dark", debounce: task.DefaultDebounce}
}

func (c uiContext) light() bool {
	return c.theme == "light"
}

func (c uiContext) text() lipgloss.Style {
	if c.light() {
		return lipgloss.NewStyle().Foreground(colorFgLight)
	}
	return lipgloss.NewStyle().Foreground(colorFg)
}

func (c uiContext) title() lipgloss.Style {
	return c.text().Bold(true)
}

// glamourStyle names the markdown stylesheet for the theme.
func (c uiContext) glamourStyle() string {
	if c.light() {
		return "light"
	}
	return "dark"
}
