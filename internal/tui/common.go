package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/campustasks/internal/source"
	"github.com/sadopc/campustasks/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewMap
	viewStats
	viewSettings
)

var viewNames = []string{"Tasks", "Map", "Stats", "Settings"}

// --- Messages ---

type tasksLoadedMsg struct {
	result source.Result
	err    error
}

type searchSettledMsg struct {
	query string
}

type answerMsg struct {
	taskID string
	answer source.Answer
	saved  []store.Message
}

type transcriptMsg struct {
	taskID   string
	messages []store.Message
}

type settingsSavedMsg struct {
	ctx      uiContext
	settings []store.Setting
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path  string
	count int
}

// --- Helpers ---

func formatMinutes(m *int) string {
	if m == nil {
		return "-"
	}
	if *m < 60 {
		return fmt.Sprintf("%d min", *m)
	}
	if *m%60 == 0 {
		return fmt.Sprintf("%dh", *m/60)
	}
	return fmt.Sprintf("%dh%02dm", *m/60, *m%60)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

// truncate cuts s to at most n terminal cells.
func truncate(s string, n int) string {
	if n <= 0 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
