package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/campustasks/internal/task"
)

type statsMode int

const (
	statsByCategory statsMode = iota
	statsByDifficulty
	statsByStatus
)

var statsModeNames = []string{"Category", "Difficulty", "Status"}

type statsBar struct {
	label string
	count int
	color lipgloss.Color
}

type statsModel struct {
	ctx    uiContext
	width  int
	height int

	mode  statsMode
	tasks []task.Task
	bars  []statsBar

	chart barchart.Model
}

func newStatsModel(ctx uiContext) statsModel {
	return statsModel{
		ctx:   ctx,
		chart: barchart.New(60, 12),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.buildChart()
}

func (s *statsModel) setTasks(tasks []task.Task) {
	s.tasks = tasks
	s.buildChart()
}

func (s statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left):
			s.mode = (s.mode + 2) % 3
			s.buildChart()
		case key.Matches(msg, keys.Right):
			s.mode = (s.mode + 1) % 3
			s.buildChart()
		}
	}
	return s, nil
}

// tally counts tasks per value of the active field, in enumeration order.
// Values with no tasks still get a bar.
func tally(tasks []task.Task, mode statsMode) []statsBar {
	var bars []statsBar
	switch mode {
	case statsByDifficulty:
		for _, d := range task.Difficulties {
			bars = append(bars, statsBar{label: difficultyLabel(d), color: difficultyColors[d]})
		}
		for _, t := range tasks {
			for i, d := range task.Difficulties {
				if t.Difficulty == d {
					bars[i].count++
				}
			}
		}
	case statsByStatus:
		for _, st := range task.Statuses {
			bars = append(bars, statsBar{label: statusLabel(st), color: statusColors[st]})
		}
		for _, t := range tasks {
			for i, st := range task.Statuses {
				if t.Status == st {
					bars[i].count++
				}
			}
		}
	default:
		for _, c := range task.Categories {
			bars = append(bars, statsBar{label: categoryLabel(c), color: categoryColor(c)})
		}
		for _, t := range tasks {
			for i, c := range task.Categories {
				if t.Category == c {
					bars[i].count++
				}
			}
		}
	}
	return bars
}

func (s *statsModel) buildChart() {
	chartWidth := s.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if s.height > 30 {
		chartHeight = 16
	}

	s.chart = barchart.New(chartWidth, chartHeight)
	s.bars = tally(s.tasks, s.mode)

	data := make([]barchart.BarData, 0, len(s.bars))
	for _, b := range s.bars {
		data = append(data, barchart.BarData{
			Label: b.label,
			Values: []barchart.BarValue{{
				Name:  b.label,
				Value: float64(b.count),
				Style: lipgloss.NewStyle().Foreground(b.color),
			}},
		})
	}

	s.chart.PushAll(data)
	s.chart.Draw()
}

func (s statsModel) view() string {
	w := s.width - 4

	var tabs []string
	for i, name := range statsModeNames {
		if statsMode(i) == s.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		s.ctx.title().Render("Stats"), "  ", modeTabs, "  ",
		mutedStyle.Render(fmt.Sprintf("%d tasks", len(s.tasks))),
	)

	if len(s.tasks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("  No tasks match the current filters"),
		))
	}

	nav := mutedStyle.Render("  ←/→: switch grouping")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", s.chart.View(), "", s.renderTable(w), "", nav,
		),
	)
}

func (s statsModel) renderTable(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %8s %8s", statsModeNames[s.mode], "Tasks", "Share")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", max(0, min(w-6, 30)))))

	for _, b := range s.bars {
		share := 0.0
		if len(s.tasks) > 0 {
			share = float64(b.count) * 100 / float64(len(s.tasks))
		}
		dot := lipgloss.NewStyle().Foreground(b.color).Render("●")
		label := lipgloss.NewStyle().Width(10).Render(b.label)
		rows = append(rows, fmt.Sprintf("  %s %s %8d %7.0f%%", dot, label, b.count, share))
	}
	return strings.Join(rows, "\n")
}
