package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/campustasks/internal/task"
)

const markerRunes = "123456789abcdefghijklmnopqrstuvwxyz"

// mapModel draws the filtered tasks on a character grid by latitude and
// longitude. Marker i is the i-th task of the list, so the numbers line up
// with the Tasks view.
type mapModel struct {
	ctx    uiContext
	width  int
	height int
	tasks  []task.Task
}

func newMapModel(ctx uiContext) mapModel {
	return mapModel{ctx: ctx}
}

func (m *mapModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *mapModel) setTasks(tasks []task.Task) {
	m.tasks = tasks
}

type bounds struct {
	minLat, maxLat float64
	minLng, maxLng float64
}

func placed(t task.Task) bool {
	return t.Location.Lat != 0 || t.Location.Lng != 0
}

// boundsOf spans every placed task with a small margin. ok is false when no
// task has coordinates.
func boundsOf(tasks []task.Task) (b bounds, ok bool) {
	b = bounds{minLat: math.Inf(1), maxLat: math.Inf(-1), minLng: math.Inf(1), maxLng: math.Inf(-1)}
	for _, t := range tasks {
		if !placed(t) {
			continue
		}
		ok = true
		b.minLat = min(b.minLat, t.Location.Lat)
		b.maxLat = max(b.maxLat, t.Location.Lat)
		b.minLng = min(b.minLng, t.Location.Lng)
		b.maxLng = max(b.maxLng, t.Location.Lng)
	}
	if !ok {
		return bounds{}, false
	}
	const minSpan = 0.002
	if d := minSpan - (b.maxLat - b.minLat); d > 0 {
		b.minLat -= d / 2
		b.maxLat += d / 2
	}
	if d := minSpan - (b.maxLng - b.minLng); d > 0 {
		b.minLng -= d / 2
		b.maxLng += d / 2
	}
	return b, true
}

// cell maps a location into a cols x rows grid. North is up.
func (b bounds) cell(loc task.Location, cols, rows int) (x, y int) {
	fx := (loc.Lng - b.minLng) / (b.maxLng - b.minLng)
	fy := (b.maxLat - loc.Lat) / (b.maxLat - b.minLat)
	x = int(math.Round(fx * float64(cols-1)))
	y = int(math.Round(fy * float64(rows-1)))
	return min(max(x, 0), cols-1), min(max(y, 0), rows-1)
}

func marker(i int) rune {
	if i < len(markerRunes) {
		return rune(markerRunes[i])
	}
	return '•'
}

type mapCell struct {
	r     rune
	color lipgloss.Color
}

// plot lays the tasks out on a grid. Two tasks in one cell show as '+'.
func plot(tasks []task.Task, cols, rows int) [][]mapCell {
	grid := make([][]mapCell, rows)
	for y := range grid {
		grid[y] = make([]mapCell, cols)
		for x := range grid[y] {
			grid[y][x] = mapCell{r: '·', color: colorSubtle}
		}
	}
	b, ok := boundsOf(tasks)
	if !ok || cols < 1 || rows < 1 {
		return grid
	}
	for i, t := range tasks {
		if !placed(t) {
			continue
		}
		x, y := b.cell(t.Location, cols, rows)
		if c := grid[y][x]; c.r != '·' {
			grid[y][x] = mapCell{r: '+', color: colorFg}
			continue
		}
		grid[y][x] = mapCell{r: marker(i), color: categoryColor(t.Category)}
	}
	return grid
}

func (m mapModel) view() string {
	w := m.width - 4
	title := m.ctx.title().Render("Map")

	if _, ok := boundsOf(m.tasks); !ok {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("  No tasks with coordinates"),
		))
	}

	cols := max(10, (w-6)*2/3)
	rows := max(5, m.height-8)
	var lines []string
	for _, row := range plot(m.tasks, cols, rows) {
		var b strings.Builder
		for _, c := range row {
			b.WriteString(lipgloss.NewStyle().Foreground(c.color).Render(string(c.r)))
		}
		lines = append(lines, b.String())
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, lines...)

	legend := m.renderLegend(max(10, w-6-cols-4), rows)
	body := lipgloss.JoinHorizontal(lipgloss.Top, grid, "    ", legend)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
}

func (m mapModel) renderLegend(width, height int) string {
	var items []string
	for _, c := range task.Categories {
		dot := lipgloss.NewStyle().Foreground(categoryColor(c)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, categoryLabel(c)))
	}
	rows := []string{strings.Join(items, "  "), ""}

	unplaced := 0
	for i, t := range m.tasks {
		if !placed(t) {
			unplaced++
			continue
		}
		if len(rows) >= height-1 {
			continue
		}
		mk := lipgloss.NewStyle().Foreground(categoryColor(t.Category)).Render(string(marker(i)))
		rows = append(rows, fmt.Sprintf("%s %s", mk, m.ctx.text().Render(truncate(t.Title, width-2))))
	}
	if unplaced > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("%d without coordinates", unplaced)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
