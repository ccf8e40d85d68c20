package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/campustasks/internal/task"
)

type detailModel struct {
	ctx    uiContext
	width  int
	height int

	task     task.Task
	viewport viewport.Model
}

func newDetailModel(ctx uiContext) detailModel {
	return detailModel{ctx: ctx, viewport: viewport.New(60, 20)}
}

func (d *detailModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.viewport.Width = max(20, w-8)
	d.viewport.Height = max(5, h-8)
	if d.task.ID != "" {
		d.render()
	}
}

func (d *detailModel) setContext(ctx uiContext) {
	d.ctx = ctx
	if d.task.ID != "" {
		d.render()
	}
}

func (d *detailModel) show(t task.Task) {
	d.task = t
	d.render()
	d.viewport.GotoTop()
}

func (d *detailModel) render() {
	md := taskMarkdown(d.task)
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(d.ctx.glamourStyle()),
		glamour.WithWordWrap(max(20, d.viewport.Width-2)),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			md = out
		}
	}
	d.viewport.SetContent(md)
}

func (d detailModel) update(msg tea.Msg) (detailModel, tea.Cmd) {
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return d, cmd
}

func (d detailModel) view() string {
	w := d.width - 4
	hint := mutedStyle.Render("  ↑/↓: scroll  a: ask assistant  esc: back")
	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, d.viewport.View(), "", hint),
	)
}

// taskMarkdown renders every known field of t. Absent optional fields are
// left out rather than shown empty.
func taskMarkdown(t task.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Title)
	fmt.Fprintf(&b, "`%s` · **%s** · **%s** · %s\n\n",
		t.ID, categoryLabel(t.Category), difficultyLabel(t.Difficulty), statusLabel(t.Status))
	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", t.Description)
	}

	b.WriteString("## 地点\n\n")
	fmt.Fprintf(&b, "%s (%.4f, %.4f)\n\n", t.Location.Name, t.Location.Lat, t.Location.Lng)

	var rows []string
	if len(t.Rewards) > 0 {
		rows = append(rows, "| 奖励 | "+strings.Join(t.Rewards, "、")+" |")
	}
	if t.EstimatedMinutes != nil {
		rows = append(rows, "| 预计用时 | "+formatMinutes(t.EstimatedMinutes)+" |")
	}
	if c := t.CourseName(); c != "" {
		rows = append(rows, "| 课程 | "+c+" |")
	}
	if t.CreatedAt != nil {
		rows = append(rows, "| 发布 | "+formatDate(t.CreatedAt)+" |")
	}
	if t.DueAt != nil {
		rows = append(rows, "| 截止 | "+formatDate(t.DueAt)+" |")
	}
	if len(rows) > 0 {
		b.WriteString("## 详情\n\n| | |\n|---|---|\n")
		b.WriteString(strings.Join(rows, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
