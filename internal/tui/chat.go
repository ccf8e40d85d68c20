package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/campustasks/internal/assistant"
	"github.com/sadopc/campustasks/internal/source"
	"github.com/sadopc/campustasks/internal/store"
	"github.com/sadopc/campustasks/internal/task"
)

const askTimeout = 15 * time.Second

type chatModel struct {
	ctx     uiContext
	store   *store.Store
	advisor *source.Advisor
	width   int
	height  int

	task       task.Task
	catalog    []task.Task
	input      textinput.Model
	transcript []store.Message
	pending    bool
	err        string
}

func newChatModel(ctx uiContext, s *store.Store, advisor *source.Advisor) chatModel {
	ti := textinput.New()
	ti.Placeholder = "问点什么，比如：这个任务在哪里？"
	ti.CharLimit = assistant.MaxQuestionLen
	ti.Prompt = "› "
	return chatModel{ctx: ctx, store: s, advisor: advisor, input: ti}
}

func (c *chatModel) setSize(w, h int) {
	c.width = w
	c.height = h
	c.input.Width = max(10, w-12)
}

func (c *chatModel) open(t task.Task, catalog []task.Task) tea.Cmd {
	c.task = t
	c.catalog = catalog
	c.transcript = nil
	c.pending = false
	c.err = ""
	c.input.SetValue("")
	return tea.Batch(c.input.Focus(), c.loadTranscript())
}

func (c *chatModel) close() {
	c.input.Blur()
}

func (c chatModel) loadTranscript() tea.Cmd {
	taskID := c.task.ID
	return func() tea.Msg {
		msgs, err := c.store.ListMessages(taskID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Transcript error: %v", err), isError: true}
		}
		return transcriptMsg{taskID: taskID, messages: msgs}
	}
}

func (c chatModel) update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case transcriptMsg:
		if msg.taskID == c.task.ID {
			c.transcript = msg.messages
		}
		return c, nil

	case answerMsg:
		if msg.taskID != c.task.ID {
			return c, nil
		}
		c.pending = false
		c.transcript = append(c.transcript, msg.saved...)
		if msg.answer.Canned() {
			return c, statusCmd("Assistant offline, showing canned reply")
		}
		return c, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return c.submit()
		case "ctrl+l":
			return c, c.clear()
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c chatModel) submit() (chatModel, tea.Cmd) {
	if c.pending {
		return c, nil
	}
	text := strings.TrimSpace(c.input.Value())
	if err := assistant.ValidateQuestion(text); err != nil {
		c.err = err.Error()
		return c, nil
	}
	c.err = ""
	c.pending = true
	c.input.SetValue("")
	c.transcript = append(c.transcript, store.Message{TaskID: c.task.ID, Role: store.RoleUser, Text: text})
	return c, c.ask(text)
}

// ask persists the question and the reply and hands both back. The question
// is already shown optimistically, so only the reply is appended on return.
func (c chatModel) ask(text string) tea.Cmd {
	q := assistant.Question{Task: c.task, Text: text, Catalog: c.catalog}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()

		if _, err := c.store.AddMessage(store.Message{TaskID: q.Task.ID, Role: store.RoleUser, Text: text}); err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		answer := c.advisor.Ask(ctx, q)
		reply, err := c.store.AddMessage(store.Message{
			TaskID: q.Task.ID,
			Role:   store.RoleAssistant,
			Text:   replyText(answer.Reply),
			Canned: answer.Canned(),
		})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return answerMsg{taskID: q.Task.ID, answer: answer, saved: []store.Message{*reply}}
	}
}

func (c chatModel) clear() tea.Cmd {
	taskID := c.task.ID
	return func() tea.Msg {
		if err := c.store.ClearMessages(taskID); err != nil {
			return statusMsg{text: fmt.Sprintf("Clear error: %v", err), isError: true}
		}
		return transcriptMsg{taskID: taskID}
	}
}

// replyText flattens a reply and its suggestions into one transcript line.
func replyText(r assistant.Reply) string {
	if len(r.Suggestions) == 0 {
		return r.Message
	}
	lines := []string{r.Message}
	for _, s := range r.Suggestions {
		lines = append(lines, "→ "+s.Title)
	}
	return strings.Join(lines, "\n")
}

func (c chatModel) view() string {
	w := c.width - 4
	title := c.ctx.title().Render("Ask about: " + c.task.Title)

	var rows []string
	rows = append(rows, title, "")

	lines := c.renderTranscript(w - 6)
	visible := max(3, c.height-12)
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}
	if len(lines) == 0 {
		rows = append(rows, mutedStyle.Render("  No questions yet"))
	}
	rows = append(rows, lines...)
	rows = append(rows, "")

	if c.pending {
		rows = append(rows, mutedStyle.Render("  thinking…"))
	}
	if c.err != "" {
		rows = append(rows, errorStyle.Render("  "+c.err))
	}
	rows = append(rows, c.input.View())
	rows = append(rows, mutedStyle.Render("  enter: send  ctrl+l: clear  esc: back"))

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (c chatModel) renderTranscript(width int) []string {
	var lines []string
	body := lipgloss.NewStyle().Width(max(10, width-4))
	for _, m := range c.transcript {
		var label string
		switch {
		case m.Role == store.RoleUser:
			label = highlightStyle.Render("你")
		case m.Canned:
			label = warningStyle.Render("助手 (离线)")
		default:
			label = successStyle.Render("助手")
		}
		lines = append(lines, "  "+label)
		for _, l := range strings.Split(body.Render(m.Text), "\n") {
			lines = append(lines, "    "+c.ctx.text().Render(l))
		}
	}
	return lines
}
