package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/campustasks/internal/store"
)

const maxDebounceMS = 5000

type settingsModel struct {
	store  *store.Store
	ctx    uiContext
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	theme    *string
	debounce *string
	apiURL   *string
}

func newSettingsModel(s *store.Store, ctx uiContext) settingsModel {
	theme, debounce, apiURL := "", "", ""
	return settingsModel{
		store:    s,
		ctx:      ctx,
		theme:    &theme,
		debounce: &debounce,
		apiURL:   &apiURL,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
		}
		return settingsDataMsg{settings: settings}
	}
}

// contextFrom applies stored preferences on top of base.
func contextFrom(base uiContext, settings []store.Setting) uiContext {
	ctx := base
	for _, st := range settings {
		switch st.Key {
		case "theme":
			if st.Value == "dark" || st.Value == "light" {
				ctx.theme = st.Value
			}
		case "debounce_ms":
			if ms, err := strconv.Atoi(st.Value); err == nil && ms > 0 && ms <= maxDebounceMS {
				ctx.debounce = time.Duration(ms) * time.Millisecond
			}
		}
	}
	return ctx
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.theme = s.getVal("theme", s.ctx.theme)
	*s.debounce = s.getVal("debounce_ms", strconv.Itoa(int(s.ctx.debounce/time.Millisecond)))
	*s.apiURL = s.getVal("api_url", "")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).Value(s.theme),
			huh.NewInput().Title("Search debounce (ms)").Value(s.debounce).Validate(validateDebounce),
		).Title("Display"),
		huh.NewGroup(
			huh.NewInput().Title("Task API URL").
				Description("Used on next start when no api.base_url is configured").
				Value(s.apiURL).Validate(validateURL),
		).Title("Backend"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateDebounce(v string) error {
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 || ms > maxDebounceMS {
		return fmt.Errorf("enter 1 to %d", maxDebounceMS)
	}
	return nil
}

func validateURL(v string) error {
	if v == "" {
		return nil
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http(s) URL or leave empty")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.save()
	}

	return s, cmd
}

func (s settingsModel) save() tea.Cmd {
	values := map[string]string{
		"theme":       *s.theme,
		"debounce_ms": *s.debounce,
		"api_url":     *s.apiURL,
	}
	base := s.ctx
	return func() tea.Msg {
		for k, v := range values {
			if err := s.store.SetSetting(k, v); err != nil {
				return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
			}
		}
		settings, err := s.store.GetAllSettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
		}
		return settingsSavedMsg{ctx: contextFrom(base, settings), settings: settings}
	}
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil || v == "" {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := s.ctx.title().Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "debounce_ms":
		if ms, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d ms", ms)
		}
	case "api_url":
		if v == "" {
			return "(not set)"
		}
	}
	return v
}
