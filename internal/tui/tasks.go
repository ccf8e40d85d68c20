package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/campustasks/internal/task"
)

type drawerState int

const (
	drawerClosed drawerState = iota
	drawerDetail
	drawerChat
)

// filterValues backs the filter form. Held by pointer so huh can write into
// it across value copies of the model.
type filterValues struct {
	categories   []string
	difficulties []string
	statuses     []string
	courses      []string
	rng          string
	from         string
	to           string
}

type tasksModel struct {
	ctx    uiContext
	width  int
	height int
	now    func() time.Time

	all      []task.Task
	filtered []task.Task
	criteria task.Criteria
	cursor   int

	search    textinput.Model
	searching bool
	settled   chan string
	debouncer *task.Debouncer[string]

	formActive bool
	form       *huh.Form
	filter     *filterValues
	formErr    string

	drawer drawerState
	detail detailModel
	chat   chatModel
}

func newTasksModel(ctx uiContext, chat chatModel) tasksModel {
	ti := textinput.New()
	ti.Placeholder = "搜索任务、地点、课程…"
	ti.Prompt = "/ "
	ti.CharLimit = 100

	settled := make(chan string, 1)
	return tasksModel{
		ctx:       ctx,
		now:       time.Now,
		search:    ti,
		settled:   settled,
		debouncer: newSearchDebouncer(settled, ctx.debounce),
		filter:    &filterValues{rng: string(task.RangeAll)},
		detail:    newDetailModel(ctx),
		chat:      chat,
	}
}

// newSearchDebouncer delivers the settled query on ch, replacing an unread one.
func newSearchDebouncer(ch chan string, d time.Duration) *task.Debouncer[string] {
	return task.Debounce(func(q string) {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- q:
		default:
		}
	}, d)
}

func waitForSearch(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return searchSettledMsg{query: <-ch}
	}
}

func (t tasksModel) Init() tea.Cmd {
	return waitForSearch(t.settled)
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
	t.search.Width = max(10, w-12)
	t.detail.setSize(w, h)
	t.chat.setSize(w, h)
}

func (t *tasksModel) setContext(ctx uiContext) {
	if ctx.debounce != t.ctx.debounce {
		t.debouncer.Stop()
		t.debouncer = newSearchDebouncer(t.settled, ctx.debounce)
	}
	t.ctx = ctx
	t.detail.setContext(ctx)
	t.chat.ctx = ctx
}

func (t *tasksModel) setTasks(all []task.Task) {
	t.all = all
	t.refilter()
}

func (t *tasksModel) refilter() {
	t.filtered = task.Filter(t.all, t.criteria, t.now())
	if t.cursor >= len(t.filtered) {
		t.cursor = max(0, len(t.filtered)-1)
	}
}

// capturing reports whether keystrokes belong to this view rather than the
// global bindings.
func (t tasksModel) capturing() bool {
	return t.searching || t.formActive || t.drawer == drawerChat
}

func (t tasksModel) selected() (task.Task, bool) {
	if t.cursor < 0 || t.cursor >= len(t.filtered) {
		return task.Task{}, false
	}
	return t.filtered[t.cursor], true
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case searchSettledMsg:
		t.applySearch(msg.query)
		return t, waitForSearch(t.settled)

	case transcriptMsg, answerMsg:
		var cmd tea.Cmd
		t.chat, cmd = t.chat.update(msg)
		return t, cmd

	case tea.KeyMsg:
		switch {
		case t.searching:
			return t.updateSearch(msg)
		case t.drawer == drawerChat:
			return t.updateChat(msg)
		case t.drawer == drawerDetail:
			return t.updateDetail(msg)
		}
		return t.updateList(msg)
	}

	// Cursor blink and similar input bookkeeping.
	var cmd tea.Cmd
	switch {
	case t.searching:
		t.search, cmd = t.search.Update(msg)
	case t.drawer == drawerChat:
		t.chat.input, cmd = t.chat.input.Update(msg)
	}
	return t, cmd
}

func (t tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(msg, keys.Down):
		if t.cursor < len(t.filtered)-1 {
			t.cursor++
		}
	case key.Matches(msg, keys.Search):
		t.searching = true
		return t, t.search.Focus()
	case key.Matches(msg, keys.Filter):
		return t.showFilterForm()
	case key.Matches(msg, keys.Clear):
		t.debouncer.Stop()
		t.criteria = task.Criteria{}
		t.search.SetValue("")
		*t.filter = filterValues{rng: string(task.RangeAll)}
		t.refilter()
		return t, statusCmd("Filters cleared")
	case key.Matches(msg, keys.Enter):
		if sel, ok := t.selected(); ok {
			t.drawer = drawerDetail
			t.detail.show(sel)
		}
	}
	return t, nil
}

func (t tasksModel) updateSearch(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		t.searching = false
		t.search.Blur()
		return t, nil
	case "enter":
		t.searching = false
		t.search.Blur()
		t.debouncer.Stop()
		t.applySearch(t.search.Value())
		return t, nil
	}

	before := t.search.Value()
	var cmd tea.Cmd
	t.search, cmd = t.search.Update(msg)
	if t.search.Value() != before {
		t.debouncer.Call(t.search.Value())
	}
	return t, cmd
}

func (t *tasksModel) applySearch(q string) {
	if q == t.criteria.Search {
		return
	}
	t.criteria.Search = q
	t.cursor = 0
	t.refilter()
}

func (t tasksModel) updateDetail(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		t.drawer = drawerClosed
		return t, nil
	case key.Matches(msg, keys.Ask):
		t.drawer = drawerChat
		return t, t.chat.open(t.detail.task, t.all)
	}
	var cmd tea.Cmd
	t.detail, cmd = t.detail.update(msg)
	return t, cmd
}

func (t tasksModel) updateChat(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	if key.Matches(msg, keys.Back) {
		t.chat.close()
		t.drawer = drawerDetail
		return t, nil
	}
	var cmd tea.Cmd
	t.chat, cmd = t.chat.update(msg)
	return t, cmd
}

func (t tasksModel) showFilterForm() (tasksModel, tea.Cmd) {
	f := t.filter
	t.formErr = ""

	catOpts := make([]huh.Option[string], 0, len(task.Categories))
	for _, c := range task.Categories {
		catOpts = append(catOpts, huh.NewOption(categoryLabel(c), string(c)))
	}
	diffOpts := make([]huh.Option[string], 0, len(task.Difficulties))
	for _, d := range task.Difficulties {
		diffOpts = append(diffOpts, huh.NewOption(difficultyLabel(d), string(d)))
	}
	statusOpts := make([]huh.Option[string], 0, len(task.Statuses))
	for _, s := range task.Statuses {
		statusOpts = append(statusOpts, huh.NewOption(statusLabel(s), string(s)))
	}
	rangeOpts := make([]huh.Option[string], 0, len(task.Ranges()))
	for _, r := range task.Ranges() {
		rangeOpts = append(rangeOpts, huh.NewOption(rangeLabel(r), string(r)))
	}

	fields := []huh.Field{
		huh.NewMultiSelect[string]().Title("Category").Options(catOpts...).Value(&f.categories),
		huh.NewMultiSelect[string]().Title("Difficulty").Options(diffOpts...).Value(&f.difficulties),
		huh.NewMultiSelect[string]().Title("Status").Options(statusOpts...).Value(&f.statuses),
	}
	if courses := task.Courses(t.all); len(courses) > 0 {
		fields = append(fields, huh.NewMultiSelect[string]().Title("Course").
			Options(huh.NewOptions(courses...)...).Height(8).Value(&f.courses))
	}

	t.form = huh.NewForm(
		huh.NewGroup(fields...).Title("Filter"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Time range").Options(rangeOpts...).Value(&f.rng),
		),
		huh.NewGroup(
			huh.NewInput().Title("From (YYYY-MM-DD)").Value(&f.from).Validate(validateDay),
			huh.NewInput().Title("To (YYYY-MM-DD)").Value(&f.to).Validate(validateDay),
		).Title("Custom range").WithHideFunc(func() bool { return f.rng != string(task.RangeCustom) }),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func validateDay(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		t.form = nil
		c, err := t.filter.criteria(t.criteria.Search, t.now().Location())
		if err != nil {
			t.formErr = err.Error()
			return t, nil
		}
		t.criteria = c
		t.cursor = 0
		t.refilter()
		return t, statusCmd(fmt.Sprintf("%d tasks match", len(t.filtered)))
	}

	return t, cmd
}

// criteria turns the form values into filter criteria. Values are taken as
// selected; course names may contain commas.
func (f filterValues) criteria(search string, loc *time.Location) (task.Criteria, error) {
	var (
		c   task.Criteria
		err error
	)
	if c.Categories, err = task.ParseCategories(f.categories); err != nil {
		return c, err
	}
	if c.Difficulties, err = task.ParseDifficulties(f.difficulties); err != nil {
		return c, err
	}
	if c.Statuses, err = task.ParseStatuses(f.statuses); err != nil {
		return c, err
	}
	c.Courses = slices.Clone(f.courses)
	c.Search = search

	r, ok := task.ParseRange(f.rng)
	if !ok {
		return c, fmt.Errorf("unknown range %q", f.rng)
	}
	c.Range = r
	if r != task.RangeCustom {
		return c, nil
	}
	if f.from == "" && f.to == "" {
		c.Range = task.RangeAll
		return c, nil
	}
	dr, err := task.ParseDateRange(f.from, f.to, loc)
	if err != nil {
		return c, err
	}
	c.Custom = &dr
	return c, nil
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func (t tasksModel) view() string {
	w := t.width - 4

	switch {
	case t.formActive && t.form != nil:
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, t.ctx.title().Render("Filter tasks"), "", t.form.View()),
		)
	case t.drawer == drawerDetail:
		return t.detail.view()
	case t.drawer == drawerChat:
		return t.chat.view()
	}

	var rows []string
	title := t.ctx.title().Render("Tasks")
	count := mutedStyle.Render(fmt.Sprintf("  %d / %d", len(t.filtered), len(t.all)))
	rows = append(rows, title+count)

	if t.searching || t.search.Value() != "" {
		rows = append(rows, t.search.View())
	}
	if summary := describeCriteria(t.criteria); summary != "" {
		rows = append(rows, highlightStyle.Render("  "+summary))
	}
	if t.formErr != "" {
		rows = append(rows, errorStyle.Render("  "+t.formErr))
	}
	rows = append(rows, "")

	if len(t.filtered) == 0 {
		if len(t.all) == 0 {
			rows = append(rows, mutedStyle.Render("  No tasks loaded"))
		} else {
			rows = append(rows, mutedStyle.Render("  No tasks match. Press c to clear filters."))
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	visible := max(1, t.height-len(rows)-6)
	start := 0
	if t.cursor >= visible {
		start = t.cursor - visible + 1
	}
	end := min(len(t.filtered), start+visible)
	for i := start; i < end; i++ {
		rows = append(rows, t.renderRow(i, w-6))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (t tasksModel) renderRow(i, width int) string {
	tk := t.filtered[i]
	cursor := "  "
	style := t.ctx.text()
	if i == t.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	dot := lipgloss.NewStyle().Foreground(categoryColor(tk.Category)).Render("●")
	num := mutedStyle.Render(fmt.Sprintf("%2d", i+1))
	diff := lipgloss.NewStyle().Foreground(difficultyColors[tk.Difficulty]).Render(difficultyLabel(tk.Difficulty))
	status := lipgloss.NewStyle().Foreground(statusColors[tk.Status]).Render(statusLabel(tk.Status))
	meta := fmt.Sprintf("  %s  %s  %s", diff, status, mutedStyle.Render(tk.Location.Name))

	titleWidth := max(8, width-lipgloss.Width(meta)-8)
	return fmt.Sprintf("%s%s %s %s%s", cursor, num, dot, style.Render(truncate(tk.Title, titleWidth)), meta)
}

// describeCriteria summarises the active predicates for the list header.
func describeCriteria(c task.Criteria) string {
	var parts []string
	join := func(label string, vals []string) {
		if len(vals) > 0 {
			parts = append(parts, label+": "+strings.Join(vals, ","))
		}
	}
	join("category", enumStrings(c.Categories))
	join("difficulty", enumStrings(c.Difficulties))
	join("status", enumStrings(c.Statuses))
	join("course", c.Courses)
	if s := strings.TrimSpace(c.Search); s != "" {
		parts = append(parts, fmt.Sprintf("search: %q", s))
	}
	switch {
	case c.Range == task.RangeCustom && c.Custom != nil:
		parts = append(parts, fmt.Sprintf("range: %s..%s", dayOrOpen(c.Custom.From), dayOrOpen(c.Custom.To)))
	case c.Range != "" && c.Range != task.RangeAll:
		parts = append(parts, "range: "+string(c.Range))
	}
	return strings.Join(parts, "  ")
}

func enumStrings[T ~string](vals []T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

func dayOrOpen(t time.Time) string {
	if t.Year() <= 1 || t.Year() >= 9999 {
		return ""
	}
	return t.Format(time.DateOnly)
}

func categoryLabel(c task.Category) string {
	switch c {
	case task.CategoryAcademic:
		return "学术"
	case task.CategorySocial:
		return "社交"
	case task.CategoryCampus:
		return "校园"
	}
	return string(c)
}

func difficultyLabel(d task.Difficulty) string {
	switch d {
	case task.DifficultyEasy:
		return "简单"
	case task.DifficultyMedium:
		return "中等"
	case task.DifficultyHard:
		return "困难"
	}
	return string(d)
}

func statusLabel(s task.Status) string {
	switch s {
	case task.StatusAvailable:
		return "可参与"
	case task.StatusInProgress:
		return "进行中"
	case task.StatusCompleted:
		return "已完成"
	}
	return string(s)
}

var rangeLabels = map[task.TimeRange]string{
	task.RangeAll:        "All time",
	task.RangeToday:      "Today",
	task.RangeTomorrow:   "Tomorrow",
	task.RangeThisWeek:   "This week",
	task.RangeNextWeek:   "Next week",
	task.RangeThisMonth:  "This month",
	task.RangeNextMonth:  "Next month",
	task.RangeLast7Days:  "Last 7 days",
	task.RangeLast30Days: "Last 30 days",
	task.RangeDueSoon:    "Due within 7 days",
	task.RangeOverdue:    "Overdue",
	task.RangeCustom:     "Custom dates",
}

func rangeLabel(r task.TimeRange) string {
	if l, ok := rangeLabels[r]; ok {
		return l
	}
	return string(r)
}
