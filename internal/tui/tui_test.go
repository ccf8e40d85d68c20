package tui

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/campustasks/internal/source"
	"github.com/sadopc/campustasks/internal/store"
	"github.com/sadopc/campustasks/internal/task"
)

// Wednesday, 10 Sep 2025 12:00 UTC.
var fixedNow = time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)

func day(d int) *time.Time {
	t := time.Date(2025, time.September, d, 8, 0, 0, 0, time.UTC)
	return &t
}

func testTasks() []task.Task {
	return []task.Task{
		{ID: "ac-001", Title: "参观学术楼一", Category: task.CategoryAcademic, Difficulty: task.DifficultyEasy,
			Status: task.StatusAvailable, Location: task.Location{Lat: 22.337, Lng: 114.274, Name: "学术楼一"},
			Rewards: []string{"探索徽章", "10积分"}, EstimatedMinutes: task.Ptr(30),
			Course: task.Ptr("大学导论"), CreatedAt: day(10), DueAt: day(15)},
		{ID: "lib-001", Title: "图书馆导览", Category: task.CategoryCampus, Difficulty: task.DifficultyEasy,
			Status: task.StatusCompleted, Location: task.Location{Lat: 22.336, Lng: 114.272, Name: "邵逸夫图书馆"},
			Course: task.Ptr("信息素养"), CreatedAt: day(7)},
		{ID: "sc-002", Title: "加入学生社团", Category: task.CategorySocial, Difficulty: task.DifficultyMedium,
			Status: task.StatusAvailable, Location: task.Location{Name: "社团活动室"}},
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestApp(t *testing.T) App {
	t.Helper()
	s := newTestStore(t)
	if err := s.ReplaceTasks(testTasks()); err != nil {
		t.Fatal(err)
	}
	app := NewApp(Options{
		Store:     s,
		Catalog:   source.NewCatalog(nil, s, nil),
		Debounce:  10 * time.Millisecond,
		ExportDir: t.TempDir(),
	})
	app.tasks.now = func() time.Time { return fixedNow }
	app.width = 160
	app.height = 40
	return app
}

// loaded runs the initial catalog load through Update.
func loaded(t *testing.T, app App) App {
	t.Helper()
	msg := app.loadTasks()()
	m, _ := app.Update(msg)
	return m.(App)
}

func press(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func ids(tasks []task.Task) string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return strings.Join(out, ",")
}

func newTestTasksModel(t *testing.T) tasksModel {
	t.Helper()
	ctx := defaultContext()
	ctx.debounce = 10 * time.Millisecond
	tm := newTasksModel(ctx, newChatModel(ctx, newTestStore(t), source.NewAdvisor(nil, nil)))
	tm.now = func() time.Time { return fixedNow }
	tm.setSize(120, 30)
	tm.setTasks(testTasks())
	t.Cleanup(tm.debouncer.Stop)
	return tm
}

// ============================================================
// Helpers
// ============================================================

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   *int
		want string
	}{
		{nil, "-"},
		{task.Ptr(45), "45 min"},
		{task.Ptr(60), "1h"},
		{task.Ptr(90), "1h30m"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.in); got != tt.want {
			t.Fatalf("formatMinutes = %q, want %q", got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Fatalf("got %q", got)
	}
	// CJK runes are two cells wide.
	if got := truncate("图书馆导览", 5); got != "图书…" {
		t.Fatalf("got %q", got)
	}
}

func TestViewNames(t *testing.T) {
	if len(viewNames) != 4 {
		t.Fatalf("expected 4 view names, got %d", len(viewNames))
	}
	if viewNames[viewTasks] != "Tasks" || viewNames[viewSettings] != "Settings" {
		t.Fatalf("unexpected view names: %v", viewNames)
	}
}

// ============================================================
// Tasks view
// ============================================================

func TestTasksModelShowsAllByDefault(t *testing.T) {
	tm := newTestTasksModel(t)
	if got := ids(tm.filtered); got != "ac-001,lib-001,sc-002" {
		t.Fatalf("filtered = %s", got)
	}
	if tm.capturing() {
		t.Fatal("list should not capture keys")
	}
}

func TestTasksModelCursorClamped(t *testing.T) {
	tm := newTestTasksModel(t)
	tm, _ = tm.update(press("j"))
	tm, _ = tm.update(press("j"))
	tm, _ = tm.update(press("j"))
	if tm.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", tm.cursor)
	}
	tm.criteria.Categories = []task.Category{task.CategoryAcademic}
	tm.refilter()
	if tm.cursor != 0 {
		t.Fatalf("cursor should clamp to the shorter list, got %d", tm.cursor)
	}
}

func TestSearchIsDebounced(t *testing.T) {
	tm := newTestTasksModel(t)
	tm, _ = tm.update(press("/"))
	if !tm.searching || !tm.capturing() {
		t.Fatal("slash should focus search")
	}

	tm, _ = tm.update(press("图书馆"))
	if tm.criteria.Search != "" {
		t.Fatal("search must not apply before the debounce settles")
	}
	if len(tm.filtered) != 3 {
		t.Fatal("list should be unchanged while typing")
	}

	var q string
	select {
	case q = <-tm.settled:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced query never settled")
	}
	if q != "图书馆" {
		t.Fatalf("settled query = %q", q)
	}

	tm, cmd := tm.update(searchSettledMsg{query: q})
	if cmd == nil {
		t.Fatal("expected the listener to be re-armed")
	}
	if got := ids(tm.filtered); got != "lib-001" {
		t.Fatalf("filtered = %s", got)
	}
}

func TestSearchEnterAppliesImmediately(t *testing.T) {
	tm := newTestTasksModel(t)
	tm, _ = tm.update(press("/"))
	tm, _ = tm.update(press("社团"))
	tm, _ = tm.update(press("enter"))

	if tm.searching {
		t.Fatal("enter should leave search")
	}
	if got := ids(tm.filtered); got != "sc-002" {
		t.Fatalf("filtered = %s", got)
	}
}

func TestClearResetsCriteria(t *testing.T) {
	tm := newTestTasksModel(t)
	tm.criteria = task.Criteria{Categories: []task.Category{task.CategorySocial}, Search: "社团"}
	tm.search.SetValue("社团")
	tm.filter.categories = []string{"social"}
	tm.refilter()

	tm, _ = tm.update(press("c"))
	if !tm.criteria.IsZero() {
		t.Fatalf("criteria not cleared: %+v", tm.criteria)
	}
	if tm.search.Value() != "" || len(tm.filter.categories) != 0 {
		t.Fatal("search box and form values should be cleared")
	}
	if len(tm.filtered) != 3 {
		t.Fatalf("expected all tasks, got %d", len(tm.filtered))
	}
}

func TestFilterValuesCriteria(t *testing.T) {
	f := filterValues{
		categories: []string{"academic", "campus"},
		courses:    []string{"信息素养"},
		rng:        string(task.RangeThisWeek),
	}
	c, err := f.criteria("图书馆", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Categories) != 2 || c.Range != task.RangeThisWeek || c.Search != "图书馆" {
		t.Fatalf("unexpected criteria: %+v", c)
	}

	f = filterValues{rng: string(task.RangeCustom), from: "2025-09-01", to: "2025-09-07"}
	c, err = f.criteria("", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if c.Range != task.RangeCustom || c.Custom == nil {
		t.Fatalf("expected custom range, got %+v", c)
	}
	if got := ids(task.Filter(testTasks(), c, fixedNow)); got != "lib-001,sc-002" {
		t.Fatalf("filtered = %s", got)
	}

	f = filterValues{rng: string(task.RangeCustom), from: "2025-09-10", to: "2025-09-01"}
	if _, err := f.criteria("", time.UTC); err == nil {
		t.Fatal("expected error for inverted range")
	}

	f = filterValues{rng: string(task.RangeCustom)}
	c, err = f.criteria("", time.UTC)
	if err != nil || !c.IsZero() {
		t.Fatalf("custom without dates should not constrain: %+v, %v", c, err)
	}
}

func TestFilterValuesCourseWithComma(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Title: "Seminar", Category: task.CategoryAcademic, Course: task.Ptr("Ethics, Law")},
		{ID: "b", Title: "Lab", Category: task.CategoryAcademic, Course: task.Ptr("Ethics")},
		{ID: "c", Title: "Walk", Category: task.CategoryCampus},
	}

	f := filterValues{courses: []string{"Ethics, Law"}, rng: string(task.RangeAll)}
	c, err := f.criteria("", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Courses) != 1 || c.Courses[0] != "Ethics, Law" {
		t.Fatalf("courses = %q", c.Courses)
	}
	if got := ids(task.Filter(tasks, c, fixedNow)); got != "a,c" {
		t.Fatalf("filtered = %s, want a,c", got)
	}
}

func TestValidateDay(t *testing.T) {
	if validateDay("") != nil || validateDay("2025-09-01") != nil {
		t.Fatal("valid days rejected")
	}
	if validateDay("09/01/2025") == nil {
		t.Fatal("expected error")
	}
}

func TestDescribeCriteria(t *testing.T) {
	if got := describeCriteria(task.Criteria{}); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
	got := describeCriteria(task.Criteria{
		Difficulties: []task.Difficulty{task.DifficultyEasy, task.DifficultyHard},
		Search:       "lib",
		Range:        task.RangeOverdue,
	})
	for _, want := range []string{"difficulty: easy,hard", `search: "lib"`, "range: overdue"} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary %q missing %q", got, want)
		}
	}
}

func TestEnterOpensDetailAndEscCloses(t *testing.T) {
	tm := newTestTasksModel(t)
	tm, _ = tm.update(press("enter"))
	if tm.drawer != drawerDetail || tm.detail.task.ID != "ac-001" {
		t.Fatal("enter should open the detail drawer on the selected task")
	}
	tm, _ = tm.update(press("esc"))
	if tm.drawer != drawerClosed {
		t.Fatal("esc should close the drawer")
	}
}

func TestTasksViewEmptyState(t *testing.T) {
	tm := newTestTasksModel(t)
	tm.criteria.Search = "nothing matches this"
	tm.refilter()
	if !strings.Contains(tm.view(), "No tasks match") {
		t.Fatal("expected empty state message")
	}
}

// ============================================================
// Detail drawer
// ============================================================

func TestTaskMarkdown(t *testing.T) {
	md := taskMarkdown(testTasks()[0])
	for _, want := range []string{"# 参观学术楼一", "学术楼一", "探索徽章、10积分", "30 min", "大学导论", "2025-09-15"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}

	bare := taskMarkdown(testTasks()[2])
	if strings.Contains(bare, "详情") {
		t.Fatal("details table should be omitted when no optional field is set")
	}
}

func TestDetailRenders(t *testing.T) {
	d := newDetailModel(defaultContext())
	d.setSize(100, 30)
	d.show(testTasks()[0])
	if !strings.Contains(d.view(), "参观学术楼一") {
		t.Fatal("detail view should contain the title")
	}
}

// ============================================================
// Assistant panel
// ============================================================

func TestChatAsksAndPersists(t *testing.T) {
	s := newTestStore(t)
	c := newChatModel(defaultContext(), s, source.NewAdvisor(nil, nil))
	c.setSize(100, 30)
	tk := testTasks()[0]
	c.open(tk, testTasks())

	c.input.SetValue("这个任务在哪里？")
	c, cmd := c.submit()
	if cmd == nil || !c.pending {
		t.Fatal("submit should start a request")
	}
	if len(c.transcript) != 1 || c.transcript[0].Role != store.RoleUser {
		t.Fatal("question should show immediately")
	}

	msg, ok := cmd().(answerMsg)
	if !ok {
		t.Fatal("expected answerMsg")
	}
	if !msg.answer.Canned() {
		t.Fatal("answer without a backend should be canned")
	}
	c, _ = c.update(msg)
	if c.pending || len(c.transcript) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(c.transcript))
	}
	if !c.transcript[1].Canned || !strings.Contains(c.transcript[1].Text, "学术楼一") {
		t.Fatalf("unexpected reply: %+v", c.transcript[1])
	}
	if !strings.Contains(c.view(), "离线") {
		t.Fatal("canned replies should be marked")
	}

	saved, err := s.ListMessages(tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 saved messages, got %d", len(saved))
	}
}

func TestChatRejectsEmptyQuestion(t *testing.T) {
	c := newChatModel(defaultContext(), newTestStore(t), source.NewAdvisor(nil, nil))
	c.open(testTasks()[0], nil)
	c.input.SetValue("   ")
	c, cmd := c.submit()
	if cmd != nil || c.err == "" {
		t.Fatal("empty question should be rejected")
	}
}

func TestChatIgnoresAnswerForOtherTask(t *testing.T) {
	c := newChatModel(defaultContext(), newTestStore(t), source.NewAdvisor(nil, nil))
	c.open(testTasks()[0], nil)
	c, _ = c.update(answerMsg{taskID: "other", saved: []store.Message{{Text: "x"}}})
	if len(c.transcript) != 0 {
		t.Fatal("stale answer should be dropped")
	}
}

func TestReplyTextIncludesSuggestions(t *testing.T) {
	tk := testTasks()[0]
	catalog := append(testTasks(), task.Task{ID: "ac-009", Title: "参加学术讲座", Category: task.CategoryAcademic})
	c := newChatModel(defaultContext(), newTestStore(t), source.NewAdvisor(nil, nil))
	c.open(tk, catalog)
	c.input.SetValue("推荐相关任务")
	_, cmd := c.submit()
	msg := cmd().(answerMsg)
	if !strings.Contains(msg.saved[0].Text, "→ 参加学术讲座") {
		t.Fatalf("suggestions missing: %q", msg.saved[0].Text)
	}
}

// ============================================================
// Map
// ============================================================

func TestPlotMarkers(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Category: task.CategoryAcademic, Location: task.Location{Lat: 22.340, Lng: 114.270}},
		{ID: "b", Category: task.CategorySocial, Location: task.Location{Lat: 22.330, Lng: 114.280}},
		{ID: "c", Location: task.Location{Name: "nowhere"}},
	}
	grid := plot(tasks, 20, 10)
	if grid[0][0].r != '1' {
		t.Fatalf("north-west task should be marker 1, got %q", grid[0][0].r)
	}
	if grid[9][19].r != '2' {
		t.Fatalf("south-east task should be marker 2, got %q", grid[9][19].r)
	}

	count := 0
	for _, row := range grid {
		for _, c := range row {
			if c.r != '·' {
				count++
			}
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 markers, got %d", count)
	}
}

func TestPlotCollision(t *testing.T) {
	loc := task.Location{Lat: 22.3, Lng: 114.2}
	grid := plot([]task.Task{{Location: loc}, {Location: loc}}, 5, 5)
	found := false
	for _, row := range grid {
		for _, c := range row {
			if c.r == '+' {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("overlapping tasks should show '+'")
	}
}

func TestBoundsWithoutCoordinates(t *testing.T) {
	if _, ok := boundsOf(testTasks()[2:]); ok {
		t.Fatal("expected no bounds")
	}
	m := newMapModel(defaultContext())
	m.setSize(100, 30)
	m.setTasks(testTasks()[2:])
	if !strings.Contains(m.view(), "No tasks with coordinates") {
		t.Fatal("expected empty map message")
	}
}

func TestMarkerRunes(t *testing.T) {
	if marker(0) != '1' || marker(9) != 'a' || marker(100) != '•' {
		t.Fatal("unexpected marker sequence")
	}
}

// ============================================================
// Stats
// ============================================================

func TestTally(t *testing.T) {
	bars := tally(testTasks(), statsByCategory)
	if len(bars) != 3 {
		t.Fatalf("expected a bar per category, got %d", len(bars))
	}
	total := 0
	for _, b := range bars {
		total += b.count
	}
	if total != 3 {
		t.Fatalf("bars should sum to 3, got %d", total)
	}

	bars = tally(testTasks(), statsByDifficulty)
	if bars[0].count != 2 || bars[1].count != 1 || bars[2].count != 0 {
		t.Fatalf("unexpected difficulty counts: %+v", bars)
	}
}

func TestStatsModeSwitch(t *testing.T) {
	s := newStatsModel(defaultContext())
	s.setSize(100, 30)
	s.setTasks(testTasks())
	s, _ = s.update(press("l"))
	if s.mode != statsByDifficulty {
		t.Fatal("right should move to difficulty")
	}
	s, _ = s.update(press("h"))
	s, _ = s.update(press("h"))
	if s.mode != statsByStatus {
		t.Fatal("left should wrap around")
	}
	if s.view() == "" {
		t.Fatal("stats view rendered empty")
	}
}

// ============================================================
// Settings
// ============================================================

func TestContextFrom(t *testing.T) {
	base := defaultContext()
	ctx := contextFrom(base, []store.Setting{
		{Key: "theme", Value: "light"},
		{Key: "debounce_ms", Value: "120"},
	})
	if ctx.theme != "light" || ctx.debounce != 120*time.Millisecond {
		t.Fatalf("unexpected context: %+v", ctx)
	}
	if ctx.glamourStyle() != "light" {
		t.Fatal("light theme should use the light markdown style")
	}

	ctx = contextFrom(base, []store.Setting{
		{Key: "theme", Value: "neon"},
		{Key: "debounce_ms", Value: "soon"},
	})
	if ctx != base {
		t.Fatalf("invalid settings should be ignored: %+v", ctx)
	}
}

func TestValidateDebounce(t *testing.T) {
	for _, v := range []string{"1", "300", "5000"} {
		if validateDebounce(v) != nil {
			t.Fatalf("%q should be valid", v)
		}
	}
	for _, v := range []string{"", "0", "-5", "5001", "fast"} {
		if validateDebounce(v) == nil {
			t.Fatalf("%q should be rejected", v)
		}
	}
}

func TestValidateURL(t *testing.T) {
	if validateURL("") != nil || validateURL("http://localhost:8000") != nil {
		t.Fatal("valid URLs rejected")
	}
	if validateURL("localhost:8000") == nil || validateURL("ftp://x") == nil {
		t.Fatal("expected error")
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"debounce_ms", "300", "300 ms"},
		{"api_url", "", "(not set)"},
		{"theme", "dark", "dark"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.key, tt.value); got != tt.want {
			t.Fatalf("formatSettingValue(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}
}

func TestSettingsSave(t *testing.T) {
	s := newTestStore(t)
	m := newSettingsModel(s, defaultContext())
	*m.theme = "light"
	*m.debounce = "120"
	*m.apiURL = "http://localhost:8000"

	msg, ok := m.save()().(settingsSavedMsg)
	if !ok {
		t.Fatal("expected settingsSavedMsg")
	}
	if msg.ctx.theme != "light" || msg.ctx.debounce != 120*time.Millisecond {
		t.Fatalf("unexpected context: %+v", msg.ctx)
	}
	if v, _ := s.GetSetting("api_url"); v != "http://localhost:8000" {
		t.Fatalf("api_url = %q", v)
	}
}

// ============================================================
// App
// ============================================================

func TestNewApp(t *testing.T) {
	app := newTestApp(t)

	if app.activeView != viewTasks {
		t.Fatal("default view should be tasks")
	}
	if app.showHelp || app.exportPicking {
		t.Fatal("overlays should be hidden by default")
	}
	if !app.loading {
		t.Fatal("app should start loading")
	}
}

func TestAppLoadsOfflineCatalog(t *testing.T) {
	app := loaded(t, newTestApp(t))

	if app.loading {
		t.Fatal("loading should be done")
	}
	if app.result.Live() {
		t.Fatal("no backend is configured, result should be fallback")
	}
	if len(app.tasks.all) != 3 || len(app.stats.tasks) != 3 || len(app.mapView.tasks) != 3 {
		t.Fatal("views should share the loaded tasks")
	}
	header := app.renderHeader()
	if !strings.Contains(header, "offline demo data") || !strings.Contains(header, "no backend configured") {
		t.Fatalf("header should explain the offline origin: %q", header)
	}
}

func TestAppLiveBadge(t *testing.T) {
	app := newTestApp(t)
	app.result = source.Result{Origin: source.OriginLive}
	if !strings.Contains(app.renderHeader(), "live") {
		t.Fatal("expected live badge")
	}
}

func TestAppViewStates(t *testing.T) {
	app := loaded(t, newTestApp(t))

	for v := range viewNames {
		app.activeView = viewState(v)
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppViewsRenderAtNarrowWidths(t *testing.T) {
	base := loaded(t, newTestApp(t))

	for width := 0; width <= 12; width++ {
		m, _ := base.Update(tea.WindowSizeMsg{Width: width, Height: 20})
		app := m.(App)
		for v := range viewNames {
			app.activeView = viewState(v)
			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Fatalf("%s view panicked at width %d: %v", viewNames[v], width, r)
					}
				}()
				app.View()
			}()
		}
	}
}

func TestStatsViewBeforeResize(t *testing.T) {
	s := newStatsModel(defaultContext())
	s.setTasks(testTasks())
	if s.view() == "" {
		t.Fatal("stats view rendered empty")
	}
}

func TestAppTabSwitching(t *testing.T) {
	app := loaded(t, newTestApp(t))

	m, _ := app.Update(press("2"))
	app = m.(App)
	if app.activeView != viewMap {
		t.Fatal("2 should switch to map")
	}
	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = m.(App)
	if app.activeView != viewStats {
		t.Fatal("tab should move to stats")
	}
}

func TestAppSearchCapturesKeys(t *testing.T) {
	app := loaded(t, newTestApp(t))
	t.Cleanup(app.tasks.debouncer.Stop)

	m, _ := app.Update(press("/"))
	app = m.(App)
	m, _ = app.Update(press("q"))
	app = m.(App)
	m, _ = app.Update(press("2"))
	app = m.(App)

	if !app.tasks.searching || app.tasks.search.Value() != "q2" {
		t.Fatalf("typing should go to the search box, got %q", app.tasks.search.Value())
	}
	if app.activeView != viewTasks {
		t.Fatal("tab keys should not fire while searching")
	}
}

func TestAppFiltersFlowToOtherViews(t *testing.T) {
	app := loaded(t, newTestApp(t))
	m, _ := app.Update(searchSettledMsg{query: "图书馆"})
	app = m.(App)

	if len(app.tasks.filtered) != 1 || len(app.stats.tasks) != 1 || len(app.mapView.tasks) != 1 {
		t.Fatal("map and stats should follow the filtered list")
	}
}

func TestAppSettingsApplyDebounce(t *testing.T) {
	app := loaded(t, newTestApp(t))
	ctx := app.ctx
	ctx.debounce = 250 * time.Millisecond
	ctx.theme = "light"

	m, _ := app.Update(settingsSavedMsg{ctx: ctx})
	app = m.(App)
	if app.tasks.debouncer.Delay() != 250*time.Millisecond {
		t.Fatalf("debounce = %v", app.tasks.debouncer.Delay())
	}
	if app.stats.ctx.theme != "light" {
		t.Fatal("theme should reach every view")
	}
}

func TestAppExport(t *testing.T) {
	app := loaded(t, newTestApp(t))

	m, _ := app.Update(press("e"))
	app = m.(App)
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}

	msg, ok := app.doExport(1)().(exportDoneMsg)
	if !ok {
		t.Fatal("expected exportDoneMsg")
	}
	if msg.count != 3 || !strings.HasSuffix(msg.path, ".json") {
		t.Fatalf("unexpected export: %+v", msg)
	}
	if _, err := os.Stat(msg.path); err != nil {
		t.Fatal(err)
	}

	m, _ = app.Update(msg)
	app = m.(App)
	if app.exportPicking || !strings.Contains(app.status, "Exported 3 tasks") {
		t.Fatalf("unexpected state after export: %q", app.status)
	}
}

func TestAppLoadingState(t *testing.T) {
	app := newTestApp(t)
	app.width = 0
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppStatusMessage(t *testing.T) {
	app := newTestApp(t)
	m, _ := app.Update(statusMsg{text: "test status"})
	app = m.(App)

	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}
