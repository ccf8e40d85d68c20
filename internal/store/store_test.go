package store

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/campustasks/internal/task"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTasks() []task.Task {
	created := time.Date(2025, 9, 9, 4, 0, 0, 0, time.UTC)
	due := time.Date(2025, 9, 15, 23, 59, 59, 500, time.UTC)
	return []task.Task{
		{
			ID: "ac-001", Title: "参观学术楼一", Description: "探索学术楼一",
			Category: task.CategoryAcademic, Difficulty: task.DifficultyEasy, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.337, Lng: 114.274, Name: "学术楼一"},
			Rewards:  []string{"探索徽章", "10积分"}, EstimatedMinutes: task.Ptr(30),
			Course: task.Ptr("大学导论"), CreatedAt: &created, DueAt: &due,
		},
		{
			ID: "sc-002", Title: "加入学生社团",
			Category: task.CategorySocial, Difficulty: task.DifficultyMedium, Status: task.StatusAvailable,
			Location: task.Location{Name: "社团活动室"},
		},
		{
			ID: "a-first", Title: "Sorted last by position",
			Category: task.CategoryCampus, Difficulty: task.DifficultyHard, Status: task.StatusCompleted,
		},
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/campustasks.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceTasks(sampleTasks()); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migrations do not run again.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	n, err := s2.CountTasks()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 tasks after reopen, got %d", n)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Catalog
// ============================================================

func TestReplaceAndListTasks(t *testing.T) {
	s := newTestStore(t)
	if err := s.ReplaceTasks(sampleTasks()); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListTasks()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ac-001", "sc-002", "a-first"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestTaskRoundTrip(t *testing.T) {
	s := newTestStore(t)
	in := sampleTasks()
	if err := s.ReplaceTasks(in); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTask("ac-001")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != in[0].Title || got.Category != task.CategoryAcademic || got.Location.Name != "学术楼一" {
		t.Fatalf("unexpected task: %+v", got)
	}
	if len(got.Rewards) != 2 || got.Rewards[1] != "10积分" {
		t.Fatalf("rewards = %v", got.Rewards)
	}
	if got.EstimatedMinutes == nil || *got.EstimatedMinutes != 30 {
		t.Fatal("estimated minutes lost")
	}
	if got.CourseName() != "大学导论" {
		t.Fatalf("course = %q", got.CourseName())
	}
	if got.DueAt == nil || !got.DueAt.Equal(*in[0].DueAt) {
		t.Fatalf("due date = %v, want %v", got.DueAt, in[0].DueAt)
	}

	bare, err := s.GetTask("sc-002")
	if err != nil {
		t.Fatal(err)
	}
	if bare.Course != nil || bare.CreatedAt != nil || bare.DueAt != nil || bare.EstimatedMinutes != nil {
		t.Fatalf("absent fields should stay nil: %+v", bare)
	}
}

func TestReplaceTasksDropsOld(t *testing.T) {
	s := newTestStore(t)
	s.ReplaceTasks(sampleTasks())
	if err := s.ReplaceTasks(sampleTasks()[:1]); err != nil {
		t.Fatal(err)
	}
	n, _ := s.CountTasks()
	if n != 1 {
		t.Fatalf("expected 1 task, got %d", n)
	}
}

func TestReplaceTasksDuplicateIDRollsBack(t *testing.T) {
	s := newTestStore(t)
	s.ReplaceTasks(sampleTasks())

	dup := []task.Task{{ID: "x", Title: "x"}, {ID: "x", Title: "again"}}
	if err := s.ReplaceTasks(dup); err == nil {
		t.Fatal("expected error for duplicate task_id")
	}
	n, _ := s.CountTasks()
	if n != 3 {
		t.Fatalf("failed replace must keep the old catalog, got %d tasks", n)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTask("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnsureSeeded(t *testing.T) {
	s := newTestStore(t)

	seeded, err := s.EnsureSeeded(sampleTasks())
	if err != nil || !seeded {
		t.Fatalf("first seed: seeded=%v err=%v", seeded, err)
	}
	seeded, err = s.EnsureSeeded(sampleTasks()[:1])
	if err != nil || seeded {
		t.Fatalf("second seed should be a no-op: seeded=%v err=%v", seeded, err)
	}
	n, _ := s.CountTasks()
	if n != 3 {
		t.Fatalf("expected 3 tasks, got %d", n)
	}
}

func TestLastSynced(t *testing.T) {
	s := newTestStore(t)
	at, err := s.LastSynced()
	if err != nil {
		t.Fatal(err)
	}
	if !at.IsZero() {
		t.Fatalf("empty catalog should report zero time, got %v", at)
	}

	s.ReplaceTasks(sampleTasks())
	at, _ = s.LastSynced()
	if time.Since(at) > time.Minute {
		t.Fatalf("last synced too old: %v", at)
	}
}

// ============================================================
// Assistant transcript
// ============================================================

func TestMessages(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)

	if _, err := s.AddMessage(Message{TaskID: "ac-001", Role: RoleUser, Text: "在哪里？", CreatedAt: base}); err != nil {
		t.Fatal(err)
	}
	m, err := s.AddMessage(Message{TaskID: "ac-001", Role: RoleAssistant, Text: "学术楼一", Canned: true, CreatedAt: base.Add(time.Second)})
	if err != nil {
		t.Fatal(err)
	}
	if m.ID == "" {
		t.Fatal("expected generated id")
	}
	s.AddMessage(Message{TaskID: "other", Role: RoleUser, Text: "x"})

	msgs, err := s.ListMessages("ac-001")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant || !msgs[1].Canned {
		t.Fatalf("unexpected transcript: %+v", msgs)
	}

	if err := s.ClearMessages("ac-001"); err != nil {
		t.Fatal(err)
	}
	msgs, _ = s.ListMessages("ac-001")
	if len(msgs) != 0 {
		t.Fatalf("expected empty transcript, got %d", len(msgs))
	}
	other, _ := s.ListMessages("other")
	if len(other) != 1 {
		t.Fatal("clearing one task must not touch another")
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"theme":       "dark",
		"debounce_ms": "300",
		"api_url":     "",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("theme", "light")
	s.SetSetting("theme", "dark")
	val, _ := s.GetSetting("theme")
	if val != "dark" {
		t.Fatalf("expected dark, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetIntSetting(t *testing.T) {
	s := newTestStore(t)
	if got := s.GetIntSetting("debounce_ms", 1); got != 300 {
		t.Fatalf("expected 300, got %d", got)
	}
	s.SetSetting("debounce_ms", "soon")
	if got := s.GetIntSetting("debounce_ms", 250); got != 250 {
		t.Fatalf("expected fallback 250, got %d", got)
	}
	if got := s.GetIntSetting("missing", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 default settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
}
