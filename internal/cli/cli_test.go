package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sadopc/campustasks/internal/config"
	"github.com/sadopc/campustasks/internal/export"
	"github.com/sadopc/campustasks/internal/seed"
	"github.com/sadopc/campustasks/internal/task"
)

var seedTasks = []task.Task{
	{
		ID: "ac-001", Title: "参观学术楼一", Description: "探索教室和实验室",
		Category: task.CategoryAcademic, Difficulty: task.DifficultyEasy, Status: task.StatusAvailable,
		Location: task.Location{Lat: 22.337, Lng: 114.274, Name: "学术楼一"},
		Rewards:  []string{"探索徽章"}, Course: task.Ptr("大学导论"),
	},
	{
		ID: "lib-001", Title: "图书馆导览", Description: "熟悉借阅流程",
		Category: task.CategoryCampus, Difficulty: task.DifficultyEasy, Status: task.StatusCompleted,
		Location: task.Location{Lat: 22.336, Lng: 114.273, Name: "邵逸夫图书馆"},
		Rewards:  []string{"读者徽章"}, Course: task.Ptr("信息素养"),
	},
	{
		ID: "sc-002", Title: "社团招新日", Description: "了解学生社团",
		Category: task.CategorySocial, Difficulty: task.DifficultyMedium, Status: task.StatusInProgress,
		Location: task.Location{Lat: 22.335, Lng: 114.272, Name: "学生中心"},
		Rewards:  []string{"社交徽章"},
	},
}

// testEnv points config, database and seed file at a temp dir and keeps the
// backend unconfigured.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("CAMPUS_DB_PATH", filepath.Join(dir, "tasks.db"))
	t.Setenv("CAMPUS_LOG_LEVEL", "error")
	t.Setenv("CAMPUS_API_URL", "")

	seedPath := filepath.Join(dir, "seed.csv")
	f, err := os.Create(seedPath)
	require.NoError(t, err)
	require.NoError(t, export.WriteCSV(f, seedTasks))
	require.NoError(t, f.Close())
	t.Setenv("CAMPUS_SEED_FILE", seedPath)
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

type listOutput struct {
	Count int `json:"count"`
	Tasks []struct {
		ID string `json:"task_id"`
	} `json:"tasks"`
}

func decodeList(t *testing.T, out string) []string {
	t.Helper()
	var doc listOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	ids := make([]string, 0, len(doc.Tasks))
	for _, tk := range doc.Tasks {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, len(ids), doc.Count)
	return ids
}

func TestListAll(t *testing.T) {
	testEnv(t)
	out, _, err := run(t, "list", "--json")
	require.NoError(t, err)
	assert.Equal(t, []string{"ac-001", "lib-001", "sc-002"}, decodeList(t, out))
}

func TestListFilters(t *testing.T) {
	testEnv(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"category", []string{"--category", "social"}, []string{"sc-002"}},
		{"categories are ORed", []string{"--category", "social,campus"}, []string{"lib-001", "sc-002"}},
		{"filters are ANDed", []string{"--difficulty", "easy", "--status", "completed"}, []string{"lib-001"}},
		{"course keeps course-less tasks", []string{"--course", "大学导论"}, []string{"ac-001", "sc-002"}},
		{"search", []string{"--search", "图书馆"}, []string{"lib-001"}},
		{"no match", []string{"--search", "nothing-here"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, append([]string{"list", "--json"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decodeList(t, out))
		})
	}
}

func TestListTable(t *testing.T) {
	testEnv(t)
	out, _, err := run(t, "list", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "ac-001")
	assert.Contains(t, out, "lib-001")
	assert.NotContains(t, out, "sc-002")
	assert.Contains(t, out, "2 tasks")
}

func TestListEmpty(t *testing.T) {
	testEnv(t)
	out, _, err := run(t, "list", "--status", "available", "--category", "social")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")
}

func TestListRejectsBadFilters(t *testing.T) {
	testEnv(t)

	for _, args := range [][]string{
		{"--category", "sports"},
		{"--range", "someday"},
		{"--from", "2025-13-01"},
	} {
		_, _, err := run(t, append([]string{"list"}, args...)...)
		assert.Error(t, err, "%v", args)
	}
}

func TestOptions(t *testing.T) {
	testEnv(t)
	out, _, err := run(t, "options", "--json")
	require.NoError(t, err)

	var opts filterOptions
	require.NoError(t, json.Unmarshal([]byte(out), &opts))
	assert.Equal(t, []string{"academic", "campus", "social"}, opts.Categories)
	assert.Equal(t, []string{"easy", "medium"}, opts.Difficulties)
	assert.Equal(t, []string{"信息素养", "大学导论"}, opts.Courses)
	assert.Contains(t, opts.Ranges, "due-soon")

	out, _, err = run(t, "options")
	require.NoError(t, err)
	assert.Contains(t, out, "category")
	assert.Contains(t, out, "academic, campus, social")
}

func TestExportCSVRoundTrip(t *testing.T) {
	dir := testEnv(t)
	path := filepath.Join(dir, "out.csv")

	_, stderr, err := run(t, "export", "--category", "academic,campus", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Exported 2 tasks")

	tasks, err := seed.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "ac-001", tasks[0].ID)
	assert.Equal(t, "大学导论", tasks[0].CourseName())
	assert.Equal(t, "lib-001", tasks[1].ID)
}

func TestExportJSONToStdout(t *testing.T) {
	testEnv(t)
	out, _, err := run(t, "export", "--format", "json", "--status", "in_progress")
	require.NoError(t, err)
	assert.Equal(t, []string{"sc-002"}, decodeList(t, out))
}

func TestExportUnknownFormat(t *testing.T) {
	testEnv(t)
	_, _, err := run(t, "export", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestServeStopsOnCancel(t *testing.T) {
	dir := testEnv(t)
	cfg := config.Default()
	cfg.DBPath = filepath.Join(dir, "serve.db")
	a := &app{cfg: cfg, log: zap.NewNop(), out: io.Discard, err: io.Discard}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.runServe(ctx, "127.0.0.1:0", os.Getenv("CAMPUS_SEED_FILE"))
	require.NoError(t, err)
}

func TestFilterFlagsQuery(t *testing.T) {
	f := filterFlags{
		categories: []string{"academic", "social"},
		search:     "lab",
		from:       "2025-09-01",
	}
	q := f.query()
	assert.Equal(t, []string{"academic", "social"}, q["category"])
	assert.Equal(t, "lab", q.Get("search"))
	assert.Equal(t, "2025-09-01", q.Get("from"))
	assert.Empty(t, q.Get("range"))
	assert.NotContains(t, q, "difficulty")
}

func TestVersionFlag(t *testing.T) {
	testEnv(t)
	out, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}
