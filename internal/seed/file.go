package seed

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sadopc/campustasks/internal/task"
)

var ErrUnsupportedFormat = errors.New("unsupported seed file format")

// LoadFile reads a seed file. The format follows the extension: .json holds an
// array of tasks in API shape, .csv the backend's tabular export.
func LoadFile(path string) ([]task.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(f)
	case ".csv":
		return ReadCSV(f)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// ReadJSON accepts a bare task array or an export document with a "tasks"
// field.
func ReadJSON(r io.Reader) ([]task.Task, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode seed json: %w", err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc struct {
			Tasks []task.Task `json:"tasks"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decode seed json: %w", err)
		}
		return doc.Tasks, nil
	}
	var tasks []task.Task
	if err := json.Unmarshal(trimmed, &tasks); err != nil {
		return nil, fmt.Errorf("decode seed json: %w", err)
	}
	return tasks, nil
}

// ReadCSV parses the backend export or a file written by the export package.
// Columns are located by header name so extra or reordered columns are
// tolerated; rows without a task_id are skipped.
func ReadCSV(r io.Reader) ([]task.Task, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := cols["task_id"]; !ok {
		return nil, errors.New("csv: missing task_id column")
	}

	// Files from the export package carry a due_date column and keep rewards
	// verbatim; backend exports need the keyword mapping.
	_, exported := cols["due_date"]
	dueCol := "updated_at"
	if exported {
		dueCol = "due_date"
	}

	var tasks []task.Task
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		id := get("task_id")
		if id == "" {
			continue
		}
		t := task.Task{
			ID:          id,
			Title:       get("title"),
			Description: get("description"),
			Category:    MapCategory(get("category")),
			Difficulty:  MapDifficulty(get("difficulty")),
			Status:      MapStatus(get("status")),
			Location: task.Location{
				Lat:  parseFloat(get("latitude")),
				Lng:  parseFloat(get("longitude")),
				Name: get("location_name"),
			},
			Rewards:          ParseRewards(get("rewards")),
			EstimatedMinutes: mins(parseMinutes(get("estimated_duration"))),
		}
		if c := get("course_code"); c != "" && !isBlank(c) {
			t.Course = task.Ptr(c)
		}
		if created, ok := task.ParseTime(get("created_at")); ok {
			t.CreatedAt = &created
		}
		if exported {
			t.Rewards = splitRewards(get("rewards"))
		}
		if due, ok := task.ParseTime(get(dueCol)); ok {
			t.DueAt = &due
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

var categoryLabels = map[string]task.Category{
	"学术研究": task.CategoryAcademic,
	"实验任务": task.CategoryAcademic,
	"课程任务": task.CategoryAcademic,
	"学术讲座": task.CategoryAcademic,
	"竞赛活动": task.CategoryAcademic,
	"讲座活动": task.CategoryAcademic,
	"志愿服务": task.CategorySocial,
	"社团活动": task.CategorySocial,
	"社交活动": task.CategorySocial,
	"文化活动": task.CategorySocial,
	"校园活动": task.CategoryCampus,
	"体育锻炼": task.CategoryCampus,
	"后勤支持": task.CategoryCampus,
	"迎新活动": task.CategoryCampus,
}

// MapCategory maps a backend label (Chinese or enum) to a category; anything
// unrecognised is a campus task.
func MapCategory(s string) task.Category {
	if c := task.Category(strings.ToLower(s)); c.Valid() {
		return c
	}
	if c, ok := categoryLabels[s]; ok {
		return c
	}
	return task.CategoryCampus
}

var difficultyLabels = map[string]task.Difficulty{
	"初级": task.DifficultyEasy,
	"简单": task.DifficultyEasy,
	"中级": task.DifficultyMedium,
	"中等": task.DifficultyMedium,
	"高级": task.DifficultyHard,
	"困难": task.DifficultyHard,
}

func MapDifficulty(s string) task.Difficulty {
	if d := task.Difficulty(strings.ToLower(s)); d.Valid() {
		return d
	}
	if d, ok := difficultyLabels[s]; ok {
		return d
	}
	return task.DifficultyEasy
}

var statusLabels = map[string]task.Status{
	"active": task.StatusAvailable,
	"可用":     task.StatusAvailable,
	"进行中":    task.StatusInProgress,
	"已完成":    task.StatusCompleted,
}

func MapStatus(s string) task.Status {
	if st := task.Status(strings.ToLower(s)); st.Valid() {
		return st
	}
	if st, ok := statusLabels[strings.ToLower(s)]; ok {
		return st
	}
	return task.StatusAvailable
}

var defaultRewards = []string{"探索徽章", "10积分"}

// ParseRewards turns the free-text reward column into reward badges.
func ParseRewards(s string) []string {
	if isBlank(s) || s == "无" {
		return append([]string(nil), defaultRewards...)
	}
	var out []string
	if strings.Contains(s, "学分") {
		out = append(out, "学分奖励")
	}
	if strings.Contains(s, "经验") {
		out = append(out, "经验值")
	}
	if strings.Contains(s, "徽章") {
		out = append(out, "成就徽章")
	}
	if strings.Contains(s, "时长") {
		out = append(out, "志愿时长")
	}
	if strings.Contains(s, "积分") {
		out = append(out, "积分奖励")
	}
	if len(out) == 0 {
		return append([]string(nil), defaultRewards...)
	}
	return out
}

func splitRewards(s string) []string {
	var out []string
	for _, r := range strings.Split(s, "、") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func isBlank(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "" || s == "nan"
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// parseMinutes defaults to an hour, matching the backend export.
func parseMinutes(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 60
	}
	return int(f)
}
