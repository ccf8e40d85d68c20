package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/campustasks/internal/task"
)

const taskColumns = `task_id, title, description, category, difficulty, status, lat, lng, location_name,
	rewards, estimated_minutes, course, created_at, due_at`

// ReplaceTasks swaps the whole catalog for tasks in one transaction. List order
// follows the order of tasks.
func (s *Store) ReplaceTasks(tasks []task.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO tasks (` + taskColumns + `, position, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, t := range tasks {
		rewards, err := json.Marshal(t.Rewards)
		if err != nil {
			return fmt.Errorf("encode rewards for %s: %w", t.ID, err)
		}
		_, err = stmt.Exec(
			t.ID, t.Title, t.Description, string(t.Category), string(t.Difficulty), string(t.Status),
			t.Location.Lat, t.Location.Lng, t.Location.Name,
			string(rewards), t.EstimatedMinutes, t.Course, formatTime(t.CreatedAt), formatTime(t.DueAt),
			i, now,
		)
		if err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// EnsureSeeded fills an empty catalog with tasks and reports whether it did.
func (s *Store) EnsureSeeded(tasks []task.Task) (bool, error) {
	n, err := s.CountTasks()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := s.ReplaceTasks(tasks); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) GetTask(id string) (*task.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE task_id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %q: %w", id, err)
	}
	return &t, nil
}

func (s *Store) ListTasks() ([]task.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) CountTasks() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// LastSynced returns when the catalog was last replaced, or the zero time for
// an empty catalog.
func (s *Store) LastSynced() (time.Time, error) {
	var at sql.NullString
	if err := s.db.QueryRow(`SELECT MAX(synced_at) FROM tasks`).Scan(&at); err != nil {
		return time.Time{}, fmt.Errorf("last synced: %w", err)
	}
	if !at.Valid {
		return time.Time{}, nil
	}
	t, _ := time.Parse(time.RFC3339, at.String)
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (task.Task, error) {
	var (
		t                  task.Task
		category           string
		difficulty, status string
		rewards            string
		minutes            sql.NullInt64
		course             sql.NullString
		createdAt, dueAt   sql.NullString
	)
	err := sc.Scan(&t.ID, &t.Title, &t.Description, &category, &difficulty, &status,
		&t.Location.Lat, &t.Location.Lng, &t.Location.Name,
		&rewards, &minutes, &course, &createdAt, &dueAt)
	if err != nil {
		return t, err
	}
	t.Category = task.Category(category)
	t.Difficulty = task.Difficulty(difficulty)
	t.Status = task.Status(status)
	if err := json.Unmarshal([]byte(rewards), &t.Rewards); err != nil {
		return t, fmt.Errorf("decode rewards for %s: %w", t.ID, err)
	}
	if minutes.Valid {
		t.EstimatedMinutes = task.Ptr(int(minutes.Int64))
	}
	if course.Valid {
		t.Course = task.Ptr(course.String)
	}
	t.CreatedAt = parseTime(createdAt)
	t.DueAt = parseTime(dueAt)
	return t, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}
