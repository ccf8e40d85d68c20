package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AddMessage appends a line to a task's assistant transcript. An empty ID is
// filled with a new UUID.
func (s *Store) AddMessage(m Message) (*Message, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	canned := 0
	if m.Canned {
		canned = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO chat_messages (id, task_id, role, body, canned, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.TaskID, m.Role, m.Text, canned, m.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &m, nil
}

// ListMessages returns a task's transcript, oldest first.
func (s *Store) ListMessages(taskID string) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, role, body, canned, created_at FROM chat_messages
		WHERE task_id = ? ORDER BY created_at, rowid`, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var canned int
		var createdAt string
		if err := rows.Scan(&m.ID, &m.TaskID, &m.Role, &m.Text, &canned, &createdAt); err != nil {
			return nil, err
		}
		m.Canned = canned == 1
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ClearMessages deletes a task's transcript.
func (s *Store) ClearMessages(taskID string) error {
	_, err := s.db.Exec(`DELETE FROM chat_messages WHERE task_id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}
