package store

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type Setting struct {
	Key   string
	Value string
}

// Message is one line of an assistant conversation about a task.
type Message struct {
	ID        string
	TaskID    string
	Role      string // user, assistant
	Text      string
	Canned    bool
	CreatedAt time.Time
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
