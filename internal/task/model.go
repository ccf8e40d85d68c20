// Package task holds the campus task model and the filter pipeline applied to it.
package task

import "time"

type Category string

const (
	CategoryAcademic Category = "academic"
	CategorySocial   Category = "social"
	CategoryCampus   Category = "campus"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Status string

const (
	StatusAvailable  Status = "available"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var (
	Categories   = []Category{CategoryAcademic, CategorySocial, CategoryCampus}
	Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
	Statuses     = []Status{StatusAvailable, StatusInProgress, StatusCompleted}
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAcademic, CategorySocial, CategoryCampus:
		return true
	}
	return false
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Location struct {
	Lat  float64
	Lng  float64
	Name string
}

// Task is a read-only campus activity. Optional fields are nil when the source
// did not provide them.
type Task struct {
	ID          string
	Title       string
	Description string
	Category    Category
	Difficulty  Difficulty
	Status      Status
	Location    Location

	Rewards          []string
	EstimatedMinutes *int
	Course           *string
	CreatedAt        *time.Time
	DueAt            *time.Time
}

// CourseName returns the course or "" when the task has none.
func (t Task) CourseName() string {
	if t.Course == nil {
		return ""
	}
	return *t.Course
}

// Ptr is a small helper for filling optional fields.
func Ptr[T any](v T) *T {
	return &v
}
