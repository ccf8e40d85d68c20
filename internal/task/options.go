package task

import (
	"fmt"
	"slices"
)

// Field names a single enumerated attribute of a task.
type Field string

const (
	FieldCategory   Field = "category"
	FieldDifficulty Field = "difficulty"
	FieldStatus     Field = "status"
)

// UniqueValues returns the distinct non-empty values of field across tasks,
// sorted ascending.
func UniqueValues(tasks []Task, field Field) []string {
	seen := make(map[string]bool)
	var values []string
	for _, t := range tasks {
		var v string
		switch field {
		case FieldCategory:
			v = string(t.Category)
		case FieldDifficulty:
			v = string(t.Difficulty)
		case FieldStatus:
			v = string(t.Status)
		}
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	slices.Sort(values)
	return values
}

// Courses returns the distinct non-empty course names, sorted ascending.
func Courses(tasks []Task) []string {
	seen := make(map[string]bool)
	var courses []string
	for _, t := range tasks {
		c := t.CourseName()
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		courses = append(courses, c)
	}
	slices.Sort(courses)
	return courses
}

// ParseCategories converts raw names, rejecting unknown ones.
func ParseCategories(names []string) ([]Category, error) {
	out := make([]Category, 0, len(names))
	for _, n := range names {
		c := Category(n)
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category %q", n)
		}
		out = append(out, c)
	}
	return out, nil
}

func ParseDifficulties(names []string) ([]Difficulty, error) {
	out := make([]Difficulty, 0, len(names))
	for _, n := range names {
		d := Difficulty(n)
		if !d.Valid() {
			return nil, fmt.Errorf("unknown difficulty %q", n)
		}
		out = append(out, d)
	}
	return out, nil
}

func ParseStatuses(names []string) ([]Status, error) {
	out := make([]Status, 0, len(names))
	for _, n := range names {
		s := Status(n)
		if !s.Valid() {
			return nil, fmt.Errorf("unknown status %q", n)
		}
		out = append(out, s)
	}
	return out, nil
}
