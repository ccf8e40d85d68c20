package task

import (
	"encoding/json"
	"strings"
	"time"
)

// wireTask is the JSON shape shared by the task API and seed files. The
// snake_case date keys are accepted as aliases on input.
type wireTask struct {
	ID            string       `json:"task_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Category      Category     `json:"category"`
	Difficulty    Difficulty   `json:"difficulty"`
	Status        Status       `json:"status"`
	Location      wireLocation `json:"location"`
	Rewards       []string     `json:"rewards,omitempty"`
	EstimatedTime *int         `json:"estimatedTime,omitempty"`
	Course        *string      `json:"course,omitempty"`
	DueDate       *string      `json:"dueDate,omitempty"`
	CreatedAt     *string      `json:"createdAt,omitempty"`
	CreatedAlias  *string      `json:"created_at,omitempty"`
	DueAlias      *string      `json:"due_date,omitempty"`
}

type wireLocation struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	w := wireTask{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Category:      t.Category,
		Difficulty:    t.Difficulty,
		Status:        t.Status,
		Location:      wireLocation{Lat: t.Location.Lat, Lng: t.Location.Lng, Name: t.Location.Name},
		Rewards:       t.Rewards,
		EstimatedTime: t.EstimatedMinutes,
		Course:        t.Course,
		DueDate:       formatTime(t.DueAt),
		CreatedAt:     formatTime(t.CreatedAt),
	}
	return json.Marshal(w)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var w wireTask
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Task{
		ID:               w.ID,
		Title:            w.Title,
		Description:      w.Description,
		Category:         w.Category,
		Difficulty:       w.Difficulty,
		Status:           w.Status,
		Location:         Location{Lat: w.Location.Lat, Lng: w.Location.Lng, Name: w.Location.Name},
		Rewards:          w.Rewards,
		EstimatedMinutes: w.EstimatedTime,
		CreatedAt:        parseTime(firstSet(w.CreatedAt, w.CreatedAlias)),
		DueAt:            parseTime(firstSet(w.DueDate, w.DueAlias)),
	}
	if w.Course != nil && strings.TrimSpace(*w.Course) != "" {
		t.Course = w.Course
	}
	return nil
}

func firstSet(vals ...*string) *string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 and the looser date forms found in seed files.
// Local forms without a zone are read as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// An unparseable date is treated as absent rather than rejected.
func parseTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, ok := ParseTime(*s)
	if !ok {
		return nil
	}
	return &t
}
