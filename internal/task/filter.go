package task

import (
	"slices"
	"strings"
	"time"
)

// TimeRange names a window used to constrain tasks by creation or due date.
type TimeRange string

const (
	RangeAll        TimeRange = "all"
	RangeToday      TimeRange = "today"
	RangeTomorrow   TimeRange = "tomorrow"
	RangeThisWeek   TimeRange = "this-week"
	RangeNextWeek   TimeRange = "next-week"
	RangeThisMonth  TimeRange = "this-month"
	RangeNextMonth  TimeRange = "next-month"
	RangeLast7Days  TimeRange = "last-7-days"
	RangeLast30Days TimeRange = "last-30-days"
	RangeDueSoon    TimeRange = "due-soon"
	RangeOverdue    TimeRange = "overdue"
	RangeCustom     TimeRange = "custom"
)

var ranges = []TimeRange{
	RangeAll, RangeToday, RangeTomorrow, RangeThisWeek, RangeNextWeek,
	RangeThisMonth, RangeNextMonth, RangeLast7Days, RangeLast30Days,
	RangeDueSoon, RangeOverdue, RangeCustom,
}

// Ranges lists every bucket in display order.
func Ranges() []TimeRange {
	return slices.Clone(ranges)
}

func (r TimeRange) Valid() bool {
	return slices.Contains(ranges, r)
}

// ParseRange maps a bucket name to a TimeRange. The empty string is RangeAll.
func ParseRange(s string) (TimeRange, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RangeAll, true
	}
	r := TimeRange(s)
	return r, r.Valid()
}

// DateRange is an inclusive pair of calendar days. Filter accepts the bounds
// in either order.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Criteria is the set of active filter constraints. Empty sets and an empty
// search string do not constrain.
type Criteria struct {
	Categories   []Category
	Difficulties []Difficulty
	Statuses     []Status
	Courses      []string
	Search       string
	Range        TimeRange
	Custom       *DateRange
}

// IsZero reports whether no predicate is active.
func (c Criteria) IsZero() bool {
	return len(c.Categories) == 0 &&
		len(c.Difficulties) == 0 &&
		len(c.Statuses) == 0 &&
		len(c.Courses) == 0 &&
		strings.TrimSpace(c.Search) == "" &&
		(c.Range == "" || c.Range == RangeAll)
}

// Filter returns the tasks that satisfy every active predicate of c, in their
// original order. now anchors the relative time buckets.
func Filter(tasks []Task, c Criteria, now time.Time) []Task {
	// Surrounding whitespace is ignored, so "library " matches like "library".
	search := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if len(c.Categories) > 0 && !slices.Contains(c.Categories, t.Category) {
			continue
		}
		if len(c.Difficulties) > 0 && !slices.Contains(c.Difficulties, t.Difficulty) {
			continue
		}
		if len(c.Statuses) > 0 && !slices.Contains(c.Statuses, t.Status) {
			continue
		}
		// A task without a course is never hidden by the course filter.
		if len(c.Courses) > 0 && t.Course != nil && !slices.Contains(c.Courses, *t.Course) {
			continue
		}
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		if !inRange(t, c.Range, c.Custom, now) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Match reports whether a single task survives c.
func Match(t Task, c Criteria, now time.Time) bool {
	return len(Filter([]Task{t}, c, now)) == 1
}

func matchesSearch(t Task, needle string) bool {
	fields := []string{t.Title, t.Description, t.Location.Name}
	if t.Course != nil {
		fields = append(fields, *t.Course)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func inRange(t Task, r TimeRange, custom *DateRange, now time.Time) bool {
	if r == "" || r == RangeAll || t.CreatedAt == nil {
		return true
	}
	loc := now.Location()
	created := t.CreatedAt.In(loc)
	today := startOfDay(now)

	switch r {
	case RangeToday:
		return sameDay(created, now)
	case RangeTomorrow:
		return sameDay(created, now.AddDate(0, 0, 1))
	case RangeThisWeek:
		return sameWeek(created, now)
	case RangeNextWeek:
		return sameWeek(created, now.AddDate(0, 0, 7))
	case RangeThisMonth:
		return sameMonth(created, now)
	case RangeNextMonth:
		return sameMonth(created, addMonth(now))
	case RangeLast7Days:
		return created.After(now.AddDate(0, 0, -7)) && !created.After(now)
	case RangeLast30Days:
		return created.After(now.AddDate(0, 0, -30)) && !created.After(now)
	case RangeDueSoon:
		if t.DueAt == nil {
			return false
		}
		due := startOfDay(t.DueAt.In(loc))
		return !due.Before(today) && !due.After(today.AddDate(0, 0, 7))
	case RangeOverdue:
		if t.DueAt == nil {
			return false
		}
		return startOfDay(t.DueAt.In(loc)).Before(today)
	case RangeCustom:
		if custom == nil {
			return true
		}
		day := startOfDay(created)
		from := startOfDay(custom.From.In(loc))
		to := startOfDay(custom.To.In(loc))
		if from.After(to) {
			from, to = to, from
		}
		return !day.Before(from) && !day.After(to)
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return startOfDay(a).Equal(startOfDay(b.In(a.Location())))
}

// startOfWeek returns the Sunday that opens t's week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func sameWeek(a, b time.Time) bool {
	return startOfWeek(a).Equal(startOfWeek(b.In(a.Location())))
}

func sameMonth(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// addMonth moves to the same day next month, clamping to the month's last day
// so Jan 31 becomes Feb 28/29 rather than overflowing into March.
func addMonth(t time.Time) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(d, last)-1)
}
