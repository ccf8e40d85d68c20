package task

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ParseQuery reads filter parameters from a query string. Multi-valued
// parameters may be repeated or comma-separated. from/to are calendar days in
// loc and imply the custom range when no range is given.
func ParseQuery(q url.Values, loc *time.Location) (Criteria, error) {
	var c Criteria
	var err error

	if c.Categories, err = ParseCategories(multi(q, "category")); err != nil {
		return c, err
	}
	if c.Difficulties, err = ParseDifficulties(multi(q, "difficulty")); err != nil {
		return c, err
	}
	if c.Statuses, err = ParseStatuses(multi(q, "status")); err != nil {
		return c, err
	}
	c.Courses = multi(q, "course")
	c.Search = q.Get("search")

	r, ok := ParseRange(q.Get("range"))
	if !ok {
		return c, fmt.Errorf("unknown range %q", q.Get("range"))
	}
	c.Range = r

	from, to := q.Get("from"), q.Get("to")
	if from == "" && to == "" {
		return c, nil
	}
	if c.Range == RangeAll {
		c.Range = RangeCustom
	}
	if c.Range != RangeCustom {
		return c, fmt.Errorf("from/to only apply to the custom range")
	}
	dr, err := ParseDateRange(from, to, loc)
	if err != nil {
		return c, err
	}
	c.Custom = &dr
	return c, nil
}

// ParseDateRange parses YYYY-MM-DD bounds. A missing bound is open.
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	dr := DateRange{
		From: time.Date(1, 1, 1, 0, 0, 0, 0, loc),
		To:   time.Date(9999, 12, 31, 0, 0, 0, 0, loc),
	}
	if from != "" {
		t, err := time.ParseInLocation(time.DateOnly, from, loc)
		if err != nil {
			return dr, fmt.Errorf("from must be YYYY-MM-DD, got %q", from)
		}
		dr.From = t
	}
	if to != "" {
		t, err := time.ParseInLocation(time.DateOnly, to, loc)
		if err != nil {
			return dr, fmt.Errorf("to must be YYYY-MM-DD, got %q", to)
		}
		dr.To = t
	}
	if dr.From.After(dr.To) {
		return dr, errors.New("from must not be after to")
	}
	return dr, nil
}

func multi(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
