package cli

import (
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/campustasks/internal/task"
)

// filterFlags are the filter options shared by list and export. They map onto
// the same query parameters the HTTP API accepts.
type filterFlags struct {
	categories   []string
	difficulties []string
	statuses     []string
	courses      []string
	search       string
	rng          string
	from         string
	to           string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVar(&f.categories, "category", nil, "academic, social, campus (repeatable or comma-separated)")
	fs.StringSliceVar(&f.difficulties, "difficulty", nil, "easy, medium, hard")
	fs.StringSliceVar(&f.statuses, "status", nil, "available, in_progress, completed")
	fs.StringSliceVar(&f.courses, "course", nil, "course name; tasks without a course always match")
	fs.StringVarP(&f.search, "search", "s", "", "keyword in title, description, location or course")
	fs.StringVar(&f.rng, "range", "", "time range, e.g. today, this-week, due-soon, overdue")
	fs.StringVar(&f.from, "from", "", "custom range start (YYYY-MM-DD)")
	fs.StringVar(&f.to, "to", "", "custom range end (YYYY-MM-DD)")
}

func (f filterFlags) query() url.Values {
	q := url.Values{}
	set := func(k string, vals []string) {
		if len(vals) > 0 {
			q[k] = vals
		}
	}
	set("category", f.categories)
	set("difficulty", f.difficulties)
	set("status", f.statuses)
	set("course", f.courses)
	for k, v := range map[string]string{"search": f.search, "range": f.rng, "from": f.from, "to": f.to} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (f filterFlags) criteria(loc *time.Location) (task.Criteria, error) {
	return task.ParseQuery(f.query(), loc)
}
