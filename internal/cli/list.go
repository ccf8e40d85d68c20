package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/campustasks/internal/export"
	"github.com/sadopc/campustasks/internal/source"
	"github.com/sadopc/campustasks/internal/task"
)

func (a *app) newListCmd() *cobra.Command {
	var (
		f      filterFlags
		asJSON bool
		limit  int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print tasks matching the filters",
		Long: `Print tasks matching every given filter. Multi-valued filters match any
of their values; empty filters do not constrain.

Examples:
  campustasks list --category academic,social
  campustasks list --difficulty easy --status available
  campustasks list --search 图书馆
  campustasks list --range this-week
  campustasks list --from 2025-09-01 --to 2025-09-30 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.loadFiltered(cmd.Context(), f)
			if err != nil {
				return err
			}
			if limit > 0 && limit < len(tasks) {
				tasks = tasks[:limit]
			}
			if asJSON {
				return export.WriteJSON(a.out, tasks)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(a.out, "No tasks found.")
				return nil
			}
			fmt.Fprintln(a.out, renderTable(tasks))
			fmt.Fprintf(a.out, "%d tasks\n", len(tasks))
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most n tasks")
	return cmd
}

// loadFiltered reads the catalog (live when a backend answers) and applies f.
// The fallback reason is reported on stderr so stdout stays machine-readable.
func (a *app) loadFiltered(ctx context.Context, f filterFlags) ([]task.Task, error) {
	now := time.Now()
	c, err := f.criteria(now.Location())
	if err != nil {
		return nil, err
	}

	res, err := a.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	matched := task.Filter(res.Tasks, c, now)
	a.log.Debug("filtered tasks", zap.Int("total", len(res.Tasks)), zap.Int("matched", len(matched)))
	return matched, nil
}

func (a *app) loadCatalog(ctx context.Context) (source.Result, error) {
	st, err := a.openStore(a.cfg.SeedFile)
	if err != nil {
		return source.Result{}, err
	}
	defer st.Close()

	client, err := a.newClient(st)
	if err != nil {
		return source.Result{}, err
	}
	res, err := source.NewCatalog(client, st, a.log).Load(ctx)
	if err != nil {
		return res, err
	}
	if !res.Live() && client != nil {
		fmt.Fprintf(a.err, "backend unavailable, showing local tasks: %v\n", res.Reason)
	}
	return res, nil
}

func renderTable(tasks []task.Task) string {
	rows := make([][]string, 0, len(tasks))
	for i, t := range tasks {
		due := ""
		if t.DueAt != nil {
			due = t.DueAt.Local().Format(time.DateOnly)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.ID,
			t.Title,
			string(t.Category),
			string(t.Difficulty),
			string(t.Status),
			t.Location.Name,
			t.CourseName(),
			due,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "ID", "TITLE", "CATEGORY", "DIFFICULTY", "STATUS", "LOCATION", "COURSE", "DUE").
		Rows(rows...).
		String()
}
