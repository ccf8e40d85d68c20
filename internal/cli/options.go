package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sadopc/campustasks/internal/task"
)

type filterOptions struct {
	Categories   []string `json:"categories"`
	Difficulties []string `json:"difficulties"`
	Statuses     []string `json:"statuses"`
	Courses      []string `json:"courses"`
	Ranges       []string `json:"ranges"`
}

func optionsOf(tasks []task.Task) filterOptions {
	opts := filterOptions{
		Categories:   task.UniqueValues(tasks, task.FieldCategory),
		Difficulties: task.UniqueValues(tasks, task.FieldDifficulty),
		Statuses:     task.UniqueValues(tasks, task.FieldStatus),
		Courses:      task.Courses(tasks),
	}
	for _, r := range task.Ranges() {
		opts.Ranges = append(opts.Ranges, string(r))
	}
	return opts
}

func (a *app) newOptionsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the values each filter accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			opts := optionsOf(res.Tasks)
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(opts)
			}

			label := lipgloss.NewStyle().Bold(true).Width(14)
			for _, row := range []struct {
				name   string
				values []string
			}{
				{"category", opts.Categories},
				{"difficulty", opts.Difficulties},
				{"status", opts.Statuses},
				{"course", opts.Courses},
				{"range", opts.Ranges},
			} {
				values := strings.Join(row.values, ", ")
				if values == "" {
					values = "-"
				}
				fmt.Fprintf(a.out, "%s%s\n", label.Render(row.name), values)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
