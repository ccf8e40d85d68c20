package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/campustasks/internal/export"
	"github.com/sadopc/campustasks/internal/task"
)

func (a *app) newExportCmd() *cobra.Command {
	var (
		f      filterFlags
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write filtered tasks as CSV or JSON",
		Long: `Write the tasks matching the filters as CSV or JSON. CSV uses the same
columns the seed loader reads, so an export can be fed back with --seed-file.

Examples:
  campustasks export --format csv --out tasks.csv
  campustasks export --category academic --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			var write func(io.Writer, []task.Task) error
			switch format {
			case "csv":
				write = export.WriteCSV
			case "json":
				write = export.WriteJSON
			default:
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}

			tasks, err := a.loadFiltered(cmd.Context(), f)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return write(a.out, tasks)
			}
			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer file.Close()
			if err := write(file, tasks); err != nil {
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			a.log.Info("exported tasks", zap.String("path", out), zap.String("format", format), zap.Int("count", len(tasks)))
			fmt.Fprintf(a.err, "Exported %d tasks to %s\n", len(tasks), out)
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}
