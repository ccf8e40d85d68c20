// Package cli wires configuration, storage and the task sources into the
// campustasks commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/campustasks/internal/config"
	"github.com/sadopc/campustasks/internal/logging"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// logToFile marks commands that own the terminal and must not log to it.
const logToFile = "log-to-file"

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// app is the state shared by every command once the root pre-run has loaded
// configuration and built the logger.
type app struct {
	configPath string
	verbose    bool

	cfg *config.Config
	log *zap.Logger

	out io.Writer
	err io.Writer
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{out: os.Stdout, err: os.Stderr}

	root := &cobra.Command{
		Use:   "campustasks",
		Short: "Browse and filter campus tasks",
		Long: `campustasks browses the campus task catalog: filter by category,
difficulty, status, course, keyword and time range, look tasks up on a map,
and ask the task assistant about them.

Run without arguments to start the interactive browser.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{logToFile: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBrowse(cmd.Context())
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.err)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		a.newBrowseCmd(),
		a.newServeCmd(),
		a.newListCmd(),
		a.newOptionsCmd(),
		a.newExportCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	a.err = cmd.ErrOrStderr()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	opts := logging.Options{Level: cfg.LogLevel, Development: cfg.IsDevelopment()}
	if a.verbose {
		opts.Level = "debug"
	}
	if cmd.Annotations[logToFile] == "true" {
		opts.File = cfg.LogFile
		if opts.File == "" {
			if opts.File, err = logging.DefaultFile(); err != nil {
				return fmt.Errorf("resolve log file: %w", err)
			}
		}
	}
	if a.log, err = logging.New(opts); err != nil {
		return err
	}

	info := commandContext{correlationID: uuid.New(), startedAt: time.Now()}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
	a.log = a.log.With(zap.String("correlation_id", info.correlationID.String()))
	a.log.Info("command start", zap.String("command", cmd.CommandPath()))
	return nil
}

func (a *app) teardown(cmd *cobra.Command) {
	if a.log == nil {
		return
	}
	if info, ok := cmd.Context().Value(commandContextKey{}).(commandContext); ok {
		a.log.Info("command end",
			zap.String("command", cmd.CommandPath()),
			zap.Int64("duration_ms", time.Since(info.startedAt).Milliseconds()),
		)
	}
	_ = a.log.Sync()
}
