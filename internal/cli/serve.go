package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sadopc/campustasks/internal/seed"
	"github.com/sadopc/campustasks/internal/server"
	"github.com/sadopc/campustasks/internal/task"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	var (
		addr     string
		seedFile string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task catalog over HTTP",
		Long: `Serve the local task catalog with the same endpoints the browser uses as
its backend: GET /tasks, GET /tasks/options, GET /tasks/{id},
POST /npc/{id}/chat, GET /api/stats and GET /healthz.

With --seed-file (or seed_file in the config) the catalog is loaded from a
CSV or JSON file and reloaded whenever that file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			if seedFile == "" {
				seedFile = a.cfg.SeedFile
			}
			return a.runServe(cmd.Context(), addr, seedFile)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&seedFile, "seed-file", "", "load and watch tasks from a CSV or JSON file")
	return cmd
}

func (a *app) runServe(ctx context.Context, addr, seedFile string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := a.openStore(seedFile)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(server.Config{
		Addr:         addr,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  server.DefaultConfig().IdleTimeout,
		Version:      Version,
	}, st, a.log)

	if seedFile != "" {
		w, err := seed.NewWatcher(seedFile, func(tasks []task.Task) {
			if err := st.ReplaceTasks(tasks); err != nil {
				a.log.Error("replace tasks", zap.Error(err))
				return
			}
			a.log.Info("reloaded seed file", zap.Int("tasks", len(tasks)))
		}, a.log)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			w.Stop()
			return err
		}
		defer w.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
