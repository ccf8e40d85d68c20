package cli

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sadopc/campustasks/internal/seed"
	"github.com/sadopc/campustasks/internal/source"
	"github.com/sadopc/campustasks/internal/store"
)

// openStore opens the local catalog and makes sure it has tasks in it. A
// configured seed file replaces the catalog; otherwise the built-in demo set
// is written on first use.
func (a *app) openStore(seedFile string) (*store.Store, error) {
	st, err := store.New(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if seedFile != "" {
		tasks, err := seed.LoadFile(seedFile)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("load seed file: %w", err)
		}
		if err := st.ReplaceTasks(tasks); err != nil {
			st.Close()
			return nil, err
		}
		a.log.Info("loaded seed file", zap.String("path", seedFile), zap.Int("tasks", len(tasks)))
		return st, nil
	}

	seeded, err := st.EnsureSeeded(seed.Builtin())
	if err != nil {
		st.Close()
		return nil, err
	}
	if seeded {
		a.log.Info("seeded built-in demo tasks")
	}
	return st, nil
}

// newClient returns nil when no backend is configured. The api.base_url
// config key wins over the api_url setting saved from the browser.
func (a *app) newClient(st *store.Store) (*source.Client, error) {
	base := a.cfg.API.BaseURL
	if base == "" {
		if v, err := st.GetSetting("api_url"); err == nil {
			base = v
		}
	}
	client, err := source.NewClient(source.ClientConfig{
		BaseURL:         base,
		Timeout:         a.cfg.API.Timeout,
		BreakerFailures: a.cfg.API.BreakerFailures,
		BreakerCooldown: a.cfg.API.BreakerCooldown,
		Logger:          a.log,
	})
	if errors.Is(err, source.ErrNoBackend) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}
