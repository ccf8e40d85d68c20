package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/campustasks/internal/source"
	"github.com/sadopc/campustasks/internal/tui"
)

func (a *app) newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "browse",
		Short:       "Open the interactive task browser",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{logToFile: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBrowse(cmd.Context())
		},
	}
}

func (a *app) runBrowse(ctx context.Context) error {
	st, err := a.openStore(a.cfg.SeedFile)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := a.newClient(st)
	if err != nil {
		return err
	}

	app := tui.NewApp(tui.Options{
		Store:    st,
		Catalog:  source.NewCatalog(client, st, a.log),
		Advisor:  source.NewAdvisor(client, a.log),
		Logger:   a.log,
		Theme:    a.cfg.UI.Theme,
		Debounce: a.cfg.UI.Debounce,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
