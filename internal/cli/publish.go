package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/publish"
)

func (a *App) newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Write the portal snapshot and push it online",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			// Resolve the publisher first so a bad setting fails before anything is written.
			p, err := a.newPublisher(cmd.Context(), a.settings.Publish)
			if err != nil {
				return err
			}

			path := a.settings.SnapshotFile
			if err := publish.WriteSnapshot(path, publish.NewSnapshot(store.List(), a.clock.Now())); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, a.tr.T(config.TKeySnapshotWritten, map[string]any{"File": path}))

			if p == nil {
				return nil
			}
			if err := p.Publish(cmd.Context(), path); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, a.tr.T(config.TKeyPublishDone, nil))
			return nil
		},
	}
}
