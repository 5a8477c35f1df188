package cli

import (
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/engine"
)

func (a *App) newBirthdaysCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "birthdays",
		Short: "Show birthdays in the next 30 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref := a.clock.Now()
			if date != "" {
				t, err := parseDateFlag(date, time.Local)
				if err != nil {
					return err
				}
				ref = t
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			a.printReminders(cmd.OutOrStdout(), slices.Collect(engine.Upcoming(store.List(), ref)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, config.FlagDate, "", config.FlagDescDate)
	return cmd
}
