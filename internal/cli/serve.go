package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/publish"
	"github.com/tartampluch/go-register/internal/register"
	"github.com/tartampluch/go-register/internal/server"
)

func (a *App) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the birthday calendar and the portal snapshot on localhost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			srv := server.NewFeedServer(a.settings.ServerPort)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			refresh := func() error { return a.refreshFeeds(store, srv) }
			// A failed first render leaves the feeds at 503 until the next tick.
			if err := refresh(); err != nil {
				slog.Error(config.MsgRefreshFailed, config.LogKeyComponent, config.CompWorker, config.LogKeyError, err)
			}
			go backgroundWorker(ctx, a.refreshInterval(), refresh)

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), a.tr.T(config.TKeyServeListening, map[string]any{"Port": a.settings.ServerPort}))
			return srv.Start(ctx)
		},
	}
}

func (a *App) refreshInterval() time.Duration {
	minutes := a.settings.RefreshMin
	if minutes <= 0 {
		minutes = config.DefaultRefreshMin
	}
	return time.Duration(minutes) * time.Minute
}

// refreshFeeds rereads the member file, since other invocations may have
// changed it, then re-renders both feeds.
func (a *App) refreshFeeds(store *register.Store, srv *server.FeedServer) error {
	if err := store.Load(); err != nil {
		return err
	}
	members := store.List()

	ics, _, err := a.generator().Calendar(members)
	if err != nil {
		return err
	}
	snapshot, err := publish.NewSnapshot(members, a.clock.Now()).Encode()
	if err != nil {
		return err
	}

	srv.UpdateCalendar(ics)
	srv.UpdateSnapshot(snapshot)
	return nil
}

// backgroundWorker calls refresh on every tick until ctx is done.
func backgroundWorker(ctx context.Context, interval time.Duration, refresh func() error) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-ticker.C:
			if err := refresh(); err != nil {
				log.Error(config.MsgRefreshFailed, config.LogKeyError, err)
			}
		}
	}
}
