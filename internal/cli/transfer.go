package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/engine"
	"github.com/tartampluch/go-register/internal/publish"
	"github.com/zalando/go-keyring"
)

func (a *App) newImportCmd() *cobra.Command {
	var url, user string

	cmd := &cobra.Command{
		Use:   "import [FILE.vcf]",
		Short: "Add members from a vCard file or a CardDAV/WebDAV address book",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := engine.Source{
				WebURL:  firstNonEmpty(url, a.settings.Import.URL),
				WebUser: firstNonEmpty(user, a.settings.Import.User),
			}
			if len(args) == 1 {
				if cmd.Flags().Changed(config.FlagURL) {
					return errors.New(config.ErrImportArgs)
				}
				src = engine.Source{LocalPath: args[0]}
			}
			if src.LocalPath == "" && src.WebURL == "" {
				return errors.New(config.ErrImportArgs)
			}
			if src.WebUser != "" {
				src.WebPass = a.lookupPassword(src.WebUser)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}

			imp := &engine.Importer{Fetcher: a.fetcher}
			candidates, stats, err := imp.Import(cmd.Context(), src)
			if err != nil {
				return err
			}
			added, err := store.AddAll(candidates)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), a.tr.T(config.TKeyImportDone, map[string]any{
				"Count":   len(added),
				"Skipped": stats.Skipped,
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&url, config.FlagURL, "", config.FlagDescURL)
	cmd.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)
	return cmd
}

// lookupPassword reads the remote password from the keyring. A missing entry means anonymous access.
func (a *App) lookupPassword(user string) string {
	pass, err := keyring.Get(config.KeyringService, user)
	if err != nil {
		slog.Debug(config.MsgPassFail,
			config.LogKeyComponent, config.CompCLI,
			config.LogKeyUser, user,
			config.LogKeyError, err)
		return ""
	}
	return pass
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (a *App) newExportCmd() *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the register as JSON, vCards or an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			members := store.List()

			var render func(io.Writer) error
			switch format {
			case config.ExportJSON:
				render = func(w io.Writer) error {
					data, err := publish.NewSnapshot(members, a.clock.Now()).Encode()
					if err != nil {
						return err
					}
					_, err = w.Write(data)
					return err
				}
			case config.ExportVCF:
				render = func(w io.Writer) error { return engine.EncodeMembers(w, members) }
			case config.ExportICS:
				render = func(w io.Writer) error {
					ics, _, err := a.generator().Calendar(members)
					if err != nil {
						return err
					}
					_, err = w.Write(ics)
					return err
				}
			default:
				return fmt.Errorf("%s: %q", config.ErrExportFormat, format)
			}

			if out == "" {
				return render(cmd.OutOrStdout())
			}

			f, err := os.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, config.FilePermUserRW)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := f.Close(); err == nil {
					err = cerr
				}
			}()
			if err := render(f); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), a.tr.T(config.TKeyExportDone, map[string]any{"File": out}))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, config.FlagFormat, config.ExportJSON, config.FlagDescFormat)
	cmd.Flags().StringVar(&out, config.FlagOut, "", config.FlagDescOut)
	return cmd
}

// generator builds the calendar generator from settings.
func (a *App) generator() *engine.Generator {
	return &engine.Generator{
		Clock:           a.clock,
		ReminderTrigger: a.settings.Reminder,
		FormatSummary:   a.tr.SummaryFormatter(),
	}
}
