package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

func (a *App) newCredentialsCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the remote address book password in the system keyring",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Store the password for --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := firstNonEmpty(user, a.settings.Import.User)
			if u == "" {
				return errors.New(config.ErrUserRequired)
			}
			pass, err := a.readPassword(a.tr.T(config.TKeyPasswordPrompt, nil))
			if err != nil {
				return err
			}
			if err := keyring.Set(config.KeyringService, u, pass); err != nil {
				return fmt.Errorf("%s: %w", config.ErrKeyring, err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), a.tr.T(config.TKeyCredSaved, nil))
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete",
		Short: "Forget the password for --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := firstNonEmpty(user, a.settings.Import.User)
			if u == "" {
				return errors.New(config.ErrUserRequired)
			}
			if err := keyring.Delete(config.KeyringService, u); err != nil && !errors.Is(err, keyring.ErrNotFound) {
				return fmt.Errorf("%s: %w", config.ErrKeyring, err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), a.tr.T(config.TKeyCredDeleted, nil))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)
	cmd.AddCommand(set, del)
	return cmd
}

// terminalPassword prompts on stderr and reads without echo.
func terminalPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New(config.ErrNotTerminal)
	}
	_, _ = fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrPasswordRead, err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
