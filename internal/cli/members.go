package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/register"
)

func (a *App) newAddCmd() *cobra.Command {
	var c register.Candidate
	var birthday string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := register.ParseBirthday(birthday)
			if err != nil {
				return err
			}
			c.Birthday = b

			// Validate before copying a photo we might have to throw away.
			if err := c.Validate(); err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}

			if c.Photo != "" {
				ref, err := a.photos.Import(c.Photo)
				if err != nil {
					return err
				}
				c.Photo = ref
			}

			m, err := store.Add(c)
			if err != nil {
				if c.Photo != "" {
					_ = a.photos.Remove(c.Photo)
				}
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), a.tr.T(config.TKeyMemberAdded, map[string]any{"ID": m.ID}))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&c.Name, config.FlagName, "", config.FlagDescName)
	f.StringVar(&c.Phone, config.FlagPhone, "", config.FlagDescPhone)
	f.StringVar(&c.Email, config.FlagEmail, "", config.FlagDescEmail)
	f.StringVar(&c.Address, config.FlagAddress, "", config.FlagDescAddress)
	f.StringVar(&birthday, config.FlagBirthday, "", config.FlagDescBirthday)
	f.StringVar(&c.Photo, config.FlagPhoto, "", config.FlagDescPhoto)
	_ = cmd.MarkFlagRequired(config.FlagName)
	return cmd
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, &register.ValidationError{Field: "id", Reason: config.ErrInvalidID}
	}
	return id, nil
}

func (a *App) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			m, err := store.Get(id)
			if err != nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), a.tr.T(config.TKeyMemberNotFound, nil))
				return err
			}
			a.printMember(cmd.OutOrStdout(), m)
			return nil
		},
	}
}

func (a *App) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all members in registration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			a.printMembers(cmd, config.TKeyAllMembers, store.List())
			return nil
		},
	}
}

func (a *App) newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Find members by name or phone",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			found := slices.Collect(store.Search(strings.TrimSpace(strings.Join(args, " "))))
			a.printMembers(cmd, config.TKeySearchResults, found)
			return nil
		},
	}
}

func (a *App) printMembers(cmd *cobra.Command, titleKey string, members []register.Member) {
	out := cmd.OutOrStdout()
	if len(members) == 0 {
		_, _ = fmt.Fprintln(out, a.tr.T(config.TKeyNoMembers, nil))
		return
	}
	header(out, a.tr.T(titleKey, map[string]any{"Count": len(members)}))
	for _, m := range members {
		a.printMember(out, m)
	}
}

func (a *App) newRemoveCmd() *cobra.Command {
	var name string
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove [ID]",
		Short: "Delete a member by id, or by exact name with --name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasName := cmd.Flags().Changed(config.FlagName)
			if (len(args) == 1) == hasName {
				return errors.New(config.ErrRemoveArgs)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var id int
			if hasName {
				candidates := store.FindByName(name)
				if len(candidates) == 0 {
					_, _ = fmt.Fprintln(out, a.tr.T(config.TKeyMemberNotFound, nil))
					return errors.New(config.ErrNoMatchingName)
				}
				a.printCandidates(out, name, candidates)
				if len(candidates) > 1 {
					return errors.New(config.ErrAmbiguousName)
				}
				if !yes {
					return errors.New(config.ErrConfirmRequired)
				}
				id = candidates[0].ID
			} else if id, err = parseID(args[0]); err != nil {
				return err
			}

			m, found := store.FindByID(id)
			removed, err := store.Remove(id)
			if err != nil {
				return err
			}
			if !found || !removed {
				_, _ = fmt.Fprintln(out, a.tr.T(config.TKeyMemberNotFound, nil))
				return &register.NotFoundError{ID: id}
			}

			if m.Photo != "" {
				if err := a.photos.Remove(m.Photo); err != nil {
					slog.Warn(config.MsgMemberPhotoGone,
						config.LogKeyComponent, config.CompCLI,
						config.LogKeyID, id,
						config.LogKeyError, err)
				}
			}

			_, _ = fmt.Fprintln(out, a.tr.T(config.TKeyMemberRemoved, map[string]any{"ID": id}))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, config.FlagName, "", config.FlagDescByName)
	cmd.Flags().BoolVar(&yes, config.FlagYes, false, config.FlagDescYes)
	return cmd
}
