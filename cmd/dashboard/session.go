package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jrsteele09/go-adcampaign-dashboard/apiclient"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions/store"
	"github.com/jrsteele09/go-adcampaign-dashboard/token"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newSessionCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or clear the persisted session",
	}
	cmd.AddCommand(newSessionShowCmd(root))
	cmd.AddCommand(newSessionClearCmd(root))
	return cmd
}

func newSessionShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show who is signed in and when the access token expires",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeStore, err := openStore(root.cfg, false)
			if err != nil {
				return err
			}
			defer closeStore()

			s, err := readSession(cmd.Context(), repo)
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

// readSession loads the persisted session without hydrating a State, so an
// unreadable profile is reported rather than removed from the store.
func readSession(ctx context.Context, repo store.Repo) (sessions.Session, error) {
	accessToken, err := repo.Get(ctx, store.KeyAccessToken)
	switch {
	case errors.Is(err, errors.ErrKeyNotFound):
		return sessions.Session{}, nil
	case err != nil:
		return sessions.Session{}, fmt.Errorf("read access token: %w", err)
	}

	s := sessions.Session{AccessToken: accessToken, IsAuthenticated: true}
	rawUser, err := repo.Get(ctx, store.KeyUser)
	switch {
	case errors.Is(err, errors.ErrKeyNotFound):
	case err != nil:
		return s, fmt.Errorf("read user: %w", err)
	default:
		if s.User, err = sessions.DecodeUser(rawUser); err != nil {
			log.Warn().Err(err).Msg("Stored user record is unreadable")
		}
	}
	return s, nil
}

func newSessionClearCmd(root *rootOptions) *cobra.Command {
	var notify bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Sign out by removing the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeStore, err := openStore(root.cfg, false)
			if err != nil {
				return err
			}
			defer closeStore()

			var opts []sessions.Option
			var client *apiclient.Client
			if notify {
				opts = append(opts, sessions.WithLogoutNotifier(sessions.NotifierFunc(func(ctx context.Context) error {
					return client.NotifyLogout(ctx)
				})))
			}
			state := sessions.New(repo, opts...)
			if notify {
				client = apiclient.New(root.cfg.GetAPIBaseURL(), state, apiclient.WithTimeout(root.cfg.GetAPITimeout()))
			}

			state.Hydrate(cmd.Context())
			state.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Session cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&notify, "notify", false, "tell the API about the logout first")
	return cmd
}

func printSession(out io.Writer, s sessions.Session) {
	if !s.IsAuthenticated {
		fmt.Fprintln(out, "Signed out")
		return
	}

	fmt.Fprintln(out, "Signed in")
	if s.HasUser() {
		fmt.Fprintf(out, "  user:    %s <%s> (id %s)\n", s.User.Name, s.User.Email, s.User.ID)
	} else {
		fmt.Fprintln(out, "  user:    unknown")
	}

	remaining, ok := token.Remaining(s.AccessToken)
	switch {
	case !ok:
		fmt.Fprintln(out, "  expires: unknown (opaque token)")
	case remaining <= 0:
		fmt.Fprintf(out, "  expires: expired %s ago\n", (-remaining).Round(time.Second))
	default:
		fmt.Fprintf(out, "  expires: in %s\n", remaining.Round(time.Second))
	}
}
