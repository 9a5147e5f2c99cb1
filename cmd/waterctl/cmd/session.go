package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-waterres-client/auth"
	"github.com/jrsteele09/go-waterres-client/token/jwt"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newLoginCmd(opts *options) *cobra.Command {
	var creds auth.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: `Log in with a username and password. With --remember the credentials are
sealed into storage (requires security.credentials_passphrase) and used when
login is run again without them.`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if creds.Username == "" || creds.Password == "" {
				remembered, err := a.session.RememberedCredentials(ctx)
				if err != nil {
					log.Debug().Err(err).Msg("No remembered credentials")
				}
				if remembered != nil && (creds.Username == "" || creds.Username == remembered.Username) {
					creds = *remembered
				}
			}
			if creds.Username == "" || creds.Password == "" {
				return errors.New("username and password are required")
			}

			resp, err := a.session.Login(ctx, creds)
			if err != nil {
				return err
			}

			name := a.session.User().DisplayName()
			if resp.RoleName != "" {
				name = fmt.Sprintf("%s (%s)", name, resp.RoleName)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", name)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "account password")
	cmd.Flags().BoolVar(&creds.Remember, "remember", false, "remember the credentials for the next login")
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored tokens",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			a.session.Initialize(ctx)
			a.session.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

type whoami struct {
	*auth.UserInfo
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user and their grants",
		Args:  cobra.NoArgs,
		RunE: withLogin(opts, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			user := a.session.User()
			if user == nil {
				user = &auth.UserInfo{}
			}
			grants := a.session.Grants()
			out := whoami{
				UserInfo:    user,
				Roles:       grants.Roles.Sorted(),
				Permissions: grants.Permissions.Sorted(),
			}
			return render(cmd.OutOrStdout(), opts, out, []string{"FIELD", "VALUE"}, func(add func(...any)) {
				add("username", out.Username)
				add("name", out.DisplayName())
				add("email", out.Email)
				add("roles", strings.Join(out.Roles, ", "))
				add("permissions", strings.Join(out.Permissions, ", "))
			})
		}),
	}
}

type tokenStatus struct {
	ExpiresAt        time.Time `json:"expiresAt"`
	RemainingSeconds int64     `json:"remainingSeconds"`
	Expired          bool      `json:"expired"`
	ExpiringSoon     bool      `json:"expiringSoon"`
	Refreshed        bool      `json:"refreshed"`
}

func newTokenCmd(opts *options) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Show how long the access token has left",
		Args:  cobra.NoArgs,
		RunE: withLogin(opts, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if refresh {
				if _, err := a.client.RefreshNow(ctx); err != nil {
					return err
				}
			}

			token := a.session.AccessToken()
			threshold := int64(a.cfg.GetExpiryThreshold() / time.Second)
			status := tokenStatus{
				RemainingSeconds: jwt.RemainingSeconds(token),
				Expired:          jwt.IsExpired(token),
				ExpiringSoon:     jwt.IsExpiringSoon(token, threshold),
				Refreshed:        refresh,
			}
			status.ExpiresAt, _ = jwt.ExpiresAt(token)

			return render(cmd.OutOrStdout(), opts, status, []string{"EXPIRES", "REMAINING", "EXPIRING SOON"}, func(add func(...any)) {
				add(status.ExpiresAt.Local().Format(time.DateTime), (time.Duration(status.RemainingSeconds) * time.Second).String(), status.ExpiringSoon)
			})
		}),
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "exchange the refresh token for a new access token first")
	return cmd
}
