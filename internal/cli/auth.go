package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/munidon/bw-genius/internal/model"
)

func newLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with an access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if token == "" {
				token = cfg.Token
			}
			if token == "" {
				err := errors.New("no token provided; pass --with-token or set BWGENIUS_TOKEN")
				out.PrintError(err)
				return err
			}

			app.Client.SetToken(token)
			if err := app.Tracker.Resume(cmd.Context()); err != nil {
				out.PrintError(err)
				return err
			}

			userID, ok := app.Tracker.UserID()
			if !ok {
				err := errors.New("token was rejected by the server")
				out.PrintError(err)
				return err
			}

			if err := cfg.SaveToken(token); err != nil {
				out.PrintError(err)
				return err
			}

			out.Print(SessionView{
				UserID:   userID.String(),
				Nickname: app.Tracker.Nickname(),
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "with-token", "", "Access token to sign in with")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and purge local session artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := app.Tracker.Resume(cmd.Context()); err != nil {
				out.PrintError(err)
				return err
			}
			if _, ok := app.Tracker.UserID(); !ok {
				out.PrintMessage("Not signed in.")
				return cfg.ClearToken()
			}

			err := app.Tracker.Logout(cmd.Context())
			if clearErr := cfg.ClearToken(); clearErr != nil && err == nil {
				err = clearErr
			}
			if err != nil {
				out.PrintError(err)
				return err
			}

			out.PrintMessage("Signed out.")
			return nil
		},
	}
}

// requireSession resumes the persisted session and fails when there is none
func requireSession(cmd *cobra.Command) error {
	if err := app.Tracker.Resume(cmd.Context()); err != nil {
		return err
	}
	if _, ok := app.Tracker.UserID(); !ok {
		return model.ErrNotSignedIn
	}
	return nil
}
