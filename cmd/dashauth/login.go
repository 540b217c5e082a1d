package main

import (
	"errors"
	"fmt"
	"os"

	dashauth "github.com/MrEthical07/goAuthClient"
	"github.com/spf13/cobra"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var (
		email    string
		password string
		next     string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		Long: `Sign in with email and password. The password may also come from DASHAUTH_PASSWORD.

On success the command prints the path the viewer should be sent to: the --next origin
when it is a safe local path, otherwise the landing page of the viewer's role.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("DASHAUTH_PASSWORD")
			}
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if a.client.Session().Status == dashauth.StatusAuthenticated {
				// Replace a restored session rather than failing with ErrAlreadyAuthenticated.
				a.client.Logout(ctx)
			}
			user, err := a.client.Login(ctx, dashauth.Credentials{Email: email, Password: password})
			if err != nil {
				if msg := a.client.Session().Error; msg != "" && !errors.Is(err, dashauth.ErrCredentialsRequired) {
					return errors.New(msg)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "signed in as %s (%s)\n", user.Email, user.Role)
			fmt.Fprintf(out, "next: %s\n", a.client.PostLoginTarget(next))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&next, "next", "", "origin captured before the login redirect")
	return cmd
}
