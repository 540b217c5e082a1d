package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.client.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}
