package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the restored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.client.Session()
			fmt.Fprintln(cmd.OutOrStdout(), statusLine(s))
			if s.User != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "landing: %s\n", a.client.LandingPath())
			}
			return nil
		},
	}
}
