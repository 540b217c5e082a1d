package main

import (
	"fmt"

	dashauth "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/guard"
	"github.com/spf13/cobra"
)

func newCanCmd(opts *rootOptions) *cobra.Command {
	var (
		roles  []string
		origin string
	)
	cmd := &cobra.Command{
		Use:   "can PATH",
		Short: "Ask the route guard whether the viewer may open PATH",
		Long: `Evaluate the route guard for PATH with the restored session.

Prints "render" when the page may be shown, otherwise the redirect kind and target.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			required := make([]dashauth.Role, 0, len(roles))
			for _, r := range roles {
				role, ok := dashauth.ParseRole(r)
				if !ok {
					return fmt.Errorf("unknown role %q", r)
				}
				required = append(required, role)
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			d := a.client.Decide(guard.Query{
				RequiredRoles:  required,
				RequestedPath:  args[0],
				CapturedOrigin: origin,
			})
			if d.Kind == guard.Render {
				fmt.Fprintln(cmd.OutOrStdout(), d.Kind)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d.Kind, d.RedirectURL())
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&roles, "role", nil, "roles permitted on PATH (repeatable)")
	cmd.Flags().StringVar(&origin, "origin", "", "origin captured by an earlier redirect")
	return cmd
}
