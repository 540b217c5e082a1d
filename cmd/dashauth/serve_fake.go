package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MrEthical07/goAuthClient/gateway/fake"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownGrace = 5 * time.Second

func newServeFakeCmd() *cobra.Command {
	var (
		addr  string
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "serve-fake",
		Short: "Run an in-memory auth gateway with the development accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !debug {
				gin.SetMode(gin.ReleaseMode)
			}
			g, err := fake.NewDev()
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fake gateway listening on http://%s\n", ln.Addr())
			for _, u := range fake.DevUsers() {
				fmt.Fprintf(out, "  %-8s %s / %s\n", u.Role, u.Email, u.Password)
			}
			return serveUntilDone(cmd.Context(), &http.Server{Handler: fake.NewServer(g)}, ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().BoolVar(&debug, "debug", false, "run gin in debug mode")
	return cmd
}

func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
