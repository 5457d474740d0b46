package commands

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tableflip.dev/focussync/pkg/mockserver"
)

func addServeMock(topLevel *cobra.Command) {
	var (
		addr  string
		appID string
		users []string
	)

	cmd := &cobra.Command{
		Use:   "serve-mock",
		Short: "run an in-memory app server for local wallet testing",
		Long: `Serve-mock starts an app server that implements the wallet endpoints in
memory. Point the client at it with --server or app_server_url.`,
		Example: `
focussync serve-mock --addr 127.0.0.1:8000
focussync serve-mock --user alice --user bob
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv("mockserver")
			if err != nil {
				return err
			}
			opts := []mockserver.Option{mockserver.WithLogger(e.log)}
			if appID != "" {
				opts = append(opts, mockserver.WithAppID(appID))
			}
			for _, u := range users {
				opts = append(opts, mockserver.WithUser(u))
			}
			srv := mockserver.New(opts...)

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return errors.Wrap(err, "listen")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Mock app server listening on http://%s\n", ln.Addr())
			return serve(cmd.Context(), ln, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Address to listen on.")
	cmd.Flags().StringVar(&appID, "app-id", "", "App id to hand out.")
	cmd.Flags().StringArrayVar(&users, "user", nil, "Pre-create a user with this id. May be repeated.")

	topLevel.AddCommand(cmd)
}

// serve runs h on ln until ctx is done.
func serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	httpSrv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()
	if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
