package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/focussync/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	r := mcp.Runner{}
	var transport string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that exposes recent focus sessions, session
summaries, video classification and amount conversion.`,
		Example: `
focussync mcp --transport stdio
focussync mcp --http-port 0
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := mcp.ParseTransport(transport)
			if err != nil {
				return err
			}
			e, err := loadEnv("mcp")
			if err != nil {
				return err
			}
			p, err := e.persistence()
			if err != nil {
				return err
			}

			r.Persistence = p
			r.Version = version
			r.Logger = e.log
			r.Transport = t
			r.OnListening = func(url string) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP HTTP server listening on %s\n", url)
			}
			return r.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportHTTP), "Transport to use: http or stdio.")
	cmd.Flags().StringVar(&r.Host, "http-host", "127.0.0.1", "Host or interface for the HTTP transport.")
	cmd.Flags().IntVar(&r.Port, "http-port", 8080, "Port for the HTTP transport (0 picks a free port).")
	cmd.Flags().StringVar(&r.Path, "http-path", mcp.DefaultPath, "HTTP endpoint path.")
	cmd.Flags().StringVar(&r.CertFile, "http-tls-cert", "", "TLS certificate file for HTTPS.")
	cmd.Flags().StringVar(&r.KeyFile, "http-tls-key", "", "TLS private key file for HTTPS.")

	topLevel.AddCommand(cmd)
}
