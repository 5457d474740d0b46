package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"tableflip.dev/focussync/pkg/store"
)

// Transport selects how the session tools are exposed.
type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportStdio Transport = "stdio"
)

// DefaultPath is the streamable HTTP endpoint.
const DefaultPath = "/mcp"

// ParseTransport accepts "http" (also the empty string) or "stdio".
func ParseTransport(s string) (Transport, error) {
	switch Transport(strings.ToLower(strings.TrimSpace(s))) {
	case "", TransportHTTP:
		return TransportHTTP, nil
	case TransportStdio:
		return TransportStdio, nil
	}
	return "", fmt.Errorf("unsupported transport %q (expected http or stdio)", s)
}

// Catalog lists what the server registered.
type Catalog struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Tools     []string `json:"tools"`
	Resources []string `json:"resources"`
}

// Runner serves recent focus sessions and task helpers over MCP.
type Runner struct {
	Persistence store.Persistence
	Version     string
	Logger      zerolog.Logger
	// Now stamps recorded sessions; defaults to time.Now.
	Now func() time.Time

	Transport Transport
	// Host and Port are used by the HTTP transport. Port 0 picks a free port.
	Host     string
	Port     int
	Path     string
	CertFile string
	KeyFile  string
	// OnListening receives the URL clients should connect to.
	OnListening func(url string)
}

// NewServer builds the MCP server with every focussync tool and resource.
func (r Runner) NewServer() (*server.MCPServer, Catalog, error) {
	if r.Persistence == nil {
		return nil, Catalog{}, errors.New("mcp: persistence is required")
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}

	srv := server.NewMCPServer(
		"focussync MCP",
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Read and record focus sessions, classify reference videos and convert payment amounts."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)

	svc := NewService(r.Persistence)
	if r.Now != nil {
		svc.Now = r.Now
	}
	cat := Catalog{
		Name:      "focussync",
		Version:   version,
		Resources: registerResources(srv, svc),
		Tools:     registerTools(srv, svc),
	}
	return srv, cat, nil
}

// Do serves until ctx is done or the transport fails.
func (r Runner) Do(ctx context.Context) error {
	srv, cat, err := r.NewServer()
	if err != nil {
		return err
	}
	r.Logger.Info().
		Str("transport", string(r.Transport)).
		Strs("tools", cat.Tools).
		Strs("resources", cat.Resources).
		Msg("mcp: starting")

	switch r.Transport {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv, cat)
	case TransportStdio:
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", r.Transport)
	}
}

func (r Runner) path() string {
	p := strings.TrimSpace(r.Path)
	if p == "" {
		return DefaultPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func (r Runner) tls() bool {
	return r.CertFile != "" && r.KeyFile != ""
}

// Router mounts the streamable endpoint and a catalog health check.
func (r Runner) Router(srv *server.MCPServer, cat Catalog) http.Handler {
	mux := chi.NewRouter()
	mux.Handle(r.path(), server.NewStreamableHTTPServer(srv))
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cat)
	})
	return mux
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer, cat Catalog) error {
	if (r.CertFile == "") != (r.KeyFile == "") {
		return errors.New("mcp: both tls cert and key must be provided")
	}
	if r.Port < 0 || r.Port > 65535 {
		return fmt.Errorf("mcp: invalid port %d", r.Port)
	}
	host := strings.TrimSpace(r.Host)
	if host == "" {
		host = "127.0.0.1"
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(r.Port)))
	if err != nil {
		return errors.Wrap(err, "mcp: listen")
	}
	url := ListenURL(ln.Addr(), host, r.path(), r.tls())
	r.Logger.Info().Str("url", url).Msg("mcp: listening")
	if r.OnListening != nil {
		r.OnListening(url)
	}

	httpSrv := &http.Server{Handler: r.Router(srv, cat), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if r.tls() {
		err = httpSrv.ServeTLS(ln, r.CertFile, r.KeyFile)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenURL is the address clients dial. Wildcard hosts are replaced by the
// bound IP, or loopback when that is unspecified too.
func ListenURL(addr net.Addr, host, path string, tls bool) string {
	scheme := "http"
	if tls {
		scheme = "https"
	}
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return fmt.Sprintf("%s://%s%s", scheme, addr.String(), path)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
		if tcp.IP != nil && !tcp.IP.IsUnspecified() {
			host = tcp.IP.String()
		}
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(host, strconv.Itoa(tcp.Port)), path)
}
