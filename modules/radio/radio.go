package radio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/grafana/dskit/modules"
	"github.com/grafana/dskit/services"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/common/version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/zachfi/radiomcp/pkg/player"
	"github.com/zachfi/radiomcp/pkg/radiobrowser"
	"github.com/zachfi/radiomcp/pkg/shoutcast"
)

const appName = "radiomcp"

// Radio serves the radio tools over MCP.
type Radio struct {
	services.Service
	cfg    *Config
	logger *slog.Logger
	tracer trace.Tracer

	directory *radiobrowser.Client
	resolver  *shoutcast.Resolver
	launcher  *player.Launcher

	mcp  *server.MCPServer
	http *server.StreamableHTTPServer

	// stdio transport endpoints
	stdin  io.Reader
	stdout io.Writer
}

var module = "radio"

// New creates the tool module. The caller mounts Handler when the transport
// is http.
func New(cfg Config, logger slog.Logger) (*Radio, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := logger.With("module", module)
	ua := userAgent()

	launcher := player.New(&logger,
		player.WithVLCPath(cfg.VLC.Path),
		player.WithTempDir(cfg.Player.TempDir),
	)

	r := &Radio{
		cfg:       &cfg,
		logger:    l,
		tracer:    otel.Tracer(module),
		directory: radiobrowser.NewClient(cfg.Directory.URL, ua, cfg.Directory.Timeout, cfg.Directory.RequestsPerSecond),
		resolver:  shoutcast.NewResolver(cfg.Resolver.Timeout, ua),
		launcher:  launcher,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}

	v := version.Version
	if v == "" {
		v = "dev"
	}
	r.mcp = server.NewMCPServer(appName, v,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	r.registerTools()

	if cfg.Transport == TransportHTTP {
		r.http = server.NewStreamableHTTPServer(r.mcp, server.WithEndpointPath(cfg.HTTPPath))
	}

	r.Service = services.NewBasicService(r.starting, r.running, r.stopping)

	return r, nil
}

// Handler is the streamable HTTP endpoint, or nil for the stdio transport.
func (r *Radio) Handler() http.Handler {
	if r.http == nil {
		return nil
	}
	return r.http
}

func (r *Radio) starting(_ context.Context) error {
	r.logger.Info("serving tools", "transport", r.cfg.Transport, "directory", r.cfg.Directory.URL)
	return nil
}

func (r *Radio) running(ctx context.Context) error {
	if r.cfg.Transport != TransportStdio {
		<-ctx.Done()
		return nil
	}

	stdio := server.NewStdioServer(r.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(r.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, r.stdin, r.stdout)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		r.logger.Error("stdio transport failed", "err", err)
		return err
	}

	// The client closed stdin; take the whole process down with us.
	r.logger.Info("stdio closed")
	return modules.ErrStopProcess
}

func (r *Radio) stopping(_ error) error {
	r.logger.Info("stopping")
	return nil
}

func userAgent() string {
	if version.Version == "" {
		return appName + "/dev"
	}
	return appName + "/" + version.Version
}
