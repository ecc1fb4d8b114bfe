package radio

import (
	"flag"
	"fmt"
	"time"

	"github.com/zachfi/zkit/pkg/util"

	"github.com/zachfi/radiomcp/pkg/radiobrowser"
	"github.com/zachfi/radiomcp/pkg/vlc"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	defaultHTTPPath          = "/mcp"
	defaultDirectoryTimeout  = 15 * time.Second
	defaultDirectoryRate     = 2.0
	defaultResolveTimeout    = 20 * time.Second
	defaultNowPlayingTimeout = 10 * time.Second
)

type Config struct {
	Transport string          `yaml:"transport,omitempty"` // stdio or http
	HTTPPath  string          `yaml:"http-path,omitempty"` // where the http transport is mounted
	Directory DirectoryConfig `yaml:"directory,omitempty"`
	Resolver  ResolverConfig  `yaml:"resolver,omitempty"`
	VLC       VLCConfig       `yaml:"vlc,omitempty"`
	Player    PlayerConfig    `yaml:"player,omitempty"`
}

type DirectoryConfig struct {
	URL               string        `yaml:"url,omitempty"`
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	RequestsPerSecond float64       `yaml:"requests-per-second,omitempty"`
}

type ResolverConfig struct {
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	NowPlayingTimeout time.Duration `yaml:"now-playing-timeout,omitempty"`
}

// VLCConfig holds the rc defaults used when a tool call does not name a target.
type VLCConfig struct {
	Host    string        `yaml:"host,omitempty"`
	Port    int           `yaml:"port,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Path    string        `yaml:"path,omitempty"`
}

type PlayerConfig struct {
	TempDir string `yaml:"temp-dir,omitempty"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&cfg.Transport, util.PrefixConfig(prefix, "transport"), TransportStdio, "MCP transport: stdio, or http to serve on the HTTP server.")
	f.StringVar(&cfg.HTTPPath, util.PrefixConfig(prefix, "http-path"), defaultHTTPPath, "Path the http transport is served on.")

	f.StringVar(&cfg.Directory.URL, util.PrefixConfig(prefix, "directory.url"), radiobrowser.DefaultBaseURL, "Base URL of the radio-browser API.")
	f.DurationVar(&cfg.Directory.Timeout, util.PrefixConfig(prefix, "directory.timeout"), defaultDirectoryTimeout, "Timeout for a directory query.")
	f.Float64Var(&cfg.Directory.RequestsPerSecond, util.PrefixConfig(prefix, "directory.requests-per-second"), defaultDirectoryRate, "Directory request rate limit. 0 disables it.")

	f.DurationVar(&cfg.Resolver.Timeout, util.PrefixConfig(prefix, "resolver.timeout"), defaultResolveTimeout, "Timeout for each request made while resolving a stream.")
	f.DurationVar(&cfg.Resolver.NowPlayingTimeout, util.PrefixConfig(prefix, "resolver.now-playing-timeout"), defaultNowPlayingTimeout, "How long to listen for ICY metadata.")

	f.StringVar(&cfg.VLC.Host, util.PrefixConfig(prefix, "vlc.host"), vlc.DefaultHost, "Default VLC rc host.")
	f.IntVar(&cfg.VLC.Port, util.PrefixConfig(prefix, "vlc.port"), vlc.DefaultPort, "Default VLC rc port.")
	f.DurationVar(&cfg.VLC.Timeout, util.PrefixConfig(prefix, "vlc.timeout"), vlc.DefaultTimeout, "Timeout for a VLC rc exchange.")
	f.StringVar(&cfg.VLC.Path, util.PrefixConfig(prefix, "vlc.path"), "", "VLC executable. Empty searches the usual locations and PATH.")

	f.StringVar(&cfg.Player.TempDir, util.PrefixConfig(prefix, "player.temp-dir"), "", "Directory for temporary playlists. Empty uses the system temp dir.")
}

func (cfg *Config) Validate() error {
	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("invalid transport %q: use %s or %s", cfg.Transport, TransportStdio, TransportHTTP)
	}
	if cfg.VLC.Port < 0 || cfg.VLC.Port > 65535 {
		return fmt.Errorf("invalid vlc port %d", cfg.VLC.Port)
	}
	return nil
}
