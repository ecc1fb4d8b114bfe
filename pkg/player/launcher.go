package player

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/kballard/go-shellquote"

	"github.com/zachfi/radiomcp/pkg/vlc"
)

// Backend selects how a stream is played.
type Backend string

const (
	BackendAuto    Backend = "auto"
	BackendDefault Backend = "default"
	BackendVLC     Backend = "vlc"
)

var (
	ErrVLCNotFound    = errors.New("vlc not found: install VLC or provide vlc_path")
	ErrNoBackend      = errors.New("no GUI and VLC not found; cannot play")
	ErrUnknownBackend = errors.New("unknown backend")
	ErrDefaultHandler = errors.New("failed to open with the default handler")
	errEmptyStreamURL = errors.New("url is required")
)

// ParseBackend accepts auto, default and vlc. Empty means auto.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendDefault, BackendVLC:
		return b, nil
	default:
		return "", fmt.Errorf("%w %q: use auto, default or vlc", ErrUnknownBackend, s)
	}
}

// Result describes a launch. It is returned on failure too, with OK unset
// and Error filled in.
type Result struct {
	OK       bool   `json:"ok"`
	Mode     string `json:"mode,omitempty"`
	Launched string `json:"launched,omitempty"`
	Target   string `json:"target_opened,omitempty"`
	Note     string `json:"note,omitempty"`
	RCHost   string `json:"rc_host,omitempty"`
	RCPort   int    `json:"rc_port,omitempty"`
	AutoPath string `json:"auto_path,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (r *Result) fail(err error) (*Result, error) {
	r.OK = false
	r.Error = err.Error()
	return r, err
}

// VLCOptions configures a VLC launch.
type VLCOptions struct {
	URL       string
	Path      string
	ExtraArgs []string

	// WithRC exposes VLC's rc interface on RCHost:RCPort.
	WithRC bool
	RCHost string
	RCPort int
}

// Launcher starts player processes.
type Launcher struct {
	logger  *slog.Logger
	vlcPath string
	tempDir string

	goos     string
	getenv   func(string) string
	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
	start    func(*exec.Cmd) error
}

// Option customises a Launcher.
type Option func(*Launcher)

// WithVLCPath sets the VLC executable used when a call does not name one.
func WithVLCPath(path string) Option {
	return func(l *Launcher) { l.vlcPath = path }
}

// WithTempDir sets where playlist files are written. Empty uses os.TempDir.
func WithTempDir(dir string) Option {
	return func(l *Launcher) { l.tempDir = dir }
}

// WithStarter replaces process start, mostly for tests.
func WithStarter(start func(*exec.Cmd) error) Option {
	return func(l *Launcher) { l.start = start }
}

// WithPlatform overrides the detected platform and environment lookups.
func WithPlatform(goos string, getenv func(string) string, lookPath func(string) (string, error)) Option {
	return func(l *Launcher) {
		if goos != "" {
			l.goos = goos
		}
		if getenv != nil {
			l.getenv = getenv
		}
		if lookPath != nil {
			l.lookPath = lookPath
		}
	}
}

// New returns a launcher for the running host.
func New(logger *slog.Logger, opts ...Option) *Launcher {
	l := &Launcher{
		logger:   logger.With("module", "player"),
		goos:     runtime.GOOS,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		stat:     statFile,
		start:    startDetached,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// startDetached starts cmd and reaps it in the background.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// OpenDefault opens url with the OS default handler. With forcePlaylist a
// temporary .m3u is opened instead of the raw URL.
func (l *Launcher) OpenDefault(ctx context.Context, url string, forcePlaylist bool) (*Result, error) {
	r := &Result{Mode: string(BackendDefault)}
	if url == "" {
		return r.fail(errEmptyStreamURL)
	}
	if err := ctx.Err(); err != nil {
		return r.fail(err)
	}

	target := url
	r.Note = "Opened raw URL"
	if forcePlaylist {
		p, err := l.WritePlaylist(url)
		if err != nil {
			return r.fail(err)
		}
		target = p
		r.Note = "Using .m3u"
	}
	r.Target = target

	cmd := l.openCommand(target)
	r.Launched = shellquote.Join(cmd.Args...)

	if err := l.start(cmd); err != nil {
		l.logger.Error("default handler failed", "cmd", r.Launched, "err", err)
		return r.fail(fmt.Errorf("%w: %v", ErrDefaultHandler, err))
	}

	l.logger.Info("opened with default handler", "target", target)
	r.OK = true

	return r, nil
}

func (l *Launcher) openCommand(target string) *exec.Cmd {
	switch l.goos {
	case "darwin":
		return exec.Command("open", target)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return exec.Command("xdg-open", target)
	}
}

// PlayVLC launches VLC for opts.URL and returns immediately.
func (l *Launcher) PlayVLC(ctx context.Context, opts VLCOptions) (*Result, error) {
	r := &Result{Mode: string(BackendVLC)}
	if opts.URL == "" {
		return r.fail(errEmptyStreamURL)
	}
	if err := ctx.Err(); err != nil {
		return r.fail(err)
	}

	exe := l.DetectVLC(opts.Path)

	var args []string
	args = append(args, opts.ExtraArgs...)
	if opts.WithRC {
		if opts.RCHost == "" {
			opts.RCHost = vlc.DefaultHost
		}
		if opts.RCPort == 0 {
			opts.RCPort = vlc.DefaultPort
		}
		args = append(args, "--extraintf", "rc", "--rc-host="+opts.RCHost+":"+strconv.Itoa(opts.RCPort))
		r.RCHost = opts.RCHost
		r.RCPort = opts.RCPort
	}
	args = append(args, opts.URL)

	// Not CommandContext: the player outlives the request that started it.
	cmd := exec.Command(exe, args...)
	r.Launched = shellquote.Join(cmd.Args...)

	if err := l.start(cmd); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return r.fail(ErrVLCNotFound)
		}
		l.logger.Error("vlc launch failed", "cmd", r.Launched, "err", err)
		return r.fail(err)
	}

	l.logger.Info("launched vlc", "cmd", r.Launched)
	r.OK = true

	return r, nil
}

// Play plays url with the chosen backend. Auto prefers the default handler
// on a desktop and falls back to VLC; headless hosts need VLC.
func (l *Launcher) Play(ctx context.Context, url string, backend Backend, forcePlaylist bool) (*Result, error) {
	switch backend {
	case BackendDefault:
		r, err := l.OpenDefault(ctx, url, forcePlaylist)
		r.AutoPath = "default (forced)"
		return r, err
	case BackendVLC:
		r, err := l.PlayVLC(ctx, VLCOptions{URL: url})
		r.AutoPath = "vlc (forced)"
		return r, err
	case BackendAuto, "":
	default:
		r := &Result{AutoPath: "none"}
		return r.fail(fmt.Errorf("%w %q", ErrUnknownBackend, backend))
	}

	if l.HasGUI() {
		r, err := l.OpenDefault(ctx, url, forcePlaylist)
		if err == nil {
			r.AutoPath = "default"
			return r, nil
		}
		if l.VLCAvailable() {
			v, verr := l.PlayVLC(ctx, VLCOptions{URL: url})
			v.AutoPath = "vlc (fallback after default failed)"
			return v, verr
		}
		r.AutoPath = "default (failed, no VLC fallback)"
		return r, err
	}

	if l.VLCAvailable() {
		v, err := l.PlayVLC(ctx, VLCOptions{URL: url})
		v.AutoPath = "vlc (headless)"
		return v, err
	}

	r := &Result{AutoPath: "none"}
	return r.fail(ErrNoBackend)
}
