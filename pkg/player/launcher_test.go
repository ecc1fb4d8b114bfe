package player

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type recorder struct {
	args [][]string
	errs []error
}

// start records the command and returns the next queued error, if any.
func (r *recorder) start(cmd *exec.Cmd) error {
	r.args = append(r.args, cmd.Args)
	if len(r.errs) == 0 {
		return nil
	}
	err := r.errs[0]
	r.errs = r.errs[1:]
	return err
}

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func lookPathFor(available bool) func(string) (string, error) {
	return func(file string) (string, error) {
		if available {
			return "/usr/bin/" + file, nil
		}
		return "", exec.ErrNotFound
	}
}

func newTestLauncher(t *testing.T, goos string, env map[string]string, vlcAvailable bool, rec *recorder) *Launcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger,
		WithTempDir(t.TempDir()),
		WithStarter(rec.start),
		WithPlatform(goos, envOf(env), lookPathFor(vlcAvailable)),
	)
}

func TestWritePlaylist(t *testing.T) {
	l := newTestLauncher(t, "linux", nil, false, &recorder{})

	path, err := l.WritePlaylist("  http://x.example/stream  \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "radiomcp-") || filepath.Ext(path) != ".m3u" {
		t.Errorf("unexpected playlist name %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read playlist: %v", err)
	}
	if got, want := string(b), "#EXTM3U\nhttp://x.example/stream\n"; got != want {
		t.Errorf("content: got %q, want %q", got, want)
	}
}

func TestOpenDefault(t *testing.T) {
	tests := []struct {
		goos          string
		forcePlaylist bool
		wantCmd       []string
	}{
		{goos: "linux", wantCmd: []string{"xdg-open"}},
		{goos: "darwin", wantCmd: []string{"open"}},
		{goos: "windows", wantCmd: []string{"rundll32", "url.dll,FileProtocolHandler"}},
		{goos: "linux", forcePlaylist: true, wantCmd: []string{"xdg-open"}},
	}

	for _, tt := range tests {
		name := tt.goos
		if tt.forcePlaylist {
			name += "/playlist"
		}
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			l := newTestLauncher(t, tt.goos, nil, false, rec)

			res, err := l.OpenDefault(context.Background(), "http://x.example/s", tt.forcePlaylist)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.OK || res.Mode != "default" {
				t.Errorf("unexpected result %+v", res)
			}
			if len(rec.args) != 1 {
				t.Fatalf("expected one launch, got %v", rec.args)
			}

			args := rec.args[0]
			if strings.Join(args[:len(args)-1], " ") != strings.Join(tt.wantCmd, " ") {
				t.Errorf("command: got %v, want prefix %v", args, tt.wantCmd)
			}

			target := args[len(args)-1]
			if target != res.Target {
				t.Errorf("target: got %q, result says %q", target, res.Target)
			}
			if tt.forcePlaylist {
				if filepath.Ext(target) != ".m3u" || res.Note != "Using .m3u" {
					t.Errorf("expected playlist target, got %q (%s)", target, res.Note)
				}
			} else if target != "http://x.example/s" {
				t.Errorf("expected raw url, got %q", target)
			}
		})
	}
}

func TestOpenDefaultFailure(t *testing.T) {
	rec := &recorder{errs: []error{errors.New("boom")}}
	l := newTestLauncher(t, "linux", nil, false, rec)

	res, err := l.OpenDefault(context.Background(), "http://x/", false)
	if !errors.Is(err, ErrDefaultHandler) {
		t.Fatalf("expected ErrDefaultHandler, got %v", err)
	}
	if res.OK || res.Error == "" {
		t.Errorf("expected failed result, got %+v", res)
	}
}

func TestPlayVLC(t *testing.T) {
	rec := &recorder{}
	l := newTestLauncher(t, "linux", nil, true, rec)

	res, err := l.PlayVLC(context.Background(), VLCOptions{
		URL:       "http://x.example/s",
		ExtraArgs: []string{"--one-instance"},
		WithRC:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "vlc --one-instance --extraintf rc --rc-host=127.0.0.1:4212 http://x.example/s"
	if got := strings.Join(rec.args[0], " "); got != want {
		t.Errorf("args: got %q, want %q", got, want)
	}
	if res.RCHost != "127.0.0.1" || res.RCPort != 4212 || res.Launched != want {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPlayVLCExplicitPath(t *testing.T) {
	exe := filepath.Join(t.TempDir(), "my vlc")
	if err := os.WriteFile(exe, nil, 0o755); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	l := newTestLauncher(t, "linux", nil, false, rec)

	res, err := l.PlayVLC(context.Background(), VLCOptions{URL: "http://x/", Path: exe})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.args[0][0] != exe {
		t.Errorf("executable: got %q, want %q", rec.args[0][0], exe)
	}
	if !strings.HasPrefix(res.Launched, "'") {
		t.Errorf("expected quoted command line, got %q", res.Launched)
	}
	if res.RCHost != "" {
		t.Errorf("rc should be off, got %+v", res)
	}
}

func TestPlayVLCNotFound(t *testing.T) {
	rec := &recorder{errs: []error{exec.ErrNotFound}}
	l := newTestLauncher(t, "linux", nil, false, rec)

	res, err := l.PlayVLC(context.Background(), VLCOptions{URL: "http://x/"})
	if !errors.Is(err, ErrVLCNotFound) {
		t.Fatalf("expected ErrVLCNotFound, got %v", err)
	}
	if res.OK || res.Mode != "vlc" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPlay(t *testing.T) {
	gui := map[string]string{"DISPLAY": ":0"}

	tests := []struct {
		name         string
		backend      Backend
		env          map[string]string
		vlc          bool
		startErrs    []error
		wantErr      error
		wantPath     string
		wantLaunches int
		wantFirst    string
	}{
		{name: "forced default", backend: BackendDefault, wantPath: "default (forced)", wantLaunches: 1, wantFirst: "xdg-open"},
		{name: "forced vlc", backend: BackendVLC, wantPath: "vlc (forced)", wantLaunches: 1, wantFirst: "vlc"},
		{name: "auto desktop", backend: BackendAuto, env: gui, wantPath: "default", wantLaunches: 1, wantFirst: "xdg-open"},
		{
			name: "auto desktop falls back to vlc", backend: BackendAuto, env: gui, vlc: true,
			startErrs: []error{errors.New("no handler")}, wantPath: "vlc (fallback after default failed)", wantLaunches: 2, wantFirst: "xdg-open",
		},
		{
			name: "auto desktop without fallback", backend: BackendAuto, env: gui,
			startErrs: []error{errors.New("no handler")}, wantErr: ErrDefaultHandler, wantPath: "default (failed, no VLC fallback)", wantLaunches: 1,
		},
		{name: "auto headless vlc", backend: BackendAuto, vlc: true, wantPath: "vlc (headless)", wantLaunches: 1, wantFirst: "vlc"},
		{name: "auto headless nothing", backend: BackendAuto, wantErr: ErrNoBackend, wantPath: "none"},
		{name: "unknown backend", backend: "mpv", wantErr: ErrUnknownBackend, wantPath: "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{errs: tt.startErrs}
			l := newTestLauncher(t, "linux", tt.env, tt.vlc, rec)

			res, err := l.Play(context.Background(), "http://x.example/s", tt.backend, false)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if res == nil {
				t.Fatal("result should never be nil")
			}
			if res.AutoPath != tt.wantPath {
				t.Errorf("auto path: got %q, want %q", res.AutoPath, tt.wantPath)
			}
			if len(rec.args) != tt.wantLaunches {
				t.Fatalf("launches: got %v, want %d", rec.args, tt.wantLaunches)
			}
			if tt.wantFirst != "" && rec.args[0][0] != tt.wantFirst {
				t.Errorf("first launch: got %v, want %s", rec.args[0], tt.wantFirst)
			}
		})
	}
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{"": BackendAuto, "auto": BackendAuto, "default": BackendDefault, "vlc": BackendVLC} {
		got, err := ParseBackend(in)
		if err != nil || got != want {
			t.Errorf("%q: got %q, %v", in, got, err)
		}
	}
	if _, err := ParseBackend("winamp"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		goos    string
		env     map[string]string
		vlc     bool
		wantGUI bool
	}{
		{goos: "linux"},
		{goos: "linux", env: map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, wantGUI: true},
		{goos: "freebsd", env: map[string]string{"DISPLAY": ":1"}, vlc: true, wantGUI: true},
		{goos: "darwin", wantGUI: true},
		{goos: "windows", vlc: true, wantGUI: true},
		{goos: "plan9"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			l := newTestLauncher(t, tt.goos, tt.env, tt.vlc, &recorder{})

			env := l.Probe()
			if env.Platform != tt.goos {
				t.Errorf("platform: got %q", env.Platform)
			}
			if env.HasGUI != tt.wantGUI {
				t.Errorf("gui: got %v, want %v", env.HasGUI, tt.wantGUI)
			}
			if env.VLCAvailable != tt.vlc {
				t.Errorf("vlc: got %v, want %v", env.VLCAvailable, tt.vlc)
			}
		})
	}
}

func TestProbeHost(t *testing.T) {
	// Whatever the host looks like, probing must not fail or panic.
	env := New(slog.New(slog.NewTextHandler(io.Discard, nil))).Probe()
	if env.Platform == "" {
		t.Error("platform should be set")
	}
}
