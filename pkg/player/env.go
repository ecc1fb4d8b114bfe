package player

import (
	"os"
	"path/filepath"
)

// Environment describes what the host can play with.
type Environment struct {
	HasGUI       bool   `json:"has_gui"`
	VLCAvailable bool   `json:"vlc_available"`
	Platform     string `json:"platform"`
}

var windowsVLCPaths = []string{
	`C:\Program Files\VideoLAN\VLC\vlc.exe`,
	`C:\Program Files (x86)\VideoLAN\VLC\vlc.exe`,
}

// Probe inspects the host. It never fails; anything it cannot determine is
// reported as unavailable.
func (l *Launcher) Probe() Environment {
	return Environment{
		HasGUI:       l.HasGUI(),
		VLCAvailable: l.VLCAvailable(),
		Platform:     l.goos,
	}
}

// HasGUI assumes a desktop on macOS and Windows, and otherwise looks for an
// X11 or Wayland display.
func (l *Launcher) HasGUI() bool {
	switch l.goos {
	case "darwin", "windows":
		return true
	}
	return l.getenv("DISPLAY") != "" || l.getenv("WAYLAND_DISPLAY") != ""
}

// VLCAvailable reports whether the VLC executable can be found.
func (l *Launcher) VLCAvailable() bool {
	_, err := l.findVLC("")
	return err == nil
}

// DetectVLC picks the VLC executable: the explicit path if it exists, the
// standard install locations on Windows, otherwise "vlc" from PATH.
func (l *Launcher) DetectVLC(path string) string {
	if path == "" {
		path = l.vlcPath
	}
	if path != "" && l.exists(path) {
		return path
	}

	if l.goos == "windows" {
		for _, p := range windowsVLCPaths {
			if l.exists(p) {
				return p
			}
		}
	}

	return "vlc"
}

// findVLC resolves DetectVLC's choice to a runnable path.
func (l *Launcher) findVLC(path string) (string, error) {
	exe := l.DetectVLC(path)
	if filepath.IsAbs(exe) && l.exists(exe) {
		return exe, nil
	}

	resolved, err := l.lookPath(exe)
	if err != nil {
		return "", ErrVLCNotFound
	}
	return resolved, nil
}

func (l *Launcher) exists(path string) bool {
	_, err := l.stat(path)
	return err == nil
}

func statFile(path string) (os.FileInfo, error) {
	return os.Stat(path)
}
