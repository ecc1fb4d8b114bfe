package player

import (
	"fmt"
	"os"
	"strings"
)

// WritePlaylist writes a single entry .m3u for url and returns its path.
// Opening a playlist is more likely to start a media player than a browser.
func (l *Launcher) WritePlaylist(url string) (string, error) {
	f, err := os.CreateTemp(l.tempDir, "radiomcp-*.m3u")
	if err != nil {
		return "", fmt.Errorf("failed to create playlist: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "#EXTM3U\n%s\n", strings.TrimSpace(url)); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write playlist: %w", err)
	}

	return f.Name(), nil
}
