package shoutcast

import (
	"errors"
	"strings"
)

// ErrEmptyPlaylist is returned when a playlist has no usable http(s) entry.
var ErrEmptyPlaylist = errors.New("no stream URL found in playlist")

// ParsePlaylist returns the first stream URL in a PLS or M3U body. PLS
// FileN= entries win over bare M3U lines.
func ParsePlaylist(content string) (string, error) {
	lines := playlistLines(content)

	if u := firstPLSEntry(lines); u != "" {
		return u, nil
	}
	if u := firstM3UEntry(lines); u != "" {
		return u, nil
	}

	return "", ErrEmptyPlaylist
}

func playlistLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// firstPLSEntry finds the first File1=, File2=, ... line pointing at http(s).
func firstPLSEntry(lines []string) string {
	for _, line := range lines {
		if !strings.HasPrefix(strings.ToLower(line), "file") {
			continue
		}
		_, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if isHTTP(value) {
			return value
		}
	}
	return ""
}

func firstM3UEntry(lines []string) string {
	for _, line := range lines {
		// Skip #EXTM3U, #EXTINF and other comments
		if strings.HasPrefix(line, "#") {
			continue
		}
		if isHTTP(line) {
			return line
		}
	}
	return ""
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// looksLikePlaylist checks the content type, the URL and the body for
// playlist markers.
func looksLikePlaylist(contentType, url, content string) bool {
	ct := strings.ToLower(contentType)
	if isPlaylistType(ct) {
		return true
	}

	lowerURL := strings.ToLower(url)
	if i := strings.IndexAny(lowerURL, "?#"); i >= 0 {
		lowerURL = lowerURL[:i]
	}
	for _, ext := range []string{".pls", ".m3u", ".m3u8"} {
		if strings.HasSuffix(lowerURL, ext) {
			return true
		}
	}

	trimmed := strings.TrimSpace(content)
	return strings.Contains(content, "[playlist]") ||
		strings.Contains(content, "File1=") ||
		strings.Contains(content, "#EXTM3U") ||
		isHTTP(trimmed)
}

func isPlaylistType(ct string) bool {
	return strings.Contains(ct, "mpegurl") ||
		strings.Contains(ct, "scpls") ||
		strings.Contains(ct, "pls+xml")
}

// isAudioType reports whether ct is a directly playable stream. Playlist
// types such as audio/x-mpegurl are excluded.
func isAudioType(contentType string) bool {
	ct := strings.ToLower(contentType)
	if isPlaylistType(ct) {
		return false
	}
	return strings.Contains(ct, "audio/") || strings.Contains(ct, "application/ogg")
}

func isTextish(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text") || isPlaylistType(ct) || strings.Contains(ct, "pls")
}
