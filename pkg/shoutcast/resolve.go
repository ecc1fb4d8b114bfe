package shoutcast

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultResolveTimeout = 20 * time.Second

	// maxPlaylistSize bounds how much of a response body is read when looking
	// for playlist entries.
	maxPlaylistSize = 64 * 1024

	noteFromPlaylist = "Resolved from playlist"
)

// ICYInfo holds the icy-* response headers a Shoutcast/Icecast server sends.
type ICYInfo struct {
	Name        string `json:"name,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Bitrate     int    `json:"bitrate,omitempty"`
}

// Resolution is the outcome of resolving a station URL.
type Resolution struct {
	InputURL     string   `json:"input_url"`
	ResolvedURL  string   `json:"resolved_url"`
	ContentType  string   `json:"content_type"`
	FromPlaylist bool     `json:"from_playlist"`
	Playable     bool     `json:"playable"`
	Notes        []string `json:"notes"`
	ICY          *ICYInfo `json:"icy,omitempty"`
}

// Resolver turns station URLs into direct stream URLs.
type Resolver struct {
	UserAgent string

	client *http.Client
}

// NewResolver returns a resolver whose requests each take at most timeout.
func NewResolver(timeout time.Duration, userAgent string) *Resolver {
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}

	dialer := &net.Dialer{Timeout: 5 * time.Second}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: timeout,
	}

	return &Resolver{
		UserAgent: userAgent,
		client:    &http.Client{Transport: transport, Timeout: timeout},
	}
}

// Resolve follows redirects and playlists until it finds an audio stream.
// Content it cannot recognise is returned as-is with Playable unset and a
// note; only unreachable URLs are errors.
func (r *Resolver) Resolve(ctx context.Context, url string) (*Resolution, error) {
	res := &Resolution{InputURL: url, Notes: []string{}}

	// HEAD probe; many stream servers refuse HEAD so failures are ignored.
	if head, err := r.do(ctx, http.MethodHead, url); err == nil {
		head.Body.Close()
		if head.StatusCode < 400 && isStream(head) {
			res.fill(head)
			return res, nil
		}
	}

	resp, err := r.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("failed to fetch %s: %s", url, resp.Status)
	}

	if isStream(resp) {
		res.fill(resp)
		return res, nil
	}

	contentType := resp.Header.Get("Content-Type")
	finalURL := resp.Request.URL.String()

	if isTextish(contentType) || contentType == "" || looksLikePlaylist("", finalURL, "") {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		content := string(body)
		if looksLikePlaylist(contentType, finalURL, content) {
			if entry, err := ParsePlaylist(content); err == nil {
				return r.resolveEntry(ctx, res, entry)
			}
		}
	}

	res.ResolvedURL = finalURL
	res.ContentType = unknownIfEmpty(contentType)
	res.Notes = append(res.Notes, fmt.Sprintf("Unrecognized content-type: %s; returning final URL anyway.", res.ContentType))

	return res, nil
}

// ResolvePlaylistURL returns the stream URL behind url, unwrapping a
// playlist if url is one.
func (r *Resolver) ResolvePlaylistURL(ctx context.Context, url string) (string, error) {
	res, err := r.Resolve(ctx, url)
	if err != nil {
		return "", err
	}
	return res.ResolvedURL, nil
}

func (r *Resolver) resolveEntry(ctx context.Context, res *Resolution, entry string) (*Resolution, error) {
	resp, err := r.do(ctx, http.MethodGet, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist entry %s: %w", entry, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("failed to fetch playlist entry %s: %s", entry, resp.Status)
	}

	res.FromPlaylist = true
	if isStream(resp) {
		res.fill(resp)
		res.Notes = append(res.Notes, noteFromPlaylist)
		return res, nil
	}

	res.ResolvedURL = resp.Request.URL.String()
	res.ContentType = unknownIfEmpty(resp.Header.Get("Content-Type"))
	res.Notes = append(res.Notes,
		noteFromPlaylist,
		fmt.Sprintf("Unrecognized content-type: %s; returning final URL anyway.", res.ContentType))

	return res, nil
}

func (r *Resolver) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Add("accept", "*/*")
	if r.UserAgent != "" {
		req.Header.Add("user-agent", r.UserAgent)
	}

	return r.client.Do(req)
}

func (res *Resolution) fill(resp *http.Response) {
	res.ResolvedURL = resp.Request.URL.String()
	res.ContentType = unknownIfEmpty(resp.Header.Get("Content-Type"))
	res.Playable = true
	res.ICY = icyInfo(resp.Header)
}

// isStream treats audio content types and ICY headers as a live stream.
func isStream(resp *http.Response) bool {
	if isAudioType(resp.Header.Get("Content-Type")) {
		return true
	}
	return resp.Header.Get("icy-metaint") != "" || resp.Header.Get("icy-br") != ""
}

func icyInfo(h http.Header) *ICYInfo {
	info := &ICYInfo{
		Name:        h.Get("icy-name"),
		Genre:       h.Get("icy-genre"),
		Description: h.Get("icy-description"),
		URL:         h.Get("icy-url"),
	}
	if br, err := strconv.Atoi(h.Get("icy-br")); err == nil {
		info.Bitrate = br
	}

	if *info == (ICYInfo{}) {
		return nil
	}
	return info
}

func unknownIfEmpty(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
