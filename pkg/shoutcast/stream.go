package shoutcast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// ErrNoMetadata is returned when a server does not interleave ICY metadata.
var ErrNoMetadata = errors.New("stream does not carry ICY metadata")

// MetadataCallbackFunc is the type of the function called when the stream metadata changes
type MetadataCallbackFunc func(m *Metadata)

// Stream represents an open shoutcast stream.
type Stream struct {
	ICYInfo

	// Optional function to be executed when stream metadata changes
	MetadataCallbackFunc MetadataCallbackFunc

	// Amount of audio bytes between metadata blocks
	metaint int

	metadata *Metadata

	// Audio bytes read since the last metadata block
	pos int

	rc io.ReadCloser
}

// Open connects to url, unwrapping playlists through r first. The stream
// itself has no read timeout; cancel ctx to abort it.
func (r *Resolver) Open(ctx context.Context, url string, logger *slog.Logger) (*Stream, error) {
	resolved, err := r.ResolvePlaylistURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve playlist URL: %w", err)
	}
	if resolved != url {
		logger.Debug("resolved playlist to stream URL", "url", url, "resolved", resolved)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("accept", "*/*")
	if r.UserAgent != "" {
		req.Header.Add("user-agent", r.UserAgent)
	}
	req.Header.Add("icy-metadata", "1")

	// Only establishing the connection is bounded.
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: 10 * time.Second,
	}
	client := &http.Client{Transport: transport}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to open stream: %s", resp.Status)
	}

	var bitrate int
	if rawBitrate := resp.Header.Get("icy-br"); rawBitrate != "" {
		bitrate, err = strconv.Atoi(rawBitrate)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("cannot parse bitrate: %v", err)
		}
	}

	metaint, err := strconv.Atoi(resp.Header.Get("icy-metaint"))
	if err != nil || metaint <= 0 {
		resp.Body.Close()
		return nil, ErrNoMetadata
	}

	s := &Stream{
		ICYInfo: ICYInfo{
			Name:        resp.Header.Get("icy-name"),
			Genre:       resp.Header.Get("icy-genre"),
			Description: resp.Header.Get("icy-description"),
			URL:         resp.Header.Get("icy-url"),
			Bitrate:     bitrate,
		},
		metaint: metaint,
		rc:      resp.Body,
	}

	return s, nil
}

// Read implements io.Reader, returning only audio bytes.
func (s *Stream) Read(buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		if s.pos == s.metaint {
			if err := s.readMetadata(); err != nil {
				return n, err
			}
			s.pos = 0
			continue
		}

		want := s.metaint - s.pos
		if want > len(buf)-n {
			want = len(buf) - n
		}

		nn, err := s.rc.Read(buf[n : n+want])
		n += nn
		s.pos += nn
		if err != nil {
			return n, err
		}
		// Hand back what arrived instead of blocking for a full buffer.
		if nn < want {
			return n, nil
		}
	}

	return n, nil
}

// readMetadata consumes one length-prefixed metadata block.
func (s *Stream) readMetadata() error {
	var lenByte [1]byte
	if _, err := io.ReadFull(s.rc, lenByte[:]); err != nil {
		return err
	}

	size := int(lenByte[0]) * 16
	if size == 0 {
		return nil
	}

	block := make([]byte, size)
	if _, err := io.ReadFull(s.rc, block); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}

	if m := NewMetadata(block); !m.Equals(s.metadata) {
		s.metadata = m
		if s.MetadataCallbackFunc != nil {
			s.MetadataCallbackFunc(m)
		}
	}

	return nil
}

// Metadata returns the last metadata block seen, or nil.
func (s *Stream) Metadata() *Metadata {
	return s.metadata
}

// Close closes the stream
func (s *Stream) Close() error {
	return s.rc.Close()
}

// NowPlaying is what a station is currently broadcasting.
type NowPlaying struct {
	Station ICYInfo `json:"station"`
	Metadata
}

// NowPlaying opens url and returns its first metadata block. Reading stops
// after maxBlocks metadata intervals without a title.
func (r *Resolver) NowPlaying(ctx context.Context, url string, logger *slog.Logger) (*NowPlaying, error) {
	const maxBlocks = 3

	s, err := r.Open(ctx, url, logger)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var found *Metadata
	s.MetadataCallbackFunc = func(m *Metadata) {
		found = m
	}

	buf := make([]byte, 4096)
	limit := int64(s.metaint) * maxBlocks
	var read int64
	for found == nil && read <= limit {
		n, err := s.Read(buf)
		read += int64(n)
		if found != nil {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed reading stream: %w", err)
		}
	}

	if found == nil {
		return nil, ErrNoMetadata
	}

	return &NowPlaying{Station: s.ICYInfo, Metadata: *found}, nil
}
