package shoutcast

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testMetaint = 8

// icyBody interleaves audio chunks with metadata blocks.
func icyBody(blocks ...string) []byte {
	var b bytes.Buffer
	for _, m := range blocks {
		b.Write(bytes.Repeat([]byte{'A'}, testMetaint))
		if m == "" {
			b.WriteByte(0)
			continue
		}
		size := (len(m) + 15) / 16
		b.WriteByte(byte(size))
		padded := make([]byte, size*16)
		copy(padded, m)
		b.Write(padded)
	}
	b.Write(bytes.Repeat([]byte{'A'}, testMetaint))
	return b.Bytes()
}

func icyServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("icy-name", "Meta FM")
		if r.Header.Get("Icy-MetaData") != "1" {
			_, _ = w.Write([]byte("plain"))
			return
		}
		w.Header().Set("icy-metaint", "8")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStreamRead(t *testing.T) {
	srv := icyServer(t, icyBody("", "StreamTitle='One';", "StreamTitle='Two';"))
	r := NewResolver(2*time.Second, "")

	s, err := r.Open(context.Background(), srv.URL, slog.Default())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if s.Name != "Meta FM" {
		t.Errorf("name: got %q", s.Name)
	}

	var titles []string
	s.MetadataCallbackFunc = func(m *Metadata) {
		titles = append(titles, m.StreamTitle)
	}

	audio, err := io.ReadAll(s)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := bytes.Repeat([]byte{'A'}, 4*testMetaint); !bytes.Equal(audio, want) {
		t.Errorf("audio: got %q", audio)
	}
	if len(titles) != 2 || titles[0] != "One" || titles[1] != "Two" {
		t.Errorf("titles: got %v", titles)
	}
	if s.Metadata().StreamTitle != "Two" {
		t.Errorf("last metadata: got %+v", s.Metadata())
	}
}

func TestNowPlaying(t *testing.T) {
	srv := icyServer(t, icyBody("", "StreamTitle='Artist - Song';StreamUrl='http://x/';"))
	r := NewResolver(2*time.Second, "")

	np, err := r.NowPlaying(context.Background(), srv.URL, slog.Default())
	if err != nil {
		t.Fatalf("now playing: %v", err)
	}
	if np.StreamTitle != "Artist - Song" || np.StreamURL != "http://x/" {
		t.Errorf("metadata: got %+v", np.Metadata)
	}
	if np.Station.Name != "Meta FM" {
		t.Errorf("station: got %+v", np.Station)
	}
}

func TestNowPlayingWithoutMetaint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("audio"))
	}))
	defer srv.Close()

	r := NewResolver(2*time.Second, "")
	if _, err := r.NowPlaying(context.Background(), srv.URL, slog.Default()); !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("expected ErrNoMetadata, got %v", err)
	}
}
