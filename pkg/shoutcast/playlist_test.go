package shoutcast

import (
	"errors"
	"testing"
)

func TestParsePlaylist(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr error
	}{
		{
			name:    "pls",
			content: "[playlist]\nNumberOfEntries=2\nFile1=http://a.example/stream\nTitle1=A\nFile2=http://b.example/stream\n",
			want:    "http://a.example/stream",
		},
		{
			name:    "pls lower case keys and crlf",
			content: "[playlist]\r\nfile1=https://a.example/live\r\n",
			want:    "https://a.example/live",
		},
		{
			name:    "pls skips non http entries",
			content: "[playlist]\nFile1=rtsp://a.example/x\nFile2=http://b.example/y\n",
			want:    "http://b.example/y",
		},
		{
			name:    "extended m3u",
			content: "#EXTM3U\n#EXTINF:-1,Station\nhttp://c.example/mp3\nhttp://d.example/mp3\n",
			want:    "http://c.example/mp3",
		},
		{
			name:    "bare url",
			content: "  https://e.example/aac  \n",
			want:    "https://e.example/aac",
		},
		{
			name:    "pls wins over m3u lines",
			content: "http://m3u.example/\nFile1=http://pls.example/\n",
			want:    "http://pls.example/",
		},
		{
			name:    "no entries",
			content: "#EXTM3U\n#EXTINF:-1,Nothing\n",
			wantErr: ErrEmptyPlaylist,
		},
		{
			name:    "empty",
			content: "",
			wantErr: ErrEmptyPlaylist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlaylist(tt.content)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentTypes(t *testing.T) {
	tests := []struct {
		ct       string
		audio    bool
		textish  bool
		playlist bool
	}{
		{ct: "audio/mpeg", audio: true},
		{ct: "audio/aacp", audio: true},
		{ct: "application/ogg", audio: true},
		{ct: "audio/x-mpegurl", textish: true, playlist: true},
		{ct: "audio/x-scpls", textish: true, playlist: true},
		{ct: "application/vnd.apple.mpegurl", textish: true, playlist: true},
		{ct: "text/plain; charset=utf-8", textish: true},
		{ct: "text/html", textish: true},
		{ct: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.ct, func(t *testing.T) {
			if got := isAudioType(tt.ct); got != tt.audio {
				t.Errorf("isAudioType: got %v, want %v", got, tt.audio)
			}
			if got := isTextish(tt.ct); got != tt.textish {
				t.Errorf("isTextish: got %v, want %v", got, tt.textish)
			}
			if got := looksLikePlaylist(tt.ct, "http://x/stream", ""); got != tt.playlist {
				t.Errorf("looksLikePlaylist: got %v, want %v", got, tt.playlist)
			}
		})
	}
}

func TestLooksLikePlaylistByURL(t *testing.T) {
	for _, u := range []string{"http://x/listen.pls", "http://x/a.M3U", "http://x/live.m3u8?token=1"} {
		if !looksLikePlaylist("", u, "") {
			t.Errorf("expected %s to look like a playlist", u)
		}
	}
	if looksLikePlaylist("", "http://x/stream.mp3", "<html></html>") {
		t.Error("html page should not look like a playlist")
	}
}
