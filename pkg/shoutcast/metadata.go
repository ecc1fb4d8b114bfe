package shoutcast

import (
	"strings"
)

// Metadata is a parsed ICY metadata block.
type Metadata struct {
	StreamTitle string `json:"stream_title"`
	StreamURL   string `json:"stream_url,omitempty"`
}

// NewMetadata parses a block such as StreamTitle='Artist - Song';StreamUrl='';
// Trailing NUL padding is ignored.
func NewMetadata(b []byte) *Metadata {
	s := strings.TrimRight(string(b), "\x00")

	m := &Metadata{}
	for s != "" {
		key, rest, ok := strings.Cut(s, "='")
		if !ok {
			break
		}
		// Values may contain quotes and semicolons, so end on the "';" pair.
		value, tail, found := strings.Cut(rest, "';")
		if !found {
			value = strings.TrimSuffix(rest, "'")
			tail = ""
		}

		switch strings.TrimSpace(key) {
		case "StreamTitle":
			m.StreamTitle = value
		case "StreamUrl":
			m.StreamURL = value
		}
		s = tail
	}

	return m
}

// Equals compares two metadata blocks. A nil block only equals nil.
func (m *Metadata) Equals(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.StreamTitle == other.StreamTitle && m.StreamURL == other.StreamURL
}
