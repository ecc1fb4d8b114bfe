// Package shoutcast resolves internet radio URLs to playable streams and
// reads ICY/Shoutcast stream metadata.
//
// Resolution follows HTTP redirects, probes the content type and unwraps
// .pls and .m3u playlists to their first entry. Stream strips ICY metadata
// blocks so only audio bytes are returned, and reports title changes through
// a callback.
package shoutcast
