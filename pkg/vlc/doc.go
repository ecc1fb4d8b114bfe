// Package vlc talks to VLC's remote-control (rc) interface over TCP.
//
// VLC exposes rc when started with --extraintf rc --rc-host=host:port. Every
// call here opens a fresh connection, writes one or more command lines,
// collects whatever VLC prints back and closes. Replies are opaque and are
// returned verbatim.
package vlc
