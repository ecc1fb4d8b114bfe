// Package player launches local media players for a stream URL and reports
// which playback backends the host offers.
//
// Launches are fire-and-forget: the process is started and reaped in the
// background, nothing tracks it afterwards.
package player
