// Package radiobrowser is a small client for the radio-browser.info station
// directory. Only the read-only search endpoint is used.
package radiobrowser
