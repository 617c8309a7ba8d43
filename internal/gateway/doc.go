// Package gateway exposes the sandbox over websocket. Every connected UI
// client receives the full snapshot (entries, rendered views, failure log)
// on connect and again after every mutation, and can push control frames
// back: panel updates, retries, and unregistrations.
//
// The gateway is a thin I/O shell; it owns no panel state. Slow clients are
// dropped rather than buffered without bound.
package gateway
