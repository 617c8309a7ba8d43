// Package compiler turns generated panel source into a mountable component,
// or fails cleanly. It is the only suspension point of the sandbox: parsing
// and decoding run in their own goroutine while the caller waits on a
// configurable time budget.
//
// A timed-out or superseded attempt is abandoned, never aborted; its eventual
// result is discarded by the registry's generation check. The compiler itself
// holds no per-panel state beyond a content-addressed cache of previously
// compiled components.
package compiler
