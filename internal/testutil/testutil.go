// Package testutil provides shared helpers for the sandbox's test suites:
// a thread-safe log buffer, canned panel sources, and polling helpers for
// observing asynchronous compile outcomes.
package testutil

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/hotpanel/internal/ctxlog"
	"github.com/vk/hotpanel/internal/model"
	"github.com/vk/hotpanel/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Logger returns a quiet logger for tests that don't inspect log output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Context returns a background context carrying a quiet logger.
func Context() context.Context {
	return ctxlog.WithLogger(context.Background(), Logger())
}

// ValidPanelSource compiles cleanly and renders one text widget whose content
// evaluates to "HELLO".
const ValidPanelSource = `
panel "greeting" {
  title = "hello"
  widget "text" "headline" {
    content = upper(panel.title)
  }
}
`

// UnparsablePanelSource fails at the HCL syntax level.
const UnparsablePanelSource = `
panel "broken" {
  title = "nope"
`

// WidgetlessPanelSource compiles but defines no widgets, so it fails the
// render boundary's shape check.
const WidgetlessPanelSource = `
panel "hollow" {
  title = "nothing to see"
}
`

// BadExprPanelSource compiles but references an unknown variable, so it fails
// only at mount time.
const BadExprPanelSource = `
panel "late_failure" {
  title = "boom"
  widget "text" "headline" {
    content = missing.value
  }
}
`

// WaitForStatus polls the registry until the panel reaches the wanted status,
// then returns a copy of its entry.
func WaitForStatus(t *testing.T, reg *registry.Registry, id string, want model.Status) model.Entry {
	t.Helper()
	var entry model.Entry
	require.Eventually(t, func() bool {
		e, ok := reg.Entry(id)
		if !ok {
			return false
		}
		entry = e
		return e.Status == want
	}, 2*time.Second, 5*time.Millisecond, "panel %q never reached status %q", id, want)
	return entry
}
