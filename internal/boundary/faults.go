package boundary

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/vk/hotpanel/internal/model"
	"github.com/vk/hotpanel/internal/reporter"
)

// Protect runs fn and converts a panic into an attributed render failure.
// Host layers wrap code that executes near mounted panels with it so that a
// fault lands on the offending entry instead of unwinding the whole surface.
func (b *Boundary) Protect(logger *slog.Logger, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			b.HandleFault(logger, rec, string(debug.Stack()))
		}
	}()
	fn()
}

// HandleFault attributes a recovered runtime fault to a mounted panel and
// reports it. Attribution is best-effort: the most recently mounted panel
// within the attribution window is the default suspect, and a stack trace
// fragment naming a different tracked panel's path wins the tiebreak. A fault
// matching neither signal is logged and dropped — guessing would pin the
// failure on an innocent panel.
func (b *Boundary) HandleFault(logger *slog.Logger, rec any, stack string) {
	b.mu.Lock()
	suspect := ""
	suspectPath := ""
	if b.last.panelID != "" && b.now().Sub(b.last.at) <= b.window {
		suspect = b.last.panelID
		suspectPath = b.last.path
	}
	for id, path := range b.paths {
		if id == suspect || path == "" {
			continue
		}
		if strings.Contains(stack, path) || strings.Contains(stack, filepath.Base(path)) {
			suspect = id
			suspectPath = path
			break
		}
	}
	b.mu.Unlock()

	if suspect == "" {
		logger.Warn("Unattributable runtime fault dropped.", "panic", fmt.Sprintf("%v", rec))
		return
	}

	message := fmt.Sprintf("runtime fault: %v", rec)
	b.rep.Record(suspect, suspectPath, model.ErrRender, message, reporter.Detail{Stack: stack})
	b.reg.SetRenderError(suspect, message)
}
