// Package reporter keeps an append-only, queryable log of structured panel
// failures. Records are keyed by panel id and survive entry replacement and
// unregistration, so the log doubles as an audit trail for the authoring
// pipeline's "fix this panel" round-trip.
package reporter

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vk/hotpanel/internal/model"
)

// Detail carries the optional fields of a failure record.
type Detail struct {
	// Source is the generated source text of the failing attempt.
	Source string
	// Stack is a recovered panic trace, when one exists.
	Stack string
}

// Reporter is a thread-safe failure log. The zero value is not usable; use New.
type Reporter struct {
	logger  *slog.Logger
	onError func(model.PanelError)

	mu      sync.Mutex
	records []model.PanelError
}

// New creates a Reporter. onError, if non-nil, is invoked synchronously for
// every record, for host-level telemetry.
func New(logger *slog.Logger, onError func(model.PanelError)) *Reporter {
	return &Reporter{
		logger:  logger,
		onError: onError,
	}
}

// Record appends one failure record and fires the onError callback. A
// panicking callback is recovered and logged; it must never throw back into
// the recorder.
func (r *Reporter) Record(panelID, path string, kind model.ErrorKind, message string, detail Detail) {
	record := model.PanelError{
		ID:        uuid.NewString(),
		PanelID:   panelID,
		Path:      path,
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now(),
		Source:    detail.Source,
		Stack:     detail.Stack,
	}

	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()

	r.logger.Error("Panel failure recorded.", "panel", panelID, "kind", kind, "message", message)

	if r.onError != nil {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("onError callback panicked.", "panel", panelID, "panic", rec)
				}
			}()
			r.onError(record)
		}()
	}
}

// LatestError returns the most recent record for the given panel, or nil.
func (r *Reporter) LatestError(panelID string) *model.PanelError {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].PanelID == panelID {
			record := r.records[i]
			return &record
		}
	}
	return nil
}

// AllErrors returns every record in insertion order.
func (r *Reporter) AllErrors() []model.PanelError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.PanelError, len(r.records))
	copy(out, r.records)
	return out
}

// ErrorsFor returns every record for one panel, in insertion order.
func (r *Reporter) ErrorsFor(panelID string) []model.PanelError {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PanelError
	for _, record := range r.records {
		if record.PanelID == panelID {
			out = append(out, record)
		}
	}
	return out
}
