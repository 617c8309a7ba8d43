package registry

import (
	"context"

	"github.com/vk/hotpanel/internal/compiler"
	"github.com/vk/hotpanel/internal/ctxlog"
	"github.com/vk/hotpanel/internal/model"
	"github.com/vk/hotpanel/internal/reporter"
)

// RegisterFromUpdate upserts an entry for the update's id in state loading
// and fires a compile attempt for it. It returns once the entry is
// registered; the attempt proceeds independently and its completion is
// observed through the subscription stream, not through this call.
//
// Re-registering an existing id replaces the entry in place (keeping its
// position in the sequence) and supersedes any in-flight attempt for it.
func (r *Registry) RegisterFromUpdate(ctx context.Context, update model.PanelUpdate) {
	logger := ctxlog.FromContext(ctx)
	if update.ID == "" {
		logger.Warn("Ignoring panel update with empty id.", "path", update.Path)
		return
	}

	r.mu.Lock()
	e, ok := r.entries[update.ID]
	if !ok {
		e = &model.Entry{ID: update.ID}
		r.entries[update.ID] = e
		r.order = append(r.order, update.ID)
	}
	e.Path = update.Path
	e.Source = update.Source
	e.Placement = update.Placement
	e.Status = model.StatusLoading
	e.Component = nil
	e.ImportError = ""
	e.RenderError = ""
	e.Generation++
	gen := e.Generation
	r.notifyLocked()
	r.mu.Unlock()

	logger.Debug("Panel registered, compile scheduled.", "panel", update.ID, "generation", gen)
	go r.compile(ctx, update.ID, gen, update.Path, update.Source)
}

// Retry transitions an existing entry back to loading and recompiles its
// stored source. Unknown ids are a no-op.
func (r *Registry) Retry(ctx context.Context, id string) {
	logger := ctxlog.FromContext(ctx)

	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		logger.Debug("Retry requested for unknown panel, ignoring.", "panel", id)
		return
	}
	e.Status = model.StatusLoading
	e.Component = nil
	e.ImportError = ""
	e.RenderError = ""
	e.Generation++
	gen := e.Generation
	path, source := e.Path, e.Source
	r.notifyLocked()
	r.mu.Unlock()

	logger.Debug("Panel retry scheduled.", "panel", id, "generation", gen)
	go r.compile(ctx, id, gen, path, source)
}

// SetRenderError transitions a ready (or already failed) entry to error,
// setting only its render error. This is how the render boundary reports
// failures discovered after a panel began executing. Entries that are still
// loading are left alone: a render fault cannot belong to an attempt that
// has not produced a component yet.
func (r *Registry) SetRenderError(id string, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || e.Status == model.StatusLoading {
		return
	}
	e.Status = model.StatusError
	e.RenderError = message
	r.notifyLocked()
}

// Unregister removes the entry. Prior failure records stay in the reporter.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return
	}
	delete(r.entries, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.notifyLocked()
}

// compile runs one attempt and applies its result, unless a newer attempt
// has superseded it in the meantime.
func (r *Registry) compile(ctx context.Context, id string, gen uint64, path string, source string) {
	logger := ctxlog.FromContext(ctx)
	res := r.compiler.Resolve(ctx, path, source)

	// A compile cut short by host shutdown is abandoned like a stale
	// attempt: no state change, no failure record.
	if !res.Success && ctx.Err() != nil {
		logger.Debug("Discarding compile result cancelled by shutdown.", "panel", id, "generation", gen)
		return
	}

	if !res.Success {
		if !r.currentGeneration(id, gen) {
			logger.Debug("Discarding stale compile result.", "panel", id, "generation", gen)
			return
		}
		// The failure record must be queryable by the time any observer sees
		// the error status, so it is written before the entry flips.
		// Recording outside the lock keeps the onError callback off the
		// registry mutex.
		r.reporter.Record(id, path, res.Kind, res.Err.Error(), reporter.Detail{Source: source})
	}

	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok || e.Generation != gen {
		r.mu.Unlock()
		logger.Debug("Discarding stale compile result.", "panel", id, "generation", gen)
		return
	}
	r.applyLocked(e, res)
	r.notifyLocked()
	r.mu.Unlock()

	logger.Debug("Compile result applied.", "panel", id, "generation", gen, "success", res.Success, "duration", res.Duration)
}

// currentGeneration reports whether gen is still the entry's latest attempt.
func (r *Registry) currentGeneration(id string, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return ok && e.Generation == gen
}

// applyLocked writes a compile result into an entry. Callers must hold mu.
func (r *Registry) applyLocked(e *model.Entry, res compiler.Result) {
	if res.Success {
		e.Status = model.StatusReady
		e.Component = res.Component
		e.ImportError = ""
		return
	}
	e.Status = model.StatusError
	e.Component = nil
	e.ImportError = res.Err.Error()
}
