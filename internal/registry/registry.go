package registry

import (
	"sync"

	"github.com/vk/hotpanel/internal/compiler"
	"github.com/vk/hotpanel/internal/model"
	"github.com/vk/hotpanel/internal/reporter"
)

// Subscriber receives the full, insertion-ordered entry sequence on every
// mutation. Delivery is synchronous with the mutation and happens under the
// registry's lock: a subscriber must not call back into the registry; it
// should hand the snapshot off (e.g. onto a channel) and return.
type Subscriber func(entries []model.Entry)

// Registry is the orchestrator of the hot-load sandbox. It is safe for
// concurrent use.
type Registry struct {
	compiler *compiler.Compiler
	reporter *reporter.Reporter

	mu      sync.Mutex
	entries map[string]*model.Entry
	order   []string
	subs    map[int]Subscriber
	nextSub int
}

// New creates a Registry backed by the given compiler and failure log.
func New(c *compiler.Compiler, r *reporter.Reporter) *Registry {
	if c == nil || r == nil {
		panic("registry: compiler and reporter are required")
	}
	return &Registry{
		compiler: c,
		reporter: r,
		entries:  make(map[string]*model.Entry),
		subs:     make(map[int]Subscriber),
	}
}

// Snapshot returns a copy of the current entry sequence in insertion order.
func (r *Registry) Snapshot() []model.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Entry returns a copy of one entry by id.
func (r *Registry) Entry(id string) (model.Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return model.Entry{}, false
	}
	return *e, true
}

// Subscribe registers a listener and immediately delivers the current
// snapshot to it. The returned function unsubscribes.
func (r *Registry) Subscribe(fn Subscriber) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	fn(r.snapshotLocked())
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// snapshotLocked builds the ordered entry sequence. Callers must hold mu.
func (r *Registry) snapshotLocked() []model.Entry {
	out := make([]model.Entry, 0, len(r.order))
	for _, id := range r.order {
		if e, ok := r.entries[id]; ok {
			out = append(out, *e)
		}
	}
	return out
}

// notifyLocked delivers the current snapshot to every subscriber. Callers
// must hold mu.
func (r *Registry) notifyLocked() {
	snapshot := r.snapshotLocked()
	for _, fn := range r.subs {
		fn(snapshot)
	}
}
