package boundary

import (
	"fmt"
	"sync"
	"time"

	"github.com/vk/hotpanel/internal/model"
	"github.com/vk/hotpanel/internal/registry"
	"github.com/vk/hotpanel/internal/reporter"
	"github.com/vk/hotpanel/internal/schema"
)

// defaultAttributionWindow bounds how long after its mount a panel stays the
// prime suspect for an unattributed runtime fault.
const defaultAttributionWindow = 2 * time.Second

// WidgetView is one evaluated widget, ready for JSON serialization.
type WidgetView struct {
	Type  string         `json:"type"`
	Name  string         `json:"name"`
	Attrs map[string]any `json:"attrs"`
}

// View is the rendered output of one mounted panel.
type View struct {
	PanelID   string          `json:"panelId"`
	Title     string          `json:"title"`
	Placement model.Placement `json:"placement"`
	Widgets   []WidgetView    `json:"widgets"`
}

// mountRecord remembers the most recent successful mount, for fault
// attribution.
type mountRecord struct {
	panelID string
	path    string
	at      time.Time
}

// Boundary mounts compiled panels and routes every mount-time failure back to
// the registry. It is safe for concurrent use.
type Boundary struct {
	reg    *registry.Registry
	rep    *reporter.Reporter
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	mounted map[string]uint64 // panel id -> last generation mounted
	views   map[string]*View
	order   []string
	paths   map[string]string // tracked panel id -> path, for stack matching
	last    mountRecord
}

// Option configures a Boundary.
type Option func(*Boundary)

// WithAttributionWindow overrides the recency window used for fault
// attribution.
func WithAttributionWindow(d time.Duration) Option {
	return func(b *Boundary) { b.window = d }
}

// withClock replaces the wall clock, for tests.
func withClock(now func() time.Time) Option {
	return func(b *Boundary) { b.now = now }
}

// New creates a Boundary reporting into the given registry and failure log.
func New(reg *registry.Registry, rep *reporter.Reporter, opts ...Option) *Boundary {
	if reg == nil || rep == nil {
		panic("boundary: registry and reporter are required")
	}
	b := &Boundary{
		reg:     reg,
		rep:     rep,
		window:  defaultAttributionWindow,
		now:     time.Now,
		mounted: make(map[string]uint64),
		views:   make(map[string]*View),
		paths:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// MountAll reconciles the boundary against a registry snapshot: it mounts
// every ready entry whose current generation has not been mounted yet and
// drops views for entries that are gone or no longer ready.
//
// MountAll must not be called from inside a registry subscriber; mounting can
// itself mutate the registry.
func (b *Boundary) MountAll(entries []model.Entry) {
	b.mu.Lock()
	seen := make(map[string]struct{}, len(entries))
	order := make([]string, 0, len(entries))
	var toMount []model.Entry

	for _, e := range entries {
		seen[e.ID] = struct{}{}
		order = append(order, e.ID)
		b.paths[e.ID] = e.Path
		if e.Status != model.StatusReady {
			delete(b.views, e.ID)
			continue
		}
		if b.mounted[e.ID] != e.Generation {
			toMount = append(toMount, e)
		}
	}
	for id := range b.views {
		if _, ok := seen[id]; !ok {
			delete(b.views, id)
		}
	}
	for id := range b.paths {
		if _, ok := seen[id]; !ok {
			delete(b.paths, id)
			delete(b.mounted, id)
		}
	}
	b.order = order
	b.mu.Unlock()

	for _, e := range toMount {
		b.mount(e)
	}
}

// Views returns the rendered views of all currently mounted panels, in the
// registry's entry order.
func (b *Boundary) Views() []View {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]View, 0, len(b.views))
	for _, id := range b.order {
		if v, ok := b.views[id]; ok {
			out = append(out, *v)
		}
	}
	return out
}

// mount shape-checks and renders one ready entry.
func (b *Boundary) mount(e model.Entry) {
	b.mu.Lock()
	b.mounted[e.ID] = e.Generation
	b.mu.Unlock()

	component, msg := checkShape(e.Component)
	if component == nil {
		b.rep.Record(e.ID, e.Path, model.ErrValidation, msg, reporter.Detail{Source: e.Source})
		b.reg.SetRenderError(e.ID, msg)
		return
	}

	view, err := b.render(e, component)
	if err != nil {
		b.rep.Record(e.ID, e.Path, model.ErrRender, err.Error(), reporter.Detail{Source: e.Source})
		b.reg.SetRenderError(e.ID, err.Error())
		return
	}

	b.mu.Lock()
	b.views[e.ID] = view
	b.last = mountRecord{panelID: e.ID, path: e.Path, at: b.now()}
	b.mu.Unlock()
}

// checkShape is the last-line check before mounting: the resolved value must
// be a structured component with at least one widget, not a primitive and
// not absent. It returns the component, or nil and a reason.
func checkShape(handle any) (*schema.Component, string) {
	switch v := handle.(type) {
	case nil:
		return nil, "component is absent"
	case string, bool, int, int64, float64:
		return nil, fmt.Sprintf("component is a primitive %T, not a mountable unit", v)
	case *schema.Component:
		if v == nil {
			return nil, "component is absent"
		}
		if len(v.Widgets) == 0 {
			return nil, "component defines no widgets"
		}
		return v, ""
	default:
		return nil, fmt.Sprintf("component has unexpected type %T", v)
	}
}
