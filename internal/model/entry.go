package model

// Status is the lifecycle state of a tracked panel entry.
type Status string

const (
	// StatusLoading means a compile attempt for the entry's current
	// generation is in flight.
	StatusLoading Status = "loading"
	// StatusReady means the entry holds a compiled component and the current
	// attempt produced no errors.
	StatusReady Status = "ready"
	// StatusError means the current attempt failed to import, validate, or
	// render. At least one of ImportError/RenderError is set.
	StatusError Status = "error"
)

// Entry is the registry's unit of tracked state for one panel.
//
// Component holds the compiled handle once a compile attempt succeeds. It is
// typed as any on purpose: the render boundary re-checks its concrete shape
// before mounting, because the handle crosses a trust boundary between the
// compiler and the renderer.
type Entry struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Source    string    `json:"source"`
	Placement Placement `json:"placement"`
	Status    Status    `json:"status"`

	Component any `json:"-"`

	// ImportError and RenderError are independent: a panel can compile
	// cleanly and still blow up at mount time.
	ImportError string `json:"importError,omitempty"`
	RenderError string `json:"renderError,omitempty"`

	// Generation is a per-entry monotonic attempt counter. Every register or
	// retry bumps it; an in-flight compile result is applied only if its
	// generation still matches, so a slow stale attempt can never clobber a
	// newer one.
	Generation uint64 `json:"generation"`
}
