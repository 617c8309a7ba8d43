package model

import "time"

// ErrorKind classifies a panel failure.
type ErrorKind string

const (
	// ErrImport means the generated source failed to parse or decode.
	ErrImport ErrorKind = "import"
	// ErrValidation means the compiled component had the wrong shape when the
	// render boundary inspected it before mounting.
	ErrValidation ErrorKind = "validation"
	// ErrRender means evaluation failed, or a panic surfaced, during or after
	// mount.
	ErrRender ErrorKind = "render"
	// ErrTimeout means the compile attempt exceeded its time budget.
	ErrTimeout ErrorKind = "timeout"
)

// PanelError is one structured failure record. Records are append-only and
// outlive the entry that produced them.
type PanelError struct {
	// ID is the unique id of this record, not of the panel.
	ID        string    `json:"id"`
	PanelID   string    `json:"panelId"`
	Path      string    `json:"path"`
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`

	// Source is the generated source text of the failing attempt, when the
	// recorder had it at hand. Stack carries a recovered panic trace.
	Source string `json:"source,omitempty"`
	Stack  string `json:"stack,omitempty"`
}
