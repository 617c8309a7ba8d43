package model

// PanelUpdate is the unit the authoring pipeline pushes into the sandbox: a
// stable panel id, a logical source path, the literal generated source text,
// and where the panel should sit on the canvas.
//
// Source is retained verbatim on the resulting entry so that diagnostics can
// quote it and so a "fix this panel" round-trip back to the authoring agent
// has the exact text that failed.
type PanelUpdate struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Source    string    `json:"source"`
	Placement Placement `json:"placement"`
}
