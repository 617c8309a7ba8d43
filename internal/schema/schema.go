package schema

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// --- Generated panel source structures ---

// widgetBlock is the raw decode target for a 'widget' block. Attribute values
// stay undecoded in Body so they can be evaluated lazily at mount time.
type widgetBlock struct {
	Type string   `hcl:"type,label"`
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// panelBlock is the raw decode target for a 'panel' block.
type panelBlock struct {
	Name    string         `hcl:"name,label"`
	Title   string         `hcl:"title"`
	Widgets []*widgetBlock `hcl:"widget,block"`
}

// panelFile is the top-level structure of one generated source file.
type panelFile struct {
	Panels []*panelBlock `hcl:"panel,block"`
}

// --- Compiled component ---

// Widget is one compiled widget of a panel. Its attributes remain HCL
// expressions; the render boundary evaluates them against a restricted
// evaluation context.
type Widget struct {
	Type string
	Name string
	Body hcl.Body
}

// Component is the compiled, mountable handle produced from one panel source.
type Component struct {
	Name    string
	Title   string
	Widgets []*Widget
}

// widgetTypes is the set of widget kinds the render layer knows how to draw.
var widgetTypes = map[string]struct{}{
	"text":   {},
	"metric": {},
	"list":   {},
	"chart":  {},
}

// KnownWidgetType reports whether the render layer supports the given kind.
func KnownWidgetType(kind string) bool {
	_, ok := widgetTypes[kind]
	return ok
}

// Decode parses and decodes one generated panel source into a Component.
// The filename is used only for diagnostic positions. Any returned
// diagnostics are import failures: the source never became a component.
func Decode(filename string, source string) (*Component, hcl.Diagnostics) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(source), filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var parsed panelFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, diags
	}

	if len(parsed.Panels) != 1 {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Source must define exactly one panel",
			Detail:   fmt.Sprintf("Expected a single 'panel' block, found %d.", len(parsed.Panels)),
		}}
	}

	block := parsed.Panels[0]
	component := &Component{
		Name:  block.Name,
		Title: block.Title,
	}

	for _, w := range block.Widgets {
		if !KnownWidgetType(w.Type) {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Unsupported widget type",
				Detail:   fmt.Sprintf("Widget '%s' has type '%s', which the render layer does not support.", w.Name, w.Type),
			}}
		}
		component.Widgets = append(component.Widgets, &Widget{
			Type: w.Type,
			Name: w.Name,
			Body: w.Body,
		})
	}

	return component, nil
}
