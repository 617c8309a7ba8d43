package boundary

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/hotpanel/internal/model"
	"github.com/vk/hotpanel/internal/schema"
)

// renderFunctions is the restricted function table available to widget
// expressions. Generated source gets string and number helpers and nothing
// that can touch the host (no filesystem, no network, no templating of
// external files).
var renderFunctions = map[string]function.Function{
	"upper":  stdlib.UpperFunc,
	"lower":  stdlib.LowerFunc,
	"format": stdlib.FormatFunc,
	"join":   stdlib.JoinFunc,
	"concat": stdlib.ConcatFunc,
	"max":    stdlib.MaxFunc,
	"min":    stdlib.MinFunc,
}

// newEvalContext builds the evaluation context a panel's expressions run in.
// The panel sees itself (name, title, path) and the helper functions, nothing
// else.
func newEvalContext(e model.Entry, component *schema.Component) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"panel": cty.ObjectVal(map[string]cty.Value{
				"name":  cty.StringVal(component.Name),
				"title": cty.StringVal(component.Title),
				"path":  cty.StringVal(e.Path),
			}),
		},
		Functions: renderFunctions,
	}
}

// render evaluates every widget expression into a JSON-ready view. A panic
// during evaluation is recovered here and surfaces as an ordinary render
// error carrying the stack.
func (b *Boundary) render(e model.Entry, component *schema.Component) (view *View, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic while rendering panel %s: %v\n%s", e.ID, rec, debug.Stack())
		}
	}()

	evalCtx := newEvalContext(e, component)
	widgets := make([]WidgetView, 0, len(component.Widgets))

	for _, w := range component.Widgets {
		attrs, diags := w.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("widget '%s': %w", w.Name, diags)
		}

		values := make(map[string]any, len(attrs))
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(evalCtx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("widget '%s', attribute '%s': %w", w.Name, name, diags)
			}
			native, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("widget '%s', attribute '%s': %w", w.Name, name, err)
			}
			values[name] = native
		}

		widgets = append(widgets, WidgetView{Type: w.Type, Name: w.Name, Attrs: values})
	}

	return &View{
		PanelID:   e.ID,
		Title:     component.Title,
		Placement: e.Placement,
		Widgets:   widgets,
	}, nil
}

// ctyToNative converts an evaluated cty value into plain Go data by round
// tripping through its JSON encoding.
func ctyToNative(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, fmt.Errorf("value not serializable: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("value not serializable: %w", err)
	}
	return out, nil
}
