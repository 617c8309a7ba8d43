package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_ValidPanel(t *testing.T) {
	t.Parallel()

	source := `
panel "latency_chart" {
  title = "p99 latency"
  widget "text" "headline" {
    content = "steady"
  }
  widget "metric" "p99" {
    value = 42.5
    unit  = "ms"
  }
}
`
	component, diags := Decode("/gen/latency_chart.hcl", source)

	require.False(t, diags.HasErrors(), "unexpected diagnostics: %s", diags.Error())
	require.NotNil(t, component)
	assert.Equal(t, "latency_chart", component.Name)
	assert.Equal(t, "p99 latency", component.Title)
	require.Len(t, component.Widgets, 2)
	assert.Equal(t, "text", component.Widgets[0].Type)
	assert.Equal(t, "headline", component.Widgets[0].Name)
	assert.Equal(t, "metric", component.Widgets[1].Type)
}

func TestDecode_SyntaxError(t *testing.T) {
	t.Parallel()

	component, diags := Decode("/gen/broken.hcl", `panel "broken" {`)

	require.True(t, diags.HasErrors())
	assert.Nil(t, component)
}

func TestDecode_NoPanelBlock(t *testing.T) {
	t.Parallel()

	component, diags := Decode("/gen/empty.hcl", ``)

	require.True(t, diags.HasErrors())
	assert.Nil(t, component)
	assert.Contains(t, diags.Error(), "exactly one panel")
}

func TestDecode_MultiplePanelBlocks(t *testing.T) {
	t.Parallel()

	source := `
panel "a" {
  title = "a"
}
panel "b" {
  title = "b"
}
`
	component, diags := Decode("/gen/two.hcl", source)

	require.True(t, diags.HasErrors())
	assert.Nil(t, component)
}

func TestDecode_UnsupportedWidgetType(t *testing.T) {
	t.Parallel()

	source := `
panel "weird" {
  title = "weird"
  widget "hologram" "h" {
    content = "nope"
  }
}
`
	component, diags := Decode("/gen/weird.hcl", source)

	require.True(t, diags.HasErrors())
	assert.Nil(t, component)
	assert.Contains(t, diags.Error(), "Unsupported widget type")
}

func TestKnownWidgetType(t *testing.T) {
	t.Parallel()

	assert.True(t, KnownWidgetType("text"))
	assert.True(t, KnownWidgetType("metric"))
	assert.False(t, KnownWidgetType("hologram"))
}
