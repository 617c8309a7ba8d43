package reporter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/hotpanel/internal/model"
	"github.com/vk/hotpanel/internal/reporter"
	"github.com/vk/hotpanel/internal/testutil"
)

func TestRecord_AndQueries(t *testing.T) {
	t.Parallel()

	r := reporter.New(testutil.Logger(), nil)

	r.Record("a", "/gen/a.hcl", model.ErrImport, "syntax error", reporter.Detail{Source: "panel {"})
	r.Record("b", "/gen/b.hcl", model.ErrTimeout, "budget exceeded", reporter.Detail{})
	r.Record("a", "/gen/a.hcl", model.ErrRender, "boom", reporter.Detail{Stack: "stacktrace"})

	all := r.AllErrors()
	require.Len(t, all, 3)
	assert.Equal(t, model.ErrImport, all[0].Kind)
	assert.Equal(t, model.ErrTimeout, all[1].Kind)
	assert.Equal(t, model.ErrRender, all[2].Kind)
	assert.NotEmpty(t, all[0].ID)
	assert.NotEqual(t, all[0].ID, all[1].ID)
	assert.False(t, all[0].Timestamp.IsZero())

	latest := r.LatestError("a")
	require.NotNil(t, latest)
	assert.Equal(t, model.ErrRender, latest.Kind)
	assert.Equal(t, "stacktrace", latest.Stack)

	forA := r.ErrorsFor("a")
	require.Len(t, forA, 2)
	assert.Equal(t, "syntax error", forA[0].Message)
	assert.Equal(t, "boom", forA[1].Message)
}

func TestLatestError_Unknown(t *testing.T) {
	t.Parallel()

	r := reporter.New(testutil.Logger(), nil)
	assert.Nil(t, r.LatestError("nope"))
}

func TestRecord_CallbackIsSynchronous(t *testing.T) {
	t.Parallel()

	var seen []model.PanelError
	r := reporter.New(testutil.Logger(), func(e model.PanelError) {
		seen = append(seen, e)
	})

	r.Record("a", "/gen/a.hcl", model.ErrValidation, "wrong shape", reporter.Detail{})

	// No synchronization: Record must have invoked the callback before
	// returning.
	require.Len(t, seen, 1)
	assert.Equal(t, "a", seen[0].PanelID)
	assert.Equal(t, model.ErrValidation, seen[0].Kind)
}

func TestRecord_CallbackPanicIsContained(t *testing.T) {
	t.Parallel()

	r := reporter.New(testutil.Logger(), func(model.PanelError) {
		panic("telemetry exploded")
	})

	require.NotPanics(t, func() {
		r.Record("a", "/gen/a.hcl", model.ErrImport, "syntax error", reporter.Detail{})
	})

	// The record itself must have landed despite the callback failure.
	require.Len(t, r.AllErrors(), 1)
}
