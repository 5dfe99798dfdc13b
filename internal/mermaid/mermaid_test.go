package mermaid

import (
	"errors"
	"testing"
	"time"

	"github.com/DragonRuins/hubdoc/internal/model"
	"github.com/DragonRuins/hubdoc/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diagramSchema(t *testing.T) *model.Schema {
	t.Helper()
	s, err := model.NewSchema([]*model.NodeSpec{
		{Name: "doc", Content: "block+"},
		{Name: "paragraph", Group: "block", Content: "inline*"},
		{
			Name:  "mermaidBlock",
			Group: "block",
			Atom:  true,
			Attrs: map[string]*model.AttributeSpec{"code": {Default: ""}},
		},
		{Name: "text", Group: "inline"},
	}, nil)
	require.NoError(t, err)
	return s
}

func diagramNode(t *testing.T, s *model.Schema, code string) *model.Node {
	t.Helper()
	return s.MustNode("mermaidBlock", model.AttrMap{"code": code})
}

type fakeEngine struct {
	calls []string
	fail  bool
}

func (e *fakeEngine) Render(id, code string) (string, error) {
	e.calls = append(e.calls, code)
	if e.fail {
		return "", &RenderError{Message: "syntax error"}
	}
	return "<svg>" + code + "</svg>", nil
}

func TestLoadEngineIsSticky(t *testing.T) {
	t.Cleanup(func() { RegisterEngineFactory(nil) })

	factoryCalls := 0
	RegisterEngineFactory(func() (Engine, error) {
		factoryCalls++
		return nil, errors.New("no runtime")
	})

	assert.Equal(t, NotLoaded, CurrentLoadState())
	_, err := LoadEngine()
	require.Error(t, err)
	assert.Equal(t, Failed, CurrentLoadState())

	// The failure is cached, not retried
	_, err = LoadEngine()
	require.Error(t, err)
	assert.Equal(t, 1, factoryCalls)

	// Until the loader is reset
	ResetLoader()
	_, _ = LoadEngine()
	assert.Equal(t, 2, factoryCalls)
}

func TestPlaceholderEngine(t *testing.T) {
	t.Cleanup(func() { RegisterEngineFactory(nil) })
	RegisterEngineFactory(nil)

	engine, err := LoadEngine()
	require.NoError(t, err)
	assert.Equal(t, Ready, CurrentLoadState())

	svg, err := engine.Render("d1", "graph TD\nA-->B")
	require.NoError(t, err)
	assert.Contains(t, svg, `id="d1"`)
	assert.Contains(t, svg, "A--&gt;B")

	_, err = engine.Render("d2", "   ")
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
}

func TestViewDebouncesRendering(t *testing.T) {
	testClock := clock.Freeze()
	t.Cleanup(clock.Unfreeze)
	t.Cleanup(func() { RegisterEngineFactory(nil) })

	engine := &fakeEngine{}
	RegisterEngineFactory(func() (Engine, error) { return engine, nil })

	s := diagramSchema(t)
	view := NewViewFactory(500 * time.Millisecond)(diagramNode(t, s, "graph TD"), true).(*View)

	// Nothing renders before the delay elapses
	testClock.FastForward(499 * time.Millisecond)
	assert.Empty(t, engine.calls)

	// Each update restarts the debounce; only the final code renders
	view.Update(diagramNode(t, s, "graph TD;A"), true)
	testClock.FastForward(400 * time.Millisecond)
	view.Update(diagramNode(t, s, "graph TD;A-->B"), true)
	testClock.FastForward(500 * time.Millisecond)

	require.Equal(t, []string{"graph TD;A-->B"}, engine.calls)
	assert.Equal(t, "<svg>graph TD;A-->B</svg>", view.SVG())
	assert.NoError(t, view.Err())
}

func TestViewKeepsLastGoodImage(t *testing.T) {
	testClock := clock.Freeze()
	t.Cleanup(clock.Unfreeze)
	t.Cleanup(func() { RegisterEngineFactory(nil) })

	engine := &fakeEngine{}
	RegisterEngineFactory(func() (Engine, error) { return engine, nil })

	s := diagramSchema(t)
	view := NewViewFactory(100 * time.Millisecond)(diagramNode(t, s, "graph TD"), true).(*View)
	testClock.FastForward(100 * time.Millisecond)
	require.Equal(t, "<svg>graph TD</svg>", view.SVG())

	// A failing render surfaces the error but keeps the image
	engine.fail = true
	view.Update(diagramNode(t, s, "graph %%"), true)
	testClock.FastForward(100 * time.Millisecond)
	assert.Error(t, view.Err())
	assert.Equal(t, "<svg>graph TD</svg>", view.SVG())
}

func TestViewIgnoresUnchangedCode(t *testing.T) {
	testClock := clock.Freeze()
	t.Cleanup(clock.Unfreeze)
	t.Cleanup(func() { RegisterEngineFactory(nil) })

	engine := &fakeEngine{}
	RegisterEngineFactory(func() (Engine, error) { return engine, nil })

	s := diagramSchema(t)
	view := NewViewFactory(100 * time.Millisecond)(diagramNode(t, s, "graph TD"), true).(*View)
	testClock.FastForward(100 * time.Millisecond)
	require.Len(t, engine.calls, 1)

	// Same code again: no new render is scheduled
	assert.True(t, view.Update(diagramNode(t, s, "graph TD"), true))
	testClock.FastForward(time.Second)
	assert.Len(t, engine.calls, 1)

	// A different node type forces a remount
	assert.False(t, view.Update(s.MustNode("paragraph", nil), true))
}

func TestViewDestroyCancelsPendingRender(t *testing.T) {
	testClock := clock.Freeze()
	t.Cleanup(clock.Unfreeze)
	t.Cleanup(func() { RegisterEngineFactory(nil) })

	engine := &fakeEngine{}
	RegisterEngineFactory(func() (Engine, error) { return engine, nil })

	s := diagramSchema(t)
	view := NewViewFactory(100 * time.Millisecond)(diagramNode(t, s, "graph TD"), true).(*View)
	view.Destroy()
	testClock.FastForward(time.Second)
	assert.Empty(t, engine.calls)
}
