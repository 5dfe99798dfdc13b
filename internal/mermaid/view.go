package mermaid

import (
	"time"

	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
	"github.com/DragonRuins/hubdoc/pkg/clock"
	"github.com/DragonRuins/hubdoc/pkg/logging"
)

// View is the node view for one mermaidBlock: it debounces code changes and
// keeps the last successful image when a render fails.
type View struct {
	id       string
	code     string
	svg      string
	err      error
	editable bool

	delay    time.Duration
	timer    clock.Timer
	rendered bool
	disposed bool

	// OnRender is called after every completed render attempt, so the UI (or
	// a test) can repaint.
	OnRender func(v *View)
}

// NewViewFactory builds the factory registered for the mermaidBlock type.
func NewViewFactory(delay time.Duration) extension.NodeViewFactory {
	return func(node *model.Node, editable bool) extension.NodeView {
		v := &View{
			id:       NextRenderID(),
			editable: editable,
			delay:    delay,
		}
		v.Update(node, editable)
		return v
	}
}

// Update receives a new version of the node. The first code value renders
// after the debounce delay, as does every later change.
func (v *View) Update(node *model.Node, editable bool) bool {
	if node.Type.Name != "mermaidBlock" {
		return false
	}
	v.editable = editable
	code, _ := node.Attr("code").(string)
	if v.rendered && code == v.code {
		return true
	}
	v.code = code
	v.rendered = true
	v.schedule()
	return true
}

func (v *View) schedule() {
	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = clock.CurrentClock().AfterFunc(v.delay, v.render)
}

func (v *View) render() {
	if v.disposed {
		return
	}
	engine, err := LoadEngine()
	if err == nil {
		var svg string
		svg, err = engine.Render(v.id, v.code)
		if err == nil {
			v.svg = svg
		}
	}
	// A failure keeps the last good image visible alongside the error.
	v.err = err
	if err != nil {
		logging.CurrentLogger().Debugf("mermaid %s: %v", v.id, err)
	}
	if v.OnRender != nil {
		v.OnRender(v)
	}
}

// SVG returns the last successfully rendered image, possibly stale.
func (v *View) SVG() string {
	return v.svg
}

// Err returns the failure of the most recent render attempt, or nil.
func (v *View) Err() error {
	return v.err
}

// ID returns the unique render identifier of this view.
func (v *View) ID() string {
	return v.id
}

func (v *View) Destroy() {
	v.disposed = true
	if v.timer != nil {
		v.timer.Stop()
	}
}
