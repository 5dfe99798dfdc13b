// Package mermaid renders diagram blocks. The rendering engine is loaded
// lazily on first access and shared process-wide; rendering is debounced per
// node and its output lives only in view state, never in the document.
package mermaid

import (
	"fmt"
	"html"
	"strings"
	"sync/atomic"

	"github.com/DragonRuins/hubdoc/pkg/resync"
)

// RenderError reports invalid diagram syntax. The document is unaffected;
// the node view keeps the last successful image and displays the message.
type RenderError struct {
	Message string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("mermaid render failed: %s", e.Message)
}

// Engine turns diagram source into a vector image string.
type Engine interface {
	Render(id, code string) (svg string, err error)
}

// EngineFactory performs the expensive engine initialization.
type EngineFactory func() (Engine, error)

// LoadState is the lifecycle of the shared engine.
type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Ready
	Failed
)

var (
	loaderOnce    resync.Once
	loaderState   LoadState
	loaderEngine  Engine
	loaderErr     error
	loaderFactory EngineFactory

	renderSeq atomic.Int64
)

// RegisterEngineFactory installs the factory used on first load. Must be
// called before the first render; a nil factory restores the built-in
// placeholder engine.
func RegisterEngineFactory(f EngineFactory) {
	loaderFactory = f
	ResetLoader()
}

// ResetLoader discards the shared engine so the next access reloads it.
// Mainly useful from tests.
func ResetLoader() {
	loaderOnce.Reset()
	loaderState = NotLoaded
	loaderEngine = nil
	loaderErr = nil
}

// CurrentLoadState exposes the loader lifecycle for diagnostics.
func CurrentLoadState() LoadState {
	return loaderState
}

// LoadEngine returns the shared engine, initializing it exactly once. A
// failed initialization is sticky until ResetLoader.
func LoadEngine() (Engine, error) {
	loaderOnce.Do(func() {
		loaderState = Loading
		factory := loaderFactory
		if factory == nil {
			factory = func() (Engine, error) { return placeholderEngine{}, nil }
		}
		loaderEngine, loaderErr = factory()
		if loaderErr != nil {
			loaderState = Failed
		} else {
			loaderState = Ready
		}
	})
	return loaderEngine, loaderErr
}

// NextRenderID produces a unique render identifier; identifiers are never
// reused within a session.
func NextRenderID() string {
	return fmt.Sprintf("mermaid-%d", renderSeq.Add(1))
}

// placeholderEngine is used when no real engine is registered: it wraps the
// diagram source in a plain SVG so the pipeline stays functional.
type placeholderEngine struct{}

func (placeholderEngine) Render(id, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", &RenderError{Message: "empty diagram"}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg id=%q xmlns="http://www.w3.org/2000/svg">`, id)
	for i, line := range strings.Split(code, "\n") {
		fmt.Fprintf(&sb, `<text y="%d">%s</text>`, 16*(i+1), html.EscapeString(line))
	}
	sb.WriteString("</svg>")
	return sb.String(), nil
}
