// Package toc derives a table of contents from the document and tracks which
// heading is active in the viewport. It is a passive observer: it never
// mutates the document.
package toc

import (
	"fmt"
	"sync"
	"time"

	"github.com/gosimple/slug"

	"github.com/DragonRuins/hubdoc/internal/model"
	"github.com/DragonRuins/hubdoc/pkg/clock"
)

// Entry is one outline row.
type Entry struct {
	ID    string
	Text  string
	Level int
}

const (
	// MaxLevel is the deepest heading level the outline includes.
	MaxLevel = 3
	// DefaultRescanDelay re-scans once more after a content change, to catch
	// late asynchronous rendering such as diagram views.
	DefaultRescanDelay = 500 * time.Millisecond
	// DefaultTopOffset is the sticky-header height excluded from the active
	// window.
	DefaultTopOffset = 64
	// DefaultBottomMarginPercent bounds the active window at this fraction of
	// the viewport height.
	DefaultBottomMarginPercent = 70
)

// Viewport abstracts the scrollable container the article renders into.
type Viewport interface {
	// HeadingTop returns the Y coordinate of a heading in scroll space.
	HeadingTop(id string) (int, bool)
	ScrollTop() int
	Height() int
	// ScrollTo scrolls so that y lands at the top of the viewport.
	ScrollTo(y int)
}

// Options configures an Outline.
type Options struct {
	Viewport            Viewport
	Clock               clock.Clock
	RescanDelay         time.Duration
	TopOffset           int
	BottomMarginPercent int
	// OnChange fires when entries or the active heading change.
	OnChange func()
}

// Outline watches a document and keeps the heading list and active id
// current.
type Outline struct {
	viewport     Viewport
	clk          clock.Clock
	rescanDelay  time.Duration
	topOffset    int
	bottomMargin int
	onChange     func()

	mu       sync.Mutex
	doc      *model.Node
	entries  []Entry
	activeID string
	timer    clock.Timer
	disposed bool
}

func NewOutline(opts Options) *Outline {
	clk := opts.Clock
	if clk == nil {
		clk = clock.CurrentClock()
	}
	delay := opts.RescanDelay
	if delay == 0 {
		delay = DefaultRescanDelay
	}
	topOffset := opts.TopOffset
	if topOffset == 0 {
		topOffset = DefaultTopOffset
	}
	bottomMargin := opts.BottomMarginPercent
	if bottomMargin == 0 {
		bottomMargin = DefaultBottomMarginPercent
	}
	return &Outline{
		viewport:     opts.Viewport,
		clk:          clk,
		rescanDelay:  delay,
		topOffset:    topOffset,
		bottomMargin: bottomMargin,
		onChange:     opts.OnChange,
	}
}

// Scan extracts the outline from a document: every heading of level 1 to 3,
// in document order. Anchors derive from the heading text; empty or duplicate
// anchors fall back to a positional id.
func Scan(doc *model.Node) []Entry {
	var entries []Entry
	seen := map[string]bool{}
	index := 0
	walkHeadings(doc, func(n *model.Node) {
		level, _ := n.Attr("level").(int)
		if level < 1 || level > MaxLevel {
			index++
			return
		}
		text := n.TextContent()
		id := slug.Make(text)
		if id == "" || seen[id] {
			id = fmt.Sprintf("heading-%d", index)
		}
		seen[id] = true
		entries = append(entries, Entry{ID: id, Text: text, Level: level})
		index++
	})
	return entries
}

func walkHeadings(n *model.Node, visit func(*model.Node)) {
	for _, child := range n.Content.Children() {
		if child.Type.Name == "heading" {
			visit(child)
		}
		if !child.IsText() && !child.Type.IsLeaf() {
			walkHeadings(child, visit)
		}
	}
}

// ContentChanged re-scans the document now and schedules one more scan after
// the rescan delay, catching content that renders asynchronously.
func (o *Outline) ContentChanged(doc *model.Node) {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.doc = doc
	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = o.clk.AfterFunc(o.rescanDelay, o.rescan)
	o.mu.Unlock()
	o.rescan()
}

func (o *Outline) rescan() {
	o.mu.Lock()
	if o.disposed || o.doc == nil {
		o.mu.Unlock()
		return
	}
	entries := Scan(o.doc)
	changed := !entriesEqual(o.entries, entries)
	o.entries = entries
	active := o.computeActiveLocked()
	changed = changed || active != o.activeID
	o.activeID = active
	o.mu.Unlock()
	if changed {
		o.notify()
	}
}

// ScrollChanged recomputes the active heading against the current viewport.
func (o *Outline) ScrollChanged() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	active := o.computeActiveLocked()
	changed := active != o.activeID
	o.activeID = active
	o.mu.Unlock()
	if changed {
		o.notify()
	}
}

// computeActiveLocked picks the top-most heading intersecting the active
// window. Headings scrolled above the window keep the last one that passed
// it active, so a long section stays highlighted while read.
func (o *Outline) computeActiveLocked() string {
	if o.viewport == nil || len(o.entries) == 0 {
		return ""
	}
	windowTop := o.viewport.ScrollTop() + o.topOffset
	windowBottom := o.viewport.ScrollTop() + o.viewport.Height()*o.bottomMargin/100
	active := ""
	for _, entry := range o.entries {
		top, ok := o.viewport.HeadingTop(entry.ID)
		if !ok {
			continue
		}
		if top <= windowBottom {
			if active == "" || top <= windowTop {
				active = entry.ID
			}
			if top >= windowTop {
				return entry.ID
			}
		}
	}
	return active
}

// Entries returns the current outline.
func (o *Outline) Entries() []Entry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.entries
}

// ActiveID returns the id of the heading currently active in the viewport.
func (o *Outline) ActiveID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeID
}

// Visible reports whether the outline is worth showing: it hides itself for
// documents with fewer than two headings.
func (o *Outline) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries) >= 2
}

// Click scrolls the heading to the top of the active window and marks it
// active immediately, without waiting for a scroll event.
func (o *Outline) Click(id string) {
	o.mu.Lock()
	if o.disposed || o.viewport == nil {
		o.mu.Unlock()
		return
	}
	top, ok := o.viewport.HeadingTop(id)
	if !ok {
		o.mu.Unlock()
		return
	}
	changed := o.activeID != id
	o.activeID = id
	viewport := o.viewport
	offset := o.topOffset
	o.mu.Unlock()

	viewport.ScrollTo(top - offset)
	if changed {
		o.notify()
	}
}

// Dispose tears the outline down; the pending rescan is cancelled.
func (o *Outline) Dispose() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disposed = true
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

func (o *Outline) notify() {
	if o.onChange != nil {
		o.onChange()
	}
}

func entriesEqual(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
