// Package autosave persists editor changes in the background: edits merge
// into a pending patch, a debounce timer coalesces bursts into one request,
// and at most one save is ever in flight.
package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/DragonRuins/hubdoc/internal/persist"
	"github.com/DragonRuins/hubdoc/pkg/clock"
	"github.com/DragonRuins/hubdoc/pkg/logging"
)

// Status is the save lifecycle surfaced to the caller.
type Status int

const (
	StatusIdle Status = iota
	StatusUnsaved
	StatusSaving
	StatusSaved
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusUnsaved:
		return "unsaved"
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	case StatusError:
		return "error"
	}
	return "unknown"
}

const (
	// DefaultDebounce is how long after the last change a save fires.
	DefaultDebounce = 1500 * time.Millisecond
	// DefaultGrace swallows document updates right after mount, when loading
	// content into the editor echoes back as an update.
	DefaultGrace = 500 * time.Millisecond
)

// Options configures a Controller.
type Options struct {
	Service persist.Service
	// Slug is the article's slug at mount time. Saves are keyed by it; the
	// server may rewrite it when the title changes.
	Slug     string
	Clock    clock.Clock
	Debounce time.Duration
	Grace    time.Duration
	// OnStatus observes lifecycle changes. err is non-nil only for
	// StatusError.
	OnStatus func(status Status, err error)
	// OnSlugChange fires when a save response carries a new slug, so the
	// caller can rewrite the address bar and navigation state.
	OnSlugChange func(oldSlug, newSlug string)
}

// Controller owns the save pipeline for one mounted article.
type Controller struct {
	svc          persist.Service
	clk          clock.Clock
	debounce     time.Duration
	grace        time.Duration
	onStatus     func(Status, error)
	onSlugChange func(string, string)

	mu        sync.Mutex
	slug      string
	pending   persist.ArticlePatch
	dirty     bool
	inFlight  bool
	rerun     bool
	seq       int64
	timer     clock.Timer
	mountedAt time.Time
	synced    bool
	disposed  bool
}

func NewController(opts Options) *Controller {
	clk := opts.Clock
	if clk == nil {
		clk = clock.CurrentClock()
	}
	debounce := opts.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	grace := opts.Grace
	if grace == 0 {
		grace = DefaultGrace
	}
	return &Controller{
		svc:          opts.Service,
		slug:         opts.Slug,
		clk:          clk,
		debounce:     debounce,
		grace:        grace,
		onStatus:     opts.OnStatus,
		onSlugChange: opts.OnSlugChange,
		mountedAt:    clk.Now(),
	}
}

// DocumentChanged queues the serialized document for saving. The first update
// inside the initial grace window is dropped: loading content into the editor
// echoes back as one update, and only that echo is not an edit.
func (c *Controller) DocumentChanged(content []byte) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	if !c.synced {
		c.synced = true
		if c.clk.Now().Sub(c.mountedAt) < c.grace {
			c.mu.Unlock()
			logging.CurrentLogger().Tracef("autosave: mount echo within grace window, dropped")
			return
		}
	}
	c.mu.Unlock()
	c.Queue(persist.ArticlePatch{Content: content})
}

// TitleChanged queues a title update.
func (c *Controller) TitleChanged(title string) {
	c.Queue(persist.ArticlePatch{Title: &title})
}

// Queue merges a patch into the pending save and restarts the debounce
// timer. Newest fields win.
func (c *Controller) Queue(patch persist.ArticlePatch) {
	if patch.Empty() {
		return
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.pending = c.pending.Merge(patch)
	c.dirty = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.clk.AfterFunc(c.debounce, c.save)
	c.mu.Unlock()
	c.notify(StatusUnsaved, nil)
}

// SaveNow flushes the pending patch immediately, skipping the debounce.
// A no-op when nothing is dirty.
func (c *Controller) SaveNow() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.save()
}

// Dirty reports whether changes are waiting to be saved.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty || c.inFlight
}

// Slug returns the slug as of the last save response.
func (c *Controller) Slug() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slug
}

// Dispose detaches the controller. The debounce timer stops and any pending
// or in-flight result is dropped: a save must never land after unmount.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.dirty {
		logging.CurrentLogger().Debugf("autosave: disposed with unsaved changes")
	}
	c.pending = persist.ArticlePatch{}
	c.dirty = false
}

// save runs save rounds until nothing is queued. Called from the debounce
// timer goroutine or from SaveNow.
func (c *Controller) save() {
	for c.saveRound() {
	}
}

// saveRound issues at most one request. It reports whether another round
// should run immediately (changes queued while this one was in flight).
func (c *Controller) saveRound() bool {
	c.mu.Lock()
	if c.disposed || !c.dirty {
		c.mu.Unlock()
		return false
	}
	if c.inFlight {
		// The debounce fired while a request is out; the completion path
		// picks the new pending patch up.
		c.rerun = true
		c.mu.Unlock()
		return false
	}
	patch := c.pending
	c.pending = persist.ArticlePatch{}
	c.dirty = false
	c.inFlight = true
	c.seq++
	seq := c.seq
	slug := c.slug
	c.mu.Unlock()

	c.notify(StatusSaving, nil)
	article, err := c.svc.UpdateArticle(context.Background(), slug, patch)

	c.mu.Lock()
	c.inFlight = false
	if c.disposed {
		c.mu.Unlock()
		return false
	}
	if err != nil {
		// Keep the failed patch, under anything queued since: the change is
		// retried on the next edit or manual save, never lost.
		c.pending = patch.Merge(c.pending)
		c.dirty = true
		c.rerun = false
		c.mu.Unlock()
		c.notify(StatusError, err)
		return false
	}
	latest := seq == c.seq
	var oldSlug, newSlug string
	if latest && article.Slug != c.slug {
		oldSlug, newSlug = c.slug, article.Slug
		c.slug = article.Slug
	}
	again := c.rerun || c.dirty
	c.rerun = false
	c.mu.Unlock()

	c.notify(StatusSaved, nil)
	if newSlug != "" && c.onSlugChange != nil {
		c.onSlugChange(oldSlug, newSlug)
	}
	return again
}

func (c *Controller) notify(status Status, err error) {
	if c.onStatus != nil {
		c.onStatus(status, err)
	}
}
