// Package popup drives the wiki-link overlay: a keystroke state machine that
// opens on the "[[" trigger, mirrors typed characters into both the document
// and a search query, and resolves to a wiki-link atom on confirmation.
package popup

import (
	"context"
	"sync"
	"time"

	"github.com/DragonRuins/hubdoc/internal/editor"
	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
	"github.com/DragonRuins/hubdoc/internal/persist"
	"github.com/DragonRuins/hubdoc/pkg/clock"
	"github.com/DragonRuins/hubdoc/pkg/logging"
)

// State is the popup lifecycle.
type State int

const (
	// Idle: no popup; the trigger detection lives in the "[[" input rule.
	Idle State = iota
	// Armed: trigger fired, placement not yet fixed. Transient within OpenAt.
	Armed
	// Open: overlay visible, keystrokes captured.
	Open
)

const (
	// DefaultSearchDelay debounces search requests while the user types.
	DefaultSearchDelay = 200 * time.Millisecond
	// DefaultLimit caps the result list.
	DefaultLimit = 8
)

// Surface is what the popup needs from the editor view.
type Surface interface {
	Doc() *model.Node
	Selection() model.Selection
	Dispatch(tr *model.Transaction) error
	RunCommand(name string, args ...any) (bool, error)
	CoordsAt(pos int) editor.Coords
}

// Options configures a Controller.
type Options struct {
	Surface Surface
	Service persist.Service
	Clock   clock.Clock
	// SearchDelay and Limit default to DefaultSearchDelay and DefaultLimit.
	SearchDelay time.Duration
	Limit       int
	// OnChange fires after any observable popup change so the UI re-renders.
	OnChange func()
}

// Controller implements extension.ViewPlugin. It captures keys before the
// editor's own pipeline and performs its own document inserts, so exactly one
// path writes each typed character.
type Controller struct {
	surface     Surface
	svc         persist.Service
	clk         clock.Clock
	searchDelay time.Duration
	limit       int
	onChange    func()

	mu         sync.Mutex
	state      State
	triggerPos int
	query      []rune
	results    []*persist.Article
	selected   int
	anchor     editor.Coords
	searchSeq  int64
	timer      clock.Timer
}

var _ extension.ViewPlugin = (*Controller)(nil)

func NewController(opts Options) *Controller {
	clk := opts.Clock
	if clk == nil {
		clk = clock.CurrentClock()
	}
	delay := opts.SearchDelay
	if delay == 0 {
		delay = DefaultSearchDelay
	}
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	return &Controller{
		surface:     opts.Surface,
		svc:         opts.Service,
		clk:         clk,
		searchDelay: delay,
		limit:       limit,
		onChange:    opts.OnChange,
	}
}

// OpenAt opens the popup. Placement is measured once, at the trigger
// position, and never re-computed while typing. The empty query immediately
// schedules a recent-articles search.
func (c *Controller) OpenAt(triggerPos int) {
	anchor := c.surface.CoordsAt(triggerPos)
	c.mu.Lock()
	c.state = Armed
	c.triggerPos = triggerPos
	c.query = nil
	c.results = nil
	c.selected = 0
	c.anchor = editor.Coords{X: anchor.X, Y: anchor.Bottom, Bottom: anchor.Bottom}
	c.state = Open
	c.scheduleSearchLocked()
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.query)
}

func (c *Controller) Results() []*persist.Article {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

func (c *Controller) SelectedIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

func (c *Controller) TriggerPos() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.triggerPos
}

// Anchor is the fixed placement computed at open time: just below the line
// holding the trigger position.
func (c *Controller) Anchor() editor.Coords {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anchor
}

// HandleKey captures keystrokes while open. Consumed keys never reach the
// editor's keymap or insertion pipeline.
func (c *Controller) HandleKey(key extension.Key) bool {
	c.mu.Lock()
	if c.state != Open {
		c.mu.Unlock()
		return false
	}
	switch {
	case key.Name == "ArrowDown":
		if c.selected < len(c.results)-1 {
			c.selected++
		}
		c.mu.Unlock()
		c.changed()
		return true
	case key.Name == "ArrowUp":
		if c.selected > 0 {
			c.selected--
		}
		c.mu.Unlock()
		c.changed()
		return true
	case key.Name == "Escape" || key.Name == "]":
		c.cancelLocked()
		c.mu.Unlock()
		c.changed()
		return true
	case key.Name == "Enter":
		return c.confirm()
	case key.Name == "Backspace":
		return c.backspace()
	case key.Printable():
		return c.typed(key.Name)
	}
	c.mu.Unlock()
	return false
}

// typed appends to the query and mirrors the character into the document so
// the user sees what they type. Called with c.mu held; releases it.
func (c *Controller) typed(ch string) bool {
	caret := c.triggerPos + len(c.query)
	c.mu.Unlock()

	tr := model.NewTransaction(c.surface.Doc()).InsertText(caret, ch)
	if err := c.surface.Dispatch(tr); err != nil {
		logging.CurrentLogger().Debugf("popup: echo %q: %v", ch, err)
		return true
	}

	c.mu.Lock()
	if c.state == Open {
		c.query = append(c.query, []rune(ch)...)
		c.scheduleSearchLocked()
	}
	c.mu.Unlock()
	c.changed()
	return true
}

// backspace shrinks the query by one character. Deleting past the trigger
// position cancels. Called with c.mu held; releases it.
func (c *Controller) backspace() bool {
	if len(c.query) == 0 {
		c.cancelLocked()
		c.mu.Unlock()
		c.changed()
		return true
	}
	caret := c.triggerPos + len(c.query)
	c.mu.Unlock()

	tr := model.NewTransaction(c.surface.Doc()).Delete(caret-1, caret)
	if err := c.surface.Dispatch(tr); err != nil {
		logging.CurrentLogger().Debugf("popup: backspace: %v", err)
		return true
	}

	c.mu.Lock()
	if c.state == Open {
		c.query = c.query[:len(c.query)-1]
		c.scheduleSearchLocked()
	}
	c.mu.Unlock()
	c.changed()
	return true
}

// confirm replaces the typed range with a wiki-link atom built from the
// selected result. Called with c.mu held; releases it.
func (c *Controller) confirm() bool {
	if c.selected >= len(c.results) {
		c.cancelLocked()
		c.mu.Unlock()
		c.changed()
		return true
	}
	article := c.results[c.selected]
	from := c.triggerPos
	to := c.triggerPos + len(c.query)
	c.cancelLocked()
	c.mu.Unlock()

	applied, err := c.surface.RunCommand("insertWikiLink", from, to, article.Slug, article.Title)
	if err != nil || !applied {
		logging.CurrentLogger().Debugf("popup: insert wiki link: applied=%v err=%v", applied, err)
	}
	c.changed()
	return true
}

// Cancel closes the popup, leaving any typed characters in the document.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.state != Open {
		c.mu.Unlock()
		return
	}
	c.cancelLocked()
	c.mu.Unlock()
	c.changed()
}

// ClickOutside closes the popup the same way Escape does.
func (c *Controller) ClickOutside() {
	c.Cancel()
}

func (c *Controller) cancelLocked() {
	c.state = Idle
	c.query = nil
	c.results = nil
	c.selected = 0
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// OnTransaction keeps triggerPos valid across document edits made while the
// popup is open, including its own echoes.
func (c *Controller) OnTransaction(tr *model.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Open {
		return
	}
	c.triggerPos = tr.MapPos(c.triggerPos, -1)
}

// OnSelectionChange cancels when the selection leaves the typed range: the
// popup only makes sense while the caret sits between the trigger and the end
// of the query.
func (c *Controller) OnSelectionChange(sel model.Selection) {
	c.mu.Lock()
	if c.state != Open {
		c.mu.Unlock()
		return
	}
	inside := sel.Collapsed() && sel.From >= c.triggerPos && sel.From <= c.triggerPos+len(c.query)
	if inside {
		c.mu.Unlock()
		return
	}
	c.cancelLocked()
	c.mu.Unlock()
	c.changed()
}

// scheduleSearchLocked restarts the debounce timer. Caller holds c.mu.
func (c *Controller) scheduleSearchLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.clk.AfterFunc(c.searchDelay, c.runSearch)
}

// runSearch issues the query. Responses are dropped when a newer search has
// been issued or the popup closed meanwhile; on failure the popup closes
// silently.
func (c *Controller) runSearch() {
	c.mu.Lock()
	if c.state != Open {
		c.mu.Unlock()
		return
	}
	c.searchSeq++
	seq := c.searchSeq
	query := string(c.query)
	limit := c.limit
	c.mu.Unlock()

	var (
		articles []*persist.Article
		err      error
	)
	if query == "" {
		articles, err = c.svc.RecentArticles(context.Background(), limit)
	} else {
		articles, err = c.svc.SearchArticles(context.Background(), query, limit)
	}

	c.mu.Lock()
	if c.state != Open || seq != c.searchSeq {
		c.mu.Unlock()
		return
	}
	if err != nil {
		logging.CurrentLogger().Debugf("popup: search %q: %v", query, err)
		c.cancelLocked()
		c.mu.Unlock()
		c.changed()
		return
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}
	c.results = articles
	c.selected = 0
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
