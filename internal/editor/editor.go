// Package editor hosts the editing surface: it owns the current document and
// selection, routes keyboard input through plugins, keymaps, and input rules,
// and keeps node views mounted over the rendered document.
package editor

import (
	"fmt"

	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
	"github.com/DragonRuins/hubdoc/pkg/logging"
)

// Options configures a new editor.
type Options struct {
	Registry *extension.Registry
	// Doc is the initial document. Nil mounts an empty document.
	Doc      *model.Node
	Editable bool
	// OnUpdate fires after every committed transaction and after SetContent
	// replaces the document. It does not fire for the initial mount.
	OnUpdate func(doc *model.Node)
	// Layout measures positions for CoordsAt. Defaults to LineLayout.
	Layout Layout
}

// Editor is the single writer of its document: every change funnels through
// Dispatch on the owning goroutine.
type Editor struct {
	registry  *extension.Registry
	doc       *model.Node
	sel       model.Selection
	editable  bool
	focused   bool
	destroyed bool
	onUpdate  func(*model.Node)
	layout    Layout
	plugins   []extension.ViewPlugin
	views     map[int]*mountedView
	hist      *history
}

type mountedView struct {
	typeName string
	view     extension.NodeView
}

// New mounts an editor. The initial document is synced without firing
// OnUpdate, so loading a document never looks like an edit.
func New(opts Options) (*Editor, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("editor: registry is required")
	}
	doc := opts.Doc
	if doc == nil {
		doc = EmptyDoc(opts.Registry.Schema())
	}
	if err := doc.Check(); err != nil {
		return nil, fmt.Errorf("editor: invalid initial document: %w", err)
	}
	layout := opts.Layout
	if layout == nil {
		layout = LineLayout{}
	}
	e := &Editor{
		registry: opts.Registry,
		doc:      doc,
		sel:      model.Caret(docStart(doc)),
		editable: opts.Editable,
		onUpdate: opts.OnUpdate,
		layout:   layout,
		views:    map[int]*mountedView{},
		hist:     newHistory(),
	}
	e.syncViews()
	return e, nil
}

// EmptyDoc builds the smallest valid document: one empty paragraph.
func EmptyDoc(schema *model.Schema) *model.Node {
	return schema.MustNode("doc", nil, schema.MustNode("paragraph", nil))
}

// docStart is the first caret position inside the document.
func docStart(doc *model.Node) int {
	if doc.ChildCount() > 0 && doc.Child(0).IsTextblock() {
		return 1
	}
	return 0
}

// AddPlugin attaches a view plugin. Plugins see keys before keymaps and input
// rules, in attachment order.
func (e *Editor) AddPlugin(p extension.ViewPlugin) {
	e.plugins = append(e.plugins, p)
}

func (e *Editor) Doc() *model.Node {
	return e.doc
}

func (e *Editor) Selection() model.Selection {
	return e.sel
}

func (e *Editor) Schema() *model.Schema {
	return e.registry.Schema()
}

func (e *Editor) Editable() bool {
	return e.editable
}

// State snapshots the current document and selection for commands and input
// rules.
func (e *Editor) State() extension.State {
	return extension.State{Doc: e.doc, Sel: e.sel, Schema: e.registry.Schema()}
}

// Dispatch validates and commits a transaction. On rejection the document and
// selection are untouched and the error describes the violation.
func (e *Editor) Dispatch(tr *model.Transaction) error {
	return e.apply(tr, true)
}

func (e *Editor) apply(tr *model.Transaction, record bool) error {
	if e.destroyed {
		return fmt.Errorf("editor: dispatch on destroyed editor")
	}
	newDoc, newSel, err := model.ApplyTransaction(e.doc, e.sel, tr)
	if err != nil {
		logging.CurrentLogger().Debugf("editor: transaction rejected: %v", err)
		return err
	}
	if record && tr.DocChanged() {
		e.hist.record(tr)
	}
	e.doc = newDoc
	e.sel = newSel
	if tr.DocChanged() {
		e.remapViews(tr)
		e.syncViews()
	}
	for _, p := range e.plugins {
		p.OnTransaction(tr)
	}
	if tr.DocChanged() && e.onUpdate != nil {
		e.onUpdate(e.doc)
	}
	return nil
}

// SetSelection moves the selection without touching the document.
func (e *Editor) SetSelection(sel model.Selection) {
	if e.destroyed {
		return
	}
	e.sel = sel.Clamp(e.doc)
	for _, p := range e.plugins {
		p.OnSelectionChange(e.sel)
	}
}

// SetEditable toggles read-only mode. Node views are refreshed so their
// chrome can hide.
func (e *Editor) SetEditable(editable bool) {
	if e.destroyed || e.editable == editable {
		return
	}
	e.editable = editable
	e.syncViews()
}

// SetContent replaces the document wholesale. A structurally equal document
// is a no-op: no OnUpdate, no history entry, so echoing saved content back
// never loops with autosave. An actual change resets history.
func (e *Editor) SetContent(doc *model.Node) error {
	if e.destroyed {
		return fmt.Errorf("editor: set content on destroyed editor")
	}
	if doc.Eq(e.doc) {
		return nil
	}
	if err := doc.Check(); err != nil {
		return err
	}
	e.doc = doc
	e.sel = e.sel.Clamp(doc)
	e.hist = newHistory()
	e.destroyViews()
	e.syncViews()
	if e.onUpdate != nil {
		e.onUpdate(e.doc)
	}
	return nil
}

func (e *Editor) Focus() {
	e.focused = true
}

func (e *Editor) Blur() {
	e.focused = false
}

func (e *Editor) Focused() bool {
	return e.focused
}

// CoordsAt measures a document position on the rendered surface.
func (e *Editor) CoordsAt(pos int) Coords {
	return e.layout.CoordsAt(e.doc, pos)
}

// Destroy tears the editor down. Further dispatches fail; node views are
// destroyed so their timers stop.
func (e *Editor) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.destroyViews()
}

func (e *Editor) Destroyed() bool {
	return e.destroyed
}

// RunCommand executes a registered command by name. An unknown name is an
// error; a command declining to apply is a silent no-op and reports false.
func (e *Editor) RunCommand(name string, args ...any) (bool, error) {
	command := e.registry.Command(name)
	if command == nil {
		return false, fmt.Errorf("editor: unknown command %q", name)
	}
	tr := command(e.State(), args...)
	if tr == nil {
		return false, nil
	}
	if err := e.Dispatch(tr); err != nil {
		return false, err
	}
	return true, nil
}

// HandleKey routes one keyboard event: plugins first, then keymap chords,
// then input rules, then default insertion. It reports whether the key was
// consumed. In read-only mode every key passes through.
func (e *Editor) HandleKey(key extension.Key) bool {
	if e.destroyed || !e.editable {
		return false
	}
	for _, p := range e.plugins {
		if p.HandleKey(key) {
			return true
		}
	}
	switch key.Chord() {
	case "Mod-z":
		e.Undo()
		return true
	case "Mod-Shift-z", "Mod-y":
		e.Redo()
		return true
	}
	if command := e.registry.KeyBinding(key.Chord()); command != nil {
		if tr := command(e.State()); tr != nil {
			if err := e.Dispatch(tr); err != nil {
				logging.CurrentLogger().Debugf("editor: keymap %s: %v", key.Chord(), err)
			}
		}
		return true
	}
	switch key.Name {
	case "Backspace":
		return e.deleteBackward()
	case "Enter":
		if key.Shift {
			return e.insertHardBreak()
		}
		return e.splitBlock()
	}
	if key.Printable() {
		e.InsertText(key.Name)
		return true
	}
	return false
}

// InsertText types text at the selection, one character at a time so input
// rules can fire mid-string. A non-collapsed selection is deleted first.
func (e *Editor) InsertText(text string) {
	if e.destroyed || !e.editable {
		return
	}
	if !e.sel.Collapsed() {
		tr := model.NewTransaction(e.doc).Delete(e.sel.From, e.sel.To)
		if err := e.Dispatch(tr); err != nil {
			return
		}
	}
	for _, r := range text {
		e.insertRune(r)
	}
}

func (e *Editor) insertRune(r rune) {
	typed := string(r)
	if rule, from, matched := e.registry.MatchInputRule(e.State(), typed); rule != nil {
		if tr := rule.Handler(e.State(), from, matched); tr != nil {
			if err := e.Dispatch(tr); err == nil {
				return
			}
		}
	}
	tr := model.NewTransaction(e.doc).InsertText(e.sel.From, typed)
	if err := e.Dispatch(tr); err != nil {
		logging.CurrentLogger().Debugf("editor: insert %q: %v", typed, err)
	}
}

// deleteBackward removes the selection, or the character before a collapsed
// caret. At a block start it does nothing; block joining is not a single-key
// operation here.
func (e *Editor) deleteBackward() bool {
	if !e.sel.Collapsed() {
		return e.Dispatch(model.NewTransaction(e.doc).Delete(e.sel.From, e.sel.To)) == nil
	}
	r, err := model.Resolve(e.doc, e.sel.From)
	if err != nil || r.ParentOffset == 0 {
		return false
	}
	return e.Dispatch(model.NewTransaction(e.doc).Delete(e.sel.From-1, e.sel.From)) == nil
}

// splitBlock splits the textblock around the caret in two and puts the caret
// at the start of the second half.
func (e *Editor) splitBlock() bool {
	if !e.sel.Collapsed() {
		tr := model.NewTransaction(e.doc).Delete(e.sel.From, e.sel.To)
		if err := e.Dispatch(tr); err != nil {
			return false
		}
	}
	r, err := model.Resolve(e.doc, e.sel.From)
	if err != nil {
		return false
	}
	block := r.Parent()
	if block == nil || !block.IsTextblock() {
		return false
	}
	blockStart := r.Start(r.Depth()) - 1
	offset := r.ParentOffset
	before, after, err := splitTextblock(block, offset)
	if err != nil {
		logging.CurrentLogger().Debugf("editor: split block: %v", err)
		return false
	}
	tr := model.NewTransaction(e.doc).
		ReplaceRange(blockStart, blockStart+block.NodeSize(), model.NewSlice(before, after))
	if err := e.Dispatch(tr); err != nil {
		return false
	}
	e.SetSelection(model.Caret(blockStart + before.NodeSize() + 1))
	return true
}

// splitTextblock cuts a textblock at an inline offset. The second half keeps
// the block's type and attrs, matching the carry-over behavior of pressing
// Enter inside a heading.
func splitTextblock(block *model.Node, offset int) (before, after *model.Node, err error) {
	slice1, err := block.SliceBetween(0, offset)
	if err != nil {
		return nil, nil, err
	}
	slice2, err := block.SliceBetween(offset, block.ContentSize())
	if err != nil {
		return nil, nil, err
	}
	return block.WithContent(slice1.Content), block.WithContent(slice2.Content), nil
}

// insertHardBreak puts a hardBreak node at the caret, when the schema has one.
func (e *Editor) insertHardBreak() bool {
	br, err := e.Schema().Node("hardBreak", nil)
	if err != nil {
		return false
	}
	return e.Dispatch(model.NewTransaction(e.doc).InsertNode(e.sel.From, br)) == nil
}
