// Package extension defines the closed capability set an editor extension
// can contribute: node and mark declarations, commands, input rules, keymaps,
// and node views. Extensions are registered at startup; registration order
// decides priority when several extensions match the same input.
package extension

import (
	"github.com/DragonRuins/hubdoc/internal/model"
)

// State is the read-only editor state handed to commands and input rules.
type State struct {
	Doc    *model.Node
	Sel    model.Selection
	Schema *model.Schema
}

// Command builds a transaction for an imperative operation. A nil return
// means the command does not apply in the current state; the caller treats
// it as a silent no-op.
type Command func(st State, args ...any) *model.Transaction

// InputRule replaces a pattern of recently typed characters with a computed
// transaction.
type InputRule struct {
	// Pattern is the literal text that must precede the caret once the typed
	// character is appended. Fixed length; no wildcards.
	Pattern string
	// Handler receives the position where the match starts. Returning nil
	// passes the character through to the default insertion path; returning a
	// transaction consumes it.
	Handler func(st State, from int, matched string) *model.Transaction
}

// NodeView controls how an atom or chrome-carrying node displays and reacts.
type NodeView interface {
	// Update feeds the view a new version of its node. It reports whether the
	// view could keep displaying it (false forces a remount).
	Update(node *model.Node, editable bool) bool
	Destroy()
}

// NodeViewFactory builds the view for one rendered node.
type NodeViewFactory func(node *model.Node, editable bool) NodeView

// ViewPlugin attaches to the editor lifecycle.
type ViewPlugin interface {
	// HandleKey runs before keymaps and input rules. Return true to consume
	// the key; the editor's own pipeline then never sees it.
	HandleKey(key Key) bool
	OnTransaction(tr *model.Transaction)
	OnSelectionChange(sel model.Selection)
}

// Extension is one unit of editor functionality.
type Extension interface {
	Name() string
	Nodes() []*model.NodeSpec
	Marks() []*model.MarkSpec
	Commands() map[string]Command
	InputRules() []InputRule
	// Keymaps binds chords ("Mod-b", "Mod-s") to commands.
	Keymaps() map[string]Command
	Views() map[string]NodeViewFactory
}

// Base is a no-op Extension for embedding.
type Base struct{}

func (Base) Nodes() []*model.NodeSpec          { return nil }
func (Base) Marks() []*model.MarkSpec          { return nil }
func (Base) Commands() map[string]Command      { return nil }
func (Base) InputRules() []InputRule           { return nil }
func (Base) Keymaps() map[string]Command       { return nil }
func (Base) Views() map[string]NodeViewFactory { return nil }
