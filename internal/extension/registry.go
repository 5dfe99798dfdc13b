package extension

import (
	"fmt"

	"github.com/DragonRuins/hubdoc/internal/model"
	"github.com/DragonRuins/hubdoc/pkg/logging"
)

// Registry composes a set of extensions into a schema plus the merged
// command, input-rule, keymap, and view tables.
type Registry struct {
	extensions []Extension
	schema     *model.Schema
	commands   map[string]Command
	inputRules []InputRule
	keymap     map[string]Command
	views      map[string]NodeViewFactory
}

// NewRegistry compiles the extensions in order. On name collisions (commands,
// keymap chords, views), the first registration wins and later ones are
// ignored with a debug log, mirroring the first-match rule for input rules.
func NewRegistry(extensions ...Extension) (*Registry, error) {
	r := &Registry{
		extensions: extensions,
		commands:   map[string]Command{},
		keymap:     map[string]Command{},
		views:      map[string]NodeViewFactory{},
	}
	var nodes []*model.NodeSpec
	var marks []*model.MarkSpec
	for _, ext := range extensions {
		nodes = append(nodes, ext.Nodes()...)
		marks = append(marks, ext.Marks()...)
		for name, command := range ext.Commands() {
			if _, taken := r.commands[name]; taken {
				logging.CurrentLogger().Debugf("extension %s: command %q already registered, ignored", ext.Name(), name)
				continue
			}
			r.commands[name] = command
		}
		r.inputRules = append(r.inputRules, ext.InputRules()...)
		for chord, command := range ext.Keymaps() {
			if _, taken := r.keymap[chord]; taken {
				logging.CurrentLogger().Debugf("extension %s: chord %q already bound, ignored", ext.Name(), chord)
				continue
			}
			r.keymap[chord] = command
		}
		for typeName, factory := range ext.Views() {
			if _, taken := r.views[typeName]; taken {
				continue
			}
			r.views[typeName] = factory
		}
	}
	schema, err := model.NewSchema(nodes, marks)
	if err != nil {
		return nil, fmt.Errorf("compiling extensions: %w", err)
	}
	r.schema = schema
	return r, nil
}

func (r *Registry) Schema() *model.Schema {
	return r.schema
}

// Command returns the named command, or nil.
func (r *Registry) Command(name string) Command {
	return r.commands[name]
}

// InputRules returns every rule in priority order.
func (r *Registry) InputRules() []InputRule {
	return r.inputRules
}

// KeyBinding returns the command bound to a chord, or nil.
func (r *Registry) KeyBinding(chord string) Command {
	return r.keymap[chord]
}

// ViewFactory returns the node view factory for a type, or nil.
func (r *Registry) ViewFactory(typeName string) NodeViewFactory {
	return r.views[typeName]
}

// MatchInputRule finds the first rule whose pattern ends at the caret after
// appending the typed character. It returns the rule, the match start
// position, and the matched text.
func (r *Registry) MatchInputRule(st State, typed string) (rule *InputRule, from int, matched string) {
	caret := st.Sel.From
	for i := range r.inputRules {
		candidate := &r.inputRules[i]
		lookback := len([]rune(candidate.Pattern)) - len([]rune(typed))
		if lookback < 0 || caret-lookback < 0 {
			continue
		}
		before := st.Doc.TextBetween(caret-lookback, caret, "")
		if before+typed == candidate.Pattern {
			return candidate, caret - lookback, candidate.Pattern
		}
	}
	return nil, 0, ""
}
