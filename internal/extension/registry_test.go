package extension

import (
	"testing"

	"github.com/DragonRuins/hubdoc/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type skeletonExt struct {
	Base
	name     string
	commands map[string]Command
	keymaps  map[string]Command
	rules    []InputRule
}

func (e *skeletonExt) Name() string              { return e.name }
func (e *skeletonExt) Commands() map[string]Command { return e.commands }
func (e *skeletonExt) Keymaps() map[string]Command  { return e.keymaps }
func (e *skeletonExt) InputRules() []InputRule      { return e.rules }

type coreExt struct {
	Base
}

func (coreExt) Name() string { return "core" }
func (coreExt) Nodes() []*model.NodeSpec {
	return []*model.NodeSpec{
		{Name: "doc", Content: "block+"},
		{Name: "paragraph", Group: "block", Content: "inline*"},
		{Name: "text", Group: "inline"},
	}
}
func (coreExt) Marks() []*model.MarkSpec {
	return []*model.MarkSpec{{Name: "bold"}}
}

func TestNewRegistryComposesSchema(t *testing.T) {
	r, err := NewRegistry(coreExt{})
	require.NoError(t, err)
	require.NotNil(t, r.Schema())
	assert.NotNil(t, r.Schema().NodeType("paragraph"))
	assert.NotNil(t, r.Schema().MarkType("bold"))
}

func TestNewRegistryFailsWithoutCoreNodes(t *testing.T) {
	_, err := NewRegistry(&skeletonExt{name: "empty"})
	require.Error(t, err)
}

func TestRegistryFirstRegistrationWins(t *testing.T) {
	won := func(st State, args ...any) *model.Transaction {
		return model.NewTransaction(st.Doc)
	}
	lost := func(st State, args ...any) *model.Transaction {
		return nil
	}
	r, err := NewRegistry(
		coreExt{},
		&skeletonExt{
			name:     "first",
			commands: map[string]Command{"toggle": won},
			keymaps:  map[string]Command{"Mod-b": won},
		},
		&skeletonExt{
			name:     "second",
			commands: map[string]Command{"toggle": lost},
			keymaps:  map[string]Command{"Mod-b": lost},
		},
	)
	require.NoError(t, err)

	st := State{Doc: emptyDoc(t, r.Schema()), Schema: r.Schema()}
	assert.NotNil(t, r.Command("toggle")(st))
	assert.NotNil(t, r.KeyBinding("Mod-b")(st))
	assert.Nil(t, r.Command("unknown"))
	assert.Nil(t, r.KeyBinding("Mod-q"))
}

func TestMatchInputRule(t *testing.T) {
	rule := InputRule{
		Pattern: "--",
		Handler: func(st State, from int, matched string) *model.Transaction {
			return nil
		},
	}
	r, err := NewRegistry(coreExt{}, &skeletonExt{name: "dashes", rules: []InputRule{rule}})
	require.NoError(t, err)
	s := r.Schema()

	doc := s.MustNode("doc", nil, s.MustNode("paragraph", nil, s.Text("a-")))
	require.NoError(t, doc.Check())

	// Caret after "a-", typing the second dash completes the pattern
	matched, from, text := r.MatchInputRule(State{Doc: doc, Sel: model.Selection{From: 3, To: 3}, Schema: s}, "-")
	require.NotNil(t, matched)
	assert.Equal(t, 2, from)
	assert.Equal(t, "--", text)

	// No match without the preceding dash
	matched, _, _ = r.MatchInputRule(State{Doc: doc, Sel: model.Selection{From: 2, To: 2}, Schema: s}, "-")
	assert.Nil(t, matched)

	// Not enough room before the caret
	matched, _, _ = r.MatchInputRule(State{Doc: doc, Sel: model.Selection{From: 0, To: 0}, Schema: s}, "-")
	assert.Nil(t, matched)
}

func emptyDoc(t *testing.T, s *model.Schema) *model.Node {
	t.Helper()
	return s.MustNode("doc", nil, s.MustNode("paragraph", nil))
}
