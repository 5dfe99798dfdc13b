package autosave

import (
	"testing"

	"github.com/DragonRuins/hubdoc/internal/editor"
	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/extensions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualSaveChord(t *testing.T) {
	h := newHarness(t)
	keymap := NewKeymap(h.controller)

	// A plain "s" is not the chord; it flows on to the editor pipeline
	assert.False(t, keymap.HandleKey(extension.Char('s')))

	h.controller.DocumentChanged([]byte(`{"v":1}`))
	require.True(t, keymap.HandleKey(extension.Key{Name: "s", Ctrl: true}))
	assert.Equal(t, 1, h.saves)
	assert.False(t, h.controller.Dirty())

	// The cancelled debounce timer must not fire a second save
	h.clock.FastForward(DefaultDebounce)
	assert.Equal(t, 1, h.saves)

	// Meta normalizes to the same chord
	assert.True(t, keymap.HandleKey(extension.Key{Name: "s", Meta: true}))
	assert.Equal(t, 1, h.saves)
}

func TestManualSaveChordThroughEditor(t *testing.T) {
	h := newHarness(t)

	all, _ := extensions.Default(0)
	registry, err := extension.NewRegistry(all...)
	require.NoError(t, err)
	e, err := editor.New(editor.Options{Registry: registry, Editable: true})
	require.NoError(t, err)
	t.Cleanup(e.Destroy)
	e.AddPlugin(NewKeymap(h.controller))

	h.controller.DocumentChanged([]byte(`{"v":1}`))
	require.True(t, e.HandleKey(extension.Key{Name: "s", Ctrl: true}))
	assert.Equal(t, 1, h.saves)

	// The consumed chord never inserted a character
	assert.Equal(t, "", e.Doc().TextContent())
}
