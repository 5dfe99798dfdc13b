package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyChord(t *testing.T) {
	var tests = []struct {
		name  string // name
		key   Key    // input
		chord string // output
	}{
		{"Plain", Key{Name: "Enter"}, "Enter"},
		{"CtrlNormalizesToMod", Key{Name: "b", Ctrl: true}, "Mod-b"},
		{"MetaNormalizesToMod", Key{Name: "b", Meta: true}, "Mod-b"},
		{"ShiftOnSpecial", Key{Name: "Enter", Shift: true}, "Shift-Enter"},
		{"ShiftOnPrintableIgnored", Key{Name: "B", Shift: true}, "B"},
		{"ModShift", Key{Name: "z", Ctrl: true, Shift: true}, "Mod-Shift-z"},
		{"Alt", Key{Name: "ArrowUp", Alt: true}, "Alt-ArrowUp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.chord, tt.key.Chord())
		})
	}
}

func TestKeyPrintable(t *testing.T) {
	assert.True(t, Char('a').Printable())
	assert.True(t, Char('é').Printable())
	assert.False(t, Key{Name: "Enter"}.Printable())
	assert.False(t, Key{Name: "a", Ctrl: true}.Printable())
	assert.False(t, Key{Name: "a", Alt: true}.Printable())
	assert.True(t, Key{Name: "A", Shift: true}.Printable())
}
