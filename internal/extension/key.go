package extension

import (
	"strings"
	"unicode/utf8"
)

// Key is a single keyboard event, normalized away from any UI toolkit.
type Key struct {
	// Name is the key name ("Enter", "Backspace", "ArrowUp", "ArrowDown",
	// "Escape", ...) or the literal character for printable keys.
	Name  string
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool
}

// Char builds a printable key.
func Char(c rune) Key {
	return Key{Name: string(c)}
}

// Printable reports whether the key inserts a character.
func (k Key) Printable() bool {
	if k.Ctrl || k.Meta || k.Alt {
		return false
	}
	return utf8.RuneCountInString(k.Name) == 1
}

// Chord renders the key in keymap notation: "Mod-s", "Shift-Enter". Ctrl and
// Meta both normalize to "Mod" so one binding covers both platforms.
func (k Key) Chord() string {
	var parts []string
	if k.Ctrl || k.Meta {
		parts = append(parts, "Mod")
	}
	if k.Alt {
		parts = append(parts, "Alt")
	}
	if k.Shift && !k.Printable() {
		parts = append(parts, "Shift")
	}
	parts = append(parts, k.Name)
	return strings.Join(parts, "-")
}
