package model

// Selection is a range over the document; a collapsed selection (caret) has
// From == To.
type Selection struct {
	From int
	To   int
}

// Caret builds a collapsed selection.
func Caret(pos int) Selection {
	return Selection{From: pos, To: pos}
}

func (s Selection) Collapsed() bool {
	return s.From == s.To
}

// Clamp constrains the selection to the document bounds.
func (s Selection) Clamp(doc *Node) Selection {
	size := doc.ContentSize()
	from := min(max(s.From, 0), size)
	to := min(max(s.To, from), size)
	return Selection{From: from, To: to}
}
