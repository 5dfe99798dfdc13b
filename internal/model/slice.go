package model

// Slice is a fragment suitable for splicing into a document at a position.
type Slice struct {
	Content *Fragment
}

var EmptySlice = &Slice{Content: emptyFragment}

func NewSlice(nodes ...*Node) *Slice {
	return &Slice{Content: NewFragment(nodes...)}
}

func (s *Slice) Size() int {
	if s == nil {
		return 0
	}
	return s.Content.Size()
}
