package model

// Fragment is an ordered, immutable sequence of nodes: the content of a node.
type Fragment struct {
	children []*Node
	size     int
}

var emptyFragment = &Fragment{}

func NewFragment(children ...*Node) *Fragment {
	if len(children) == 0 {
		return emptyFragment
	}
	size := 0
	for _, child := range children {
		size += child.NodeSize()
	}
	return &Fragment{children: children, size: size}
}

func (f *Fragment) ChildCount() int {
	if f == nil {
		return 0
	}
	return len(f.children)
}

func (f *Fragment) Child(i int) *Node {
	return f.children[i]
}

// Size is the total size of the fragment in position tokens.
func (f *Fragment) Size() int {
	if f == nil {
		return 0
	}
	return f.size
}

// Children returns the backing slice. Callers must not mutate it.
func (f *Fragment) Children() []*Node {
	if f == nil {
		return nil
	}
	return f.children
}

func (f *Fragment) Eq(other *Fragment) bool {
	if f.ChildCount() != other.ChildCount() {
		return false
	}
	if f.Size() != other.Size() {
		return false
	}
	for i := 0; i < f.ChildCount(); i++ {
		if !f.Child(i).Eq(other.Child(i)) {
			return false
		}
	}
	return true
}

// findIndex locates the child containing or starting at the given relative
// position. It returns the child index and the position at which that child
// starts. When pos falls on a boundary between children, the child after the
// boundary is returned. pos == Size returns (ChildCount, Size).
func (f *Fragment) findIndex(pos int) (index, start int) {
	if pos == 0 {
		return 0, 0
	}
	cur := 0
	for i, child := range f.Children() {
		end := cur + child.NodeSize()
		if pos < end {
			return i, cur
		}
		cur = end
	}
	return f.ChildCount(), f.Size()
}

// cutInline returns the sub-fragment between from and to (relative
// positions). Cut points may fall at child boundaries or inside text nodes;
// a cut point inside any other child is reported as a schema violation,
// because that cut would have to split a non-text node.
func (f *Fragment) cutInline(from, to int) (*Fragment, error) {
	if from == to {
		return emptyFragment, nil
	}
	var result []*Node
	cur := 0
	for _, child := range f.Children() {
		end := cur + child.NodeSize()
		if end <= from || cur >= to {
			cur = end
			continue
		}
		if cur >= from && end <= to {
			result = append(result, child)
		} else if child.IsText() {
			runes := []rune(child.Text)
			lo, hi := 0, len(runes)
			if from > cur {
				lo = from - cur
			}
			if to < end {
				hi = to - cur
			}
			if lo < hi {
				result = append(result, child.WithText(string(runes[lo:hi])))
			}
		} else {
			return nil, violation("cut point inside %q node", child.Type.Name)
		}
		cur = end
	}
	return NewFragment(result...), nil
}

// appendFragments concatenates fragments, joining adjacent text nodes that
// carry the same marks.
func appendFragments(fragments ...*Fragment) *Fragment {
	var children []*Node
	for _, f := range fragments {
		for _, child := range f.Children() {
			if len(children) > 0 && child.IsText() {
				last := children[len(children)-1]
				if last.IsText() && sameMarks(last.Marks, child.Marks) {
					children[len(children)-1] = last.WithText(last.Text + child.Text)
					continue
				}
			}
			children = append(children, child)
		}
	}
	return NewFragment(children...)
}
