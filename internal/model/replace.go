package model

// ReplaceRange removes the content in [from, to) and splices the slice at
// from. Both boundaries must sit in the content of the same node; a range
// that would require splitting or joining ancestor nodes is rejected.
func (n *Node) ReplaceRange(from, to int, slice *Slice) (*Node, error) {
	if to < from {
		return nil, violation("inverted range %d-%d", from, to)
	}
	rf, err := Resolve(n, from)
	if err != nil {
		return nil, err
	}
	rt, err := Resolve(n, to)
	if err != nil {
		return nil, err
	}
	if !rf.SameParent(rt) {
		return nil, violation("replace range %d-%d crosses node boundaries", from, to)
	}
	depth := rf.Depth()
	parent := rf.Parent()
	before, err := parent.Content.cutInline(0, rf.ParentOffset)
	if err != nil {
		return nil, err
	}
	after, err := parent.Content.cutInline(rt.ParentOffset, parent.ContentSize())
	if err != nil {
		return nil, err
	}
	content := appendFragments(before, slice.Content, after)
	return rebuildPath(rf, depth, parent.WithContent(content)), nil
}

// replaceChildAt swaps the child starting exactly at pos using f.
func (n *Node) replaceChildAt(pos int, f func(child *Node) (*Node, error)) (*Node, error) {
	r, err := Resolve(n, pos)
	if err != nil {
		return nil, err
	}
	depth := r.Depth()
	parent := r.Parent()
	index := r.Index(depth)
	if index >= parent.ChildCount() {
		return nil, violation("no node at position %d", pos)
	}
	child := parent.Child(index)
	_, childStart := parent.Content.findIndex(r.ParentOffset)
	if childStart != r.ParentOffset {
		return nil, violation("position %d is not at a node boundary", pos)
	}
	replaced, err := f(child)
	if err != nil {
		return nil, err
	}
	children := make([]*Node, parent.ChildCount())
	copy(children, parent.Content.Children())
	children[index] = replaced
	return rebuildPath(r, depth, parent.WithContent(NewFragment(children...))), nil
}

// rebuildPath rebuilds the ancestor chain above a replaced node: the node at
// the given depth of the resolved position is swapped for newNode.
func rebuildPath(r *ResolvedPos, depth int, newNode *Node) *Node {
	for d := depth - 1; d >= 0; d-- {
		parent := r.Node(d)
		children := make([]*Node, parent.ChildCount())
		copy(children, parent.Content.Children())
		children[r.Index(d)] = newNode
		newNode = parent.WithContent(NewFragment(children...))
	}
	return newNode
}

// transformInline rebuilds the subtree, applying f to every inline node
// intersecting [from, to) (relative to n's content). Text nodes are split at
// the range boundaries. f must preserve node sizes.
func (n *Node) transformInline(from, to int, f func(inline *Node) *Node) *Node {
	var children []*Node
	cur := 0
	for _, child := range n.Content.Children() {
		end := cur + child.NodeSize()
		switch {
		case end <= from || cur >= to:
			children = append(children, child)
		case child.IsText():
			runes := []rune(child.Text)
			lo, hi := 0, len(runes)
			if from > cur {
				lo = from - cur
			}
			if to < end {
				hi = to - cur
			}
			if lo > 0 {
				children = append(children, child.WithText(string(runes[:lo])))
			}
			children = append(children, f(child.WithText(string(runes[lo:hi]))))
			if hi < len(runes) {
				children = append(children, child.WithText(string(runes[hi:])))
			}
		case child.IsInline() && child.Type.IsLeaf():
			children = append(children, f(child))
		case child.Type.IsLeaf():
			children = append(children, child)
		default:
			innerFrom := max(0, from-cur-1)
			innerTo := min(child.ContentSize(), to-cur-1)
			children = append(children, child.transformInline(innerFrom, innerTo, f))
		}
		cur = end
	}
	return n.WithContent(appendFragments(NewFragment(children...)))
}
