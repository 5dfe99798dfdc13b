package model

// A position is an integer index into a linearized traversal of the
// document: entering or leaving a non-leaf node costs one token, a non-text
// leaf costs one token, and text costs one token per rune. Position 0 is the
// start of the document content.

type pathEntry struct {
	node  *Node
	index int // child index at or after the position at this level
	start int // absolute position where node's content starts
}

// ResolvedPos describes a position along with the chain of ancestors
// containing it, inner-most last.
type ResolvedPos struct {
	Pos          int
	path         []pathEntry
	ParentOffset int // offset of Pos inside the inner-most parent's content
}

// Resolve locates pos inside doc. It fails when pos is out of range.
func Resolve(doc *Node, pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > doc.ContentSize() {
		return nil, violation("position %d out of range (document size %d)", pos, doc.ContentSize())
	}
	r := &ResolvedPos{Pos: pos}
	node, start, rem := doc, 0, pos
	for {
		index, childStart := node.Content.findIndex(rem)
		r.path = append(r.path, pathEntry{node: node, index: index, start: start})
		if index == node.ChildCount() {
			r.ParentOffset = rem
			return r, nil
		}
		child := node.Child(index)
		offset := rem - childStart
		if offset == 0 || child.IsText() || child.Type.IsLeaf() {
			r.ParentOffset = rem
			return r, nil
		}
		node = child
		start = start + childStart + 1
		rem = offset - 1
	}
}

// MustResolve panics on out-of-range positions; reserved for fixtures.
func MustResolve(doc *Node, pos int) *ResolvedPos {
	r, err := Resolve(doc, pos)
	if err != nil {
		panic(err)
	}
	return r
}

// Depth is the number of ancestors below the document node.
func (r *ResolvedPos) Depth() int {
	return len(r.path) - 1
}

// Node returns the ancestor at the given depth (0 is the document).
func (r *ResolvedPos) Node(depth int) *Node {
	return r.path[depth].node
}

// Index returns the child index at the given depth.
func (r *ResolvedPos) Index(depth int) int {
	return r.path[depth].index
}

// Start returns the absolute position where the content of the ancestor at
// the given depth starts.
func (r *ResolvedPos) Start(depth int) int {
	return r.path[depth].start
}

// Parent is the inner-most node containing the position.
func (r *ResolvedPos) Parent() *Node {
	return r.path[len(r.path)-1].node
}

// Ancestors returns the chain of nodes around the position, inner-most
// first.
func (r *ResolvedPos) Ancestors() []*Node {
	nodes := make([]*Node, 0, len(r.path))
	for i := len(r.path) - 1; i >= 0; i-- {
		nodes = append(nodes, r.path[i].node)
	}
	return nodes
}

// SameParent reports whether both positions sit in the content of the same
// node instance.
func (r *ResolvedPos) SameParent(other *ResolvedPos) bool {
	return r.Depth() == other.Depth() && r.Start(r.Depth()) == other.Start(other.Depth())
}

// NodesAt returns the ancestors of pos in doc, inner-most first.
func NodesAt(doc *Node, pos int) ([]*Node, error) {
	r, err := Resolve(doc, pos)
	if err != nil {
		return nil, err
	}
	return r.Ancestors(), nil
}
