package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Node is a single node in the document tree. Nodes are immutable: every
// mutation builds a new node, which lets steps capture documents safely.
type Node struct {
	Type  *NodeType
	Attrs AttrMap
	// Content holds the ordered children. Empty for leaves.
	Content *Fragment
	// Text is present only on text leaves.
	Text string
	// Marks apply only to inline nodes.
	Marks []Mark
}

func (n *Node) IsText() bool {
	return n.Type.IsText()
}

func (n *Node) IsInline() bool {
	return n.Type.IsInline()
}

// IsTextblock reports whether the node is a block node with inline content
// (paragraph, heading, collapsibleSummary, ...).
func (n *Node) IsTextblock() bool {
	return n.Type.IsTextblock()
}

// NodeSize is the size of the node in position tokens: rune count for text,
// 1 for other leaves, and 2 plus the content size otherwise (one token for
// entering the node and one for leaving it).
func (n *Node) NodeSize() int {
	if n.IsText() {
		return utf8.RuneCountInString(n.Text)
	}
	if n.Type.IsLeaf() {
		return 1
	}
	return 2 + n.Content.Size()
}

// ContentSize is the size of the node's content.
func (n *Node) ContentSize() int {
	return n.Content.Size()
}

func (n *Node) ChildCount() int {
	return n.Content.ChildCount()
}

func (n *Node) Child(i int) *Node {
	return n.Content.Child(i)
}

// Attr returns the attribute value, or the type default when absent.
func (n *Node) Attr(name string) any {
	if value, ok := n.Attrs[name]; ok {
		return value
	}
	if spec, ok := n.Type.Spec.Attrs[name]; ok {
		return spec.Default
	}
	return nil
}

// WithContent returns a copy of the node holding the given content.
func (n *Node) WithContent(content *Fragment) *Node {
	clone := *n
	clone.Content = content
	return &clone
}

// WithAttrs returns a copy of the node holding the given attrs.
func (n *Node) WithAttrs(attrs AttrMap) *Node {
	clone := *n
	clone.Attrs = attrs
	return &clone
}

// WithText returns a copy of a text node holding the given text.
func (n *Node) WithText(text string) *Node {
	clone := *n
	clone.Text = text
	return &clone
}

// WithMarks returns a copy of the node carrying the given mark set.
func (n *Node) WithMarks(marks []Mark) *Node {
	clone := *n
	clone.Marks = marks
	return &clone
}

// Eq is a structural deep equality with early exits: type pointer, attr map,
// text, mark set, then children.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	if n.Type != other.Type {
		return false
	}
	if n.Text != other.Text {
		return false
	}
	if !n.Attrs.Eq(other.Attrs) {
		return false
	}
	if !sameMarks(n.Marks, other.Marks) {
		return false
	}
	return n.Content.Eq(other.Content)
}

// Check validates the whole subtree against the schema: content expressions,
// attribute constraints, and mark placement.
func (n *Node) Check() error {
	if err := n.Type.checkContent(n.Content); err != nil {
		return err
	}
	if len(n.Marks) > 0 && !n.IsInline() {
		return violation("marks on non-inline node %q", n.Type.Name)
	}
	if n.Type.IsAtom() && n.ChildCount() > 0 {
		return violation("atom node %q has children", n.Type.Name)
	}
	for name, value := range n.Attrs {
		spec, ok := n.Type.Spec.Attrs[name]
		if !ok || spec.Validate == nil {
			continue
		}
		if err := spec.Validate(value); err != nil {
			return violation("node %q attribute %q: %v", n.Type.Name, name, err)
		}
	}
	noMarks := n.Type.Spec.NoMarks
	for _, child := range n.Content.Children() {
		if noMarks && len(child.Marks) > 0 {
			return violation("marks inside %q node", n.Type.Name)
		}
		if err := child.Check(); err != nil {
			return err
		}
	}
	return nil
}

// NodeAt returns the node starting at the given position, or nil.
func (n *Node) NodeAt(pos int) *Node {
	node, rem := n, pos
	for {
		index, start := node.Content.findIndex(rem)
		if index == node.ChildCount() {
			return nil
		}
		child := node.Child(index)
		if rem == start {
			return child
		}
		if child.IsText() || child.Type.IsLeaf() {
			return nil
		}
		node, rem = child, rem-start-1
	}
}

// TextContent concatenates every text leaf of the subtree.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var sb strings.Builder
	for _, child := range n.Content.Children() {
		sb.WriteString(child.TextContent())
	}
	return sb.String()
}

// TextBetween returns the text between two positions, inserting sep between
// block nodes. Atom leaves contribute nothing.
func (n *Node) TextBetween(from, to int, sep string) string {
	var sb strings.Builder
	first := true
	n.collectTextBetween(&sb, from, to, sep, &first)
	return sb.String()
}

func (n *Node) collectTextBetween(sb *strings.Builder, from, to int, sep string, first *bool) {
	cur := 0
	for _, child := range n.Content.Children() {
		end := cur + child.NodeSize()
		if end > from && cur < to {
			if child.IsText() {
				runes := []rune(child.Text)
				lo, hi := 0, len(runes)
				if from > cur {
					lo = from - cur
				}
				if to < end {
					hi = to - cur
				}
				sb.WriteString(string(runes[lo:hi]))
			} else if !child.Type.IsLeaf() {
				if child.IsTextblock() {
					if !*first && sep != "" {
						sb.WriteString(sep)
					}
					*first = false
				}
				innerFrom := max(0, from-cur-1)
				innerTo := min(child.ContentSize(), to-cur-1)
				child.collectTextBetween(sb, innerFrom, innerTo, sep, first)
			}
		}
		cur = end
	}
}

// SliceBetween extracts the content between two positions as a slice suitable
// for re-insertion. Only ranges that ReplaceRange can splice are supported.
func (n *Node) SliceBetween(from, to int) (*Slice, error) {
	rf, err := Resolve(n, from)
	if err != nil {
		return nil, err
	}
	rt, err := Resolve(n, to)
	if err != nil {
		return nil, err
	}
	if !rf.SameParent(rt) {
		return nil, violation("range %d-%d crosses node boundaries", from, to)
	}
	parent := rf.Parent()
	content, err := parent.Content.cutInline(rf.ParentOffset, rt.ParentOffset)
	if err != nil {
		return nil, err
	}
	return &Slice{Content: content}, nil
}

func (n *Node) String() string {
	if n.IsText() {
		return fmt.Sprintf("%q", n.Text)
	}
	var parts []string
	for _, child := range n.Content.Children() {
		parts = append(parts, child.String())
	}
	return fmt.Sprintf("%s(%s)", n.Type.Name, strings.Join(parts, ", "))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
