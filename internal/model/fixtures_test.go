package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// testSchema compiles a small schema exercising every structural feature:
// textblocks, nested containers, atoms, validated attrs, and marks.
func testSchema(t *testing.T) *Schema {
	t.Helper()
	nodes := []*NodeSpec{
		{Name: "doc", Content: "block+"},
		{Name: "paragraph", Group: "block", Content: "inline*"},
		{
			Name:    "heading",
			Group:   "block",
			Content: "inline*",
			Attrs: map[string]*AttributeSpec{
				"level": {Default: 1, Validate: func(value any) error {
					level, ok := value.(int)
					if !ok || level < 1 || level > 6 {
						return fmt.Errorf("invalid level %v", value)
					}
					return nil
				}},
			},
		},
		{Name: "blockquote", Group: "block", Content: "block+"},
		{Name: "codeBlock", Group: "block", Content: "text*", NoMarks: true},
		{Name: "horizontalRule", Group: "block"},
		{
			Name:   "pin",
			Group:  "inline",
			Inline: true,
			Atom:   true,
			Attrs: map[string]*AttributeSpec{
				"slug": {Default: ""},
			},
		},
		{Name: "hardBreak", Group: "inline", Inline: true},
		{Name: "text", Group: "inline"},
	}
	marks := []*MarkSpec{
		{Name: "bold"},
		{Name: "link", Attrs: map[string]*AttributeSpec{"href": {Default: ""}}},
	}
	schema, err := NewSchema(nodes, marks)
	require.NoError(t, err)
	return schema
}

// doc(paragraph("foo"), paragraph("bar")) and friends, in compact form.
func docOf(t *testing.T, s *Schema, blocks ...*Node) *Node {
	t.Helper()
	doc := s.MustNode("doc", nil, blocks...)
	require.NoError(t, doc.Check())
	return doc
}

func p(s *Schema, inline ...*Node) *Node {
	return s.MustNode("paragraph", nil, inline...)
}

func h(s *Schema, level int, inline ...*Node) *Node {
	return s.MustNode("heading", AttrMap{"level": level}, inline...)
}
