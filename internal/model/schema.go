// Package model implements the document tree the editor works on: typed
// nodes validated by a schema, integer positions, and transactions composed
// of invertible steps.
package model

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// SchemaViolationError is returned when a transaction would produce a tree
// that does not satisfy the schema. The document is left unchanged.
type SchemaViolationError struct {
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation: %s", e.Reason)
}

func violation(format string, v ...any) error {
	return &SchemaViolationError{Reason: fmt.Sprintf(format, v...)}
}

// AttributeSpec describes a single attribute of a node or mark type.
type AttributeSpec struct {
	// Default is used when the attribute is absent during parsing or creation.
	Default any
	// Validate rejects out-of-range values. Optional.
	Validate func(value any) error
}

// NodeSpec declares a node type. The zero values describe a plain block
// container.
type NodeSpec struct {
	Name    string
	Group   string // "block" or "inline"
	Content string // content expression, empty for leaf nodes
	Inline  bool
	// Atom nodes contain no editable content; their state lives in attrs.
	Atom bool
	// Defining nodes preserve their wrapping on paste and split.
	Defining bool
	// NoMarks forbids marks on the inline content (code blocks).
	NoMarks bool
	Attrs   map[string]*AttributeSpec

	// HTML round-trip rules. Optional; nodes without rules are skipped by the
	// HTML converter.
	ToHTML   RenderRule
	FromHTML []*ParseRule
}

// MarkSpec declares a mark type.
type MarkSpec struct {
	Name  string
	Attrs map[string]*AttributeSpec

	ToHTML   RenderRule
	FromHTML []*ParseRule
}

// RenderRule produces the HTML for a node or mark. For nodes, inner holds the
// already-rendered children; for marks, the marked content.
type RenderRule func(attrs AttrMap, inner string) string

// ParseRule recognizes an HTML element. Tag is the element name; Attr, when
// set, must also be present on the element for the rule to match. Getter maps
// the element (tag name plus attributes) to node/mark attrs.
type ParseRule struct {
	Tag    string
	Attr   string
	Getter func(tag string, htmlAttrs map[string]string) AttrMap
}

// NodeType is a compiled NodeSpec, registered in a Schema.
type NodeType struct {
	Name   string
	Spec   *NodeSpec
	schema *Schema
	expr   *contentExpr
}

// IsLeaf reports whether the type never holds content.
func (t *NodeType) IsLeaf() bool {
	return t.Spec.Content == ""
}

func (t *NodeType) IsInline() bool {
	return t.Spec.Inline || t.Name == "text"
}

func (t *NodeType) IsBlock() bool {
	return !t.IsInline()
}

func (t *NodeType) IsText() bool {
	return t.Name == "text"
}

func (t *NodeType) IsAtom() bool {
	return t.Spec.Atom
}

// IsTextblock reports whether the type is a block holding inline content.
func (t *NodeType) IsTextblock() bool {
	if t.IsLeaf() || t.IsInline() {
		return false
	}
	return t.expr.allows("text")
}

// DefaultAttrs returns a fresh attr map populated with every default.
func (t *NodeType) DefaultAttrs() AttrMap {
	return defaultAttrs(t.Spec.Attrs)
}

// checkContent verifies children against the content expression.
func (t *NodeType) checkContent(content *Fragment) error {
	if t.IsLeaf() {
		if content.ChildCount() > 0 {
			return violation("node type %q cannot have content", t.Name)
		}
		return nil
	}
	if !t.expr.matches(content) {
		return violation("invalid content for node type %q (expression %q)", t.Name, t.Spec.Content)
	}
	return nil
}

// MarkType is a compiled MarkSpec.
type MarkType struct {
	Name   string
	Spec   *MarkSpec
	schema *Schema
}

func (t *MarkType) DefaultAttrs() AttrMap {
	return defaultAttrs(t.Spec.Attrs)
}

func defaultAttrs(specs map[string]*AttributeSpec) AttrMap {
	if len(specs) == 0 {
		return nil
	}
	attrs := AttrMap{}
	for name, spec := range specs {
		attrs[name] = spec.Default
	}
	return attrs
}

// Schema is the registry of node and mark types a document is built from.
type Schema struct {
	nodes map[string]*NodeType
	marks map[string]*MarkType
	// groups maps a group name to the member type names, in registration order.
	groups map[string][]string
	order  []string
}

// NewSchema compiles the given specs. The "doc" and "text" types are
// mandatory; content expressions may reference groups declared by any spec.
func NewSchema(nodes []*NodeSpec, marks []*MarkSpec) (*Schema, error) {
	s := &Schema{
		nodes:  map[string]*NodeType{},
		marks:  map[string]*MarkType{},
		groups: map[string][]string{},
	}
	for _, spec := range nodes {
		if _, ok := s.nodes[spec.Name]; ok {
			return nil, fmt.Errorf("duplicate node type %q", spec.Name)
		}
		s.nodes[spec.Name] = &NodeType{Name: spec.Name, Spec: spec, schema: s}
		s.order = append(s.order, spec.Name)
		if spec.Group != "" {
			s.groups[spec.Group] = append(s.groups[spec.Group], spec.Name)
		}
	}
	for _, spec := range marks {
		if _, ok := s.marks[spec.Name]; ok {
			return nil, fmt.Errorf("duplicate mark type %q", spec.Name)
		}
		s.marks[spec.Name] = &MarkType{Name: spec.Name, Spec: spec, schema: s}
	}
	if _, ok := s.nodes["doc"]; !ok {
		return nil, fmt.Errorf(`missing "doc" node type`)
	}
	if _, ok := s.nodes["text"]; !ok {
		return nil, fmt.Errorf(`missing "text" node type`)
	}
	// Compile content expressions once every group is known.
	for _, t := range s.nodes {
		expr, err := compileContentExpr(t.Spec.Content, s)
		if err != nil {
			return nil, fmt.Errorf("node type %q: %w", t.Name, err)
		}
		t.expr = expr
	}
	return s, nil
}

// NodeType returns the registered type or nil.
func (s *Schema) NodeType(name string) *NodeType {
	return s.nodes[name]
}

// MarkType returns the registered mark type or nil.
func (s *Schema) MarkType(name string) *MarkType {
	return s.marks[name]
}

// NodeTypeNames lists registered node types, sorted for stable output.
func (s *Schema) NodeTypeNames() []string {
	names := make([]string, 0, len(s.nodes))
	for name := range s.nodes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// MarkTypeNames lists registered mark types, sorted for stable output.
func (s *Schema) MarkTypeNames() []string {
	names := make([]string, 0, len(s.marks))
	for name := range s.marks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Node builds a node of the named type. Absent attrs are populated with
// defaults; present attrs are validated.
func (s *Schema) Node(name string, attrs AttrMap, children ...*Node) (*Node, error) {
	t := s.NodeType(name)
	if t == nil {
		return nil, violation("unknown node type %q", name)
	}
	merged, err := mergeAttrs(t.Spec.Attrs, attrs)
	if err != nil {
		return nil, fmt.Errorf("node type %q: %w", name, err)
	}
	return &Node{
		Type:    t,
		Attrs:   merged,
		Content: NewFragment(children...),
	}, nil
}

// MustNode is Node for fixtures and tests where the types are static.
func (s *Schema) MustNode(name string, attrs AttrMap, children ...*Node) *Node {
	n, err := s.Node(name, attrs, children...)
	if err != nil {
		panic(err)
	}
	return n
}

// Text builds a text leaf.
func (s *Schema) Text(text string, marks ...Mark) *Node {
	return &Node{
		Type:  s.nodes["text"],
		Text:  text,
		Marks: marks,
	}
}

// Mark builds a mark of the named type with defaulted attrs.
func (s *Schema) Mark(name string, attrs AttrMap) (Mark, error) {
	t := s.MarkType(name)
	if t == nil {
		return Mark{}, violation("unknown mark type %q", name)
	}
	merged, err := mergeAttrs(t.Spec.Attrs, attrs)
	if err != nil {
		return Mark{}, fmt.Errorf("mark type %q: %w", name, err)
	}
	return Mark{Type: t, Attrs: merged}, nil
}

func (s *Schema) MustMark(name string, attrs AttrMap) Mark {
	m, err := s.Mark(name, attrs)
	if err != nil {
		panic(err)
	}
	return m
}

// mergeAttrs overlays the given attrs on the spec defaults and validates them.
// Unknown attrs are dropped (tolerant parsing).
func mergeAttrs(specs map[string]*AttributeSpec, attrs AttrMap) (AttrMap, error) {
	merged := defaultAttrs(specs)
	for name, value := range attrs {
		spec, ok := specs[name]
		if !ok {
			continue
		}
		if spec.Validate != nil {
			if err := spec.Validate(value); err != nil {
				return nil, violation("attribute %q: %v", name, err)
			}
		}
		merged[name] = value
	}
	return merged, nil
}
