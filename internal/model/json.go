package model

import (
	"encoding/json"
	"fmt"
)

// Persisted document format: a JSON tree of typed nodes.
// Parsing is tolerant: unknown types are dropped with a warning and their
// text content is salvaged, wrong scalar types fall back to defaults.

type jsonNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []jsonNode     `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []jsonMark     `json:"marks,omitempty"`
}

type jsonMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// ToJSON serializes a document. Attrs equal to their declared default are
// omitted, so serialize/parse round-trips up to default normalization.
func ToJSON(doc *Node) ([]byte, error) {
	return json.MarshalIndent(encodeNode(doc), "", "  ")
}

func encodeNode(n *Node) jsonNode {
	encoded := jsonNode{Type: n.Type.Name, Text: n.Text}
	if attrs := nonDefaultAttrs(n.Attrs, n.Type.Spec.Attrs); len(attrs) > 0 {
		encoded.Attrs = attrs
	}
	for _, mark := range n.Marks {
		em := jsonMark{Type: mark.Type.Name}
		if attrs := nonDefaultAttrs(mark.Attrs, mark.Type.Spec.Attrs); len(attrs) > 0 {
			em.Attrs = attrs
		}
		encoded.Marks = append(encoded.Marks, em)
	}
	for _, child := range n.Content.Children() {
		encoded.Content = append(encoded.Content, encodeNode(child))
	}
	return encoded
}

func nonDefaultAttrs(attrs AttrMap, specs map[string]*AttributeSpec) map[string]any {
	var result map[string]any
	for name, value := range attrs {
		spec, known := specs[name]
		if known && scalarEq(value, spec.Default) {
			continue
		}
		if result == nil {
			result = map[string]any{}
		}
		result[name] = value
	}
	return result
}

// FromJSON parses a persisted document. Warnings report every dropped or
// defaulted element; an error is returned only when the payload is not valid
// JSON or the result does not satisfy the schema even after salvaging.
func FromJSON(schema *Schema, data []byte) (*Node, []string, error) {
	var root jsonNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("invalid document JSON: %w", err)
	}
	if root.Type != "doc" {
		return nil, nil, fmt.Errorf("unexpected root node type %q", root.Type)
	}
	p := &docParser{schema: schema}
	doc := p.parseKnown(&root, schema.NodeType("doc"))
	if err := doc.Check(); err != nil {
		return nil, p.warnings, fmt.Errorf("parsed document is invalid: %w", err)
	}
	return doc, p.warnings, nil
}

type docParser struct {
	schema   *Schema
	warnings []string
}

func (p *docParser) warnf(format string, v ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, v...))
}

func (p *docParser) parseKnown(encoded *jsonNode, t *NodeType) *Node {
	node := &Node{
		Type:    t,
		Attrs:   p.parseAttrs(encoded.Attrs, t.Spec.Attrs, "node "+t.Name),
		Content: p.parseChildren(encoded.Content, t),
		Text:    encoded.Text,
		Marks:   p.parseMarks(encoded.Marks, t),
	}
	if t.IsAtom() && node.Content.ChildCount() > 0 {
		p.warnf("dropped children of atom node %q", t.Name)
		node.Content = emptyFragment
	}
	return node
}

func (p *docParser) parseChildren(encoded []jsonNode, parent *NodeType) *Fragment {
	var children []*Node
	inlineParent := parent.expr.allows("text")
	for i := range encoded {
		child := &encoded[i]
		t := p.schema.NodeType(child.Type)
		if t == nil {
			// Unknown type: drop the node, salvage its text.
			p.warnf("dropped unknown node type %q", child.Type)
			if text := collectText(child); text != "" {
				if inlineParent {
					children = append(children, p.schema.Text(text))
				} else {
					paragraph := p.schema.MustNode("paragraph", nil, p.schema.Text(text))
					children = append(children, paragraph)
				}
			}
			continue
		}
		if t.IsText() {
			if child.Text == "" {
				p.warnf("dropped empty text node")
				continue
			}
			children = append(children, &Node{
				Type:  t,
				Text:  child.Text,
				Marks: p.parseMarks(child.Marks, t),
			})
			continue
		}
		children = append(children, p.parseKnown(child, t))
	}
	return NewFragment(children...)
}

func (p *docParser) parseMarks(encoded []jsonMark, t *NodeType) []Mark {
	var marks []Mark
	for _, em := range encoded {
		mt := p.schema.MarkType(em.Type)
		if mt == nil {
			p.warnf("dropped unknown mark type %q", em.Type)
			continue
		}
		if !t.IsInline() {
			p.warnf("dropped mark %q on non-inline node %q", em.Type, t.Name)
			continue
		}
		marks = append(marks, Mark{
			Type:  mt,
			Attrs: p.parseAttrs(em.Attrs, mt.Spec.Attrs, "mark "+mt.Name),
		})
	}
	return marks
}

// parseAttrs merges parsed attrs over the defaults, substituting the default
// for any unknown, mistyped, or invalid value.
func (p *docParser) parseAttrs(parsed map[string]any, specs map[string]*AttributeSpec, context string) AttrMap {
	attrs := defaultAttrs(specs)
	for name, value := range parsed {
		spec, ok := specs[name]
		if !ok {
			p.warnf("%s: dropped unknown attribute %q", context, name)
			continue
		}
		coerced, ok := coerceScalar(value, spec.Default)
		if !ok {
			p.warnf("%s: attribute %q has wrong type, using default", context, name)
			continue
		}
		if spec.Validate != nil {
			if err := spec.Validate(coerced); err != nil {
				p.warnf("%s: attribute %q: %v, using default", context, name, err)
				continue
			}
		}
		attrs[name] = coerced
	}
	return attrs
}

// coerceScalar aligns a decoded JSON value with the scalar type of the
// default. JSON numbers decode as float64 and are narrowed to int when the
// default is an int.
func coerceScalar(value, def any) (any, bool) {
	switch def.(type) {
	case string:
		s, ok := value.(string)
		return s, ok
	case bool:
		b, ok := value.(bool)
		return b, ok
	case int:
		switch n := value.(type) {
		case float64:
			return int(n), true
		case int:
			return n, true
		}
		return nil, false
	case float64:
		f, ok := value.(float64)
		return f, ok
	case nil:
		return value, true
	}
	return nil, false
}

func collectText(encoded *jsonNode) string {
	text := encoded.Text
	for i := range encoded.Content {
		text += collectText(&encoded.Content[i])
	}
	return text
}
