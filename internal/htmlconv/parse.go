package htmlconv

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/DragonRuins/hubdoc/internal/model"
)

// Parse builds a document from HTML. Elements no rule recognizes are
// unwrapped rather than dropped, so their text survives; each salvage is
// recorded as a warning. The returned document is schema-checked.
func Parse(schema *model.Schema, input string) (*model.Node, []string, error) {
	root, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing html: %w", err)
	}
	p := newParser(schema)
	body := findBody(root)
	blocks := p.parseBlocks(body)
	if len(blocks) == 0 {
		blocks = append(blocks, schema.MustNode("paragraph", nil))
	}
	doc, err := schema.Node("doc", nil, blocks...)
	if err != nil {
		return nil, p.warnings, err
	}
	if err := doc.Check(); err != nil {
		return nil, p.warnings, err
	}
	return doc, p.warnings, nil
}

// Synthetic attribute keys handed to parse-rule getters. They carry the
// element's text content, for node types whose state lives in nested text
// (diagram code, link labels).
const (
	synthTextAttr = "data-text"
	synthCodeAttr = "data-code"
)

type compiledRule struct {
	rule     *model.ParseRule
	nodeType *model.NodeType
	markType *model.MarkType
}

type parser struct {
	schema   *model.Schema
	warnings []string
	// Rules requiring a distinguishing attribute sort before bare-tag rules,
	// so <div data-callout> matches callout rather than a generic div rule.
	nodeRules []compiledRule
	markRules []compiledRule
}

func newParser(schema *model.Schema) *parser {
	p := &parser{schema: schema}
	var plainNodes, plainMarks []compiledRule
	for _, name := range schema.NodeTypeNames() {
		t := schema.NodeType(name)
		for _, rule := range t.Spec.FromHTML {
			compiled := compiledRule{rule: rule, nodeType: t}
			if rule.Attr != "" {
				p.nodeRules = append(p.nodeRules, compiled)
			} else {
				plainNodes = append(plainNodes, compiled)
			}
		}
	}
	for _, name := range schema.MarkTypeNames() {
		t := schema.MarkType(name)
		for _, rule := range t.Spec.FromHTML {
			compiled := compiledRule{rule: rule, markType: t}
			if rule.Attr != "" {
				p.markRules = append(p.markRules, compiled)
			} else {
				plainMarks = append(plainMarks, compiled)
			}
		}
	}
	p.nodeRules = append(p.nodeRules, plainNodes...)
	p.markRules = append(p.markRules, plainMarks...)
	return p
}

func (p *parser) warnf(format string, v ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, v...))
}

func (p *parser) matchNode(el *html.Node) (*compiledRule, map[string]string) {
	attrs := elementAttrs(el)
	for i := range p.nodeRules {
		r := &p.nodeRules[i]
		if r.rule.Tag != el.Data {
			continue
		}
		if r.rule.Attr != "" {
			if _, ok := attrs[r.rule.Attr]; !ok {
				continue
			}
		}
		return r, attrs
	}
	return nil, attrs
}

func (p *parser) matchMark(el *html.Node) (*compiledRule, map[string]string) {
	attrs := elementAttrs(el)
	for i := range p.markRules {
		r := &p.markRules[i]
		if r.rule.Tag != el.Data {
			continue
		}
		if r.rule.Attr != "" {
			if _, ok := attrs[r.rule.Attr]; !ok {
				continue
			}
		}
		return r, attrs
	}
	return nil, attrs
}

// parseBlocks builds block-level content from an element's children. Loose
// inline content (text outside a paragraph) collects into synthesized
// paragraphs.
func (p *parser) parseBlocks(parent *html.Node) []*model.Node {
	var blocks []*model.Node
	var inline []*model.Node
	flush := func() {
		if len(inline) == 0 {
			return
		}
		blocks = append(blocks, p.schema.MustNode("paragraph", nil, inline...))
		inline = nil
	}

	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			if text := collapseSpace(child.Data); text != "" {
				inline = append(inline, p.schema.Text(text))
			}
		case html.ElementNode:
			rule, attrs := p.matchNode(child)
			if rule != nil && !rule.nodeType.IsInline() {
				flush()
				blocks = append(blocks, p.buildNode(rule, attrs, child))
				continue
			}
			if rule != nil || p.isInlineElement(child) {
				inline = append(inline, p.parseInlineNode(child, nil)...)
				continue
			}
			// Unknown block-level element: unwrap it and keep whatever its
			// children yield.
			p.warnf("unknown element <%s> unwrapped", child.Data)
			flush()
			blocks = append(blocks, p.parseBlocks(child)...)
		}
	}
	flush()
	return blocks
}

// parseInline builds inline content, threading the active mark set down.
func (p *parser) parseInline(parent *html.Node, marks []model.Mark) []*model.Node {
	var nodes []*model.Node
	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			if text := collapseSpace(child.Data); text != "" {
				nodes = append(nodes, p.schema.Text(text, marks...))
			}
		case html.ElementNode:
			nodes = append(nodes, p.parseInlineNode(child, marks)...)
		}
	}
	return nodes
}

func (p *parser) parseInlineNode(el *html.Node, marks []model.Mark) []*model.Node {
	nodeRule, nodeAttrs := p.matchNode(el)
	// An attr-qualified node rule outranks mark rules on the same tag:
	// <a data-wiki-link> is a wiki link, not a link mark.
	if nodeRule != nil && nodeRule.nodeType.IsInline() && nodeRule.rule.Attr != "" {
		return []*model.Node{p.withMarks(p.buildNode(nodeRule, nodeAttrs, el), marks)}
	}
	if markRule, markAttrs := p.matchMark(el); markRule != nil {
		mark, err := p.buildMark(markRule, markAttrs, el)
		if err != nil {
			p.warnf("mark <%s>: %v", el.Data, err)
			return p.parseInline(el, marks)
		}
		return p.parseInline(el, model.AddMark(marks, mark))
	}
	if nodeRule != nil && nodeRule.nodeType.IsInline() {
		return []*model.Node{p.withMarks(p.buildNode(nodeRule, nodeAttrs, el), marks)}
	}
	if nodeRule != nil {
		// A block element in inline position: keep its text.
		p.warnf("element <%s> in inline position, kept as text", el.Data)
	} else {
		p.warnf("unknown element <%s> unwrapped", el.Data)
	}
	return p.parseInline(el, marks)
}

func (p *parser) withMarks(node *model.Node, marks []model.Mark) *model.Node {
	if len(marks) == 0 || node.IsText() {
		return node
	}
	return node.WithMarks(marks)
}

// buildNode constructs the node a rule matched, parsing children according to
// the type's shape.
func (p *parser) buildNode(rule *compiledRule, htmlAttrs map[string]string, el *html.Node) *model.Node {
	attrs := p.ruleAttrs(rule.rule, htmlAttrs, el)
	t := rule.nodeType

	var children []*model.Node
	switch {
	case t.IsLeaf():
		// No content; state lives in attrs.
	case t.Spec.NoMarks:
		// Raw text body; inner tags like <code> are formatting, not marks.
		if text := rawTextContent(el); text != "" {
			children = append(children, p.schema.Text(text))
		}
	case t.IsTextblock():
		children = p.parseInline(el, nil)
	default:
		children = p.parseBlocks(el)
	}

	node, err := p.schema.Node(t.Name, attrs, children...)
	if err != nil {
		p.warnf("node %s: %v", t.Name, err)
		return p.schema.MustNode("paragraph", nil, p.parseInline(el, nil)...)
	}
	if node.Check() != nil && len(children) == 0 && !t.IsLeaf() {
		// Empty container: give it the smallest valid body.
		if filled, err := p.schema.Node(t.Name, attrs, p.schema.MustNode("paragraph", nil)); err == nil && filled.Check() == nil {
			return filled
		}
	}
	return node
}

func (p *parser) buildMark(rule *compiledRule, htmlAttrs map[string]string, el *html.Node) (model.Mark, error) {
	attrs := p.ruleAttrs(rule.rule, htmlAttrs, el)
	return p.schema.Mark(rule.markType.Name, attrs)
}

// ruleAttrs runs the rule's getter, augmenting the element attributes with
// the synthetic text-content keys.
func (p *parser) ruleAttrs(rule *model.ParseRule, htmlAttrs map[string]string, el *html.Node) model.AttrMap {
	if rule.Getter == nil {
		return nil
	}
	text := textContent(el)
	if _, ok := htmlAttrs[synthTextAttr]; !ok {
		htmlAttrs[synthTextAttr] = text
	}
	if _, ok := htmlAttrs[synthCodeAttr]; !ok {
		htmlAttrs[synthCodeAttr] = rawTextContent(el)
	}
	if _, ok := htmlAttrs["data-language"]; !ok {
		// Fenced code convention: <pre><code class="language-go">.
		if lang := fencedLanguage(el); lang != "" {
			htmlAttrs["data-language"] = lang
		}
	}
	return rule.Getter(el.Data, htmlAttrs)
}

// isInlineElement covers inline HTML tags with no schema rule, so their text
// joins the surrounding run instead of forcing a paragraph break.
func (p *parser) isInlineElement(el *html.Node) bool {
	switch el.Data {
	case "span", "a", "b", "i", "em", "strong", "u", "s", "del", "code", "mark", "small", "sub", "sup", "br":
		return true
	}
	return false
}

func fencedLanguage(el *html.Node) string {
	for child := el.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		for _, a := range child.Attr {
			if a.Key == "class" {
				for _, class := range strings.Fields(a.Val) {
					if lang, ok := strings.CutPrefix(class, "language-"); ok {
						return lang
					}
				}
			}
		}
		if lang := fencedLanguage(child); lang != "" {
			return lang
		}
	}
	return ""
}

func elementAttrs(el *html.Node) map[string]string {
	attrs := make(map[string]string, len(el.Attr))
	for _, a := range el.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

func findBody(root *html.Node) *html.Node {
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	if body == nil {
		return root
	}
	return body
}

// collapseSpace folds whitespace runs into single spaces and drops
// whitespace-only text, the way HTML rendering does.
func collapseSpace(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	collapsed := strings.Join(fields, " ")
	if strings.HasPrefix(text, " ") || strings.HasPrefix(text, "\t") {
		collapsed = " " + collapsed
	}
	if strings.HasSuffix(text, " ") || strings.HasSuffix(text, "\t") {
		collapsed += " "
	}
	return collapsed
}

// textContent is the collapsed text of an element's subtree.
func textContent(el *html.Node) string {
	var sb strings.Builder
	collectText(el, &sb, true)
	return strings.TrimSpace(sb.String())
}

// rawTextContent preserves whitespace, for <pre> bodies.
func rawTextContent(el *html.Node) string {
	var sb strings.Builder
	collectText(el, &sb, false)
	return strings.TrimSpace(sb.String())
}

func collectText(n *html.Node, sb *strings.Builder, collapse bool) {
	if n.Type == html.TextNode {
		if collapse {
			sb.WriteString(collapseSpace(n.Data))
		} else {
			sb.WriteString(n.Data)
		}
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, sb, collapse)
	}
}
