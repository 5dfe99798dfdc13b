// Package extensions is the built-in extension library: the standard
// rich-text schema plus the knowledge-base node types (callout, collapsible,
// mermaid diagrams, wiki links).
package extensions

import (
	"fmt"
	"html"

	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// alignValues are the recognized block alignments; "" means inherited.
var alignValues = map[string]bool{"": true, "left": true, "center": true, "right": true, "justify": true}

func validateAlign(value any) error {
	s, ok := value.(string)
	if !ok || !alignValues[s] {
		return fmt.Errorf("unsupported alignment %v", value)
	}
	return nil
}

// BaseNodes declares doc, paragraph, heading, blockquote, horizontalRule,
// hardBreak, and text.
type BaseNodes struct {
	extension.Base
}

func (BaseNodes) Name() string { return "baseNodes" }

func (BaseNodes) Nodes() []*model.NodeSpec {
	return []*model.NodeSpec{
		{
			Name:    "doc",
			Content: "block+",
		},
		{
			Name:    "paragraph",
			Group:   "block",
			Content: "inline*",
			Attrs: map[string]*model.AttributeSpec{
				"align": {Default: "", Validate: validateAlign},
			},
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return withAlign("p", attrs, inner)
			},
			FromHTML: []*model.ParseRule{
				{Tag: "p", Getter: alignGetter},
			},
		},
		{
			Name:     "heading",
			Group:    "block",
			Content:  "inline*",
			Defining: true,
			Attrs: map[string]*model.AttributeSpec{
				"level": {Default: 1, Validate: func(value any) error {
					level, ok := value.(int)
					if !ok || level < 1 || level > 6 {
						return fmt.Errorf("heading level must be 1-6, got %v", value)
					}
					return nil
				}},
				"align": {Default: "", Validate: validateAlign},
			},
			ToHTML: func(attrs model.AttrMap, inner string) string {
				level, _ := attrs["level"].(int)
				if level < 1 || level > 6 {
					level = 1
				}
				return withAlign(fmt.Sprintf("h%d", level), attrs, inner)
			},
			FromHTML: []*model.ParseRule{
				{Tag: "h1", Getter: headingGetter}, {Tag: "h2", Getter: headingGetter},
				{Tag: "h3", Getter: headingGetter}, {Tag: "h4", Getter: headingGetter},
				{Tag: "h5", Getter: headingGetter}, {Tag: "h6", Getter: headingGetter},
			},
		},
		{
			Name:     "blockquote",
			Group:    "block",
			Content:  "block+",
			Defining: true,
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return "<blockquote>" + inner + "</blockquote>"
			},
			FromHTML: []*model.ParseRule{{Tag: "blockquote"}},
		},
		{
			Name:  "horizontalRule",
			Group: "block",
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return "<hr>"
			},
			FromHTML: []*model.ParseRule{{Tag: "hr"}},
		},
		{
			Name:   "hardBreak",
			Group:  "inline",
			Inline: true,
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return "<br>"
			},
			FromHTML: []*model.ParseRule{{Tag: "br"}},
		},
		{
			Name:   "text",
			Group:  "inline",
			Inline: true,
		},
	}
}

func (BaseNodes) Commands() map[string]extension.Command {
	return map[string]extension.Command{
		"setParagraph": blockTypeCommand("paragraph", nil),
		"setHeading": func(st extension.State, args ...any) *model.Transaction {
			level := 1
			if len(args) > 0 {
				if l, ok := args[0].(int); ok {
					level = l
				}
			}
			return blockTypeCommand("heading", model.AttrMap{"level": level})(st)
		},
		"setAlign": func(st extension.State, args ...any) *model.Transaction {
			if len(args) == 0 {
				return nil
			}
			align, ok := args[0].(string)
			if !ok || !alignValues[align] {
				return nil
			}
			pos, _, ok := textblockAround(st, st.Sel.From)
			if !ok {
				return nil
			}
			return model.NewTransaction(st.Doc).SetNodeAttrs(pos, model.AttrMap{"align": align})
		},
	}
}

// blockTypeCommand converts the textblock around the selection to another
// textblock type, keeping its inline content.
func blockTypeCommand(typeName string, attrs model.AttrMap) extension.Command {
	return func(st extension.State, args ...any) *model.Transaction {
		pos, node, ok := textblockAround(st, st.Sel.From)
		if !ok || node.Type.Name == typeName {
			return nil
		}
		replacement, err := st.Schema.Node(typeName, attrs, node.Content.Children()...)
		if err != nil {
			return nil
		}
		return model.NewTransaction(st.Doc).
			ReplaceRange(pos, pos+node.NodeSize(), model.NewSlice(replacement))
	}
}

// textblockAround finds the inner-most textblock containing pos and the
// position right before it.
func textblockAround(st extension.State, pos int) (int, *model.Node, bool) {
	r, err := model.Resolve(st.Doc, pos)
	if err != nil {
		return 0, nil, false
	}
	for depth := r.Depth(); depth > 0; depth-- {
		node := r.Node(depth)
		if node.IsTextblock() {
			return r.Start(depth) - 1, node, true
		}
	}
	return 0, nil, false
}

func withAlign(tag string, attrs model.AttrMap, inner string) string {
	align, _ := attrs["align"].(string)
	if align != "" {
		return fmt.Sprintf(`<%s data-align=%q style="text-align: %s">%s</%s>`, tag, align, align, inner, tag)
	}
	return "<" + tag + ">" + inner + "</" + tag + ">"
}

func alignGetter(tag string, htmlAttrs map[string]string) model.AttrMap {
	if align := htmlAttrs["data-align"]; align != "" {
		return model.AttrMap{"align": align}
	}
	return nil
}

func headingGetter(tag string, htmlAttrs map[string]string) model.AttrMap {
	level := int(tag[1] - '0')
	attrs := model.AttrMap{"level": level}
	if align := htmlAttrs["data-align"]; align != "" {
		attrs["align"] = align
	}
	return attrs
}

func escape(s string) string {
	return html.EscapeString(s)
}
