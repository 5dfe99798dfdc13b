package extensions

import (
	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// Collapsible declares the collapsible section: a wrapper with exactly two
// children, the summary line then the body.
type Collapsible struct {
	extension.Base
}

func (Collapsible) Name() string { return "collapsible" }

func (Collapsible) Nodes() []*model.NodeSpec {
	return []*model.NodeSpec{
		{
			Name:     "collapsible",
			Group:    "block",
			Content:  "collapsibleSummary collapsibleContent",
			Defining: true,
			Attrs: map[string]*model.AttributeSpec{
				"open": {Default: true},
			},
			ToHTML: func(attrs model.AttrMap, inner string) string {
				open, _ := attrs["open"].(bool)
				if open {
					return `<details data-collapsible="true" open>` + inner + "</details>"
				}
				return `<details data-collapsible="true">` + inner + "</details>"
			},
			FromHTML: []*model.ParseRule{{
				Tag:  "details",
				Attr: "data-collapsible",
				Getter: func(tag string, htmlAttrs map[string]string) model.AttrMap {
					_, open := htmlAttrs["open"]
					return model.AttrMap{"open": open}
				},
			}},
		},
		{
			Name:    "collapsibleSummary",
			Content: "inline*",
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return "<summary>" + inner + "</summary>"
			},
			FromHTML: []*model.ParseRule{{Tag: "summary"}},
		},
		{
			Name:    "collapsibleContent",
			Content: "block+",
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return `<div data-collapsible-content="true">` + inner + "</div>"
			},
			FromHTML: []*model.ParseRule{{Tag: "div", Attr: "data-collapsible-content"}},
		},
	}
}

func (Collapsible) Commands() map[string]extension.Command {
	return map[string]extension.Command{
		// setCollapsible wraps the textblock around the selection: the block
		// becomes the body and an empty summary is added above it.
		"setCollapsible": func(st extension.State, args ...any) *model.Transaction {
			pos, node, ok := textblockAround(st, st.Sel.From)
			if !ok {
				return nil
			}
			summary := st.Schema.MustNode("collapsibleSummary", nil)
			content, err := st.Schema.Node("collapsibleContent", nil, node)
			if err != nil {
				return nil
			}
			wrapper, err := st.Schema.Node("collapsible", nil, summary, content)
			if err != nil {
				return nil
			}
			return model.NewTransaction(st.Doc).
				ReplaceRange(pos, pos+node.NodeSize(), model.NewSlice(wrapper))
		},
		// toggleCollapsible flips the open attr; a set-node-attrs step, so it
		// survives undo.
		"toggleCollapsible": func(st extension.State, args ...any) *model.Transaction {
			if len(args) == 0 {
				return nil
			}
			pos, ok := args[0].(int)
			if !ok {
				return nil
			}
			wrapper := st.Doc.NodeAt(pos)
			if wrapper == nil || wrapper.Type.Name != "collapsible" {
				return nil
			}
			open, _ := wrapper.Attr("open").(bool)
			return model.NewTransaction(st.Doc).SetNodeAttrs(pos, model.AttrMap{"open": !open})
		},
	}
}
