package extensions

import (
	"html"
	"time"

	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/mermaid"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// Mermaid declares the diagram block: an atom node whose editable state
// lives entirely in its code attr.
type Mermaid struct {
	extension.Base
	// RenderDelay debounces re-rendering after a code change.
	RenderDelay time.Duration
}

func NewMermaid(renderDelay time.Duration) *Mermaid {
	return &Mermaid{RenderDelay: renderDelay}
}

func (*Mermaid) Name() string { return "mermaid" }

func (*Mermaid) Nodes() []*model.NodeSpec {
	return []*model.NodeSpec{
		{
			Name:  "mermaidBlock",
			Group: "block",
			Atom:  true,
			Attrs: map[string]*model.AttributeSpec{
				"code": {Default: ""},
			},
			ToHTML: func(attrs model.AttrMap, inner string) string {
				code, _ := attrs["code"].(string)
				return `<div data-mermaid-block="true"><pre>` + html.EscapeString(code) + "</pre></div>"
			},
			FromHTML: []*model.ParseRule{{
				Tag:  "div",
				Attr: "data-mermaid-block",
				Getter: func(tag string, htmlAttrs map[string]string) model.AttrMap {
					// The code is carried by the inner <pre> text; the HTML
					// parser stores it under this synthetic key.
					return model.AttrMap{"code": htmlAttrs["data-code"]}
				},
			}},
		},
	}
}

func (m *Mermaid) Commands() map[string]extension.Command {
	return map[string]extension.Command{
		// setMermaid inserts a diagram block after the textblock around the
		// selection.
		"setMermaid": func(st extension.State, args ...any) *model.Transaction {
			code := ""
			if len(args) > 0 {
				code, _ = args[0].(string)
			}
			block, err := st.Schema.Node("mermaidBlock", model.AttrMap{"code": code})
			if err != nil {
				return nil
			}
			pos, node, ok := textblockAround(st, st.Sel.From)
			if !ok {
				return nil
			}
			return model.NewTransaction(st.Doc).InsertNode(pos+node.NodeSize(), block)
		},
		// setMermaidCode updates the source of the block at the given
		// position; the node view re-renders after its debounce delay.
		"setMermaidCode": func(st extension.State, args ...any) *model.Transaction {
			if len(args) < 2 {
				return nil
			}
			pos, ok := args[0].(int)
			code, ok2 := args[1].(string)
			if !ok || !ok2 {
				return nil
			}
			block := st.Doc.NodeAt(pos)
			if block == nil || block.Type.Name != "mermaidBlock" {
				return nil
			}
			if existing, _ := block.Attr("code").(string); existing == code {
				return nil
			}
			return model.NewTransaction(st.Doc).SetNodeAttrs(pos, model.AttrMap{"code": code})
		},
	}
}

func (m *Mermaid) Views() map[string]extension.NodeViewFactory {
	delay := m.RenderDelay
	if delay == 0 {
		delay = 500 * time.Millisecond
	}
	return map[string]extension.NodeViewFactory{
		"mermaidBlock": mermaid.NewViewFactory(delay),
	}
}
