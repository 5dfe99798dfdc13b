package extensions

import (
	"fmt"

	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// Images declares the image node. The editor never uploads: a picker
// collaborator supplies the attachment URL and insertImage splices the node.
type Images struct {
	extension.Base
}

func (Images) Name() string { return "images" }

func (Images) Nodes() []*model.NodeSpec {
	return []*model.NodeSpec{
		{
			Name:  "image",
			Group: "block",
			Atom:  true,
			Attrs: map[string]*model.AttributeSpec{
				"src":   {Default: ""},
				"alt":   {Default: ""},
				"title": {Default: ""},
			},
			ToHTML: func(attrs model.AttrMap, inner string) string {
				src, _ := attrs["src"].(string)
				alt, _ := attrs["alt"].(string)
				title, _ := attrs["title"].(string)
				if title != "" {
					return fmt.Sprintf(`<img src=%q alt=%q title=%q>`, escape(src), escape(alt), escape(title))
				}
				return fmt.Sprintf(`<img src=%q alt=%q>`, escape(src), escape(alt))
			},
			FromHTML: []*model.ParseRule{{
				Tag:  "img",
				Attr: "src",
				Getter: func(tag string, htmlAttrs map[string]string) model.AttrMap {
					return model.AttrMap{
						"src":   htmlAttrs["src"],
						"alt":   htmlAttrs["alt"],
						"title": htmlAttrs["title"],
					}
				},
			}},
		},
	}
}

func (Images) Commands() map[string]extension.Command {
	return map[string]extension.Command{
		"insertImage": func(st extension.State, args ...any) *model.Transaction {
			if len(args) == 0 {
				return nil
			}
			src, ok := args[0].(string)
			if !ok || src == "" {
				return nil
			}
			alt := ""
			if len(args) > 1 {
				alt, _ = args[1].(string)
			}
			image, err := st.Schema.Node("image", model.AttrMap{"src": src, "alt": alt})
			if err != nil {
				return nil
			}
			pos, node, ok := textblockAround(st, st.Sel.From)
			if !ok {
				return nil
			}
			return model.NewTransaction(st.Doc).InsertNode(pos+node.NodeSize(), image)
		},
	}
}
