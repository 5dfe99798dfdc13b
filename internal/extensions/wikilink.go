package extensions

import (
	"fmt"

	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// PopupOpener is implemented by the wiki-link popup controller. The input
// rule only signals the trigger position; the popup drives the document from
// there.
type PopupOpener interface {
	OpenAt(triggerPos int)
}

// WikiLink declares the inline atom referencing another article by slug. The
// title is stored at insertion time for stable display; the target is
// located by slug at navigation time.
type WikiLink struct {
	extension.Base
	opener PopupOpener
}

func NewWikiLink() *WikiLink {
	return &WikiLink{}
}

// SetOpener wires the popup controller. Without an opener the "[[" trigger
// passes through as literal text.
func (w *WikiLink) SetOpener(opener PopupOpener) {
	w.opener = opener
}

func (*WikiLink) Name() string { return "wikiLink" }

func (*WikiLink) Nodes() []*model.NodeSpec {
	return []*model.NodeSpec{
		{
			Name:   "wikiLink",
			Group:  "inline",
			Inline: true,
			Atom:   true,
			Attrs: map[string]*model.AttributeSpec{
				"slug":  {Default: ""},
				"title": {Default: ""},
			},
			ToHTML: func(attrs model.AttrMap, inner string) string {
				slug, _ := attrs["slug"].(string)
				title, _ := attrs["title"].(string)
				return fmt.Sprintf(`<a data-wiki-link=%q href="/kb/%s">%s</a>`, escape(slug), escape(slug), escape(title))
			},
			FromHTML: []*model.ParseRule{{
				Tag:  "a",
				Attr: "data-wiki-link",
				Getter: func(tag string, htmlAttrs map[string]string) model.AttrMap {
					return model.AttrMap{
						"slug":  htmlAttrs["data-wiki-link"],
						"title": htmlAttrs["data-text"],
					}
				},
			}},
		},
	}
}

func (w *WikiLink) Commands() map[string]extension.Command {
	return map[string]extension.Command{
		// insertWikiLink replaces [from, to) with a wiki-link atom. The slug
		// must be non-empty; this is where invariant enforcement lives.
		"insertWikiLink": func(st extension.State, args ...any) *model.Transaction {
			if len(args) < 4 {
				return nil
			}
			from, ok1 := args[0].(int)
			to, ok2 := args[1].(int)
			slug, ok3 := args[2].(string)
			title, ok4 := args[3].(string)
			if !ok1 || !ok2 || !ok3 || !ok4 || slug == "" {
				return nil
			}
			node, err := st.Schema.Node("wikiLink", model.AttrMap{"slug": slug, "title": title})
			if err != nil {
				return nil
			}
			return model.NewTransaction(st.Doc).ReplaceRange(from, to, model.NewSlice(node))
		},
	}
}

func (w *WikiLink) InputRules() []extension.InputRule {
	return []extension.InputRule{
		{
			// A second "[" typed right after a first one: both brackets are
			// removed and the popup opens at the trigger position.
			Pattern: "[[",
			Handler: func(st extension.State, from int, matched string) *model.Transaction {
				if w.opener == nil {
					return nil
				}
				// Only the first bracket is in the document; the second is
				// the pending character the rule consumes.
				tr := model.NewTransaction(st.Doc).Delete(from, from+1)
				if tr.Err() != nil {
					return nil
				}
				w.opener.OpenAt(from)
				return tr
			},
		},
	}
}
