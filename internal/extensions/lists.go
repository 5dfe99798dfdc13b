package extensions

import (
	"fmt"

	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// Lists declares bullet lists, ordered lists, and task lists.
type Lists struct {
	extension.Base
}

func (Lists) Name() string { return "lists" }

func (Lists) Nodes() []*model.NodeSpec {
	return []*model.NodeSpec{
		{
			Name:    "bulletList",
			Group:   "block",
			Content: "listItem+",
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return "<ul>" + inner + "</ul>"
			},
			FromHTML: []*model.ParseRule{{Tag: "ul"}},
		},
		{
			Name:    "orderedList",
			Group:   "block",
			Content: "listItem+",
			Attrs: map[string]*model.AttributeSpec{
				"start": {Default: 1},
			},
			ToHTML: func(attrs model.AttrMap, inner string) string {
				start, _ := attrs["start"].(int)
				if start != 1 {
					return fmt.Sprintf(`<ol start="%d">%s</ol>`, start, inner)
				}
				return "<ol>" + inner + "</ol>"
			},
			FromHTML: []*model.ParseRule{{
				Tag: "ol",
				Getter: func(tag string, htmlAttrs map[string]string) model.AttrMap {
					if start := htmlAttrs["start"]; start != "" {
						var n int
						if _, err := fmt.Sscanf(start, "%d", &n); err == nil {
							return model.AttrMap{"start": n}
						}
					}
					return nil
				},
			}},
		},
		{
			Name:     "listItem",
			Content:  "block+",
			Defining: true,
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return "<li>" + inner + "</li>"
			},
			FromHTML: []*model.ParseRule{{Tag: "li"}},
		},
		{
			Name:    "taskList",
			Group:   "block",
			Content: "taskItem+",
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return `<ul data-task-list="true">` + inner + `</ul>`
			},
			FromHTML: []*model.ParseRule{{Tag: "ul", Attr: "data-task-list"}},
		},
		{
			Name:     "taskItem",
			Content:  "block+",
			Defining: true,
			Attrs: map[string]*model.AttributeSpec{
				"checked": {Default: false},
			},
			ToHTML: func(attrs model.AttrMap, inner string) string {
				checked, _ := attrs["checked"].(bool)
				if checked {
					return `<li data-checked="true">` + inner + "</li>"
				}
				return `<li data-checked="false">` + inner + "</li>"
			},
			FromHTML: []*model.ParseRule{{
				Tag:  "li",
				Attr: "data-checked",
				Getter: func(tag string, htmlAttrs map[string]string) model.AttrMap {
					return model.AttrMap{"checked": htmlAttrs["data-checked"] == "true"}
				},
			}},
		},
	}
}

func (Lists) Commands() map[string]extension.Command {
	return map[string]extension.Command{
		"toggleTaskItem": func(st extension.State, args ...any) *model.Transaction {
			if len(args) == 0 {
				return nil
			}
			pos, ok := args[0].(int)
			if !ok {
				return nil
			}
			item := st.Doc.NodeAt(pos)
			if item == nil || item.Type.Name != "taskItem" {
				return nil
			}
			checked, _ := item.Attr("checked").(bool)
			return model.NewTransaction(st.Doc).SetNodeAttrs(pos, model.AttrMap{"checked": !checked})
		},
	}
}
