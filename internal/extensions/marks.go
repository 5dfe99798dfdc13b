package extensions

import (
	"fmt"

	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// Marks declares the standard inline marks and their formatting chords.
type Marks struct {
	extension.Base
}

func (Marks) Name() string { return "marks" }

func simpleMark(name, tag string) *model.MarkSpec {
	return &model.MarkSpec{
		Name: name,
		ToHTML: func(attrs model.AttrMap, inner string) string {
			return "<" + tag + ">" + inner + "</" + tag + ">"
		},
		FromHTML: []*model.ParseRule{{Tag: tag}},
	}
}

func (Marks) Marks() []*model.MarkSpec {
	link := &model.MarkSpec{
		Name: "link",
		Attrs: map[string]*model.AttributeSpec{
			"href":  {Default: ""},
			"title": {Default: ""},
		},
		ToHTML: func(attrs model.AttrMap, inner string) string {
			href, _ := attrs["href"].(string)
			title, _ := attrs["title"].(string)
			if title != "" {
				return fmt.Sprintf(`<a href=%q title=%q>%s</a>`, escape(href), escape(title), inner)
			}
			return fmt.Sprintf(`<a href=%q>%s</a>`, escape(href), inner)
		},
		FromHTML: []*model.ParseRule{{
			Tag:  "a",
			Attr: "href",
			Getter: func(tag string, htmlAttrs map[string]string) model.AttrMap {
				attrs := model.AttrMap{"href": htmlAttrs["href"]}
				if title := htmlAttrs["title"]; title != "" {
					attrs["title"] = title
				}
				return attrs
			},
		}},
	}
	return []*model.MarkSpec{
		simpleMark("bold", "strong"),
		simpleMark("italic", "em"),
		simpleMark("strike", "s"),
		simpleMark("code", "code"),
		simpleMark("underline", "u"),
		simpleMark("highlight", "mark"),
		link,
	}
}

func (Marks) Commands() map[string]extension.Command {
	commands := map[string]extension.Command{
		"setLink": func(st extension.State, args ...any) *model.Transaction {
			if len(args) == 0 || st.Sel.Collapsed() {
				return nil
			}
			href, ok := args[0].(string)
			if !ok || href == "" {
				return nil
			}
			mark, err := st.Schema.Mark("link", model.AttrMap{"href": href})
			if err != nil {
				return nil
			}
			return model.NewTransaction(st.Doc).AddMark(st.Sel.From, st.Sel.To, mark)
		},
		"unsetLink": func(st extension.State, args ...any) *model.Transaction {
			if st.Sel.Collapsed() {
				return nil
			}
			return model.NewTransaction(st.Doc).RemoveMark(st.Sel.From, st.Sel.To, st.Schema.MustMark("link", nil))
		},
	}
	for _, name := range []string{"bold", "italic", "strike", "code", "underline", "highlight"} {
		commands["toggle"+capitalize(name)] = toggleMarkCommand(name)
	}
	return commands
}

func (Marks) Keymaps() map[string]extension.Command {
	return map[string]extension.Command{
		"Mod-b": toggleMarkCommand("bold"),
		"Mod-i": toggleMarkCommand("italic"),
		"Mod-u": toggleMarkCommand("underline"),
		"Mod-e": toggleMarkCommand("code"),
	}
}

// toggleMarkCommand adds the mark to the selected range, or removes it when
// every inline node in the range already carries it.
func toggleMarkCommand(name string) extension.Command {
	return func(st extension.State, args ...any) *model.Transaction {
		if st.Sel.Collapsed() {
			return nil
		}
		mark := st.Schema.MustMark(name, nil)
		if rangeHasMark(st.Doc, st.Sel.From, st.Sel.To, mark) {
			return model.NewTransaction(st.Doc).RemoveMark(st.Sel.From, st.Sel.To, mark)
		}
		return model.NewTransaction(st.Doc).AddMark(st.Sel.From, st.Sel.To, mark)
	}
}

// rangeHasMark reports whether every text node intersecting the range
// carries the mark.
func rangeHasMark(doc *model.Node, from, to int, mark model.Mark) bool {
	found, all := false, true
	var walk func(n *model.Node, from, to int)
	walk = func(n *model.Node, from, to int) {
		cur := 0
		for _, child := range n.Content.Children() {
			end := cur + child.NodeSize()
			if end > from && cur < to {
				if child.IsText() {
					found = true
					if !mark.InSet(child.Marks) {
						all = false
					}
				} else if !child.Type.IsLeaf() {
					walk(child, max(0, from-cur-1), min(child.ContentSize(), to-cur-1))
				}
			}
			cur = end
		}
	}
	walk(doc, from, to)
	return found && all
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
