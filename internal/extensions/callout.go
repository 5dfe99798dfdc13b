package extensions

import (
	"fmt"

	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// CalloutTypes are the recognized callout flavors.
var CalloutTypes = []string{"info", "warning", "tip", "danger"}

func validCalloutType(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, t := range CalloutTypes {
		if s == t {
			return true
		}
	}
	return false
}

// Callout declares the callout container: a block wrapper with a type
// selector in its editable chrome.
type Callout struct {
	extension.Base
}

func (Callout) Name() string { return "callout" }

func (Callout) Nodes() []*model.NodeSpec {
	return []*model.NodeSpec{
		{
			Name:     "callout",
			Group:    "block",
			Content:  "block+",
			Defining: true,
			Attrs: map[string]*model.AttributeSpec{
				"type": {Default: "info", Validate: func(value any) error {
					if !validCalloutType(value) {
						return fmt.Errorf("unknown callout type %v", value)
					}
					return nil
				}},
			},
			ToHTML: func(attrs model.AttrMap, inner string) string {
				calloutType, _ := attrs["type"].(string)
				return fmt.Sprintf(`<div data-callout=%q>%s</div>`, calloutType, inner)
			},
			FromHTML: []*model.ParseRule{{
				Tag:  "div",
				Attr: "data-callout",
				Getter: func(tag string, htmlAttrs map[string]string) model.AttrMap {
					calloutType := htmlAttrs["data-callout"]
					if !validCalloutType(calloutType) {
						// Default on parse failure.
						calloutType = "info"
					}
					return model.AttrMap{"type": calloutType}
				},
			}},
		},
	}
}

func (Callout) Commands() map[string]extension.Command {
	return map[string]extension.Command{
		// setCallout wraps the textblock around the selection in a callout of
		// the given type.
		"setCallout": func(st extension.State, args ...any) *model.Transaction {
			calloutType := "info"
			if len(args) > 0 {
				if s, ok := args[0].(string); ok && validCalloutType(s) {
					calloutType = s
				}
			}
			pos, node, ok := textblockAround(st, st.Sel.From)
			if !ok {
				return nil
			}
			wrapped, err := st.Schema.Node("callout", model.AttrMap{"type": calloutType}, node)
			if err != nil {
				return nil
			}
			return model.NewTransaction(st.Doc).
				ReplaceRange(pos, pos+node.NodeSize(), model.NewSlice(wrapped))
		},
		// setCalloutType changes the type of the callout starting at the given
		// position. Driven by the node-view chrome; undoable.
		"setCalloutType": func(st extension.State, args ...any) *model.Transaction {
			if len(args) < 2 {
				return nil
			}
			pos, ok := args[0].(int)
			calloutType, ok2 := args[1].(string)
			if !ok || !ok2 || !validCalloutType(calloutType) {
				return nil
			}
			callout := st.Doc.NodeAt(pos)
			if callout == nil || callout.Type.Name != "callout" {
				return nil
			}
			return model.NewTransaction(st.Doc).SetNodeAttrs(pos, model.AttrMap{"type": calloutType})
		},
	}
}
