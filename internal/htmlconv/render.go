// Package htmlconv converts between documents and HTML using the render and
// parse rules declared on each node and mark type. Rendering is exact; parsing
// is tolerant, keeping text and dropping what it cannot place.
package htmlconv

import (
	"html"
	"strings"

	"github.com/DragonRuins/hubdoc/internal/model"
)

// Render serializes a document to HTML. Node types without a render rule
// contribute their children unwrapped.
func Render(doc *model.Node) string {
	var sb strings.Builder
	renderContent(&sb, doc)
	return sb.String()
}

func renderContent(sb *strings.Builder, n *model.Node) {
	for _, child := range n.Content.Children() {
		renderNode(sb, child)
	}
}

func renderNode(sb *strings.Builder, n *model.Node) {
	if n.IsText() {
		sb.WriteString(renderMarks(n.Marks, html.EscapeString(n.Text)))
		return
	}
	var inner strings.Builder
	renderContent(&inner, n)
	rule := n.Type.Spec.ToHTML
	if rule == nil {
		sb.WriteString(inner.String())
		return
	}
	rendered := rule(n.Attrs, inner.String())
	if len(n.Marks) > 0 {
		rendered = renderMarks(n.Marks, rendered)
	}
	sb.WriteString(rendered)
}

// renderMarks wraps inner in mark tags, first mark outermost.
func renderMarks(marks []model.Mark, inner string) string {
	for i := len(marks) - 1; i >= 0; i-- {
		rule := marks[i].Type.Spec.ToHTML
		if rule == nil {
			continue
		}
		inner = rule(marks[i].Attrs, inner)
	}
	return inner
}
