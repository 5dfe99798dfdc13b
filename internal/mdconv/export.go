// Package mdconv converts documents to and from Markdown. Export walks the
// tree directly; import goes through the Markdown-to-HTML pipeline and the
// tolerant HTML parser, so both formats share one set of parse rules.
package mdconv

import (
	"fmt"
	"strings"

	"github.com/DragonRuins/hubdoc/internal/htmlconv"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// Export renders a document as Markdown. Node types with no Markdown form
// (callouts, collapsible sections) fall back to their HTML rendering, which
// Import reads back.
func Export(doc *model.Node) string {
	var sb strings.Builder
	exportBlocks(&sb, doc, "")
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func exportBlocks(sb *strings.Builder, parent *model.Node, prefix string) {
	for i, child := range parent.Content.Children() {
		if i > 0 {
			sb.WriteString(prefix)
			sb.WriteString("\n")
		}
		exportBlock(sb, child, prefix)
	}
}

func exportBlock(sb *strings.Builder, n *model.Node, prefix string) {
	switch n.Type.Name {
	case "paragraph":
		writePrefixed(sb, prefix, exportInline(n))
	case "heading":
		level, _ := n.Attr("level").(int)
		writePrefixed(sb, prefix, strings.Repeat("#", level)+" "+exportInline(n))
	case "blockquote":
		var inner strings.Builder
		exportBlocks(&inner, n, "")
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(strings.TrimRight("> "+line, " "))
			sb.WriteString("\n")
		}
	case "horizontalRule":
		writePrefixed(sb, prefix, "---")
	case "codeBlock":
		language, _ := n.Attr("language").(string)
		writeFence(sb, prefix, language, n.TextContent())
	case "mermaidBlock":
		code, _ := n.Attr("code").(string)
		writeFence(sb, prefix, "mermaid", code)
	case "bulletList":
		exportList(sb, n, prefix, func(int, *model.Node) string { return "- " })
	case "orderedList":
		start, _ := n.Attr("start").(int)
		if start == 0 {
			start = 1
		}
		exportList(sb, n, prefix, func(i int, _ *model.Node) string {
			return fmt.Sprintf("%d. ", start+i)
		})
	case "taskList":
		exportList(sb, n, prefix, func(_ int, item *model.Node) string {
			if checked, _ := item.Attr("checked").(bool); checked {
				return "- [x] "
			}
			return "- [ ] "
		})
	case "image":
		src, _ := n.Attr("src").(string)
		alt, _ := n.Attr("alt").(string)
		title, _ := n.Attr("title").(string)
		if title != "" {
			writePrefixed(sb, prefix, fmt.Sprintf("![%s](%s %q)", alt, src, title))
		} else {
			writePrefixed(sb, prefix, fmt.Sprintf("![%s](%s)", alt, src))
		}
	case "table":
		exportTable(sb, n, prefix)
	default:
		// No Markdown form; embed the HTML rendering.
		wrapper := n.Type.Spec.ToHTML
		if wrapper == nil {
			exportBlocks(sb, n, prefix)
			return
		}
		var inner strings.Builder
		exportHTML(&inner, n)
		writePrefixed(sb, prefix, inner.String())
	}
}

// exportHTML writes the node's own HTML form. Render only emits children, so
// the node's render rule is applied around them here.
func exportHTML(sb *strings.Builder, n *model.Node) {
	inner := htmlconv.Render(n)
	if rule := n.Type.Spec.ToHTML; rule != nil {
		sb.WriteString(rule(n.Attrs, inner))
		return
	}
	sb.WriteString(inner)
}

func writePrefixed(sb *strings.Builder, prefix, text string) {
	for _, line := range strings.Split(text, "\n") {
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

func writeFence(sb *strings.Builder, prefix, info, code string) {
	sb.WriteString(prefix)
	sb.WriteString("```")
	sb.WriteString(info)
	sb.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(prefix)
	sb.WriteString("```\n")
}

func exportList(sb *strings.Builder, list *model.Node, prefix string, bullet func(i int, item *model.Node) string) {
	for i, item := range list.Content.Children() {
		marker := bullet(i, item)
		var inner strings.Builder
		exportBlocks(&inner, item, "")
		lines := strings.Split(strings.TrimRight(inner.String(), "\n"), "\n")
		continuation := prefix + strings.Repeat(" ", len(marker))
		for j, line := range lines {
			if j == 0 {
				sb.WriteString(prefix)
				sb.WriteString(marker)
			} else {
				sb.WriteString(continuation)
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
}

func exportTable(sb *strings.Builder, table *model.Node, prefix string) {
	for rowIndex, row := range table.Content.Children() {
		sb.WriteString(prefix)
		sb.WriteString("|")
		for _, cell := range row.Content.Children() {
			sb.WriteString(" ")
			sb.WriteString(strings.ReplaceAll(cellText(cell), "|", "\\|"))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
		if rowIndex == 0 {
			sb.WriteString(prefix)
			sb.WriteString("|")
			for range row.Content.Children() {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}
}

// cellText flattens a cell to a single line; Markdown tables cannot hold
// block structure.
func cellText(cell *model.Node) string {
	var parts []string
	for _, block := range cell.Content.Children() {
		if text := exportInline(block); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// exportInline renders a textblock's inline content with Markdown emphasis
// syntax. Underline and highlight have no Markdown form and use their HTML
// tags.
func exportInline(n *model.Node) string {
	var sb strings.Builder
	for _, child := range n.Content.Children() {
		switch {
		case child.IsText():
			sb.WriteString(wrapMarks(child.Marks, escapeText(child.Text)))
		case child.Type.Name == "wikiLink":
			slug, _ := child.Attr("slug").(string)
			title, _ := child.Attr("title").(string)
			if title == "" || title == slug {
				sb.WriteString("[[" + slug + "]]")
			} else {
				sb.WriteString("[[" + slug + "|" + title + "]]")
			}
		case child.Type.Name == "hardBreak":
			sb.WriteString("  \n")
		default:
			var inner strings.Builder
			exportHTML(&inner, child)
			sb.WriteString(inner.String())
		}
	}
	return sb.String()
}

func wrapMarks(marks []model.Mark, text string) string {
	for i := len(marks) - 1; i >= 0; i-- {
		mark := marks[i]
		switch mark.Type.Name {
		case "bold":
			text = "**" + text + "**"
		case "italic":
			text = "*" + text + "*"
		case "strike":
			text = "~~" + text + "~~"
		case "code":
			text = "`" + text + "`"
		case "underline":
			text = "<u>" + text + "</u>"
		case "highlight":
			text = "<mark>" + text + "</mark>"
		case "link":
			href, _ := mark.Attrs["href"].(string)
			title, _ := mark.Attrs["title"].(string)
			if title != "" {
				text = fmt.Sprintf("[%s](%s %q)", text, href, title)
			} else {
				text = fmt.Sprintf("[%s](%s)", text, href)
			}
		}
	}
	return text
}

// escapeText protects characters that would otherwise read as Markdown
// syntax at the start of a line or inside emphasis.
func escapeText(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"[[", `\[\[`,
	)
	return replacer.Replace(text)
}
