package mdconv

import (
	"regexp"

	"github.com/gomarkdown/markdown"

	"github.com/DragonRuins/hubdoc/internal/htmlconv"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// wikiLinkPattern matches [[slug]] and [[slug|title]] shorthand, which
// Markdown itself has no notion of.
var wikiLinkPattern = regexp.MustCompile(`\[\[([^\]|[]+)(?:\|([^\][]+))?\]\]`)

// Import parses Markdown into a document. The text is converted to HTML
// first, then read through the HTML parse rules, so every node type that can
// come from HTML can come from Markdown too.
func Import(schema *model.Schema, md string) (*model.Node, []string, error) {
	md = expandWikiLinks(md)
	rendered := markdown.ToHTML([]byte(md), nil, nil)
	doc, warnings, err := htmlconv.Parse(schema, string(rendered))
	if err != nil {
		return nil, warnings, err
	}
	return promoteMermaid(schema, doc), warnings, nil
}

// promoteMermaid rewrites ```mermaid fences, which arrive as code blocks,
// into diagram blocks when the schema declares them.
func promoteMermaid(schema *model.Schema, n *model.Node) *model.Node {
	if schema.NodeType("mermaidBlock") == nil {
		return n
	}
	if n.Type.Name == "codeBlock" {
		if language, _ := n.Attr("language").(string); language == "mermaid" {
			if block, err := schema.Node("mermaidBlock", model.AttrMap{"code": n.TextContent()}); err == nil {
				return block
			}
		}
		return n
	}
	if n.IsText() || n.Type.IsLeaf() {
		return n
	}
	children := n.Content.Children()
	rewritten := make([]*model.Node, len(children))
	changed := false
	for i, child := range children {
		rewritten[i] = promoteMermaid(schema, child)
		if rewritten[i] != child {
			changed = true
		}
	}
	if !changed {
		return n
	}
	return n.WithContent(model.NewFragment(rewritten...))
}

func expandWikiLinks(md string) string {
	return wikiLinkPattern.ReplaceAllStringFunc(md, func(match string) string {
		groups := wikiLinkPattern.FindStringSubmatch(match)
		slug, title := groups[1], groups[2]
		if title == "" {
			title = slug
		}
		return `<a data-wiki-link="` + slug + `" href="/kb/` + slug + `">` + title + `</a>`
	})
}
