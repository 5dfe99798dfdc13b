package mdconv

import (
	"testing"

	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/extensions"
	"github.com/DragonRuins/hubdoc/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articleSchema(t *testing.T) *model.Schema {
	t.Helper()
	all, _ := extensions.Default(0)
	r, err := extension.NewRegistry(all...)
	require.NoError(t, err)
	return r.Schema()
}

func TestExport(t *testing.T) {
	s := articleSchema(t)
	bold := s.MustMark("bold", nil)
	code := s.MustMark("code", nil)
	link := s.MustMark("link", model.AttrMap{"href": "https://example.com"})

	paragraph := func(children ...*model.Node) *model.Node {
		return s.MustNode("paragraph", nil, children...)
	}
	item := func(text string) *model.Node {
		return s.MustNode("listItem", nil, paragraph(s.Text(text)))
	}

	var tests = []struct {
		name string      // name
		doc  *model.Node // input
		md   string      // output
	}{
		{
			"Heading",
			s.MustNode("doc", nil, s.MustNode("heading", model.AttrMap{"level": 2}, s.Text("Setup"))),
			"## Setup\n",
		},
		{
			"InlineMarks",
			s.MustNode("doc", nil, paragraph(
				s.Text("a "), s.Text("b", bold), s.Text(" "), s.Text("c", code),
				s.Text(" "), s.Text("d", link))),
			"a **b** `c` [d](https://example.com)\n",
		},
		{
			"EscapedSyntax",
			s.MustNode("doc", nil, paragraph(s.Text("2*3 and [[not a link]]"))),
			`2\*3 and \[\[not a link]]` + "\n",
		},
		{
			"HardBreak",
			s.MustNode("doc", nil, paragraph(s.Text("a"), s.MustNode("hardBreak", nil), s.Text("b"))),
			"a  \nb\n",
		},
		{
			"WikiLinks",
			s.MustNode("doc", nil, paragraph(
				s.MustNode("wikiLink", model.AttrMap{"slug": "garden", "title": "garden"}),
				s.Text(" "),
				s.MustNode("wikiLink", model.AttrMap{"slug": "tools", "title": "Tools"}))),
			"[[garden]] [[tools|Tools]]\n",
		},
		{
			"Blockquote",
			s.MustNode("doc", nil, s.MustNode("blockquote", nil,
				paragraph(s.Text("first")), paragraph(s.Text("second")))),
			"> first\n>\n> second\n",
		},
		{
			"HorizontalRule",
			s.MustNode("doc", nil, s.MustNode("horizontalRule", nil)),
			"---\n",
		},
		{
			"BulletList",
			s.MustNode("doc", nil, s.MustNode("bulletList", nil, item("one"), item("two"))),
			"- one\n- two\n",
		},
		{
			"OrderedListWithStart",
			s.MustNode("doc", nil, s.MustNode("orderedList", model.AttrMap{"start": 3}, item("x"), item("y"))),
			"3. x\n4. y\n",
		},
		{
			"TaskList",
			s.MustNode("doc", nil, s.MustNode("taskList", nil,
				s.MustNode("taskItem", model.AttrMap{"checked": true}, paragraph(s.Text("done"))),
				s.MustNode("taskItem", nil, paragraph(s.Text("todo"))))),
			"- [x] done\n- [ ] todo\n",
		},
		{
			"CodeFence",
			s.MustNode("doc", nil, s.MustNode("codeBlock", model.AttrMap{"language": "go"}, s.Text("x := 1"))),
			"```go\nx := 1\n```\n",
		},
		{
			"MermaidFence",
			s.MustNode("doc", nil, s.MustNode("mermaidBlock", model.AttrMap{"code": "graph TD"})),
			"```mermaid\ngraph TD\n```\n",
		},
		{
			"Image",
			s.MustNode("doc", nil, s.MustNode("image", model.AttrMap{
				"src": "/img/p.png", "alt": "pic", "title": "Photo"})),
			"![pic](/img/p.png \"Photo\")\n",
		},
		{
			"Table",
			s.MustNode("doc", nil, s.MustNode("table", nil,
				s.MustNode("tableRow", nil,
					s.MustNode("tableHeader", nil, paragraph(s.Text("H1"))),
					s.MustNode("tableHeader", nil, paragraph(s.Text("H2")))),
				s.MustNode("tableRow", nil,
					s.MustNode("tableCell", nil, paragraph(s.Text("a"))),
					s.MustNode("tableCell", nil, paragraph(s.Text("b")))))),
			"| H1 | H2 |\n| --- | --- |\n| a | b |\n",
		},
		{
			"CalloutFallsBackToHTML",
			s.MustNode("doc", nil, s.MustNode("callout", model.AttrMap{"type": "info"},
				paragraph(s.Text("note")))),
			`<div data-callout="info"><p>note</p></div>` + "\n",
		},
		{
			"BlankLineBetweenBlocks",
			s.MustNode("doc", nil,
				s.MustNode("heading", model.AttrMap{"level": 1}, s.Text("Title")),
				paragraph(s.Text("body"))),
			"# Title\n\nbody\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.doc.Check())
			assert.Equal(t, tt.md, Export(tt.doc))
		})
	}
}

func TestImportBasicBlocks(t *testing.T) {
	s := articleSchema(t)

	doc, warnings, err := Import(s, "# Hello\n\nworld with **weight**\n")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Equal(t, 2, doc.ChildCount())

	heading := doc.Child(0)
	assert.Equal(t, "heading", heading.Type.Name)
	assert.Equal(t, 1, heading.Attr("level"))
	assert.Equal(t, "Hello", heading.TextContent())

	paragraph := doc.Child(1)
	require.Equal(t, 2, paragraph.ChildCount())
	assert.Equal(t, "world with ", paragraph.Child(0).Text)
	bold := s.MustMark("bold", nil)
	assert.True(t, bold.InSet(paragraph.Child(1).Marks))
}

func TestImportLists(t *testing.T) {
	s := articleSchema(t)

	doc, _, err := Import(s, "- one\n- two\n")
	require.NoError(t, err)
	list := doc.Child(0)
	require.Equal(t, "bulletList", list.Type.Name)
	require.Equal(t, 2, list.ChildCount())
	assert.Equal(t, "listItem", list.Child(0).Type.Name)
	assert.Equal(t, "one", list.Child(0).TextContent())

	doc, _, err = Import(s, "1. only\n")
	require.NoError(t, err)
	list = doc.Child(0)
	require.Equal(t, "orderedList", list.Type.Name)
	assert.Equal(t, 1, list.Attr("start"))
}

func TestImportFencedCode(t *testing.T) {
	s := articleSchema(t)

	doc, _, err := Import(s, "```go\nx := 1\n```\n")
	require.NoError(t, err)
	block := doc.Child(0)
	require.Equal(t, "codeBlock", block.Type.Name)
	assert.Equal(t, "go", block.Attr("language"))
	assert.Equal(t, "x := 1", block.TextContent())
}

func TestImportMermaidFencePromoted(t *testing.T) {
	s := articleSchema(t)

	doc, _, err := Import(s, "```mermaid\ngraph TD\n```\n")
	require.NoError(t, err)
	block := doc.Child(0)
	require.Equal(t, "mermaidBlock", block.Type.Name)
	assert.Equal(t, "graph TD", block.Attr("code"))
}

func TestImportWikiLinkShorthand(t *testing.T) {
	s := articleSchema(t)

	doc, _, err := Import(s, "see [[tools|Tools]] and [[garden]]\n")
	require.NoError(t, err)
	paragraph := doc.Child(0)

	var links []*model.Node
	for _, child := range paragraph.Content.Children() {
		if child.Type.Name == "wikiLink" {
			links = append(links, child)
		}
	}
	require.Len(t, links, 2)
	assert.Equal(t, "tools", links[0].Attr("slug"))
	assert.Equal(t, "Tools", links[0].Attr("title"))
	assert.Equal(t, "garden", links[1].Attr("slug"))
	assert.Equal(t, "garden", links[1].Attr("title"))
}

func TestExportImportRoundTrip(t *testing.T) {
	s := articleSchema(t)
	bold := s.MustMark("bold", nil)

	doc := s.MustNode("doc", nil,
		s.MustNode("heading", model.AttrMap{"level": 1}, s.Text("Garden Log")),
		s.MustNode("paragraph", nil,
			s.Text("see "),
			s.Text("docs", bold),
			s.MustNode("wikiLink", model.AttrMap{"slug": "tools", "title": "Tools"}),
		),
		s.MustNode("blockquote", nil, s.MustNode("paragraph", nil, s.Text("quoted"))),
		s.MustNode("bulletList", nil,
			s.MustNode("listItem", nil, s.MustNode("paragraph", nil, s.Text("first"))),
			s.MustNode("listItem", nil, s.MustNode("paragraph", nil, s.Text("second"))),
		),
		s.MustNode("codeBlock", model.AttrMap{"language": "go"}, s.Text("x := 1")),
		s.MustNode("mermaidBlock", model.AttrMap{"code": "graph TD"}),
	)
	require.NoError(t, doc.Check())

	parsed, _, err := Import(s, Export(doc))
	require.NoError(t, err)
	assert.True(t, doc.Eq(parsed))
}
