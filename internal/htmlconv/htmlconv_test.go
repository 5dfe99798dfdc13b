package htmlconv

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

func TestRender(t *testing.T) {
	s := articleSchema(t)
	bold := s.MustMark("bold", nil)
	italic := s.MustMark("italic", nil)

	var tests = []struct {
		name string      // name
		doc  *model.Node // input
		html string      // output
	}{
		{
			"Paragraph",
			s.MustNode("doc", nil, s.MustNode("paragraph", nil, s.Text("hello "), s.Text("world", bold))),
			"<p>hello <strong>world</strong></p>",
		},
		{
			"NestedMarks",
			s.MustNode("doc", nil, s.MustNode("paragraph", nil, s.Text("x", bold, italic))),
			"<p><strong><em>x</em></strong></p>",
		},
		{
			"AlignedHeading",
			s.MustNode("doc", nil, s.MustNode("heading", model.AttrMap{"level": 2, "align": "center"}, s.Text("T"))),
			`<h2 data-align="center" style="text-align: center">T</h2>`,
		},
		{
			"EscapedText",
			s.MustNode("doc", nil, s.MustNode("paragraph", nil, s.Text("a < b"))),
			"<p>a &lt; b</p>",
		},
		{
			"CodeBlock",
			s.MustNode("doc", nil, s.MustNode("codeBlock", model.AttrMap{"language": "go"}, s.Text("x := 1"))),
			`<pre data-language="go"><code>x := 1</code></pre>`,
		},
		{
			"WikiLink",
			s.MustNode("doc", nil, s.MustNode("paragraph", nil,
				s.MustNode("wikiLink", model.AttrMap{"slug": "garden", "title": "Garden"}))),
			`<p><a data-wiki-link="garden" href="/kb/garden">Garden</a></p>`,
		},
		{
			"Callout",
			s.MustNode("doc", nil, s.MustNode("callout", model.AttrMap{"type": "warning"},
				s.MustNode("paragraph", nil, s.Text("careful")))),
			`<div data-callout="warning"><p>careful</p></div>`,
		},
		{
			"MermaidBlock",
			s.MustNode("doc", nil, s.MustNode("mermaidBlock", model.AttrMap{"code": "graph TD"})),
			`<div data-mermaid-block="true"><pre>graph TD</pre></div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.doc.Check())
			assert.Equal(t, tt.html, Render(tt.doc))
		})
	}
}

func TestParseParagraphWithMarks(t *testing.T) {
	s := articleSchema(t)

	doc, warnings, err := Parse(s, "<p>hello <strong>world</strong></p>")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	bold := s.MustMark("bold", nil)
	want := s.MustNode("doc", nil, s.MustNode("paragraph", nil, s.Text("hello "), s.Text("world", bold)))
	assert.True(t, want.Eq(doc))
}

func TestParseWikiLinkOutranksLinkMark(t *testing.T) {
	s := articleSchema(t)

	// Both rules match <a>; the attr-qualified node rule must win
	doc, _, err := Parse(s, `<p><a data-wiki-link="garden" href="/kb/garden">Garden Notes</a></p>`)
	require.NoError(t, err)
	link := doc.Child(0).Child(0)
	require.Equal(t, "wikiLink", link.Type.Name)
	assert.Equal(t, "garden", link.Attr("slug"))
	// The display title comes from the element text
	assert.Equal(t, "Garden Notes", link.Attr("title"))

	// A plain anchor still parses as a link mark
	doc, _, err = Parse(s, `<p><a href="https://example.com" title="Ex">site</a></p>`)
	require.NoError(t, err)
	text := doc.Child(0).Child(0)
	require.True(t, text.IsText())
	require.Len(t, text.Marks, 1)
	assert.Equal(t, "link", text.Marks[0].Type.Name)
	assert.Equal(t, "https://example.com", text.Marks[0].Attrs["href"])
	assert.Equal(t, "Ex", text.Marks[0].Attrs["title"])
}

func TestParseCodeBlock(t *testing.T) {
	s := articleSchema(t)

	// The inner <code> tag is formatting, not a code mark
	doc, warnings, err := Parse(s, `<pre data-language="go"><code>if x {
	return
}</code></pre>`)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	block := doc.Child(0)
	require.Equal(t, "codeBlock", block.Type.Name)
	assert.Equal(t, "go", block.Attr("language"))
	assert.Equal(t, "if x {\n\treturn\n}", block.TextContent())
	assert.Empty(t, block.Child(0).Marks)

	// Fenced-code convention: language carried as a class on <code>
	doc, _, err = Parse(s, `<pre><code class="language-py">print(1)</code></pre>`)
	require.NoError(t, err)
	assert.Equal(t, "py", doc.Child(0).Attr("language"))
}

func TestParseMermaidBlock(t *testing.T) {
	s := articleSchema(t)

	doc, _, err := Parse(s, `<div data-mermaid-block="true"><pre>graph TD
A--&gt;B</pre></div>`)
	require.NoError(t, err)
	block := doc.Child(0)
	require.Equal(t, "mermaidBlock", block.Type.Name)
	assert.Equal(t, "graph TD\nA-->B", block.Attr("code"))
	assert.Equal(t, 0, block.ChildCount())
}

func TestParseCallout(t *testing.T) {
	s := articleSchema(t)

	doc, _, err := Parse(s, `<div data-callout="tip"><p>water daily</p></div>`)
	require.NoError(t, err)
	callout := doc.Child(0)
	require.Equal(t, "callout", callout.Type.Name)
	assert.Equal(t, "tip", callout.Attr("type"))

	// Unknown callout types fall back to info
	doc, _, err = Parse(s, `<div data-callout="shiny"><p>x</p></div>`)
	require.NoError(t, err)
	assert.Equal(t, "info", doc.Child(0).Attr("type"))
}

func TestParseCollapsible(t *testing.T) {
	s := articleSchema(t)

	input := `<details data-collapsible="true"><summary>More</summary>` +
		`<div data-collapsible-content="true"><p>body</p></div></details>`
	doc, warnings, err := Parse(s, input)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	wrapper := doc.Child(0)
	require.Equal(t, "collapsible", wrapper.Type.Name)
	// No open attribute: collapsed
	assert.Equal(t, false, wrapper.Attr("open"))
	assert.Equal(t, "collapsibleSummary", wrapper.Child(0).Type.Name)
	assert.Equal(t, "More", wrapper.Child(0).TextContent())
	assert.Equal(t, "collapsibleContent", wrapper.Child(1).Type.Name)
}

func TestParseUnknownElementsUnwrap(t *testing.T) {
	s := articleSchema(t)

	doc, warnings, err := Parse(s, `<article><p>kept</p></article>`)
	require.NoError(t, err)
	assert.Equal(t, "kept", doc.TextContent())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "<article>")

	// Unknown inline elements keep their text in the run
	doc, warnings, err = Parse(s, `<p>a <kbd>Ctrl</kbd> b</p>`)
	require.NoError(t, err)
	assert.Equal(t, "a Ctrl b", doc.TextContent())
	assert.NotEmpty(t, warnings)
}

func TestParseLooseInlineContent(t *testing.T) {
	s := articleSchema(t)

	doc, _, err := Parse(s, `hello <em>world</em>`)
	require.NoError(t, err)
	require.Equal(t, 1, doc.ChildCount())
	paragraph := doc.Child(0)
	assert.Equal(t, "paragraph", paragraph.Type.Name)
	assert.Equal(t, "hello world", paragraph.TextContent())
	italic := s.MustMark("italic", nil)
	assert.True(t, italic.InSet(paragraph.Child(1).Marks))
}

func TestParseEmptyInputYieldsEmptyDoc(t *testing.T) {
	s := articleSchema(t)

	doc, _, err := Parse(s, "")
	require.NoError(t, err)
	require.Equal(t, 1, doc.ChildCount())
	assert.Equal(t, "paragraph", doc.Child(0).Type.Name)
	assert.Equal(t, 0, doc.Child(0).ChildCount())
}

func TestRenderParseRoundTrip(t *testing.T) {
	s := articleSchema(t)
	bold := s.MustMark("bold", nil)
	link := s.MustMark("link", model.AttrMap{"href": "https://example.com"})

	doc := s.MustNode("doc", nil,
		s.MustNode("heading", model.AttrMap{"level": 1}, s.Text("Garden Log")),
		s.MustNode("paragraph", nil,
			s.Text("see "),
			s.Text("docs", bold, link),
			s.MustNode("wikiLink", model.AttrMap{"slug": "tools", "title": "Tools"}),
		),
		s.MustNode("callout", model.AttrMap{"type": "danger"},
			s.MustNode("paragraph", nil, s.Text("frost warning"))),
		s.MustNode("codeBlock", model.AttrMap{"language": "bash"}, s.Text("water --all")),
		s.MustNode("blockquote", nil, s.MustNode("paragraph", nil, s.Text("quoted"))),
	)
	require.NoError(t, doc.Check())

	parsed, warnings, err := Parse(s, Render(doc))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, doc.Eq(parsed))
}
