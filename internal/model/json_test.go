package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	s := testSchema(t)
	bold := s.MustMark("bold", nil)
	link := s.MustMark("link", AttrMap{"href": "https://example.com"})
	doc := docOf(t, s,
		h(s, 2, s.Text("Title")),
		p(s, s.Text("plain "), s.Text("rich", bold, link)),
		s.MustNode("blockquote", nil, p(s, s.MustNode("pin", AttrMap{"slug": "garden"}))),
	)

	data, err := ToJSON(doc)
	require.NoError(t, err)

	parsed, warnings, err := FromJSON(s, data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, doc.Eq(parsed))
}

func TestToJSONOmitsDefaultAttrs(t *testing.T) {
	s := testSchema(t)

	data, err := ToJSON(docOf(t, s, h(s, 1, s.Text("x"))))
	require.NoError(t, err)
	// Level 1 is the declared default and stays implicit
	assert.NotContains(t, string(data), "level")

	data, err = ToJSON(docOf(t, s, h(s, 3, s.Text("x"))))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level": 3`)
}

func TestFromJSONSalvagesUnknownNodes(t *testing.T) {
	s := testSchema(t)

	// An unknown block keeps its text as a paragraph
	input := `{"type":"doc","content":[
		{"type":"sidebar","content":[{"type":"text","text":"kept"}]},
		{"type":"paragraph","content":[{"type":"text","text":"ok"}]}
	]}`
	doc, warnings, err := FromJSON(s, []byte(input))
	require.NoError(t, err)
	require.Equal(t, 2, doc.ChildCount())
	assert.Equal(t, "paragraph", doc.Child(0).Type.Name)
	assert.Equal(t, "kept", doc.Child(0).TextContent())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `"sidebar"`)

	// An unknown inline node salvages into a bare text node
	input = `{"type":"doc","content":[
		{"type":"paragraph","content":[
			{"type":"emoji","content":[{"type":"text","text":":)"}]}
		]}
	]}`
	doc, warnings, err = FromJSON(s, []byte(input))
	require.NoError(t, err)
	assert.Equal(t, ":)", doc.TextContent())
	assert.Len(t, warnings, 1)
}

func TestFromJSONDropsUnknownMarks(t *testing.T) {
	s := testSchema(t)

	input := `{"type":"doc","content":[
		{"type":"paragraph","content":[
			{"type":"text","text":"x","marks":[{"type":"wavy"},{"type":"bold"}]}
		]}
	]}`
	doc, warnings, err := FromJSON(s, []byte(input))
	require.NoError(t, err)
	text := doc.Child(0).Child(0)
	require.Len(t, text.Marks, 1)
	assert.Equal(t, "bold", text.Marks[0].Type.Name)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `"wavy"`)
}

func TestFromJSONAttrTolerance(t *testing.T) {
	s := testSchema(t)

	var tests = []struct {
		name    string // name
		attrs   string // input
		level   int    // output
		warning string
	}{
		{"NumberNarrows", `{"level":2}`, 2, ""},
		{"WrongTypeDefaults", `{"level":"two"}`, 1, "wrong type"},
		{"InvalidValueDefaults", `{"level":42}`, 1, "using default"},
		{"UnknownDropped", `{"level":2,"color":"red"}`, 2, `unknown attribute "color"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `{"type":"doc","content":[
				{"type":"heading","attrs":` + tt.attrs + `,"content":[{"type":"text","text":"x"}]}
			]}`
			doc, warnings, err := FromJSON(s, []byte(input))
			require.NoError(t, err)
			assert.Equal(t, tt.level, doc.Child(0).Attr("level"))
			if tt.warning == "" {
				assert.Empty(t, warnings)
			} else {
				require.Len(t, warnings, 1)
				assert.Contains(t, warnings[0], tt.warning)
			}
		})
	}
}

func TestFromJSONDropsAtomChildren(t *testing.T) {
	s := testSchema(t)

	input := `{"type":"doc","content":[
		{"type":"paragraph","content":[
			{"type":"pin","attrs":{"slug":"x"},"content":[{"type":"text","text":"junk"}]}
		]}
	]}`
	doc, warnings, err := FromJSON(s, []byte(input))
	require.NoError(t, err)
	pin := doc.Child(0).Child(0)
	assert.Equal(t, 0, pin.ChildCount())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "atom")
}

func TestFromJSONRejectsBadPayloads(t *testing.T) {
	s := testSchema(t)

	_, _, err := FromJSON(s, []byte(`{not json`))
	require.Error(t, err)

	_, _, err = FromJSON(s, []byte(`{"type":"paragraph"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root node")

	// Salvaging cannot rescue a structurally empty document
	_, _, err = FromJSON(s, []byte(`{"type":"doc"}`))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid"))
}
