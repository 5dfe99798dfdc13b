package extensions

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// CodeBlock declares code blocks with tokenizing syntax highlighting. The
// highlighter runs over the text content at render time and never alters the
// stored document.
type CodeBlock struct {
	extension.Base
}

func (CodeBlock) Name() string { return "codeBlock" }

func (CodeBlock) Nodes() []*model.NodeSpec {
	return []*model.NodeSpec{
		{
			Name:     "codeBlock",
			Group:    "block",
			Content:  "text*",
			Defining: true,
			NoMarks:  true,
			Attrs: map[string]*model.AttributeSpec{
				"language": {Default: ""},
			},
			ToHTML: func(attrs model.AttrMap, inner string) string {
				language, _ := attrs["language"].(string)
				if language != "" {
					return fmt.Sprintf(`<pre data-language=%q><code>%s</code></pre>`, escape(language), inner)
				}
				return "<pre><code>" + inner + "</code></pre>"
			},
			FromHTML: []*model.ParseRule{{
				Tag: "pre",
				Getter: func(tag string, htmlAttrs map[string]string) model.AttrMap {
					if language := htmlAttrs["data-language"]; language != "" {
						return model.AttrMap{"language": language}
					}
					return nil
				},
			}},
		},
	}
}

func (CodeBlock) Commands() map[string]extension.Command {
	return map[string]extension.Command{
		"setCodeBlock": func(st extension.State, args ...any) *model.Transaction {
			language := ""
			if len(args) > 0 {
				language, _ = args[0].(string)
			}
			return blockTypeCommand("codeBlock", model.AttrMap{"language": language})(st)
		},
		"setCodeBlockLanguage": func(st extension.State, args ...any) *model.Transaction {
			if len(args) < 2 {
				return nil
			}
			pos, ok := args[0].(int)
			language, ok2 := args[1].(string)
			if !ok || !ok2 {
				return nil
			}
			block := st.Doc.NodeAt(pos)
			if block == nil || block.Type.Name != "codeBlock" {
				return nil
			}
			return model.NewTransaction(st.Doc).SetNodeAttrs(pos, model.AttrMap{"language": language})
		},
	}
}

func (CodeBlock) Views() map[string]extension.NodeViewFactory {
	return map[string]extension.NodeViewFactory{
		"codeBlock": NewCodeViewFactory(),
	}
}

// CodeView is the node view for one codeBlock. It re-tokenizes when the
// source or language changes; the stored document is read, never written.
type CodeView struct {
	language  string
	source    string
	tokens    []Token
	tokenized bool
}

// NewCodeViewFactory builds the factory registered for the codeBlock type.
func NewCodeViewFactory() extension.NodeViewFactory {
	return func(node *model.Node, editable bool) extension.NodeView {
		v := &CodeView{}
		v.Update(node, editable)
		return v
	}
}

func (v *CodeView) Update(node *model.Node, editable bool) bool {
	if node.Type.Name != "codeBlock" {
		return false
	}
	language, _ := node.Attr("language").(string)
	source := node.TextContent()
	if v.tokenized && language == v.language && source == v.source {
		return true
	}
	v.language = language
	v.source = source
	v.tokens = Highlight(language, source)
	v.tokenized = true
	return true
}

// Tokens returns the highlighted spans of the current source.
func (v *CodeView) Tokens() []Token {
	return v.tokens
}

func (v *CodeView) Destroy() {}

// Token is one highlighted span of a code block.
type Token struct {
	Text string
	// Kind is a coarse token class usable as a CSS class suffix:
	// "keyword", "string", "comment", "number", "name", or "".
	Kind string
}

// Highlight tokenizes source code for the given language. Unknown languages
// fall back to a single plain token, so display always succeeds.
func Highlight(language, source string) []Token {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return []Token{{Text: source}}
	}
	var tokens []Token
	for _, token := range iterator.Tokens() {
		tokens = append(tokens, Token{Text: token.Value, Kind: tokenKind(token.Type)})
	}
	return tokens
}

func tokenKind(t chroma.TokenType) string {
	switch {
	case t.InCategory(chroma.Keyword):
		return "keyword"
	case t.InCategory(chroma.LiteralString):
		return "string"
	case t.InCategory(chroma.LiteralNumber):
		return "number"
	case t.InCategory(chroma.Comment):
		return "comment"
	case t.InCategory(chroma.Name):
		return "name"
	}
	return ""
}
