package extensions

import (
	"time"

	"github.com/DragonRuins/hubdoc/internal/extension"
)

// Default returns the standard extension set in registration order. The
// wiki-link extension is also returned on its own so the caller can wire the
// popup controller to it.
func Default(mermaidRenderDelay time.Duration) ([]extension.Extension, *WikiLink) {
	wikiLink := NewWikiLink()
	all := []extension.Extension{
		BaseNodes{},
		Marks{},
		Lists{},
		CodeBlock{},
		Tables{},
		Images{},
		Callout{},
		Collapsible{},
		NewMermaid(mermaidRenderDelay),
		wikiLink,
	}
	return all, wikiLink
}
