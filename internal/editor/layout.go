package editor

import (
	"github.com/DragonRuins/hubdoc/internal/model"
)

// Coords locates a document position on the rendered surface.
type Coords struct {
	X      int
	Y      int
	Bottom int
}

// Layout maps document positions to surface coordinates. The real
// application plugs in a measurement over the rendered DOM; the built-in
// line layout is a fixed-metric approximation good enough for popup
// placement and tests.
type Layout interface {
	CoordsAt(doc *model.Node, pos int) Coords
}

const (
	lineHeight = 24
	charWidth  = 8
)

// LineLayout lays every textblock out as one fixed-height line.
type LineLayout struct{}

func (LineLayout) CoordsAt(doc *model.Node, pos int) Coords {
	line, column := 0, 0
	locateLine(doc, pos, &line, &column)
	y := line * lineHeight
	return Coords{X: column * charWidth, Y: y, Bottom: y + lineHeight}
}

// locateLine counts the textblocks that end before pos and the inline offset
// of pos inside its textblock.
func locateLine(doc *model.Node, pos int, line, column *int) {
	r, err := model.Resolve(doc, pos)
	if err != nil {
		return
	}
	*column = r.ParentOffset
	count := 0
	countTextblocksBefore(doc, pos, &count)
	*line = count
}

func countTextblocksBefore(n *model.Node, pos int, count *int) {
	cur := 0
	for _, child := range n.Content.Children() {
		end := cur + child.NodeSize()
		if end <= pos && (child.IsTextblock() || child.Type.IsLeaf() && !child.IsInline()) {
			*count++
		} else if pos > cur && pos < end && !child.Type.IsLeaf() && !child.IsTextblock() {
			countTextblocksBefore(child, pos-cur-1, count)
		}
		cur = end
	}
}
