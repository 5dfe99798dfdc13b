package editor

import (
	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// Node views are keyed by the document position of their node. Positions are
// remapped through each committed transaction so a view keeps following its
// node across edits elsewhere in the document; that stability is what lets a
// view debounce work across unrelated keystrokes.

func (e *Editor) remapViews(tr *model.Transaction) {
	remapped := make(map[int]*mountedView, len(e.views))
	for pos, mv := range e.views {
		newPos := tr.MapPos(pos, 1)
		if _, taken := remapped[newPos]; taken {
			mv.view.Destroy()
			continue
		}
		remapped[newPos] = mv
	}
	e.views = remapped
}

// syncViews reconciles mounted views against the current document: nodes that
// gained a position get a fresh view, surviving nodes get an Update, and
// views whose node is gone are destroyed.
func (e *Editor) syncViews() {
	wanted := map[int]*model.Node{}
	e.collectViewNodes(e.doc, 0, wanted)

	for pos, mv := range e.views {
		node, present := wanted[pos]
		if !present || node.Type.Name != mv.typeName {
			mv.view.Destroy()
			delete(e.views, pos)
			continue
		}
		if !mv.view.Update(node, e.editable) {
			mv.view.Destroy()
			delete(e.views, pos)
		}
	}
	for pos, node := range wanted {
		if _, mounted := e.views[pos]; mounted {
			continue
		}
		factory := e.registry.ViewFactory(node.Type.Name)
		e.views[pos] = &mountedView{
			typeName: node.Type.Name,
			view:     factory(node, e.editable),
		}
	}
}

func (e *Editor) collectViewNodes(n *model.Node, base int, out map[int]*model.Node) {
	pos := base
	for _, child := range n.Content.Children() {
		if e.registry.ViewFactory(child.Type.Name) != nil {
			out[pos] = child
		}
		if !child.IsText() && !child.Type.IsLeaf() {
			e.collectViewNodes(child, pos+1, out)
		}
		pos += child.NodeSize()
	}
}

func (e *Editor) destroyViews() {
	for pos, mv := range e.views {
		mv.view.Destroy()
		delete(e.views, pos)
	}
}

// ViewAt exposes the mounted view at a position, for chrome interactions and
// tests.
func (e *Editor) ViewAt(pos int) (extension.NodeView, bool) {
	mv, ok := e.views[pos]
	if !ok {
		return nil, false
	}
	return mv.view, true
}
