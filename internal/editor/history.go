package editor

import (
	"github.com/DragonRuins/hubdoc/internal/model"
	"github.com/DragonRuins/hubdoc/pkg/logging"
)

const historyLimit = 200

// history keeps the inverted steps of committed transactions. Each entry
// undoes one transaction; redo entries are built as undos are applied.
type history struct {
	undo []historyEntry
	redo []historyEntry
}

type historyEntry struct {
	steps []model.Step
}

func newHistory() *history {
	return &history{}
}

func (h *history) record(tr *model.Transaction) {
	inverted, err := tr.Inverted()
	if err != nil {
		// A non-invertible transaction clears history rather than corrupt it.
		logging.CurrentLogger().Warnf("history: cannot invert transaction: %v", err)
		h.undo = nil
		h.redo = nil
		return
	}
	h.undo = append(h.undo, historyEntry{steps: inverted})
	if len(h.undo) > historyLimit {
		h.undo = h.undo[len(h.undo)-historyLimit:]
	}
	h.redo = nil
}

// Undo reverts the most recent transaction. It reports whether anything was
// undone. The reverted change lands on the redo stack.
func (e *Editor) Undo() bool {
	return e.shift(&e.hist.undo, &e.hist.redo)
}

// Redo re-applies the most recently undone transaction.
func (e *Editor) Redo() bool {
	return e.shift(&e.hist.redo, &e.hist.undo)
}

func (e *Editor) shift(from, to *[]historyEntry) bool {
	if e.destroyed || len(*from) == 0 {
		return false
	}
	entry := (*from)[len(*from)-1]
	tr := model.NewTransaction(e.doc)
	for _, s := range entry.steps {
		tr.Step(s)
	}
	counterpart, err := tr.Inverted()
	if err != nil {
		logging.CurrentLogger().Warnf("history: cannot invert entry: %v", err)
		return false
	}
	if err := e.apply(tr, false); err != nil {
		logging.CurrentLogger().Warnf("history: entry no longer applies: %v", err)
		return false
	}
	*from = (*from)[:len(*from)-1]
	*to = append(*to, historyEntry{steps: counterpart})
	return true
}

// CanUndo reports whether the undo stack is non-empty.
func (e *Editor) CanUndo() bool {
	return len(e.hist.undo) > 0
}

func (e *Editor) CanRedo() bool {
	return len(e.hist.redo) > 0
}
