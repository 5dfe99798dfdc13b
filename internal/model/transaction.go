package model

// Transaction is an ordered group of steps. Steps compose left to right;
// intermediate documents need not be schema-valid, but the final document
// must be, which ApplyTransaction enforces.
type Transaction struct {
	before *Node
	doc    *Node
	steps  []Step
	// docs[i] is the document before steps[i], kept so steps can be inverted.
	docs []*Node
	err  error
}

func NewTransaction(doc *Node) *Transaction {
	return &Transaction{before: doc, doc: doc}
}

// Doc returns the document after the steps added so far.
func (tr *Transaction) Doc() *Node {
	return tr.doc
}

// Before returns the document the transaction started from.
func (tr *Transaction) Before() *Node {
	return tr.before
}

func (tr *Transaction) Steps() []Step {
	return tr.steps
}

func (tr *Transaction) Err() error {
	return tr.err
}

func (tr *Transaction) DocChanged() bool {
	return len(tr.steps) > 0
}

// Step appends and applies a step. A failing step poisons the transaction:
// further steps are ignored and ApplyTransaction reports the failure.
func (tr *Transaction) Step(s Step) *Transaction {
	if tr.err != nil {
		return tr
	}
	result := s.Apply(tr.doc)
	if result.Failed != "" {
		tr.err = violation("%s", result.Failed)
		return tr
	}
	tr.docs = append(tr.docs, tr.doc)
	tr.doc = result.Doc
	tr.steps = append(tr.steps, s)
	return tr
}

func (tr *Transaction) ReplaceRange(from, to int, slice *Slice) *Transaction {
	return tr.Step(&ReplaceStep{From: from, To: to, Slice: slice})
}

func (tr *Transaction) Delete(from, to int) *Transaction {
	return tr.ReplaceRange(from, to, EmptySlice)
}

// InsertText inserts a text node at pos. Inserting an empty string is a
// no-op rather than an invalid empty text node.
func (tr *Transaction) InsertText(pos int, text string, marks ...Mark) *Transaction {
	if text == "" {
		return tr
	}
	if tr.err != nil {
		return tr
	}
	schema := tr.doc.Type.schema
	return tr.ReplaceRange(pos, pos, NewSlice(schema.Text(text, marks...)))
}

func (tr *Transaction) InsertNode(pos int, node *Node) *Transaction {
	return tr.Step(&InsertNodeStep{Pos: pos, Node: node})
}

func (tr *Transaction) AddMark(from, to int, mark Mark) *Transaction {
	return tr.Step(&AddMarkStep{From: from, To: to, Mark: mark})
}

func (tr *Transaction) RemoveMark(from, to int, mark Mark) *Transaction {
	return tr.Step(&RemoveMarkStep{From: from, To: to, Mark: mark})
}

func (tr *Transaction) SetNodeAttrs(pos int, attrs AttrMap) *Transaction {
	return tr.Step(&SetAttrsStep{Pos: pos, Attrs: attrs})
}

// MapPos maps a position in the starting document through every step.
func (tr *Transaction) MapPos(pos int, assoc int) int {
	for _, s := range tr.steps {
		pos = s.PosMap().MapPos(pos, assoc)
	}
	return pos
}

// MapSelection maps a selection through every step. The head of a collapsed
// selection sticks to the end of inserted content, so typing moves the caret
// forward.
func (tr *Transaction) MapSelection(sel Selection) Selection {
	return Selection{
		From: tr.MapPos(sel.From, 1),
		To:   tr.MapPos(sel.To, 1),
	}
}

// Inverted returns the steps that undo the transaction, in reverse order.
func (tr *Transaction) Inverted() ([]Step, error) {
	inverted := make([]Step, 0, len(tr.steps))
	for i := len(tr.steps) - 1; i >= 0; i-- {
		inv, err := tr.steps[i].Invert(tr.docs[i])
		if err != nil {
			return nil, err
		}
		inverted = append(inverted, inv)
	}
	return inverted, nil
}

// ApplyTransaction validates and commits a transaction against a document.
// It is a pure function: on any failure the returned error describes the
// rejection and the input document is the authoritative state.
func ApplyTransaction(doc *Node, sel Selection, tr *Transaction) (*Node, Selection, error) {
	if tr.before != doc {
		return nil, sel, violation("transaction was built for a different document")
	}
	if tr.err != nil {
		return nil, sel, tr.err
	}
	if err := tr.doc.Check(); err != nil {
		return nil, sel, err
	}
	return tr.doc, tr.MapSelection(sel).Clamp(tr.doc), nil
}
