package model

// Step is an atomic change to a document. Steps only make sense for the
// document they were created for, since the positions stored in them are
// positions in that document.
type Step interface {
	// Apply applies the step, returning either a transformed document or a
	// failure. Apply never mutates its input.
	Apply(doc *Node) StepResult

	// Invert builds the step that undoes this one. It needs the document as
	// it was before the step was applied.
	Invert(doc *Node) (Step, error)

	// PosMap describes how the step moves positions. nil means identity.
	PosMap() *StepMap
}

// StepResult is the result of applying a step: a new document or a failure
// message.
type StepResult struct {
	Doc    *Node
	Failed string
}

func OK(doc *Node) StepResult {
	return StepResult{Doc: doc}
}

func Fail(message string) StepResult {
	return StepResult{Failed: message}
}

func resultOf(doc *Node, err error) StepResult {
	if err != nil {
		return Fail(err.Error())
	}
	return OK(doc)
}

// StepMap maps positions in the pre-step document to positions in the
// post-step document. A single replaced range is enough for every step kind
// in this package.
type StepMap struct {
	Start   int
	OldSize int
	NewSize int
}

// MapPos maps a position through the step. assoc determines which side a
// position inside the replaced range sticks to: negative for the start,
// positive (the default for carets) for the end of the inserted content.
func (m *StepMap) MapPos(pos int, assoc int) int {
	if m == nil {
		return pos
	}
	if pos < m.Start {
		return pos
	}
	if pos > m.Start+m.OldSize {
		return pos + m.NewSize - m.OldSize
	}
	if assoc < 0 {
		return m.Start
	}
	return m.Start + m.NewSize
}

/*
 * ReplaceStep
 */

// ReplaceStep removes the content between From and To and inserts Slice.
type ReplaceStep struct {
	From  int
	To    int
	Slice *Slice
}

func (s *ReplaceStep) Apply(doc *Node) StepResult {
	return resultOf(doc.ReplaceRange(s.From, s.To, s.Slice))
}

func (s *ReplaceStep) Invert(doc *Node) (Step, error) {
	removed, err := doc.SliceBetween(s.From, s.To)
	if err != nil {
		return nil, err
	}
	return &ReplaceStep{
		From:  s.From,
		To:    s.From + s.Slice.Size(),
		Slice: removed,
	}, nil
}

func (s *ReplaceStep) PosMap() *StepMap {
	return &StepMap{Start: s.From, OldSize: s.To - s.From, NewSize: s.Slice.Size()}
}

/*
 * InsertNodeStep
 */

// InsertNodeStep inserts a single node at a position.
type InsertNodeStep struct {
	Pos  int
	Node *Node
}

func (s *InsertNodeStep) Apply(doc *Node) StepResult {
	return resultOf(doc.ReplaceRange(s.Pos, s.Pos, NewSlice(s.Node)))
}

func (s *InsertNodeStep) Invert(doc *Node) (Step, error) {
	return &ReplaceStep{
		From:  s.Pos,
		To:    s.Pos + s.Node.NodeSize(),
		Slice: EmptySlice,
	}, nil
}

func (s *InsertNodeStep) PosMap() *StepMap {
	return &StepMap{Start: s.Pos, OldSize: 0, NewSize: s.Node.NodeSize()}
}

/*
 * AddMarkStep / RemoveMarkStep
 */

// AddMarkStep adds a mark to every inline node in the range.
type AddMarkStep struct {
	From int
	To   int
	Mark Mark
}

func (s *AddMarkStep) Apply(doc *Node) StepResult {
	if err := checkRange(doc, s.From, s.To); err != nil {
		return Fail(err.Error())
	}
	return OK(doc.transformInline(s.From, s.To, func(inline *Node) *Node {
		return inline.WithMarks(AddMark(inline.Marks, s.Mark))
	}))
}

func (s *AddMarkStep) Invert(doc *Node) (Step, error) {
	return &RemoveMarkStep{From: s.From, To: s.To, Mark: s.Mark}, nil
}

func (s *AddMarkStep) PosMap() *StepMap { return nil }

// RemoveMarkStep removes a mark from every inline node in the range.
type RemoveMarkStep struct {
	From int
	To   int
	Mark Mark
}

func (s *RemoveMarkStep) Apply(doc *Node) StepResult {
	if err := checkRange(doc, s.From, s.To); err != nil {
		return Fail(err.Error())
	}
	return OK(doc.transformInline(s.From, s.To, func(inline *Node) *Node {
		return inline.WithMarks(RemoveMark(inline.Marks, s.Mark))
	}))
}

func (s *RemoveMarkStep) Invert(doc *Node) (Step, error) {
	return &AddMarkStep{From: s.From, To: s.To, Mark: s.Mark}, nil
}

func (s *RemoveMarkStep) PosMap() *StepMap { return nil }

/*
 * SetAttrsStep
 */

// SetAttrsStep overlays attrs on the node starting at Pos.
type SetAttrsStep struct {
	Pos   int
	Attrs AttrMap
}

func (s *SetAttrsStep) Apply(doc *Node) StepResult {
	return resultOf(doc.replaceChildAt(s.Pos, func(child *Node) (*Node, error) {
		attrs := child.Attrs.Clone()
		if attrs == nil {
			attrs = AttrMap{}
		}
		for name, value := range s.Attrs {
			attrs[name] = value
		}
		return child.WithAttrs(attrs), nil
	}))
}

func (s *SetAttrsStep) Invert(doc *Node) (Step, error) {
	node := doc.NodeAt(s.Pos)
	if node == nil {
		return nil, violation("no node at position %d", s.Pos)
	}
	return &SetAttrsStep{Pos: s.Pos, Attrs: node.Attrs.Clone()}, nil
}

func (s *SetAttrsStep) PosMap() *StepMap { return nil }

func checkRange(doc *Node, from, to int) error {
	if from < 0 || to > doc.ContentSize() || to < from {
		return violation("range %d-%d out of bounds", from, to)
	}
	return nil
}
