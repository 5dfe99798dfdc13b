package model

// Mark is a non-structural annotation on inline content (bold, link, ...).
type Mark struct {
	Type  *MarkType
	Attrs AttrMap
}

func (m Mark) Eq(other Mark) bool {
	return m.Type == other.Type && m.Attrs.Eq(other.Attrs)
}

// InSet reports whether an equal mark is present in the set.
func (m Mark) InSet(set []Mark) bool {
	for _, other := range set {
		if m.Eq(other) {
			return true
		}
	}
	return false
}

// AddMark returns the set with m added, keeping at most one mark per type.
func AddMark(set []Mark, m Mark) []Mark {
	result := make([]Mark, 0, len(set)+1)
	for _, other := range set {
		if other.Type != m.Type {
			result = append(result, other)
		}
	}
	return append(result, m)
}

// RemoveMark returns the set without any mark of m's type.
func RemoveMark(set []Mark, m Mark) []Mark {
	var result []Mark
	for _, other := range set {
		if other.Type != m.Type {
			result = append(result, other)
		}
	}
	return result
}

func sameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for _, m := range a {
		if !m.InSet(b) {
			return false
		}
	}
	return true
}
