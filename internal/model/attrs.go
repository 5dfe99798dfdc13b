package model

import "github.com/jinzhu/copier"

// AttrMap maps attribute names to scalar values (string, bool, int, float64).
type AttrMap map[string]any

// Eq compares two attr maps by value. Numeric values compare across int and
// float64 since JSON decoding produces float64.
func (a AttrMap) Eq(b AttrMap) bool {
	if len(a) != len(b) {
		return false
	}
	for name, value := range a {
		other, ok := b[name]
		if !ok || !scalarEq(value, other) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, so that a step can hold attrs without sharing
// state with the document.
func (a AttrMap) Clone() AttrMap {
	if a == nil {
		return nil
	}
	clone := AttrMap{}
	if err := copier.CopyWithOption(&clone, &a, copier.Option{DeepCopy: true}); err != nil {
		// Scalar-only maps cannot fail to copy; fall back to a shallow copy.
		for name, value := range a {
			clone[name] = value
		}
	}
	return clone
}

func scalarEq(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return aok && bok && af == bf
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
