package model

import (
	"fmt"
	"strings"
)

// contentExpr is a compiled content expression: an ordered sequence of terms,
// each matching a set of node type names with a repetition range.
//
// The grammar covers what the built-in schema needs: space-separated terms,
// where a term is a type name, a group name, or a parenthesized alternation
// ("(tableCell|tableHeader)"), optionally suffixed with "*", "+" or "?".
type contentExpr struct {
	terms []contentTerm
}

type contentTerm struct {
	options map[string]bool // acceptable node type names
	min     int
	max     int // -1 for unbounded
}

func compileContentExpr(expr string, schema *Schema) (*contentExpr, error) {
	compiled := &contentExpr{}
	if strings.TrimSpace(expr) == "" {
		return compiled, nil
	}
	for _, raw := range strings.Fields(expr) {
		term := contentTerm{min: 1, max: 1}
		switch {
		case strings.HasSuffix(raw, "*"):
			term.min, term.max = 0, -1
			raw = strings.TrimSuffix(raw, "*")
		case strings.HasSuffix(raw, "+"):
			term.min, term.max = 1, -1
			raw = strings.TrimSuffix(raw, "+")
		case strings.HasSuffix(raw, "?"):
			term.min, term.max = 0, 1
			raw = strings.TrimSuffix(raw, "?")
		}
		var names []string
		if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
			names = strings.Split(raw[1:len(raw)-1], "|")
		} else {
			names = []string{raw}
		}
		term.options = map[string]bool{}
		for _, name := range names {
			if members, ok := schema.groups[name]; ok {
				for _, member := range members {
					term.options[member] = true
				}
			} else if schema.nodes[name] != nil {
				term.options[name] = true
			} else {
				return nil, fmt.Errorf("content expression %q references unknown type or group %q", expr, name)
			}
		}
		compiled.terms = append(compiled.terms, term)
	}
	return compiled, nil
}

// matches reports whether the fragment's children satisfy the expression.
func (e *contentExpr) matches(content *Fragment) bool {
	types := make([]string, content.ChildCount())
	for i := 0; i < content.ChildCount(); i++ {
		types[i] = content.Child(i).Type.Name
	}
	return e.matchFrom(types, 0, 0)
}

func (e *contentExpr) matchFrom(types []string, child, term int) bool {
	if term == len(e.terms) {
		return child == len(types)
	}
	t := e.terms[term]
	// Count how many consecutive children this term can consume.
	available := 0
	for child+available < len(types) && t.options[types[child+available]] {
		if t.max != -1 && available == t.max {
			break
		}
		available++
	}
	// Backtrack from the greediest consumption down to the minimum.
	for take := available; take >= t.min; take-- {
		if e.matchFrom(types, child+take, term+1) {
			return true
		}
	}
	return false
}

// validStart reports whether a child of the given type can ever appear.
// Used for cheap rejection before a full match.
func (e *contentExpr) allows(typeName string) bool {
	for _, t := range e.terms {
		if t.options[typeName] {
			return true
		}
	}
	return false
}
