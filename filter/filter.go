// Package filter implements the optional pre-filter expression language:
// a small, dependency-free way to select a sub-value out of each decoded
// sample before it reaches the inference core. No JSON-query library
// (jq, JMESPath, JSONPath) appears anywhere in the example corpus this
// module was built from, so this is deliberately standard-library-only;
// see DESIGN.md for the search that confirmed that.
//
// The grammar is intentionally small: dotted field access, array indexing
// by a literal position, and "[]" to iterate every element of an array
// and re-fold the result as if each element were its own top-level
// sample. A leading "$" denotes the root and may be omitted.
//
//	$.items[].price
//	.users[0].name
//	$
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.shapeinfer.dev/shapeinfer/jsonval"
)

// ErrInvalidExpr indicates an expression string failed to parse.
var ErrInvalidExpr = errors.New("filter: invalid expression")

// stepKind identifies what a single parsed path segment does.
type stepKind int

const (
	stepField stepKind = iota
	stepIndex
	stepIterate
)

type step struct {
	kind  stepKind
	field string
	index int
}

// Expr is a parsed filter expression, ready to Select against any number
// of decoded values.
type Expr struct {
	steps []step
}

// Parse compiles a filter expression string into an Expr.
func Parse(s string) (*Expr, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")

	if s == "" {
		return &Expr{}, nil
	}

	if !strings.HasPrefix(s, ".") && !strings.HasPrefix(s, "[") {
		return nil, fmt.Errorf("%w: %q: must start with \".\" or \"[\" after the optional \"$\"", ErrInvalidExpr, s)
	}

	var steps []step

	for len(s) > 0 {
		switch {
		case strings.HasPrefix(s, "."):
			s = s[1:]

			end := strings.IndexAny(s, ".[")
			if end == -1 {
				end = len(s)
			}

			name := s[:end]
			if name == "" {
				return nil, fmt.Errorf("%w: empty field name", ErrInvalidExpr)
			}

			steps = append(steps, step{kind: stepField, field: name})
			s = s[end:]

		case strings.HasPrefix(s, "["):
			end := strings.IndexByte(s, ']')
			if end == -1 {
				return nil, fmt.Errorf("%w: unterminated \"[\"", ErrInvalidExpr)
			}

			inner := s[1:end]
			s = s[end+1:]

			if inner == "" {
				steps = append(steps, step{kind: stepIterate})

				continue
			}

			idx, err := strconv.Atoi(inner)
			if err != nil {
				return nil, fmt.Errorf("%w: bad array index %q: %w", ErrInvalidExpr, inner, err)
			}

			steps = append(steps, step{kind: stepIndex, index: idx})

		default:
			return nil, fmt.Errorf("%w: unexpected character at %q", ErrInvalidExpr, s)
		}
	}

	return &Expr{steps: steps}, nil
}

// Select applies e to v, returning every value the expression resolves to.
// A path with no "[]" iteration step always resolves to at most one value.
// A missing field or out-of-range index is not an error: it simply
// contributes no values.
func Select(e *Expr, v jsonval.Value) []jsonval.Value {
	cur := []jsonval.Value{v}

	for _, s := range e.steps {
		var next []jsonval.Value

		for _, c := range cur {
			next = append(next, applyStep(s, c)...)
		}

		cur = next
	}

	return cur
}

func applyStep(s step, v jsonval.Value) []jsonval.Value {
	switch s.kind {
	case stepField:
		if v.Kind != jsonval.KindObject {
			return nil
		}

		if child, ok := v.Get(s.field); ok {
			return []jsonval.Value{child}
		}

		return nil

	case stepIndex:
		if v.Kind != jsonval.KindArray {
			return nil
		}

		idx := s.index
		if idx < 0 {
			idx += len(v.Arr)
		}

		if idx < 0 || idx >= len(v.Arr) {
			return nil
		}

		return []jsonval.Value{v.Arr[idx]}

	case stepIterate:
		if v.Kind != jsonval.KindArray {
			return nil
		}

		out := make([]jsonval.Value, len(v.Arr))
		copy(out, v.Arr)

		return out

	default:
		return nil
	}
}
