package shapeinfer

import (
	"fmt"
	"math"
	"net/url"

	"go.shapeinfer.dev/shapeinfer/jsonval"
)

// Observe maps one JSON value to a freshly allocated U. It is the only
// part of the core that can fail: non-finite numbers (NaN, +/-Inf) are
// rejected with a *ShapeError. Decoded JSON yields one when a number
// literal overflows float64 (e.g. 1e400); a hand-built jsonval.Value can
// carry one directly.
func Observe(v jsonval.Value) (*U, error) {
	return observeAt(v, "$", DefaultPolicy())
}

// ObserveWithPolicy is Observe, but caps literal sets against p instead of
// the default Policy.
func ObserveWithPolicy(v jsonval.Value, p *Policy) (*U, error) {
	return observeAt(v, "$", p)
}

func observeAt(v jsonval.Value, path string, p *Policy) (*U, error) {
	p = p.orDefault()
	u := newU()

	switch v.Kind {
	case jsonval.KindNull:
		u.Nullable = true

		return u, nil

	case jsonval.KindBool:
		u.HasBool = true

		return u, nil

	case jsonval.KindNumber:
		return observeNumber(v.Num, path)

	case jsonval.KindString:
		return observeString(v.Str), nil

	case jsonval.KindArray:
		return observeArray(v.Arr, path, p)

	case jsonval.KindObject:
		return observeObject(v.Obj, path, p)

	default:
		return nil, fmt.Errorf("shapeinfer: unknown jsonval.Kind %v", v.Kind)
	}
}

func observeNumber(n jsonval.Number, path string) (*U, error) {
	if math.IsNaN(n.Float) || math.IsInf(n.Float, 0) {
		return nil, NonFiniteNumber(path)
	}

	u := newU()
	arm := &NumArm{Min: n.Float, Max: n.Float, Lits: []float64{n.Float}}

	if n.IsInt {
		arm.SawInt = true
		if n.Int >= 0 {
			arm.SawUint = true
		}
	} else {
		arm.SawFloat = true
	}

	u.Num = arm

	return u, nil
}

func observeString(s string) *U {
	u := newU()
	u.Str = &StrArm{
		Lits:  []string{s},
		LCP:   s,
		IsURI: isURI(s),
	}

	return u
}

func observeArray(elems []jsonval.Value, path string, p *Policy) (*U, error) {
	u := newU()
	k := len(elems)

	arm := &ArrArm{
		Samples: 1,
		LenMin:  k,
		LenMax:  k,
		Cols:    make([]*U, k),
		Present: make([]int, k),
		NonNull: make([]int, k),
	}

	item := newU()

	for i, elem := range elems {
		elemPath := fmt.Sprintf("%s[%d]", path, i)

		col, err := observeAt(elem, elemPath, p)
		if err != nil {
			return nil, err
		}

		arm.Cols[i] = col
		arm.Present[i] = 1

		if elem.Kind != jsonval.KindNull {
			arm.NonNull[i] = 1
		}

		item = Join(item, col, p)
	}

	arm.Item = item
	u.Arr = arm

	return u, nil
}

func observeObject(members []jsonval.Member, path string, p *Policy) (*U, error) {
	u := newU()
	arm := &ObjArm{SeenObjects: 1}

	seenInThisObject := make(map[string]bool, len(members))

	for _, m := range members {
		fr := arm.addField(m.Key)

		memberPath := path + "." + m.Key

		ty, err := observeAt(m.Value, memberPath, p)
		if err != nil {
			return nil, err
		}

		if seenInThisObject[m.Key] {
			// Duplicate key within the same object: fold into the
			// existing record without double-counting presence.
			fr.Ty = Join(fr.Ty, ty, p)

			if m.Value.Kind != jsonval.KindNull {
				fr.NonNullIn = 1
			}

			continue
		}

		seenInThisObject[m.Key] = true
		fr.Ty = Join(fr.Ty, ty, p)
		fr.PresentIn = 1

		if m.Value.Kind != jsonval.KindNull {
			fr.NonNullIn = 1
		}
	}

	u.Obj = arm

	return u, nil
}

// isURI reports whether s parses as a URI with a non-empty scheme.
func isURI(s string) bool {
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}

	return parsed.Scheme != ""
}
