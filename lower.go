package shapeinfer

import "regexp"

// Lower converts a normalized U into the closed Ty IR. It does not mutate
// u; callers must have already run Normalize (Lower trusts the
// integer-vs-number and enum-vs-pattern decisions Normalize records, and
// trusts that exactly one of an array arm's Item/Cols is populated).
func Lower(u *U) Ty {
	return *lowerPtr(u)
}

func lowerPtr(u *U) *Ty {
	if u == nil {
		return TyNull()
	}

	arms := lowerArms(u)

	switch len(arms) {
	case 0:
		return TyNull()
	case 1:
		t := arms[0]
		if u.Nullable {
			return TyNullable(t)
		}

		return t
	default:
		if u.Nullable {
			arms = append(arms, TyNull())
		}

		return TyOneOf(arms)
	}
}

// lowerArms returns u's active non-null arms lowered to Ty, in the fixed
// order spec.md §4.4 mandates: Bool, Integer/Number, String, Array,
// Object.
func lowerArms(u *U) []*Ty {
	var arms []*Ty

	if u.HasBool {
		arms = append(arms, TyBool())
	}

	if u.Num != nil {
		if u.Num.IsInteger {
			arms = append(arms, TyInteger(u.Num.Min, u.Num.Max))
		} else {
			arms = append(arms, TyNumber(u.Num.Min, u.Num.Max))
		}
	}

	if u.Str != nil {
		arms = append(arms, lowerStr(u.Str))
	}

	if u.Arr != nil {
		arms = append(arms, lowerArr(u.Arr))
	}

	if u.Obj != nil {
		arms = append(arms, lowerObj(u.Obj))
	}

	return arms
}

func lowerStr(s *StrArm) *Ty {
	if len(s.Lits) > 0 {
		return TyString(s.Lits, "", s.IsURI)
	}

	if s.LCP != "" {
		return TyString(nil, "^"+regexp.QuoteMeta(s.LCP)+".*", s.IsURI)
	}

	return TyString(nil, "", s.IsURI)
}

func lowerArr(a *ArrArm) *Ty {
	if a.Item != nil {
		return TyArrayList(lowerPtr(a.Item), a.LenMin, a.LenMax)
	}

	return lowerTuple(a)
}

func lowerTuple(a *ArrArm) *Ty {
	positions := make([]*Ty, len(a.Cols))
	lastRequired := -1

	for i, col := range a.Cols {
		required := a.Present[i] == a.Samples

		var t *Ty

		switch {
		case required && a.NonNull[i] == 0:
			t = TyNull()
		case !required:
			t = wrapOptional(lowerPtr(col))
		default:
			t = lowerPtr(col)
		}

		positions[i] = t

		if required {
			lastRequired = i
		}
	}

	return TyArrayTuple(positions, lastRequired+1, a.LenMax)
}

// wrapOptional wraps t in Nullable unless it is already Null or Nullable.
func wrapOptional(t *Ty) *Ty {
	if t.Kind == KindTyNull || t.Kind == KindTyNullable {
		return t
	}

	return TyNullable(t)
}

func lowerObj(o *ObjArm) *Ty {
	fields := make([]Field, 0, len(o.Order))

	for _, name := range o.Order {
		fr := o.Fields[name]
		required := fr.NonNullIn == o.SeenObjects

		t := lowerPtr(fr.Ty)
		if !required {
			t = wrapOptional(t)
		}

		fields = append(fields, Field{Name: name, Ty: t, Required: required})
	}

	return TyObject(fields)
}
