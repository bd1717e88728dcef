package shapeinfer

import (
	"regexp"
	"unicode"
)

// Normalize applies the evidence-driven policy decisions to u in place:
// integer-vs-number, enum-vs-pattern, list-vs-tuple, required-vs-optional
// on object fields. It recurses top-down into every nested U it owns. A
// nil p selects DefaultPolicy.
func Normalize(u *U, p *Policy) {
	p = p.orDefault()
	normalize(u, p)
}

func normalize(u *U, p *Policy) {
	if u == nil {
		return
	}

	normalizeNum(u.Num, p)
	normalizeStr(u.Str, p)
	normalizeArr(u.Arr, p)
	normalizeObj(u.Obj, p)
}

// normalizeNum commits the integer-vs-number decision and applies the
// literal-retention rule (spec.md §4.3, "Numbers").
func normalizeNum(n *NumArm, p *Policy) {
	if n == nil {
		return
	}

	n.IsInteger = !n.SawFloat && (n.SawInt || n.SawUint) && isIntegral(n.Min) && isIntegral(n.Max)

	singlePointException := len(n.Lits) <= p.MaxNumLits/2 && n.Min == n.Max
	if !singlePointException {
		n.Lits = nil
	}
}

func isIntegral(f float64) bool {
	return f == float64(int64(f))
}

// humanish matches the "alphanumeric with limited punctuation" literals
// spec.md §4.3 requires before a literal set is retained as an enum.
var humanish = regexp.MustCompile(`^[\w.\-]+$`)

// normalizeStr decides enum vs pattern (spec.md §4.3, "Strings").
func normalizeStr(s *StrArm, p *Policy) {
	if s == nil {
		return
	}

	s.LCP = longestCommonPrefix(s.Lits)

	if isEnumEligible(s.Lits, p) {
		return
	}

	lcp := s.LCP
	s.Lits = nil

	if len(lcp) >= p.LCPMinForPattern {
		s.LCP = lcp
	} else {
		s.LCP = ""
	}
}

func isEnumEligible(lits []string, p *Policy) bool {
	if len(lits) == 0 || len(lits) > p.StringEnumMax {
		return false
	}

	for _, l := range lits {
		if len(l) > p.StringEnumMaxLen || !isHumanish(l) {
			return false
		}
	}

	return true
}

func isHumanish(s string) bool {
	if s == "" {
		return false
	}

	if humanish.MatchString(s) {
		return true
	}

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !isLimitedPunct(r) {
			return false
		}
	}

	return true
}

func isLimitedPunct(r rune) bool {
	switch r {
	case '_', '-', '.', ' ':
		return true
	default:
		return false
	}
}

// normalizeArr decides list vs tuple (spec.md §4.3, "Arrays — decide_tuple")
// then recurses into whichever branch survives.
func normalizeArr(a *ArrArm, p *Policy) {
	if a == nil {
		return
	}

	if a.LenMin > a.LenMax {
		panic("shapeinfer: array arm has len_min > len_max, which Join should never produce")
	}

	if decideTuple(a, p) {
		a.Item = nil

		for _, col := range a.Cols {
			normalize(col, p)
		}

		return
	}

	a.Cols = nil
	a.Present = nil
	a.NonNull = nil
	normalize(a.Item, p)
}

// decideTuple implements the five-signal test. Tuple requires the sample
// floor and at least one signal to fire.
func decideTuple(a *ArrArm, p *Policy) bool {
	if a.Samples < p.TupleMinSamples || len(a.Cols) == 0 {
		return false
	}

	return hasExactNullPad(a) ||
		hasRequirednessContrast(a, p) ||
		hasKindDivergence(a) ||
		hasNumericIntervalDivergence(a, p) ||
		hasStringLCPDivergence(a)
}

func hasExactNullPad(a *ArrArm) bool {
	for i := range a.Cols {
		if a.Present[i] == a.Samples && a.NonNull[i] == 0 {
			return true
		}
	}

	return false
}

func hasRequirednessContrast(a *ArrArm, p *Policy) bool {
	for i := range a.Cols {
		ri := float64(a.Present[i]) / float64(a.Samples)
		if ri < p.TupleRequiredPresence {
			continue
		}

		for j := i + 1; j < len(a.Cols); j++ {
			rj := float64(a.Present[j]) / float64(a.Samples)
			if rj < p.TupleRequiredPresence {
				return true
			}
		}
	}

	return false
}

func hasKindDivergence(a *ArrArm) bool {
	itemKinds := activeKinds(a.Item)

	for _, col := range a.Cols {
		colKinds := activeKinds(col)
		if !isSubsetKind(colKinds, itemKinds) || !isSubsetKind(itemKinds, colKinds) {
			return true
		}
	}

	return false
}

// kindSet is a bitset over the arm kinds a U can independently carry.
type kindSet uint8

const (
	kindBitNull kindSet = 1 << iota
	kindBitBool
	kindBitNum
	kindBitStr
	kindBitArr
	kindBitObj
)

func activeKinds(u *U) kindSet {
	if u == nil {
		return 0
	}

	var ks kindSet

	if u.Nullable {
		ks |= kindBitNull
	}

	if u.HasBool {
		ks |= kindBitBool
	}

	if u.Num != nil {
		ks |= kindBitNum
	}

	if u.Str != nil {
		ks |= kindBitStr
	}

	if u.Arr != nil {
		ks |= kindBitArr
	}

	if u.Obj != nil {
		ks |= kindBitObj
	}

	return ks
}

func isSubsetKind(a, b kindSet) bool {
	return a&^b == 0
}

func hasNumericIntervalDivergence(a *ArrArm, p *Policy) bool {
	if a.Item == nil || a.Item.Num == nil {
		return false
	}

	for _, col := range a.Cols {
		if col == nil || col.Num == nil {
			continue
		}

		if intervalOverlap(col.Num.Min, col.Num.Max, a.Item.Num.Min, a.Item.Num.Max) < p.TupleNumOverlapMax {
			return true
		}
	}

	return false
}

// intervalOverlap returns intersection-length / union-length for two
// closed intervals, treating two equal zero-length intervals as a full
// match and two unequal zero-length intervals as no match.
func intervalOverlap(aMin, aMax, bMin, bMax float64) float64 {
	if aMin == aMax && bMin == bMax {
		if aMin == bMin {
			return 1
		}

		return 0
	}

	lo := maxFloat(aMin, bMin)
	hi := minFloat(aMax, bMax)
	intersection := maxFloat(0, hi-lo)

	unionLo := minFloat(aMin, bMin)
	unionHi := maxFloat(aMax, bMax)
	union := unionHi - unionLo

	if union == 0 {
		return 1
	}

	return intersection / union
}

func hasStringLCPDivergence(a *ArrArm) bool {
	if a.Item == nil || a.Item.Str == nil || a.Item.Str.LCP == "" {
		return false
	}

	itemLCP := a.Item.Str.LCP

	for _, col := range a.Cols {
		if col == nil || col.Str == nil || col.Str.LCP == "" {
			continue
		}

		colLCP := col.Str.LCP
		if !hasStringPrefix(itemLCP, colLCP) && !hasStringPrefix(colLCP, itemLCP) {
			return true
		}
	}

	return false
}

func hasStringPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// normalizeObj recurses into every field; requiredness itself is decided
// at Lower time (it only depends on the already-final counters), but
// field bodies must be normalized before Lower ever sees them.
func normalizeObj(o *ObjArm, p *Policy) {
	if o == nil {
		return
	}

	for _, fr := range o.Fields {
		normalize(fr.Ty, p)
	}
}
