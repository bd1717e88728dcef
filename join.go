package shapeinfer

import "sort"

// Join combines two summaries into one that is consistent with everything
// either one observed. Join is commutative, associative, and idempotent
// (Join(a, a) structurally equals a after Lower). a and b are not
// modified, but the returned U can share arms, field records, and
// sub-trees with them wherever only one side carries them.
//
// Field order bookkeeping on ObjArm is an exception to commutativity by
// design: it
// exists only so Lower can emit fields/variants in first-observation
// order for stable generated output (spec.md §4.4, §9 "Deterministic
// ordering"), and assumes a is the accumulator and b is the next
// observation in a left fold — which is how the driver actually calls
// Join. The lattice's algebraic properties (the ones spec.md §8 calls
// "Join laws") hold over the *set* of arms, kinds, and counters; the
// tests for those laws compare lowered Ty values with assert.Equal, field
// order included, so their operands first observe fields in the same
// order.
func Join(a, b *U, p *Policy) *U {
	p = p.orDefault()

	if a == nil {
		a = newU()
	}

	if b == nil {
		b = newU()
	}

	out := newU()
	out.Nullable = a.Nullable || b.Nullable
	out.HasBool = a.HasBool || b.HasBool
	out.Num = joinNum(a.Num, b.Num, p)
	out.Str = joinStr(a.Str, b.Str, p)
	out.Arr = joinArr(a.Arr, b.Arr, p)
	out.Obj = joinObj(a.Obj, b.Obj, p)

	return out
}

func joinNum(a, b *NumArm, p *Policy) *NumArm {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	out := &NumArm{
		Min:      minFloat(a.Min, b.Min),
		Max:      maxFloat(a.Max, b.Max),
		SawInt:   a.SawInt || b.SawInt,
		SawUint:  a.SawUint || b.SawUint,
		SawFloat: a.SawFloat || b.SawFloat,
	}
	out.Lits = capNumLits(unionFloats(a.Lits, b.Lits), p.MaxNumLits)

	return out
}

// unionFloats returns the deduplicated, sorted union of a and b.
func unionFloats(a, b []float64) []float64 {
	seen := make(map[float64]struct{}, len(a)+len(b))
	out := make([]float64, 0, len(a)+len(b))

	for _, s := range [][]float64{a, b} {
		for _, x := range s {
			if _, ok := seen[x]; ok {
				continue
			}

			seen[x] = struct{}{}
			out = append(out, x)
		}
	}

	sort.Float64s(out)

	return out
}

// capNumLits enforces MaxNumLits on a sorted, deduplicated literal slice.
// When over cap, the minimum and maximum are always retained ("keep the
// extremes"); interior points are thinned by even striding so the
// retained set stays a representative sample of the whole range rather
// than an arbitrary prefix or suffix ("drop the most numerous excess" —
// see DESIGN.md for the exact reading chosen for this phrase).
func capNumLits(sorted []float64, cap int) []float64 {
	if cap <= 0 || len(sorted) <= cap {
		return sorted
	}

	if cap == 1 {
		return []float64{sorted[0]}
	}

	out := make([]float64, 0, cap)
	n := len(sorted)

	for i := 0; i < cap; i++ {
		idx := i * (n - 1) / (cap - 1)
		out = append(out, sorted[idx])
	}

	return dedupFloats(out)
}

func dedupFloats(sorted []float64) []float64 {
	out := sorted[:0:0] //nolint:gocritic // intentional fresh slice, sorted is not aliased elsewhere.

	for i, x := range sorted {
		if i == 0 || x != sorted[i-1] {
			out = append(out, x)
		}
	}

	return out
}

func joinStr(a, b *StrArm, p *Policy) *StrArm {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	lits := capStrLits(unionStrings(a.Lits, b.Lits), p.MaxStrLits)

	return &StrArm{
		Lits:  lits,
		LCP:   longestCommonPrefix(lits),
		IsURI: a.IsURI && b.IsURI,
	}
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))

	for _, s := range [][]string{a, b} {
		for _, x := range s {
			if _, ok := seen[x]; ok {
				continue
			}

			seen[x] = struct{}{}
			out = append(out, x)
		}
	}

	sort.Strings(out)

	return out
}

// capStrLits enforces MaxStrLits by lexicographic order, the string
// analogue of capNumLits. The result is a pure function of the union's
// content, not of which side contributed which literal, so repeated
// joins stay order-independent.
func capStrLits(sorted []string, cap int) []string {
	if cap <= 0 || len(sorted) <= cap {
		return sorted
	}

	if cap == 1 {
		return []string{sorted[0]}
	}

	out := make([]string, 0, cap)
	n := len(sorted)

	for i := 0; i < cap; i++ {
		idx := i * (n - 1) / (cap - 1)
		out = append(out, sorted[idx])
	}

	return dedupStrings(out)
}

func dedupStrings(sorted []string) []string {
	out := sorted[:0:0] //nolint:gocritic
	for i, x := range sorted {
		if i == 0 || x != sorted[i-1] {
			out = append(out, x)
		}
	}

	return out
}

// longestCommonPrefix is recomputed from the retained literal set on
// every join, never from two prior LCPs: capping can drop the literal
// that determined a previously-computed prefix, so the only correct
// source of truth is "whatever literals are retained right now"
// (spec.md §9, "Cap-then-recompute LCP").
func longestCommonPrefix(lits []string) string {
	if len(lits) == 0 {
		return ""
	}

	prefix := lits[0]

	for _, s := range lits[1:] {
		prefix = commonPrefix(prefix, s)
		if prefix == "" {
			return ""
		}
	}

	return prefix
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	i := 0
	for i < n && a[i] == b[i] {
		i++
	}

	return a[:i]
}

func joinArr(a, b *ArrArm, p *Policy) *ArrArm {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	width := len(a.Cols)
	if len(b.Cols) > width {
		width = len(b.Cols)
	}

	out := &ArrArm{
		Samples: a.Samples + b.Samples,
		LenMin:  minInt(a.LenMin, b.LenMin),
		LenMax:  maxInt(a.LenMax, b.LenMax),
		Cols:    make([]*U, width),
		Present: make([]int, width),
		NonNull: make([]int, width),
		Item:    Join(a.Item, b.Item, p),
	}

	emptyNullable := &U{Nullable: true}

	for i := 0; i < width; i++ {
		aCol, aPresent, aNonNull := columnAt(a, i, emptyNullable)
		bCol, bPresent, bNonNull := columnAt(b, i, emptyNullable)

		out.Cols[i] = Join(aCol, bCol, p)
		out.Present[i] = aPresent + bPresent
		out.NonNull[i] = aNonNull + bNonNull
	}

	return out
}

// columnAt returns arm's column i, or the implicit pad (a nullable empty
// U, contributing 0 to both counters) if arm doesn't have that many
// columns. This is the "pad propagation across joins" trick (spec.md §9):
// the missing side's implicit nullable column is what lets the normalizer
// later tell "short array" apart from "tuple with optional tail".
func columnAt(arm *ArrArm, i int, pad *U) (*U, int, int) {
	if i >= len(arm.Cols) {
		return pad, 0, 0
	}

	return arm.Cols[i], arm.Present[i], arm.NonNull[i]
}

func joinObj(a, b *ObjArm, p *Policy) *ObjArm {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	out := &ObjArm{
		Fields:      make(map[string]*FieldRecord, len(a.Fields)+len(b.Fields)),
		SeenObjects: a.SeenObjects + b.SeenObjects,
	}

	for _, name := range a.Order {
		out.Order = append(out.Order, name)
	}

	for _, name := range b.Order {
		if _, ok := a.Fields[name]; !ok {
			out.Order = append(out.Order, name)
		}
	}

	for _, name := range out.Order {
		af, aok := a.Fields[name]
		bf, bok := b.Fields[name]

		switch {
		case aok && bok:
			out.Fields[name] = &FieldRecord{
				Ty:        Join(af.Ty, bf.Ty, p),
				PresentIn: af.PresentIn + bf.PresentIn,
				NonNullIn: af.NonNullIn + bf.NonNullIn,
			}
		case aok:
			out.Fields[name] = af
		default:
			out.Fields[name] = bf
		}
	}

	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}

	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}

	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}
