package shapeinfer

import "fmt"

// TyKind identifies which variant of Ty a value holds.
type TyKind int

const (
	KindTyNull TyKind = iota
	KindTyBool
	KindTyInteger
	KindTyNumber
	KindTyString
	KindTyArrayList
	KindTyArrayTuple
	KindTyObject
	KindTyOneOf
	KindTyNullable
)

// String returns a short, stable name for k.
func (k TyKind) String() string {
	switch k {
	case KindTyNull:
		return "null"
	case KindTyBool:
		return "bool"
	case KindTyInteger:
		return "integer"
	case KindTyNumber:
		return "number"
	case KindTyString:
		return "string"
	case KindTyArrayList:
		return "array_list"
	case KindTyArrayTuple:
		return "array_tuple"
	case KindTyObject:
		return "object"
	case KindTyOneOf:
		return "one_of"
	case KindTyNullable:
		return "nullable"
	default:
		return "unknown"
	}
}

// Ty is the closed IR type the lowerer produces: every value it builds
// uses one of the constructors below, and every constructor enforces the
// invariants spec.md §4.4 lists (no Nullable(Null), no nested Nullable,
// OneOf requires at least two distinct non-null arms and simplifies
// OneOf(T, Null) down to Nullable(T)). Callers should never build a Ty
// literal directly; use the constructors so the invariants can't be
// bypassed.
type Ty struct {
	Kind TyKind

	// Integer, Number: inclusive bounds.
	Min, Max float64

	// String: Enum holds a closed set of literal values when non-empty;
	// Pattern holds a regular expression when non-empty. At most one of
	// Enum/Pattern is set; both may be empty (an unconstrained string).
	// URI is true when every observed literal parsed as a URI.
	Enum    []string
	Pattern string
	URI     bool

	// Array: Elem is the element type for ArrayList. Tuple is the
	// per-position type list for ArrayTuple. MinItems/MaxItems bound
	// observed length for both variants; for ArrayTuple, MinItems equals
	// last_required_index+1 and MaxItems is always len(Tuple).
	Elem          *Ty
	Tuple         []*Ty
	MinItems      int
	MaxItems      int

	// Object.
	Fields []Field

	// OneOf: Arms holds two or more distinct, non-null, non-Nullable
	// member types.
	Arms []*Ty

	// Nullable: Elem holds the single non-null, non-Nullable wrapped type
	// (reusing the Elem field to avoid a parallel pointer for a single
	// child).
}

// Field is one named member of an Object type.
type Field struct {
	Name     string
	Ty       *Ty
	Required bool
}

var tyNull = &Ty{Kind: KindTyNull}
var tyBool = &Ty{Kind: KindTyBool}

// TyNull and TyBool return the (stateless) leaf types. They share backing
// values since they carry no payload.
func TyNull() *Ty { return tyNull }
func TyBool() *Ty { return tyBool }

// TyInteger and TyNumber return the numeric leaf types with inclusive
// bounds [min, max].
func TyInteger(min, max float64) *Ty {
	return &Ty{Kind: KindTyInteger, Min: min, Max: max}
}

func TyNumber(min, max float64) *Ty {
	return &Ty{Kind: KindTyNumber, Min: min, Max: max}
}

// TyString returns a string type. enum and pattern are mutually
// exclusive; pass enum or pattern but never both non-empty.
func TyString(enum []string, pattern string, uri bool) *Ty {
	if len(enum) > 0 && pattern != "" {
		panic("shapeinfer: TyString given both an enum and a pattern")
	}

	return &Ty{Kind: KindTyString, Enum: enum, Pattern: pattern, URI: uri}
}

// TyArrayList returns the type of an array whose elements all share elem,
// with observed length bounds [minItems, maxItems].
func TyArrayList(elem *Ty, minItems, maxItems int) *Ty {
	if elem == nil {
		panic("shapeinfer: TyArrayList given a nil element type")
	}

	if minItems < 0 || minItems > maxItems {
		panic(fmt.Sprintf("shapeinfer: TyArrayList bounds [%d, %d] invalid", minItems, maxItems))
	}

	return &Ty{Kind: KindTyArrayList, Elem: elem, MinItems: minItems, MaxItems: maxItems}
}

// TyArrayTuple returns a fixed-arity array type. minItems must be in
// [0, len(positions)]; positions beyond minItems are the optional tail.
// maxItems is the widest array length observed and must be at least
// len(positions) (a tuple never lowers shorter than its own arity).
func TyArrayTuple(positions []*Ty, minItems, maxItems int) *Ty {
	if minItems < 0 || minItems > len(positions) {
		panic(fmt.Sprintf("shapeinfer: TyArrayTuple minItems %d out of range [0, %d]", minItems, len(positions)))
	}

	if maxItems < len(positions) {
		panic(fmt.Sprintf("shapeinfer: TyArrayTuple maxItems %d shorter than arity %d", maxItems, len(positions)))
	}

	if minItems > maxItems {
		panic(fmt.Sprintf("shapeinfer: TyArrayTuple minItems %d exceeds maxItems %d", minItems, maxItems))
	}

	return &Ty{Kind: KindTyArrayTuple, Tuple: positions, MinItems: minItems, MaxItems: maxItems}
}

// TyObject returns an object type with the given fields, in the order
// given (field order is meaningful: it is the first-observation order
// Lower assigns).
func TyObject(fields []Field) *Ty {
	return &Ty{Kind: KindTyObject, Fields: fields}
}

// TyOneOf returns the type of a value that can take any of arms's shapes.
// It enforces OneOf's invariants: at least two arms, none of them Null,
// Nullable, or (recursively) OneOf, and no two structurally identical
// arms. If arms reduces to exactly one distinct arm plus Null, the result
// simplifies to Nullable(that arm) instead of a one-armed OneOf.
func TyOneOf(arms []*Ty) *Ty {
	var nullable bool

	distinct := make([]*Ty, 0, len(arms))

	for _, a := range arms {
		if a == nil {
			panic("shapeinfer: TyOneOf given a nil arm")
		}

		if a.Kind == KindTyNull {
			nullable = true

			continue
		}

		if a.Kind == KindTyNullable {
			nullable = true
			a = a.Elem
		}

		if a.Kind == KindTyOneOf {
			panic("shapeinfer: TyOneOf given a nested OneOf arm; flatten before calling")
		}

		if !containsEqualTy(distinct, a) {
			distinct = append(distinct, a)
		}
	}

	switch len(distinct) {
	case 0:
		panic("shapeinfer: TyOneOf given no non-null arms")
	case 1:
		if nullable {
			return TyNullable(distinct[0])
		}

		return distinct[0]
	default:
		out := &Ty{Kind: KindTyOneOf, Arms: distinct}
		if nullable {
			return TyNullable(out)
		}

		return out
	}
}

// TyNullable returns the type "inner or null". It collapses
// Nullable(Nullable(x)) to Nullable(x) and rejects Nullable(Null) since
// "maybe null, maybe null" is just Null.
func TyNullable(inner *Ty) *Ty {
	if inner == nil {
		panic("shapeinfer: TyNullable given a nil inner type")
	}

	switch inner.Kind {
	case KindTyNull:
		return tyNull
	case KindTyNullable:
		return inner
	default:
		return &Ty{Kind: KindTyNullable, Elem: inner}
	}
}

// containsEqualTy reports whether any element of ts is structurally equal
// to t.
func containsEqualTy(ts []*Ty, t *Ty) bool {
	for _, existing := range ts {
		if tyEqual(existing, t) {
			return true
		}
	}

	return false
}

// tyEqual reports structural equality, ignoring pointer identity.
func tyEqual(a, b *Ty) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindTyNull, KindTyBool:
		return true
	case KindTyInteger, KindTyNumber:
		return a.Min == b.Min && a.Max == b.Max
	case KindTyString:
		return a.Pattern == b.Pattern && a.URI == b.URI && stringSliceEqual(a.Enum, b.Enum)
	case KindTyArrayList:
		return a.MinItems == b.MinItems && a.MaxItems == b.MaxItems && tyEqual(a.Elem, b.Elem)
	case KindTyArrayTuple:
		if a.MinItems != b.MinItems || a.MaxItems != b.MaxItems || len(a.Tuple) != len(b.Tuple) {
			return false
		}

		for i := range a.Tuple {
			if !tyEqual(a.Tuple[i], b.Tuple[i]) {
				return false
			}
		}

		return true
	case KindTyObject:
		if len(a.Fields) != len(b.Fields) {
			return false
		}

		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || a.Fields[i].Required != b.Fields[i].Required {
				return false
			}

			if !tyEqual(a.Fields[i].Ty, b.Fields[i].Ty) {
				return false
			}
		}

		return true
	case KindTyOneOf:
		if len(a.Arms) != len(b.Arms) {
			return false
		}

		for i := range a.Arms {
			if !tyEqual(a.Arms[i], b.Arms[i]) {
				return false
			}
		}

		return true
	case KindTyNullable:
		return tyEqual(a.Elem, b.Elem)
	default:
		return false
	}
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
