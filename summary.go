package shapeinfer

// U is the summary algebra: a bounded-size description of everything
// observed at one position across a stream of JSON values. A U node
// carries at most one arm per JSON kind, and all arms coexist — a node
// that has seen both booleans and arrays has both HasBool set and Arr
// non-nil.
//
// U values are produced by Observe, combined with Join (commutative,
// associative, idempotent), mutated in place by Normalize, and finally
// read by Lower. Once lowered, the U tree is no longer consulted.
type U struct {
	// Nullable is true iff a JSON null was observed at this position.
	Nullable bool
	// HasBool is true iff any boolean was observed at this position.
	HasBool bool
	Num     *NumArm
	Str     *StrArm
	Arr     *ArrArm
	Obj     *ObjArm
}

// NumArm summarizes every number observed at one position.
type NumArm struct {
	Min, Max                  float64
	Lits                      []float64 // capped, sorted ascending, deduplicated
	SawInt, SawUint, SawFloat bool
	// IsInteger is set by Normalize: true commits this arm to Ty::Integer,
	// false to Ty::Number. Meaningless before normalization.
	IsInteger bool
}

// StrArm summarizes every string observed at one position.
type StrArm struct {
	Lits  []string // capped, deduplicated; not necessarily sorted
	LCP   string   // longest common prefix of Lits
	IsURI bool      // true iff every literal ever observed parsed as a URI with a scheme
}

// ArrArm summarizes every array observed at one position, carrying both
// the "pooled list" hypothesis (Item) and the "positional tuple"
// hypothesis (Cols/Present/NonNull) simultaneously; Normalize later picks
// one and clears the other.
type ArrArm struct {
	// Item is the join of every element seen across every observed array,
	// regardless of position (the list hypothesis).
	Item *U
	// Cols holds one U per column index (the tuple hypothesis). len(Cols)
	// is the widest array observed so far.
	Cols []*U
	// Present[i] counts how many observed arrays had an element at index
	// i at all (including null elements). NonNull[i] counts how many of
	// those were non-null. Present[i] <= Samples, NonNull[i] <= Present[i].
	Present, NonNull []int
	// LenMin, LenMax bound the observed array lengths.
	LenMin, LenMax int
	// Samples counts how many arrays contributed to this arm.
	Samples int
}

// FieldRecord tracks one object field's summary and presence counters.
type FieldRecord struct {
	Ty *U
	// PresentIn counts observations where the field's key appeared at
	// all (even with a null value). NonNullIn counts how many of those
	// had a non-null value. NonNullIn <= PresentIn <= SeenObjects (on the
	// enclosing ObjArm).
	PresentIn, NonNullIn int
}

// ObjArm summarizes every object observed at one position.
type ObjArm struct {
	// Fields maps field name to its record. Order is the slice below,
	// not map iteration order, since Go maps have none.
	Fields map[string]*FieldRecord
	// Order lists field names in first-observation order.
	Order []string
	// SeenObjects counts how many objects contributed to this arm.
	SeenObjects int
}

// newU returns a zero-value U: no arms active, not nullable.
func newU() *U {
	return &U{}
}

// addField registers name in o if not already present, preserving
// first-observation order, and returns its record.
func (o *ObjArm) addField(name string) *FieldRecord {
	if o.Fields == nil {
		o.Fields = make(map[string]*FieldRecord)
	}

	fr, ok := o.Fields[name]
	if !ok {
		fr = &FieldRecord{Ty: newU()}
		o.Fields[name] = fr
		o.Order = append(o.Order, name)
	}

	return fr
}
