package shapeinfer

// Policy centralizes every evidence threshold the normalizer and join use
// to decide integer-vs-real, enum-vs-pattern, list-vs-tuple, and
// required-vs-optional. Functions that accept a *Policy use
// DefaultPolicy for nil and fill zero-value fields from it otherwise.
type Policy struct {
	// MaxNumLits caps the number of distinct numeric literals a NumArm
	// retains across joins.
	MaxNumLits int
	// MaxStrLits caps the number of distinct string literals a StrArm
	// retains across joins.
	MaxStrLits int
	// LCPMinForPattern is the minimum longest-common-prefix length (in
	// characters) required before the normalizer emits a pattern instead
	// of leaving a string unconstrained.
	LCPMinForPattern int
	// StringEnumMax is the maximum number of distinct literals a StrArm
	// may have and still be normalized to an enum.
	StringEnumMax int
	// StringEnumMaxLen is the maximum length, in bytes, any single
	// literal may have and still be eligible for enum retention.
	StringEnumMaxLen int
	// TupleMinSamples is the minimum number of observed arrays required
	// before the normalizer will ever consider the tuple hypothesis.
	TupleMinSamples int
	// TupleRequiredPresence is the presence ratio (present[i]/samples)
	// at or above which a tuple column counts as "required-like".
	TupleRequiredPresence float64
	// TupleNumOverlapMax is the maximum interval-overlap fraction between
	// a tuple column and the pooled list hypothesis below which the
	// numeric-interval-divergence tuple signal fires.
	TupleNumOverlapMax float64
}

// Spec-mandated defaults (spec.md §4.3).
const (
	defaultMaxNumLits           = 16
	defaultMaxStrLits           = 16
	defaultLCPMinForPattern     = 3
	defaultStringEnumMax        = 12
	defaultStringEnumMaxLen     = 32
	defaultTupleMinSamples      = 2
	defaultTupleRequiredPresence = 0.9
	defaultTupleNumOverlapMax   = 0.3
)

// DefaultPolicy returns the policy spec.md §4.3 specifies.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxNumLits:            defaultMaxNumLits,
		MaxStrLits:            defaultMaxStrLits,
		LCPMinForPattern:       defaultLCPMinForPattern,
		StringEnumMax:          defaultStringEnumMax,
		StringEnumMaxLen:       defaultStringEnumMaxLen,
		TupleMinSamples:        defaultTupleMinSamples,
		TupleRequiredPresence:  defaultTupleRequiredPresence,
		TupleNumOverlapMax:     defaultTupleNumOverlapMax,
	}
}

// orDefault returns DefaultPolicy() if p is nil, else a copy of p in which
// every zero-valued numeric field is filled in from the default so
// partially-constructed Policy values (e.g. Policy{TupleMinSamples: 3})
// behave as "override just this one knob".
func (p *Policy) orDefault() *Policy {
	if p == nil {
		return DefaultPolicy()
	}

	d := DefaultPolicy()
	out := *p

	if out.MaxNumLits == 0 {
		out.MaxNumLits = d.MaxNumLits
	}

	if out.MaxStrLits == 0 {
		out.MaxStrLits = d.MaxStrLits
	}

	if out.LCPMinForPattern == 0 {
		out.LCPMinForPattern = d.LCPMinForPattern
	}

	if out.StringEnumMax == 0 {
		out.StringEnumMax = d.StringEnumMax
	}

	if out.StringEnumMaxLen == 0 {
		out.StringEnumMaxLen = d.StringEnumMaxLen
	}

	if out.TupleMinSamples == 0 {
		out.TupleMinSamples = d.TupleMinSamples
	}

	if out.TupleRequiredPresence == 0 {
		out.TupleRequiredPresence = d.TupleRequiredPresence
	}

	if out.TupleNumOverlapMax == 0 {
		out.TupleNumOverlapMax = d.TupleNumOverlapMax
	}

	return &out
}
