package shapeinfer

import (
	"fmt"

	"go.shapeinfer.dev/shapeinfer/jsonval"
)

// Generator folds many JSON samples into one Ty, the multi-sample
// counterpart to the single-value Observe/Join/Normalize/Lower pipeline.
type Generator struct {
	policy        *Policy
	hinters       []Hinter
	strictCodegen bool
}

// Option configures a Generator.
type Option func(*Generator)

// NewGenerator creates a Generator with the given options. A Generator
// with no options uses DefaultPolicy and no hint sources.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{policy: DefaultPolicy(), strictCodegen: true}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// WithPolicy sets the Policy used to cap literals and threshold
// normalization decisions.
func WithPolicy(p *Policy) Option {
	return func(g *Generator) {
		g.policy = p.orDefault()
	}
}

// WithHinters sets the hint sources to consult, in priority order.
func WithHinters(hinters ...Hinter) Option {
	return func(g *Generator) {
		g.hinters = hinters
	}
}

// WithStrictCodegen controls whether codegen.Generate rejects unknown
// object fields in its generated UnmarshalJSON methods.
func WithStrictCodegen(strict bool) Option {
	return func(g *Generator) {
		g.strictCodegen = strict
	}
}

// StrictCodegen reports the strict-unmarshal setting this Generator was
// built with.
func (g *Generator) StrictCodegen() bool { return g.strictCodegen }

// Infer folds every value in values through Observe and Join, then
// Normalize, Lower, and any configured Hints, returning the resulting Ty.
// Passing zero values returns Ty::Null (an empty corpus carries no
// evidence of any kind).
func (g *Generator) Infer(values ...jsonval.Value) (Ty, error) {
	u := newU()

	for i, v := range values {
		obs, err := ObserveWithPolicy(v, g.policy)
		if err != nil {
			return Ty{}, fmt.Errorf("sample %d: %w", i, err)
		}

		u = Join(u, obs, g.policy)
	}

	Normalize(u, g.policy)
	ty := Lower(u)

	if len(g.hinters) > 0 {
		merged := mergeHints(g.hinters)
		return *applyHints(&ty, "$", merged), nil
	}

	return ty, nil
}
