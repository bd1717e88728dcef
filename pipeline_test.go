package shapeinfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// foldSamples runs the full Observe -> Join -> Normalize -> Lower
// pipeline over a sequence of JSON sample texts, as a driver folding a
// stream of inputs would.
func foldSamples(t *testing.T, samples ...string) Ty {
	t.Helper()

	p := DefaultPolicy()
	u := newU()

	for _, s := range samples {
		u = Join(u, observeMust(t, s), p)
	}

	Normalize(u, p)

	return Lower(u)
}

// Scenario 1: integer bounds.
func TestScenarioIntegerBounds(t *testing.T) {
	ty := foldSamples(t, "1", "2", "3", "100")

	require.Equal(t, KindTyInteger, ty.Kind)
	assert.Equal(t, 1.0, ty.Min)
	assert.Equal(t, 100.0, ty.Max)
}

// Scenario 2: LCP pattern over 20 distinct user_-prefixed strings.
func TestScenarioLCPPattern(t *testing.T) {
	samples := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		samples = append(samples, `"user_`+string(rune('a'+i))+`"`)
	}

	ty := foldSamples(t, samples...)

	require.Equal(t, KindTyString, ty.Kind)
	assert.Empty(t, ty.Enum)
	assert.Equal(t, "^user_.*", ty.Pattern)
	assert.False(t, ty.URI)
}

// Scenario 3: tiny enum preserved.
func TestScenarioTinyEnumPreserved(t *testing.T) {
	ty := foldSamples(t, `"red"`, `"green"`, `"blue"`, `"red"`)

	require.Equal(t, KindTyString, ty.Kind)
	assert.ElementsMatch(t, []string{"red", "green", "blue"}, ty.Enum)
	assert.Empty(t, ty.Pattern)
}

// Scenario 4: optional tuple tail — see normalize_test.go's
// TestOptionalTupleTailExactNullPad for the pinned-policy derivation;
// this test exercises the same scenario through the driver-style fold
// entry point instead of a direct Join chain.
func TestScenarioOptionalTupleTail(t *testing.T) {
	ty := foldSamples(t, `[1, 2]`, `[3, 4, null]`, `[5, 6, null]`)

	require.Equal(t, KindTyArrayTuple, ty.Kind)
	require.Len(t, ty.Tuple, 3)
	assert.Equal(t, KindTyInteger, ty.Tuple[0].Kind)
	assert.Equal(t, 1.0, ty.Tuple[0].Min)
	assert.Equal(t, 5.0, ty.Tuple[0].Max)
	assert.Equal(t, KindTyInteger, ty.Tuple[1].Kind)
	assert.Equal(t, 2.0, ty.Tuple[1].Min)
	assert.Equal(t, 6.0, ty.Tuple[1].Max)
	assert.Equal(t, KindTyNull, ty.Tuple[2].Kind)
	assert.Equal(t, 2, ty.MinItems)
	assert.Equal(t, 3, ty.MaxItems)
}

// Scenario 5: lat/lon nested bounds.
func TestScenarioLatLonNestedBounds(t *testing.T) {
	ty := foldSamples(t, `[[10.0, 20.0], [11.0, 21.0], [12.0, 22.0]]`)

	require.Equal(t, KindTyArrayList, ty.Kind)
	inner := ty.Elem
	require.Equal(t, KindTyArrayTuple, inner.Kind)
	require.Len(t, inner.Tuple, 2)
	assert.Equal(t, KindTyNumber, inner.Tuple[0].Kind)
	assert.Equal(t, 10.0, inner.Tuple[0].Min)
	assert.Equal(t, 12.0, inner.Tuple[0].Max)
	assert.Equal(t, KindTyNumber, inner.Tuple[1].Kind)
	assert.Equal(t, 20.0, inner.Tuple[1].Min)
	assert.Equal(t, 22.0, inner.Tuple[1].Max)
	assert.Equal(t, 2, inner.MinItems)
	assert.Equal(t, 2, inner.MaxItems)
}

// Scenario 6: object required vs optional.
func TestScenarioObjectRequiredVsOptional(t *testing.T) {
	ty := foldSamples(t, `{"a":1,"b":"x"}`, `{"a":2}`)

	require.Equal(t, KindTyObject, ty.Kind)
	require.Len(t, ty.Fields, 2)

	assert.Equal(t, "a", ty.Fields[0].Name)
	assert.True(t, ty.Fields[0].Required)
	assert.Equal(t, KindTyInteger, ty.Fields[0].Ty.Kind)
	assert.Equal(t, 1.0, ty.Fields[0].Ty.Min)
	assert.Equal(t, 2.0, ty.Fields[0].Ty.Max)

	assert.Equal(t, "b", ty.Fields[1].Name)
	assert.False(t, ty.Fields[1].Required)
	require.Equal(t, KindTyNullable, ty.Fields[1].Ty.Kind)
	assert.Equal(t, KindTyString, ty.Fields[1].Ty.Elem.Kind)
}

// Monotonicity: adding an observation never removes an already-active
// arm kind.
func TestMonotonicityArmsNeverDisappear(t *testing.T) {
	p := DefaultPolicy()
	u := observeMust(t, `{"a": 1}`)
	next := observeMust(t, `{"a": "x", "b": true}`)

	joined := Join(u, next, p)

	beforeA := activeKinds(u.Obj.Fields["a"].Ty)
	afterA := activeKinds(joined.Obj.Fields["a"].Ty)
	assert.True(t, isSubsetKind(beforeA, afterA))

	assert.True(t, isSubsetKind(activeKinds(u), activeKinds(joined)))
}

// Nullable collapse: no lowered Ty ever contains Nullable(Null),
// Nullable(Nullable(_)), or an unsimplified OneOf(T, Null).
func TestNullableCollapseAcrossPipeline(t *testing.T) {
	ty := foldSamples(t, `null`, `1`, `"x"`, `true`)

	assertNoForbiddenShapes(t, &ty)
}

func assertNoForbiddenShapes(t *testing.T, ty *Ty) {
	t.Helper()

	if ty.Kind == KindTyNullable {
		assert.NotEqual(t, KindTyNull, ty.Elem.Kind, "Nullable(Null) must collapse to Null")
		assert.NotEqual(t, KindTyNullable, ty.Elem.Kind, "Nullable(Nullable(_)) must collapse")
		assertNoForbiddenShapes(t, ty.Elem)
	}

	if ty.Kind == KindTyOneOf {
		for _, arm := range ty.Arms {
			assert.NotEqual(t, KindTyNull, arm.Kind, "OneOf must simplify a Null arm into Nullable")
			assertNoForbiddenShapes(t, arm)
		}
	}
}
