package schemadoc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shapeinfer "go.shapeinfer.dev/shapeinfer"
	"go.shapeinfer.dev/shapeinfer/schemadoc"
)

func TestEmitInteger(t *testing.T) {
	s := schemadoc.Emit(*shapeinfer.TyInteger(1, 100))
	assert.Equal(t, "integer", s.Type)
	require.NotNil(t, s.Minimum)
	require.NotNil(t, s.Maximum)
	assert.InEpsilon(t, 1.0, *s.Minimum, 0)
	assert.InEpsilon(t, 100.0, *s.Maximum, 0)
}

func TestEmitStringEnum(t *testing.T) {
	s := schemadoc.Emit(*shapeinfer.TyString([]string{"red", "green"}, "", false))
	assert.Equal(t, "string", s.Type)
	assert.ElementsMatch(t, []any{"red", "green"}, s.Enum)
	assert.Empty(t, s.Pattern)
}

func TestEmitArrayTupleUsesPrefixItems(t *testing.T) {
	ty := shapeinfer.TyArrayTuple([]*shapeinfer.Ty{
		shapeinfer.TyInteger(1, 5),
		shapeinfer.TyString(nil, "^x", false),
	}, 2, 2)

	s := schemadoc.Emit(*ty)
	assert.Equal(t, "array", s.Type)
	require.Len(t, s.PrefixItems, 2)
	assert.Equal(t, "integer", s.PrefixItems[0].Type)
	assert.Equal(t, "string", s.PrefixItems[1].Type)
	require.NotNil(t, s.Items)
	assert.NotNil(t, s.Items.Not)
}

func TestEmitObjectIsAlwaysStrict(t *testing.T) {
	ty := shapeinfer.TyObject([]shapeinfer.Field{
		{Name: "a", Ty: shapeinfer.TyInteger(1, 1), Required: true},
		{Name: "b", Ty: shapeinfer.TyNullable(shapeinfer.TyString(nil, "", false)), Required: false},
	})

	s := schemadoc.Emit(*ty)
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"a"}, s.Required)
	require.NotNil(t, s.AdditionalProperties)
	assert.NotNil(t, s.AdditionalProperties.Not)
	assert.Equal(t, []string{"a", "b"}, s.PropertyOrder)
}

func TestEmitNullableUnionsNull(t *testing.T) {
	ty := shapeinfer.TyNullable(shapeinfer.TyInteger(1, 2))
	s := schemadoc.Emit(*ty)
	require.Len(t, s.AnyOf, 2)
	assert.Equal(t, "integer", s.AnyOf[0].Type)
	assert.Equal(t, "null", s.AnyOf[1].Type)
}

func TestEmitOneOfUsesAnyOf(t *testing.T) {
	ty := shapeinfer.TyOneOf([]*shapeinfer.Ty{
		shapeinfer.TyInteger(1, 2),
		shapeinfer.TyString(nil, "", false),
	})

	s := schemadoc.Emit(*ty)
	require.Len(t, s.AnyOf, 2)
}
