// Package schemadoc implements the debug schema emitter: a lossy but
// human-readable JSON-Schema rendering of an inferred Ty, for inspecting
// what the core actually concluded about a corpus. It always emits the
// strictest possible schema (unknown object fields rejected, regardless
// of any --strict flag elsewhere), since its purpose is diagnostic.
package schemadoc

import (
	"go.shapeinfer.dev/shapeinfer"

	"github.com/google/jsonschema-go/jsonschema"
)

// Emit walks t and produces a JSON-Schema-like document describing it.
func Emit(t shapeinfer.Ty) *jsonschema.Schema {
	return emit(&t)
}

func emit(t *shapeinfer.Ty) *jsonschema.Schema {
	switch t.Kind {
	case shapeinfer.KindTyNull:
		return &jsonschema.Schema{Type: "null"}

	case shapeinfer.KindTyBool:
		return &jsonschema.Schema{Type: "boolean"}

	case shapeinfer.KindTyInteger:
		return &jsonschema.Schema{
			Type:    "integer",
			Minimum: jsonschema.Ptr(t.Min),
			Maximum: jsonschema.Ptr(t.Max),
		}

	case shapeinfer.KindTyNumber:
		return &jsonschema.Schema{
			Type:    "number",
			Minimum: jsonschema.Ptr(t.Min),
			Maximum: jsonschema.Ptr(t.Max),
		}

	case shapeinfer.KindTyString:
		return emitString(t)

	case shapeinfer.KindTyArrayList:
		return &jsonschema.Schema{
			Type:     "array",
			Items:    emit(t.Elem),
			MinItems: jsonschema.Ptr(t.MinItems),
			MaxItems: jsonschema.Ptr(t.MaxItems),
		}

	case shapeinfer.KindTyArrayTuple:
		return emitTuple(t)

	case shapeinfer.KindTyObject:
		return emitObject(t)

	case shapeinfer.KindTyOneOf:
		arms := make([]*jsonschema.Schema, len(t.Arms))
		for i, arm := range t.Arms {
			arms[i] = emit(arm)
		}

		return &jsonschema.Schema{AnyOf: arms}

	case shapeinfer.KindTyNullable:
		inner := emit(t.Elem)

		return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{inner, {Type: "null"}}}

	default:
		return &jsonschema.Schema{}
	}
}

func emitString(t *shapeinfer.Ty) *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "string"}

	if len(t.Enum) > 0 {
		s.Enum = make([]any, len(t.Enum))
		for i, v := range t.Enum {
			s.Enum[i] = v
		}
	}

	if t.Pattern != "" {
		s.Pattern = t.Pattern
	}

	if t.URI {
		s.Format = "uri"
	}

	return s
}

// emitTuple renders a fixed-arity array using PrefixItems, one schema per
// position, with Items set to a never-matching schema so anything past
// the declared arity is rejected.
func emitTuple(t *shapeinfer.Ty) *jsonschema.Schema {
	prefix := make([]*jsonschema.Schema, len(t.Tuple))
	for i, elem := range t.Tuple {
		prefix[i] = emit(elem)
	}

	return &jsonschema.Schema{
		Type:        "array",
		PrefixItems: prefix,
		Items:       &jsonschema.Schema{Not: &jsonschema.Schema{}},
		MinItems:    jsonschema.Ptr(t.MinItems),
		MaxItems:    jsonschema.Ptr(t.MaxItems),
	}
}

func emitObject(t *shapeinfer.Ty) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:                 "object",
		Properties:           make(map[string]*jsonschema.Schema, len(t.Fields)),
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}

	for _, f := range t.Fields {
		s.Properties[f.Name] = emit(f.Ty)
		s.PropertyOrder = append(s.PropertyOrder, f.Name)

		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}

	return s
}
