// Package codegen turns an inferred Ty into strict Go source: one newtype
// or struct per shape, each with an UnmarshalJSON method that enforces the
// bounds, enum membership, arity, and field set the inference core
// concluded, instead of accepting anything encoding/json's default
// decoding would. No third-party Go-source-generation library appears in
// the example corpus this module was built from (the nearest relative,
// cuelang.org/go/encoding/gocode, itself only wraps go/format and
// go/printer), so this package is deliberately stdlib-only: text/template
// renders each declaration and go/format.Source canonicalizes the result.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"

	shapeinfer "go.shapeinfer.dev/shapeinfer"
)

// Generate renders a Go source file defining name as the Go type for t,
// plus one supporting type per nested shape, in package pkg. When strict
// is true, generated object UnmarshalJSON methods reject unknown JSON
// object keys; Generator.StrictCodegen reports the setting a Generator
// was built with.
func Generate(pkg, name string, t shapeinfer.Ty, strict bool) ([]byte, error) {
	p := &planner{
		strict: strict,
		names:  map[string]bool{},
	}

	rootName := exportedName(name)

	goType := p.plan(&t, rootName)
	if goType != rootName {
		// The root shape didn't need its own declaration (a bare scalar
		// like bool or an unconstrained string); alias name to it so the
		// package still exports a type called name.
		p.decls = append(p.decls, decl{
			name: rootName,
			code: fmt.Sprintf("// %s is %s.\ntype %s = %s", rootName, t.Kind, rootName, goType),
		})
	}

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "// Code generated by shapeinfer/codegen. DO NOT EDIT.\n\npackage %s\n\n", pkg)

	imports := p.imports()
	if len(imports) > 0 {
		buf.WriteString("import (\n")

		for _, imp := range imports {
			fmt.Fprintf(&buf, "\t%q\n", imp)
		}

		buf.WriteString(")\n\n")
	}

	for _, d := range p.decls {
		buf.WriteString(d.code)
		buf.WriteString("\n\n")
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("shapeinfer/codegen: formatting generated source: %w", err)
	}

	return out, nil
}

type decl struct {
	name string
	code string
}

// planner walks a Ty tree once, allocating a unique Go name for every
// node that needs its own declaration and rendering that declaration's
// source immediately (children are planned, and so named, before their
// parent's declaration is rendered).
type planner struct {
	strict    bool
	names     map[string]bool
	decls     []decl
	usesJSON  bool
	usesRegex bool
	usesURL   bool
}

func (p *planner) imports() []string {
	if !p.usesJSON {
		return nil
	}

	imports := []string{"encoding/json", "fmt"}

	if p.usesRegex {
		imports = append(imports, "regexp")
	}

	if p.usesURL {
		imports = append(imports, "net/url")
	}

	return imports
}

// uniqueName returns want, or want suffixed with an increasing number if
// it has already been used.
func (p *planner) uniqueName(want string) string {
	if !p.names[want] {
		p.names[want] = true

		return want
	}

	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", want, i)
		if !p.names[candidate] {
			p.names[candidate] = true

			return candidate
		}
	}
}

// plan returns the Go type expression to use for t (a declared name for
// shapes that need their own declaration, or a Go literal type like
// "bool" for shapes that don't).
func (p *planner) plan(t *shapeinfer.Ty, want string) string {
	switch t.Kind {
	case shapeinfer.KindTyNull:
		return "struct{}"

	case shapeinfer.KindTyBool:
		return "bool"

	case shapeinfer.KindTyInteger:
		name := p.uniqueName(want)
		p.render(numberTemplate, name, map[string]any{
			"Name": name, "GoType": "int64", "Min": t.Min, "Max": t.Max, "Integer": true,
		})

		return name

	case shapeinfer.KindTyNumber:
		name := p.uniqueName(want)
		p.render(numberTemplate, name, map[string]any{
			"Name": name, "GoType": "float64", "Min": t.Min, "Max": t.Max, "Integer": false,
		})

		return name

	case shapeinfer.KindTyString:
		return p.planString(t, want)

	case shapeinfer.KindTyArrayList:
		return p.planArrayList(t, want)

	case shapeinfer.KindTyArrayTuple:
		return p.planArrayTuple(t, want)

	case shapeinfer.KindTyObject:
		return p.planObject(t, want)

	case shapeinfer.KindTyOneOf:
		return p.planSum(t.Arms, want, false)

	case shapeinfer.KindTyNullable:
		return p.planSum([]*shapeinfer.Ty{t.Elem}, want, true)

	default:
		return "json.RawMessage"
	}
}

func (p *planner) planString(t *shapeinfer.Ty, want string) string {
	if len(t.Enum) == 0 && t.Pattern == "" && !t.URI {
		return "string"
	}

	name := p.uniqueName(want)

	if t.Pattern != "" {
		p.usesRegex = true
	}

	if t.URI {
		p.usesURL = true
	}

	p.render(stringTemplate, name, map[string]any{
		"Name": name, "Enum": t.Enum, "Pattern": t.Pattern, "URI": t.URI,
	})

	return name
}

func (p *planner) planArrayList(t *shapeinfer.Ty, want string) string {
	elemName := p.plan(t.Elem, want+"Elem")
	name := p.uniqueName(want)

	p.render(listTemplate, name, map[string]any{
		"Name": name, "Elem": elemName, "MinItems": t.MinItems, "MaxItems": t.MaxItems,
	})

	return name
}

func (p *planner) planArrayTuple(t *shapeinfer.Ty, want string) string {
	type pos struct {
		Field    string
		Go       string
		Required bool
	}

	positions := make([]pos, len(t.Tuple))

	for i, elem := range t.Tuple {
		positions[i] = pos{
			Field:    fmt.Sprintf("Pos%d", i),
			Go:       p.plan(elem, fmt.Sprintf("%sPos%d", want, i)),
			Required: i < t.MinItems,
		}
	}

	name := p.uniqueName(want)
	p.render(tupleTemplate, name, map[string]any{
		"Name": name, "Positions": positions, "MinItems": t.MinItems, "MaxItems": t.MaxItems,
	})

	return name
}

func (p *planner) planObject(t *shapeinfer.Ty, want string) string {
	type field struct {
		Go       string
		JSON     string
		GoType   string
		Required bool
	}

	fields := make([]field, len(t.Fields))

	for i, f := range t.Fields {
		fields[i] = field{
			Go:       exportedName(f.Name),
			JSON:     f.Name,
			GoType:   p.plan(f.Ty, want+exportedName(f.Name)),
			Required: f.Required,
		}
	}

	name := p.uniqueName(want)
	p.render(objectTemplate, name, map[string]any{
		"Name": name, "Fields": fields, "Strict": p.strict,
	})

	return name
}

// planSum renders a sum wrapper trying each arm's type in turn. nullable
// adds an implicit "was the JSON literal null" arm ahead of arms[0].
func (p *planner) planSum(arms []*shapeinfer.Ty, want string, nullable bool) string {
	type arm struct {
		Field string
		Go    string
	}

	var armDecls []arm

	for i, a := range arms {
		armDecls = append(armDecls, arm{
			Field: fmt.Sprintf("Arm%d", i),
			Go:    p.plan(a, fmt.Sprintf("%sArm%d", want, i)),
		})
	}

	name := p.uniqueName(want)
	p.render(sumTemplate, name, map[string]any{
		"Name": name, "Arms": armDecls, "Nullable": nullable,
	})

	return name
}

func (p *planner) render(tmpl *template.Template, name string, data map[string]any) {
	var buf bytes.Buffer

	if err := tmpl.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("shapeinfer/codegen: rendering %s: %v", name, err))
	}

	p.usesJSON = true
	p.decls = append(p.decls, decl{name: name, code: buf.String()})
}

// exportedName turns an arbitrary field or argument name into a valid,
// exported Go identifier.
func exportedName(s string) string {
	var b strings.Builder

	upperNext := true

	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if upperNext {
				b.WriteRune(unicode.ToUpper(r))
				upperNext = false
			} else {
				b.WriteRune(r)
			}
		default:
			upperNext = true
		}
	}

	out := b.String()
	if out == "" {
		return "Field"
	}

	if unicode.IsDigit(rune(out[0])) {
		return "Field" + out
	}

	return out
}
