package codegen

import "text/template"

var funcs = template.FuncMap{
	"quote": func(s string) string { return `"` + s + `"` },
	"jsontag": func(name string) string {
		return "`json:\"" + name + "\"`"
	},
}

var numberTemplate = template.Must(template.New("number").Funcs(funcs).Parse(`
// {{.Name}} is a {{if .Integer}}integer{{else}}number{{end}} bounded to [{{.Min}}, {{.Max}}].
type {{.Name}} {{.GoType}}

func (v *{{.Name}}) UnmarshalJSON(data []byte) error {
	var raw {{.GoType}}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("{{.Name}}: %w", err)
	}
	if raw < {{.Min}} || raw > {{.Max}} {
		return fmt.Errorf("{{.Name}}: %v out of bounds [{{.Min}}, {{.Max}}]", raw)
	}
	*v = {{.Name}}(raw)
	return nil
}
`))

var stringTemplate = template.Must(template.New("string").Funcs(funcs).Parse(`
// {{.Name}} is a constrained string.
type {{.Name}} string

{{if .Enum}}
var {{.Name}}Enum = []string{ {{range .Enum}}{{quote .}}, {{end}} }
{{end}}
{{if .Pattern}}
var {{.Name}}Pattern = regexp.MustCompile({{quote .Pattern}})
{{end}}

func (v *{{.Name}}) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("{{.Name}}: %w", err)
	}
	{{if .Enum}}
	ok := false
	for _, want := range {{.Name}}Enum {
		if raw == want {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("{{.Name}}: %q not in enum", raw)
	}
	{{end}}
	{{if .Pattern}}
	if !{{.Name}}Pattern.MatchString(raw) {
		return fmt.Errorf("{{.Name}}: %q does not match pattern", raw)
	}
	{{end}}
	{{if .URI}}
	if u, err := url.Parse(raw); err != nil {
		return fmt.Errorf("{{.Name}}: %q is not a valid URI: %w", raw, err)
	} else if u.Scheme == "" {
		return fmt.Errorf("{{.Name}}: %q is not a valid URI: missing scheme", raw)
	}
	{{end}}
	*v = {{.Name}}(raw)
	return nil
}
`))

var listTemplate = template.Must(template.New("list").Funcs(funcs).Parse(`
// {{.Name}} is a list of {{.Elem}} with length in [{{.MinItems}}, {{.MaxItems}}].
type {{.Name}} []{{.Elem}}

func (v *{{.Name}}) UnmarshalJSON(data []byte) error {
	type alias {{.Name}}
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("{{.Name}}: %w", err)
	}
	if len(raw) < {{.MinItems}} || len(raw) > {{.MaxItems}} {
		return fmt.Errorf("{{.Name}}: length %d out of bounds [{{.MinItems}}, {{.MaxItems}}]", len(raw))
	}
	*v = {{.Name}}(raw)
	return nil
}
`))

var tupleTemplate = template.Must(template.New("tuple").Funcs(funcs).Parse(`
// {{.Name}} is a fixed-arity array of {{len .Positions}} positions, with
// length in [{{.MinItems}}, {{.MaxItems}}].
type {{.Name}} struct {
{{range .Positions}}	{{.Field}} {{.Go}}{{if not .Required}} // optional tail position{{end}}
{{end}}}

func (v *{{.Name}}) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("{{.Name}}: %w", err)
	}
	if len(raw) < {{.MinItems}} || len(raw) > {{.MaxItems}} {
		return fmt.Errorf("{{.Name}}: length %d out of bounds [{{.MinItems}}, {{.MaxItems}}]", len(raw))
	}
{{range $i, $p := .Positions}}	if {{$i}} < len(raw) {
		if err := json.Unmarshal(raw[{{$i}}], &v.{{$p.Field}}); err != nil {
			return fmt.Errorf("{{$.Name}}: position {{$i}}: %w", err)
		}
	}
{{end}}	return nil
}
`))

var objectTemplate = template.Must(template.New("object").Funcs(funcs).Parse(`
// {{.Name}} is a generated object type.
type {{.Name}} struct {
{{range .Fields}}	{{.Go}} {{.GoType}} {{jsontag .JSON}}
{{end}}}

func (v *{{.Name}}) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("{{.Name}}: %w", err)
	}
{{range .Fields}}	if msg, ok := raw[{{quote .JSON}}]; ok {
		if err := json.Unmarshal(msg, &v.{{.Go}}); err != nil {
			return fmt.Errorf("{{$.Name}}: field {{.JSON}}: %w", err)
		}
		delete(raw, {{quote .JSON}})
	}{{if .Required}} else {
		return fmt.Errorf("{{$.Name}}: missing required field {{.JSON}}")
	}{{end}}
{{end}}
	{{if .Strict}}
	if len(raw) > 0 {
		for k := range raw {
			return fmt.Errorf("{{.Name}}: unknown field %q", k)
		}
	}
	{{end}}
	return nil
}
`))

var sumTemplate = template.Must(template.New("sum").Funcs(funcs).Parse(`
// {{.Name}} holds exactly one of its arms, decoded by trying each in order.
type {{.Name}} struct {
{{if .Nullable}}	Null bool
{{end}}{{range .Arms}}	{{.Field}} *{{.Go}}
{{end}}}

func (v *{{.Name}}) UnmarshalJSON(data []byte) error {
	{{if .Nullable}}
	if string(data) == "null" {
		v.Null = true
		return nil
	}
	{{end}}
{{range .Arms}}	{
		var candidate {{.Go}}
		if err := json.Unmarshal(data, &candidate); err == nil {
			v.{{.Field}} = &candidate
			return nil
		}
	}
{{end}}	return fmt.Errorf("{{.Name}}: value matched no known arm")
}
`))
