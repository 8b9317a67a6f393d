package main

import (
	"fmt"
	"strings"
	"text/template"
	"unicode"
)

var funcMap = template.FuncMap{
	"firstLower": firstLower,
	"quote":      func(s string) string { return fmt.Sprintf("%q", s) },
	"trimDot":    func(s string) string { return strings.TrimSuffix(s, ".") },
}

const stateTableTmpl = `// Code generated by sdkstate-gen. DO NOT EDIT.

package {{.Package}}

{{- if .States}}

const (
{{- range $i, $s := .States}}
{{- if $i}}
{{end}}
// {{$s.Name}}: {{firstLower (trimDot $s.Text)}}.
{{$s.Name}} Code = {{quote $s.Code}}
{{- end}}
)
{{- end}}

var knownCodes = []Code{
{{- range .States}}
{{.Name}},
{{- end}}
}

var table = map[Code]entry{
{{- range .States}}
{{.Name}}: {text: {{quote .Text}}, category: {{quote .Category}}{{if .Optional}}, optional: true{{end}}},
{{- end}}
}
`

var stateTemplate = template.Must(template.New("states").Funcs(funcMap).Parse(stateTableTmpl))

// Generate renders the Go source for a state table. The output is not
// gofmt'd; writeFormatted takes care of that.
func Generate(table *RawStateTable) (string, error) {
	var b strings.Builder
	if err := stateTemplate.Execute(&b, table); err != nil {
		return "", fmt.Errorf("template: %w", err)
	}
	return b.String(), nil
}

// firstLower lowercases the first letter unless the word is an acronym
// ("NFC is disabled" stays as is).
func firstLower(s string) string {
	r := []rune(s)
	if len(r) == 0 || !unicode.IsUpper(r[0]) {
		return s
	}
	if len(r) > 1 && unicode.IsUpper(r[1]) {
		return s
	}
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
