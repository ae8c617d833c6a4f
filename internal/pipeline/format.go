package pipeline

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"github.com/dustin/go-humanize"

	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/constants"
	"github.com/amaumene/gostremiomux/internal/models"
)

// Funcs are available to name and description templates.
var Funcs = template.FuncMap{
	"bytes": func(n int64) string {
		if n <= 0 {
			return ""
		}
		return humanize.Bytes(uint64(n))
	},
	"join":  func(items []string, sep string) string { return strings.Join(items, sep) },
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

var (
	templates   sync.Map
	defaultName = template.Must(parse(constants.DefaultNameTemplate))
	defaultDesc = template.Must(parse(constants.DefaultDescriptionTemplate))
)

// CheckTemplate reports whether text parses as a stream template.
func CheckTemplate(text string) error {
	_, err := parse(text)
	return err
}

func parse(text string) (*template.Template, error) {
	return template.New("stream").Funcs(Funcs).Option("missingkey=zero").Parse(text)
}

// compiled returns the parsed template for text, falling back to def when
// text is empty or invalid.
func compiled(text string, def *template.Template) *template.Template {
	if text == "" {
		return def
	}
	if t, ok := templates.Load(text); ok {
		return t.(*template.Template)
	}
	t, err := parse(text)
	if err != nil {
		return def
	}
	templates.Store(text, t)
	return t
}

// Format renders the display text of every candidate. A template that fails
// at execution falls back to the default for that candidate.
func Format(candidates []models.Candidate, rules config.FormatRules) []FormattedStream {
	nameTmpl := compiled(rules.NameTemplate, defaultName)
	descTmpl := compiled(rules.DescriptionTemplate, defaultDesc)

	out := make([]FormattedStream, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, FormattedStream{
			Candidate:   c,
			Name:        render(nameTmpl, defaultName, c),
			Description: render(descTmpl, defaultDesc, c),
		})
	}
	return out
}

func render(t, def *template.Template, c models.Candidate) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, c); err != nil {
		buf.Reset()
		if def == t || def.Execute(&buf, c) != nil {
			return c.Release.Raw
		}
	}
	return strings.TrimSpace(buf.String())
}
