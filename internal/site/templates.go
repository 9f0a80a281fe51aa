package site

import (
	"bytes"
	"embed"
	"html/template"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Page template names. A templates directory may override either one.
const (
	IndexTemplate = "index.html"
	PostTemplate  = "post.html"
)

// DateLayout is the default layout of the "date" template function.
const DateLayout = "January 02, 2006"

// Templates is the parsed page template set.
type Templates struct {
	set *template.Template
}

// LoadTemplates parses the built-in templates and then any *.html files in
// dir, which replace built-in templates with the same file name. An empty dir
// uses the built-in set only.
func LoadTemplates(dir string) (*Templates, error) {
	set, err := template.New("").Funcs(funcMap()).ParseFS(embeddedTemplates, "templates/*.html")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to parse built-in templates").Build()
	}

	if dir != "" {
		overrides, err := filepath.Glob(filepath.Join(dir, "*.html"))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "invalid templates directory").
				WithContext("path", dir).
				Build()
		}
		if len(overrides) > 0 {
			if set, err = set.ParseFiles(overrides...); err != nil {
				return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse templates").
					WithContext("path", dir).
					Build()
			}
		}
	}

	return &Templates{set: set}, nil
}

// Execute renders the named template into memory so a failure never leaves
// partial output behind.
func (t *Templates) Execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to execute template").
			WithContext("template", name).
			Build()
	}
	return buf.Bytes(), nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"date":       func(t time.Time) string { return t.Format(DateLayout) },
		"dateFormat": func(layout string, t time.Time) string { return t.Format(layout) },
		"iso":        func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	}
}
