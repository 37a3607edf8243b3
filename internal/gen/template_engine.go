package gen

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"strconv"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// TemplateEngine renders the method templates of the generators
type TemplateEngine struct {
	templates *template.Template
}

var templateFuncs = template.FuncMap{
	"quote": strconv.Quote,
	"join":  strings.Join,
	"lower": strings.ToLower,
	"quoteList": func(list []string) string {
		quoted := make([]string, len(list))
		for i, s := range list {
			quoted[i] = strconv.Quote(s)
		}
		return strings.Join(quoted, ", ")
	},
}

// NewTemplateEngine creates a new template engine
func NewTemplateEngine() (*TemplateEngine, error) {
	tmpl, err := template.New("gen").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &TemplateEngine{
		templates: tmpl,
	}, nil
}

var (
	engineOnce sync.Once
	engine     *TemplateEngine
	engineErr  error
)

func defaultTemplateEngine() (*TemplateEngine, error) {
	engineOnce.Do(func() {
		engine, engineErr = NewTemplateEngine()
	})
	return engine, engineErr
}

// GenerateNodeFunction renders one named method template
func (e *TemplateEngine) GenerateNodeFunction(templateName string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

// FormatFile formats a complete Go source file. On failure the raw source is
// returned together with the error.
func FormatFile(src []byte) ([]byte, error) {
	formatted, err := format.Source(src)
	if err != nil {
		return src, fmt.Errorf("failed to format generated code: %w (raw output available)", err)
	}
	return formatted, nil
}
