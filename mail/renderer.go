package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns a Message into an HTML body.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the built-in templates. Each file under templates/ is
// addressable by its base name without extension.
func NewRenderer() (*Renderer, error) {
	return NewRendererFS(templateFS, "templates/*.html")
}

// NewRendererFS parses templates from any filesystem, for deployments that
// ship their own branding.
func NewRendererFS(fsys fs.FS, pattern string) (*Renderer, error) {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob mail templates: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no mail templates match %q", pattern)
	}

	root := template.New("")
	for _, path := range matches {
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read mail template %s: %w", path, err)
		}
		name := templateName(path)
		if _, err := root.New(name).Parse(string(raw)); err != nil {
			return nil, fmt.Errorf("parse mail template %s: %w", name, err)
		}
	}

	return &Renderer{templates: root}, nil
}

func (r *Renderer) Render(msg Message) (string, error) {
	t := r.templates.Lookup(msg.Template)
	if t == nil {
		return "", fmt.Errorf("unknown mail template %q", msg.Template)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, msg.Data); err != nil {
		return "", fmt.Errorf("render mail template %s: %w", msg.Template, err)
	}
	return buf.String(), nil
}

func templateName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return strings.TrimSuffix(path, ".html")
}
