package email

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/pkg/errors"
)

// Template is a string-based enum naming email templates.
type Template string

const (
	// TemplateContact corresponds to templates/contact.{html,txt}
	TemplateContact Template = "contact"
)

// Mode selects which representation of an email body to render.
type Mode string

const (
	// ModeHTML renders markup; every interpolated value is HTML escaped.
	ModeHTML Mode = "html"

	// ModeText renders the plain-text fallback without escaping.
	ModeText Mode = "text"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

// Render executes template name in the given mode against data.
//
// Both modes receive the same data value, so the HTML and text bodies of
// an email carry the same content and differ only in markup and escaping.
func Render(mode Mode, name Template, data any) (string, error) {
	var body bytes.Buffer

	switch mode {
	case ModeHTML:
		if err := htmlTemplates.ExecuteTemplate(&body, string(name)+".html", data); err != nil {
			return "", errors.Wrapf(err, "failed to execute html email template %s", name)
		}
		return body.String(), nil

	case ModeText:
		if err := textTemplates.ExecuteTemplate(&body, string(name)+".txt", data); err != nil {
			return "", errors.Wrapf(err, "failed to execute text email template %s", name)
		}
		return strings.TrimSpace(body.String()), nil

	default:
		return "", errors.Errorf("unknown render mode %q", mode)
	}
}
