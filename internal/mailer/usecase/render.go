package usecase

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"edwin/internal/mailer/domain/model"
	apperrors "edwin/internal/shared/errors"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`[ \t]*\n[ \t\n]*`)
)

// parseTemplate validates an html/template body.
func parseTemplate(name, body string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(body)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid template body").WithDetail("htmlBody", err.Error())
	}
	return t, nil
}

// render executes t and derives a plain-text alternative from the HTML.
func render(t *template.Template, data model.TemplateData) (html, text string, err error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", err
	}
	html = buf.String()
	return html, plainText(html), nil
}

func plainText(html string) string {
	s := tagPattern.ReplaceAllString(html, "")
	s = spacePattern.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
