package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var fs embed.FS

var tmpl = htmpl.Must(htmpl.ParseFS(fs, "*.tmpl"))

var subjects = map[string]string{
	"welcome":         "Welcome to Foundly!",
	"verify_email":    "Verify your email address",
	"forgot_password": "Reset your password",
}

// Render produces the subject and HTML body for a named template.
func Render(name string, data map[string]any) (subject, html string, err error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
