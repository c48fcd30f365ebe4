package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"
)

//go:embed templates/*
var templateFS embed.FS

// VerifyVars son las variables del email de verificación.
type VerifyVars struct {
	AppName  string
	Username string
	Link     string
	TTL      string
}

// Templates contiene los templates compilados.
type Templates struct {
	verifyHTML *htmltpl.Template
	verifyTXT  *texttpl.Template
}

// LoadTemplates compila los templates embebidos.
func LoadTemplates() (*Templates, error) {
	vh, err := htmltpl.ParseFS(templateFS, "templates/verify_email.html")
	if err != nil {
		return nil, fmt.Errorf("email: parse verify html: %w", err)
	}
	vt, err := texttpl.ParseFS(templateFS, "templates/verify_email.txt")
	if err != nil {
		return nil, fmt.Errorf("email: parse verify txt: %w", err)
	}
	return &Templates{verifyHTML: vh, verifyTXT: vt}, nil
}

// Verification arma el mensaje de verificación para to.
func (t *Templates) Verification(to string, vars VerifyVars) (Message, error) {
	var html, text bytes.Buffer
	if err := t.verifyHTML.Execute(&html, vars); err != nil {
		return Message{}, fmt.Errorf("email: render verify html: %w", err)
	}
	if err := t.verifyTXT.Execute(&text, vars); err != nil {
		return Message{}, fmt.Errorf("email: render verify txt: %w", err)
	}
	return Message{
		To:       to,
		Subject:  "Verify your email address for " + vars.AppName,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
