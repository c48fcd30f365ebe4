// Package email envía los emails transaccionales (verificación de cuenta).
//
// Sender tiene dos implementaciones: SMTPSender (go-mail) para producción y
// LogSender, que sólo registra el mensaje, para desarrollo y tests.
package email

import (
	"context"
	"errors"
)

// ErrNoRecipient indica un mensaje sin destinatario.
var ErrNoRecipient = errors.New("email: missing recipient")

// Message es un email multipart (texto + HTML).
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender es la interfaz para enviar emails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
