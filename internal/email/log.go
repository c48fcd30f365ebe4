package email

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dropDatabas3/splice/internal/observability/logger"
)

// LogSender no envía nada: registra el mensaje y lo guarda en memoria.
type LogSender struct {
	mu   sync.Mutex
	sent []Message
}

func NewLogSender() *LogSender { return &LogSender{} }

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()

	logger.From(ctx).Info("email (log sender)",
		logger.Component("email.log"),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.TextBody),
	)
	return nil
}

// Sent devuelve una copia de los mensajes registrados.
func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
