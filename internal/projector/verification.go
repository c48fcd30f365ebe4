package projector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/splice/internal/domain/events"
	"github.com/dropDatabas3/splice/internal/email"
	"github.com/dropDatabas3/splice/internal/eventlog"
	"github.com/dropDatabas3/splice/internal/observability/logger"
	"github.com/dropDatabas3/splice/internal/security/token"
)

// VerificationName es el nombre (y la clave de checkpoint) de la proyección.
const VerificationName = "verification-email"

// VerificationConfig configura el email de verificación.
type VerificationConfig struct {
	AppName string
	// BaseURL es el origen público; el link es BaseURL + "/v1/verify-email?token=...".
	BaseURL string
	TTL     time.Duration
}

// Verification envía el email de verificación por cada UserRegistered y
// registra VerificationEmailSent o VerificationEmailFailed.
type Verification struct {
	cfg       VerificationConfig
	reader    eventlog.Reader
	sender    email.Sender
	templates *email.Templates
	newToken  func() (plain, hash string, err error)
	now       func() time.Time
}

func NewVerification(cfg VerificationConfig, reader eventlog.Reader, sender email.Sender, tpl *email.Templates) *Verification {
	if cfg.AppName == "" {
		cfg.AppName = "Splice API"
	}
	return &Verification{
		cfg:       cfg,
		reader:    reader,
		sender:    sender,
		templates: tpl,
		newToken:  token.NewVerification,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (v *Verification) Name() string { return VerificationName }

func (v *Verification) Filter() eventlog.Query { return events.RegistrationsQuery() }

func (v *Verification) Handle(ctx context.Context, ev eventlog.Event) ([]eventlog.Draft, error) {
	log := logger.From(ctx).With(
		logger.Component("projector.verification"),
		logger.EventID(ev.ID),
	)

	// Marcador de idempotencia: si ya hay un resultado para este evento, no reenviar.
	prior, err := v.reader.Query(ctx, events.VerificationOutcomeQuery(ev.ID))
	if err != nil {
		return nil, fmt.Errorf("check verification outcome: %w", err)
	}
	if len(prior) > 0 {
		log.Debug("verification already recorded", logger.Count(len(prior)))
		return nil, nil
	}

	reg, err := eventlog.PayloadAs[events.UserRegistered](ev)
	if err != nil {
		// Payload ilegible: reintentar no cambia nada, queda registrado como fallo.
		log.Error("undecodable registration event", logger.Err(err))
		userID, _ := ev.TagValue(events.KeyUserID)
		mail, _ := ev.TagValue(events.KeyEmail)
		return failedDraft(ev.ID, userID, mail, fmt.Errorf("decode payload: %w", err))
	}

	plain, hash, err := v.newToken()
	if err != nil {
		return nil, fmt.Errorf("verification token: %w", err)
	}

	msg, err := v.templates.Verification(reg.Email, email.VerifyVars{
		AppName:  v.cfg.AppName,
		Username: reg.Username,
		Link:     v.link(plain),
		TTL:      v.cfg.TTL.String(),
	})
	if err == nil {
		err = v.sender.Send(ctx, msg)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				// Shutdown: reintentar en el próximo arranque.
				return nil, err
			}
		}
		log.Warn("verification email failed", logger.UserID(reg.UserID), logger.Err(err))
		return failedDraft(ev.ID, reg.UserID, reg.Email, err)
	}

	sent := events.VerificationEmailSent{
		UserID:      reg.UserID,
		Email:       reg.Email,
		SourceEvent: ev.ID,
		SentAt:      v.now(),
	}
	d, err := eventlog.NewDraft(sent, events.VerificationSentTags(sent, hash)...)
	if err != nil {
		return nil, err
	}
	log.Info("verification email sent", logger.UserID(reg.UserID))
	return []eventlog.Draft{d}, nil
}

func failedDraft(source, userID, mail string, cause error) ([]eventlog.Draft, error) {
	failed := events.VerificationEmailFailed{
		UserID:      userID,
		Email:       mail,
		SourceEvent: source,
		Error:       cause.Error(),
	}
	d, err := eventlog.NewDraft(failed, events.VerificationFailedTags(failed)...)
	if err != nil {
		return nil, err
	}
	return []eventlog.Draft{d}, nil
}

func (v *Verification) link(plain string) string {
	return strings.TrimRight(v.cfg.BaseURL, "/") + "/v1/verify-email?token=" + url.QueryEscape(plain)
}
