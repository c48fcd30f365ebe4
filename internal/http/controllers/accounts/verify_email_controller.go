package accounts

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/splice/internal/commands"
	dto "github.com/dropDatabas3/splice/internal/http/dto/accounts"
	httperrors "github.com/dropDatabas3/splice/internal/http/errors"
	"github.com/dropDatabas3/splice/internal/http/helpers"
	svc "github.com/dropDatabas3/splice/internal/http/services/accounts"
	"github.com/dropDatabas3/splice/internal/observability/logger"
)

// VerifyEmailController handles GET /v1/verify-email?token=...
type VerifyEmailController struct {
	service svc.VerifyEmailService
}

func NewVerifyEmailController(service svc.VerifyEmailService) *VerifyEmailController {
	return &VerifyEmailController{service: service}
}

func (c *VerifyEmailController) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("VerifyEmailController.Confirm"))

	out, err := c.service.VerifyEmail(ctx, commands.VerifyEmail{Token: r.URL.Query().Get("token")})
	switch {
	case err == nil:
	case errors.Is(err, commands.ErrTokenExpired):
		// El link venció: no es un problema de autenticación.
		httperrors.WriteError(w, httperrors.ErrGone)
		return
	case errors.Is(err, commands.ErrTokenInvalid):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("token is required"))
		return
	default:
		writeError(w, err, log)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.VerifyEmailResponse{
		UserID:          out.UserID,
		Email:           out.Email,
		Verified:        true,
		AlreadyVerified: out.AlreadyVerified,
	})
}
