// Package accounts contiene los controllers de cuentas.
package accounts

import (
	"net/http"

	"go.uber.org/zap"

	httperrors "github.com/dropDatabas3/splice/internal/http/errors"
	svc "github.com/dropDatabas3/splice/internal/http/services/accounts"
	"github.com/dropDatabas3/splice/internal/observability/logger"
)

// Controllers agrupa todos los controllers del dominio accounts.
type Controllers struct {
	Register    *RegisterController
	Login       *LoginController
	Profile     *ProfileController
	VerifyEmail *VerifyEmailController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Register:    NewRegisterController(s.Register),
		Login:       NewLoginController(s.Login),
		Profile:     NewProfileController(s.Profile),
		VerifyEmail: NewVerifyEmailController(s.VerifyEmail),
	}
}

// writeError responde el error mapeado y loguea la causa de los 5xx.
func writeError(w http.ResponseWriter, err error, log *zap.Logger) {
	appErr := httperrors.FromError(err)
	if appErr.Status >= 500 {
		log.Error("request error", logger.Err(err))
	}
	httperrors.WriteError(w, appErr)
}
