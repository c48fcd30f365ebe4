package accounts

import (
	"net/http"

	"github.com/dropDatabas3/splice/internal/commands"
	dto "github.com/dropDatabas3/splice/internal/http/dto/accounts"
	"github.com/dropDatabas3/splice/internal/http/helpers"
	svc "github.com/dropDatabas3/splice/internal/http/services/accounts"
	"github.com/dropDatabas3/splice/internal/observability/logger"
)

// LoginController handles POST /v1/login.
type LoginController struct {
	service svc.LoginService
}

func NewLoginController(service svc.LoginService) *LoginController {
	return &LoginController{service: service}
}

func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		writeError(w, err, log)
		return
	}
	if err := helpers.Validate(req); err != nil {
		writeError(w, err, log)
		return
	}

	out, err := c.service.Login(ctx, commands.Login{Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(w, err, log)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		Username:  out.Username,
		Token:     out.Token,
		TokenType: "Bearer",
		ExpiresAt: out.ExpiresAt,
	})
	log.Debug("login ok", logger.Username(out.Username))
}
