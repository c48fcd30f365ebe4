package accounts

import (
	"net/http"

	"github.com/dropDatabas3/splice/internal/commands"
	dto "github.com/dropDatabas3/splice/internal/http/dto/accounts"
	"github.com/dropDatabas3/splice/internal/http/helpers"
	svc "github.com/dropDatabas3/splice/internal/http/services/accounts"
	"github.com/dropDatabas3/splice/internal/observability/logger"
)

// RegisterController handles POST /v1/register.
type RegisterController struct {
	service svc.RegisterService
}

func NewRegisterController(service svc.RegisterService) *RegisterController {
	return &RegisterController{service: service}
}

func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	var req dto.RegisterRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		writeError(w, err, log)
		return
	}
	if err := helpers.Validate(req); err != nil {
		writeError(w, err, log)
		return
	}

	out, err := c.service.Register(ctx, commands.RegisterUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err, log)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.RegisterResponse{
		ID:        out.ID,
		Username:  out.Username,
		Email:     out.Email,
		CreatedAt: out.CreatedAt,
	})
}
