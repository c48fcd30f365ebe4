package accounts

import (
	"net/http"

	"github.com/dropDatabas3/splice/internal/commands"
	dto "github.com/dropDatabas3/splice/internal/http/dto/accounts"
	httperrors "github.com/dropDatabas3/splice/internal/http/errors"
	"github.com/dropDatabas3/splice/internal/http/helpers"
	mw "github.com/dropDatabas3/splice/internal/http/middlewares"
	svc "github.com/dropDatabas3/splice/internal/http/services/accounts"
	"github.com/dropDatabas3/splice/internal/observability/logger"
)

// ProfileController handles PUT /v1/profile. Requiere RequireAuth.
type ProfileController struct {
	service svc.ProfileService
}

func NewProfileController(service svc.ProfileService) *ProfileController {
	return &ProfileController{service: service}
}

func (c *ProfileController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ProfileController.Update"))

	userID := mw.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateProfileRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		writeError(w, err, log)
		return
	}
	if err := helpers.Validate(req); err != nil {
		writeError(w, err, log)
		return
	}

	p, err := c.service.UpdateProfile(ctx, commands.UpdateProfile{
		UserID:    userID,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		writeError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ProfileResponse{
		UserID:    p.UserID,
		Username:  p.Username,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		UpdatedAt: p.UpdatedAt,
	})
}
