package commands

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/splice/internal/domain/repository"
)

// UpdateProfile aplica un patch parcial: los campos nil no se tocan.
type UpdateProfile struct {
	UserID    string
	Bio       *string
	AvatarURL *string
}

type UpdateProfilePorts struct {
	FindProfile   FindProfileFunc
	UpdateProfile UpdateProfileFunc
}

func UpdateUserProfile(ctx context.Context, cmd UpdateProfile, p UpdateProfilePorts) (repository.Profile, error) {
	if err := required("user_id", cmd.UserID); err != nil {
		return repository.Profile{}, err
	}

	current, err := p.FindProfile(ctx, cmd.UserID)
	if err != nil && !absent(err) {
		return repository.Profile{}, fmt.Errorf("update profile: find: %w", err)
	}
	if err != nil || current == nil {
		return repository.Profile{}, fmt.Errorf("%w: profile %s", ErrNotFound, cmd.UserID)
	}

	patch := repository.ProfilePatch{Bio: cmd.Bio, AvatarURL: cmd.AvatarURL}
	if patch.Empty() {
		return *current, nil
	}

	updated, err := p.UpdateProfile(ctx, cmd.UserID, patch)
	if err != nil {
		if absent(err) {
			// Borrado entre la lectura y la escritura.
			return repository.Profile{}, fmt.Errorf("%w: profile %s", ErrNotFound, cmd.UserID)
		}
		return repository.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}
