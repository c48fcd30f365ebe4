package pg

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/splice/internal/domain/repository"
)

type Profiles struct {
	db Querier
}

func NewProfiles(db Querier) *Profiles {
	return &Profiles{db: db}
}

func (r *Profiles) Find(ctx context.Context, userID string) (*repository.Profile, error) {
	var p repository.Profile
	err := r.db.QueryRow(ctx, `
		SELECT p.id::text, u.username, p.bio, p.avatar_url, p.updated_at
		FROM user_profiles p
		JOIN users u ON u.id = p.id
		WHERE p.id = $1::uuid`, userID,
	).Scan(&p.UserID, &p.Username, &p.Bio, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr("find profile", err)
	}
	return &p, nil
}

// UpdateTx aplica el patch; los campos nil conservan su valor (COALESCE).
func (r *Profiles) UpdateTx(ctx context.Context, tx pgx.Tx, userID string, patch repository.ProfilePatch) (repository.Profile, error) {
	var p repository.Profile
	err := tx.QueryRow(ctx, `
		UPDATE user_profiles p
		SET bio        = COALESCE($2, p.bio),
		    avatar_url = COALESCE($3, p.avatar_url),
		    updated_at = NOW()
		FROM users u
		WHERE p.id = $1::uuid AND u.id = p.id
		RETURNING p.id::text, u.username, p.bio, p.avatar_url, p.updated_at`,
		userID, patch.Bio, patch.AvatarURL,
	).Scan(&p.UserID, &p.Username, &p.Bio, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		return repository.Profile{}, mapErr("update profile", err)
	}
	return p, nil
}
