package pg

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/splice/internal/domain/repository"
)

type Logins struct{}

func NewLogins() *Logins { return &Logins{} }

func (Logins) InsertTx(ctx context.Context, tx pgx.Tx, rec repository.LoginRecord) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO user_logins (username, logged_in_at) VALUES ($1, $2)`,
		rec.Username, rec.LoggedInAt,
	)
	return mapErr("insert login", err)
}
