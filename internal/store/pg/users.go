package pg

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/splice/internal/domain/repository"
)

// Users es el repositorio de cuentas. Las lecturas van por el pool y las
// escrituras reciben el tx del coordinador.
type Users struct {
	db Querier
}

func NewUsers(db Querier) *Users {
	return &Users{db: db}
}

const userColumns = `id::text, username, email, password_hash, email_verified, created_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.EmailVerified, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByUsernameOrEmail devuelve la cuenta que colisiona con username o email.
// Si ambos colisionan con cuentas distintas, gana la del username.
func (r *Users) FindByUsernameOrEmail(ctx context.Context, username, email string) (*repository.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 OR email = $2
		ORDER BY (username = $1) DESC
		LIMIT 1`
	u, err := scanUser(r.db.QueryRow(ctx, query, username, email))
	if err != nil {
		return nil, mapErr("find user by username or email", err)
	}
	return u, nil
}

func (r *Users) FindByUsername(ctx context.Context, username string) (*repository.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, mapErr("find user by username", err)
	}
	return u, nil
}

// IsVerified reporta si el email de la cuenta ya fue verificado.
func (r *Users) IsVerified(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT email_verified FROM users WHERE id = $1::uuid`, id).Scan(&ok)
	if err != nil {
		return false, mapErr("user verified status", err)
	}
	return ok, nil
}

// InsertTx crea la cuenta y su perfil vacío.
// Una colisión de unicidad devuelve *repository.ConflictError.
func (r *Users) InsertTx(ctx context.Context, tx pgx.Tx, u repository.User) (repository.User, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5)
		RETURNING created_at`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt,
	).Scan(&u.CreatedAt)
	if err != nil {
		return repository.User{}, mapErr("insert user", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO user_profiles (id, updated_at) VALUES ($1::uuid, $2)`,
		u.ID, u.CreatedAt,
	); err != nil {
		return repository.User{}, mapErr("insert profile", err)
	}
	return u, nil
}

// MarkVerifiedTx marca el email como verificado. Devuelve false si ya lo estaba.
func (r *Users) MarkVerifiedTx(ctx context.Context, tx pgx.Tx, id string) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE users SET email_verified = TRUE WHERE id = $1::uuid AND NOT email_verified`, id)
	if err != nil {
		return false, mapErr("mark verified", err)
	}
	return tag.RowsAffected() == 1, nil
}
