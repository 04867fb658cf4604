package userinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/Abraxas-365/quizcraft/pkg/iam/user"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// UsersTableDDL creates the table used by PostgresUserRepository.
const UsersTableDDL = `
CREATE TABLE IF NOT EXISTS users (
	id                  TEXT PRIMARY KEY,
	email               TEXT NOT NULL UNIQUE,
	name                TEXT NOT NULL DEFAULT '',
	image               TEXT NOT NULL DEFAULT '',
	password_hash       TEXT NOT NULL DEFAULT '',
	salt                TEXT NOT NULL DEFAULT '',
	provider            TEXT NOT NULL,
	email_verified      BOOLEAN NOT NULL DEFAULT FALSE,
	verify_code_hash    TEXT,
	role                TEXT NOT NULL DEFAULT 'user',
	external_billing_id TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
)`

const userColumns = `id, email, name, image, password_hash, salt, provider, email_verified,
	verify_code_hash, role, external_billing_id, created_at, updated_at`

// PostgresUserRepository is the SQL alternative to the document store.
type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

var _ user.Repository = (*PostgresUserRepository)(nil)

func (r *PostgresUserRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, UsersTableDDL); err != nil {
		return errx.Wrap(err, "failed to create users table", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound().WithDetail("email", email)
		}
		return nil, errx.Wrap(err, "failed to find user", errx.TypeInternal)
	}
	return &u, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (
		:id, :email, :name, :image, :password_hash, :salt, :provider, :email_verified,
		:verify_code_hash, :role, :external_billing_id, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, u); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return user.ErrDuplicateEmail().WithDetail("email", u.Email).WithCause(err)
		}
		return errx.Wrap(err, "failed to create user", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresUserRepository) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, email); err != nil {
		return errx.Wrap(err, "failed to delete user", errx.TypeInternal)
	}
	return nil
}

// updateStatement builds the UPDATE for a Patch. The email is always the last argument.
func updateStatement(email string, p user.Patch) (string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Image != nil {
		add("image", *p.Image)
	}
	if p.Role != nil {
		add("role", *p.Role)
	}
	if p.PasswordHash != nil {
		add("password_hash", *p.PasswordHash)
	}
	if p.Salt != nil {
		add("salt", *p.Salt)
	}
	if p.EmailVerified != nil {
		add("email_verified", *p.EmailVerified)
	}
	if p.ClearVerifyCode {
		sets = append(sets, "verify_code_hash = NULL")
	} else if p.VerifyCodeHash != nil {
		add("verify_code_hash", *p.VerifyCodeHash)
	}
	if p.ExternalBillingID != nil {
		add("external_billing_id", *p.ExternalBillingID)
	}
	if !p.UpdatedAt.IsZero() {
		add("updated_at", p.UpdatedAt)
	}
	if len(sets) == 0 {
		sets = append(sets, "email = email")
	}

	args = append(args, email)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE email = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)
	return query, args
}

func (r *PostgresUserRepository) Update(ctx context.Context, email string, patch user.Patch) (*user.User, error) {
	query, args := updateStatement(email, patch)

	var u user.User
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound().WithDetail("email", email)
		}
		return nil, errx.Wrap(err, "failed to update user", errx.TypeInternal)
	}
	return &u, nil
}

func (r *PostgresUserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
