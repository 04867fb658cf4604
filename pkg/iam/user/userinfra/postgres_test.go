package userinfra

import (
	"context"
	"os"
	"testing"

	"github.com/Abraxas-365/quizcraft/pkg/iam/user"
	"github.com/Abraxas-365/quizcraft/pkg/ptrx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStatement(t *testing.T) {
	query, args := updateStatement("a@example.com", user.Patch{
		Name:            ptrx.String("A"),
		EmailVerified:   ptrx.Bool(true),
		ClearVerifyCode: true,
	})

	assert.Contains(t, query, "name = $1")
	assert.Contains(t, query, "email_verified = $2")
	assert.Contains(t, query, "verify_code_hash = NULL")
	assert.Contains(t, query, "WHERE email = $3")
	assert.Equal(t, []any{"A", true, "a@example.com"}, args)
}

func TestUpdateStatement_EmptyPatch(t *testing.T) {
	query, args := updateStatement("a@example.com", user.Patch{})

	assert.Contains(t, query, "SET email = email WHERE email = $1")
	assert.Equal(t, []any{"a@example.com"}, args)
}

func TestPostgresUserRepository(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	ctx := context.Background()
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	runRepositoryContract(t, func(t *testing.T) user.Repository {
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS users`)
		require.NoError(t, err)
		repo := NewPostgresUserRepository(db)
		require.NoError(t, repo.EnsureSchema(ctx))
		return repo
	})
}
