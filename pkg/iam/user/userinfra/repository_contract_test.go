package userinfra

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/Abraxas-365/quizcraft/pkg/iam"
	"github.com/Abraxas-365/quizcraft/pkg/iam/user"
	"github.com/Abraxas-365/quizcraft/pkg/ptrx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRepositoryContract exercises behaviour every adapter must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) user.Repository) {
	ctx := context.Background()
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create and find", func(t *testing.T) {
		repo := newRepo(t)
		u := user.NewUser("alice@example.com", "Alice", "", iam.ProviderEmail, now)
		u.VerifyCodeHash = ptrx.String("hash")
		require.NoError(t, repo.Create(ctx, u))

		got, err := repo.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "hash", ptrx.Value(got.VerifyCodeHash))
		assert.False(t, got.EmailVerified)
	})

	t.Run("find missing", func(t *testing.T) {
		_, err := newRepo(t).FindByEmail(ctx, "nobody@example.com")
		assert.True(t, errx.IsCode(err, user.CodeUserNotFound))
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, user.NewUser("a@example.com", "A", "", iam.ProviderEmail, now)))

		err := repo.Create(ctx, user.NewUser("a@example.com", "B", "", iam.ProviderGoogle, now))
		assert.True(t, errx.IsCode(err, user.CodeDuplicateEmail))
	})

	t.Run("update clears code", func(t *testing.T) {
		repo := newRepo(t)
		u := user.NewUser("c@example.com", "C", "", iam.ProviderEmail, now)
		u.VerifyCodeHash = ptrx.String("hash")
		require.NoError(t, repo.Create(ctx, u))

		later := now.Add(time.Minute)
		got, err := repo.Update(ctx, "c@example.com", user.Patch{
			EmailVerified:   ptrx.Bool(true),
			ClearVerifyCode: true,
			UpdatedAt:       later,
		})
		require.NoError(t, err)
		assert.True(t, got.EmailVerified)
		assert.Nil(t, got.VerifyCodeHash)
		assert.True(t, later.Equal(got.UpdatedAt))
		assert.True(t, now.Equal(got.CreatedAt))
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := newRepo(t).Update(ctx, "ghost@example.com", user.Patch{Name: ptrx.String("x")})
		assert.True(t, errx.IsCode(err, user.CodeUserNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, user.NewUser("d@example.com", "D", "", iam.ProviderEmail, now)))

		require.NoError(t, repo.DeleteByEmail(ctx, "d@example.com"))
		require.NoError(t, repo.DeleteByEmail(ctx, "d@example.com"))

		_, err := repo.FindByEmail(ctx, "d@example.com")
		assert.True(t, errx.IsCode(err, user.CodeUserNotFound))
	})

	t.Run("concurrent creates keep one record", func(t *testing.T) {
		repo := newRepo(t)

		const n = 16
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			dupes     int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.Create(ctx, user.NewUser("race@example.com", "R", "", iam.ProviderEmail, now))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errx.IsCode(err, user.CodeDuplicateEmail):
					dupes++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, n-1, dupes)
	})
}

func TestMemoryUserRepository(t *testing.T) {
	runRepositoryContract(t, func(*testing.T) user.Repository {
		return NewMemoryUserRepository()
	})
}

func TestMemoryUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Create(ctx, user.NewUser("a@example.com", "A", "", iam.ProviderEmail, time.Now())))

	got, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
}
