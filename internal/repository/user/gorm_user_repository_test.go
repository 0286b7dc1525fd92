package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/user"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/testutil"
)

func newUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email}
	require.NoError(t, u.HashPassword("segredo123"))
	return u
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := user.NewGormUserRepository(testutil.NewDB(t))

	created, err := repo.Create(ctx, newUser(t, "  Ana@Example.com "))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ana@example.com", created.Email)

	byEmail, err := repo.FindByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NoError(t, byID.ValidatePassword("segredo123"))
}

func TestCreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := user.NewGormUserRepository(testutil.NewDB(t))

	_, err := repo.Create(ctx, newUser(t, "ana@example.com"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser(t, "ana@example.com"))
	assert.ErrorIs(t, err, user.ErrUserAlreadyExists)
}

func TestFindMissing(t *testing.T) {
	repo := user.NewGormUserRepository(testutil.NewDB(t))
	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestCreateRejectsBadEmail(t *testing.T) {
	repo := user.NewGormUserRepository(testutil.NewDB(t))
	_, err := repo.Create(context.Background(), newUser(t, "not-an-email"))
	assert.Error(t, err)
}
