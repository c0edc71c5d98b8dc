package flatfile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-community/internal/domains/users/domain"
	"github.com/Apurer/pet-community/internal/domains/users/ports"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "users.csv"))
	require.NoError(t, err)
	return repo
}

func member(username string) *domain.User {
	return &domain.User{
		Username:        username,
		PasswordHash:    "$2a$10$hash",
		FullName:        "Ann Example",
		Email:           "ann@example.com",
		Phone:           "555-123-4567",
		ProfilePhotoRef: "uploads/profiles/" + username + ".png",
		CreatedAt:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRepository_CreateAndLookup(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	ann, err := repo.Create(ctx, member("Ann"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), ann.ID)
	bob, err := repo.Create(ctx, member("bob"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob.ID)

	_, err = repo.Create(ctx, member("ANN"))
	require.ErrorIs(t, err, ports.ErrUsernameTaken)

	got, err := repo.GetByUsername(ctx, "  ann ")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Username)
	assert.True(t, got.CreatedAt.Equal(ann.CreatedAt))

	got, err = repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	_, err = repo.GetByID(ctx, 9)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UpdateKeepsIdentity(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	ann, err := repo.Create(ctx, member("ann"))
	require.NoError(t, err)

	edit := *ann
	edit.Username = "renamed"
	edit.FullName = "Ann Other"
	edit.ProfilePhotoRef = "uploads/profiles/new.png"
	updated, err := repo.Update(ctx, &edit)
	require.NoError(t, err)
	assert.Equal(t, "ann", updated.Username)
	assert.Equal(t, "Ann Other", updated.FullName)
	assert.Equal(t, "uploads/profiles/new.png", updated.ProfilePhotoRef)

	_, err = repo.Update(ctx, &domain.User{ID: 42})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DeleteReturnsRecord(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	_, err := repo.Create(ctx, member("ann"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, member("bob"))
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "uploads/profiles/ann.png", deleted.ProfilePhotoRef)

	_, err = repo.Delete(ctx, 1)
	require.ErrorIs(t, err, ports.ErrNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "bob", all[0].Username)

	carl, err := repo.Create(ctx, member("carl"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), carl.ID)
}

func TestRepository_DeletedIDsAreNotReissued(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	repo, err := NewRepository(path)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = repo.Create(ctx, member("ann"))
	require.NoError(t, err)
	bob, err := repo.Create(ctx, member("bob"))
	require.NoError(t, err)
	_, err = repo.Delete(ctx, bob.ID)
	require.NoError(t, err)

	again, err := NewRepository(path)
	require.NoError(t, err)
	carol, err := again.Create(ctx, member("carol"))
	require.NoError(t, err)
	assert.Equal(t, bob.ID+1, carol.ID)
}
