//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Apurer/pet-community/internal/domains/pets/domain"
	"github.com/Apurer/pet-community/internal/platform/migrations"
	platformpostgres "github.com/Apurer/pet-community/internal/platform/postgres"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("community_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func TestPostgresRepository_CreateReplaceDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.CreateForOwner(ctx, 1, []domain.Details{
		{Name: "Rex", Breed: "Lab", Age: 3, PhotoRef: "uploads/pets/rex.png"},
		{Name: "Tom", Breed: "Cat", Age: 2, PhotoRef: "uploads/pets/tom.png"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotZero(t, created[0].ID)

	_, err = repo.CreateForOwner(ctx, 2, []domain.Details{{Name: "Bo", Breed: "Pug", Age: 1, PhotoRef: "uploads/pets/bo.png"}})
	require.NoError(t, err)

	replaced, err := repo.ReplaceForOwner(ctx, 1, []domain.Details{{Name: "Kit", Breed: "Cat", Age: 1, PhotoRef: "uploads/pets/kit.png"}})
	require.NoError(t, err)
	require.Len(t, replaced, 1)
	assert.Greater(t, replaced[0].ID, created[1].ID)

	mine, err := repo.ListByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Kit", mine[0].Name)

	deleted, err := repo.DeleteByOwner(ctx, 2)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, "uploads/pets/bo.png", deleted[0].PhotoRef)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
