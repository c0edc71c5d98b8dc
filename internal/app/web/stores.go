package web

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	draftmemory "github.com/Apurer/pet-community/internal/domains/onboarding/adapters/memory"
	draftpostgres "github.com/Apurer/pet-community/internal/domains/onboarding/adapters/persistence/postgres"
	onboardingports "github.com/Apurer/pet-community/internal/domains/onboarding/ports"
	petflatfile "github.com/Apurer/pet-community/internal/domains/pets/adapters/flatfile"
	petpostgres "github.com/Apurer/pet-community/internal/domains/pets/adapters/persistence/postgres"
	petports "github.com/Apurer/pet-community/internal/domains/pets/ports"
	userflatfile "github.com/Apurer/pet-community/internal/domains/users/adapters/flatfile"
	usermemory "github.com/Apurer/pet-community/internal/domains/users/adapters/memory"
	userpostgres "github.com/Apurer/pet-community/internal/domains/users/adapters/persistence/postgres"
	userports "github.com/Apurer/pet-community/internal/domains/users/ports"
	"github.com/Apurer/pet-community/internal/platform/migrations"
	platformpostgres "github.com/Apurer/pet-community/internal/platform/postgres"
)

const (
	BackendPostgres = "postgres"
	BackendFlatFile = "flatfile"
)

// Stores holds the record stores every process persists through.
type Stores struct {
	Users    userports.Repository
	Pets     petports.Repository
	Sessions userports.SessionStore
	Drafts   onboardingports.DraftStore
	Backend  string
	close    func()
}

// Close releases the database connection, if any.
func (s *Stores) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenStores uses postgres when a DSN is configured and reachable, and the
// CSV tables under the data directory otherwise. Sessions and wizard drafts
// only outlive the process on postgres.
func OpenStores(ctx context.Context, cfg Config, logger *slog.Logger) (*Stores, error) {
	if cfg.UsePostgres() {
		db, cleanup := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
		if db != nil {
			if err := migrations.Run(db); err != nil {
				cleanup()
				return nil, fmt.Errorf("migrate postgres schema: %w", err)
			}
			logger.Info("record stores configured with postgres")
			return &Stores{
				Users:    userpostgres.NewRepository(db),
				Pets:     petpostgres.NewRepository(db),
				Sessions: userpostgres.NewSessionStore(db),
				Drafts:   draftpostgres.NewDraftStore(db),
				Backend:  BackendPostgres,
				close:    cleanup,
			}, nil
		}
	}
	users, err := userflatfile.NewRepository(filepath.Join(cfg.DataDir(), "users.csv"))
	if err != nil {
		return nil, fmt.Errorf("open users table: %w", err)
	}
	pets, err := petflatfile.NewRepository(filepath.Join(cfg.DataDir(), "pets.csv"))
	if err != nil {
		return nil, fmt.Errorf("open pets table: %w", err)
	}
	logger.Info("record stores configured with flat-file tables", slog.String("dir", cfg.DataDir()))
	return &Stores{
		Users:    users,
		Pets:     pets,
		Sessions: usermemory.NewSessionStore(),
		Drafts:   draftmemory.NewDraftStore(),
		Backend:  BackendFlatFile,
	}, nil
}
