package web

import (
	"log/slog"

	accountobs "github.com/Apurer/pet-community/internal/domains/accounts/adapters/observability"
	accountapp "github.com/Apurer/pet-community/internal/domains/accounts/application"
	accountports "github.com/Apurer/pet-community/internal/domains/accounts/ports"
	onboardingobs "github.com/Apurer/pet-community/internal/domains/onboarding/adapters/observability"
	onboardingapp "github.com/Apurer/pet-community/internal/domains/onboarding/application"
	onboardingports "github.com/Apurer/pet-community/internal/domains/onboarding/ports"
	petobs "github.com/Apurer/pet-community/internal/domains/pets/adapters/observability"
	petapp "github.com/Apurer/pet-community/internal/domains/pets/application"
	petports "github.com/Apurer/pet-community/internal/domains/pets/ports"
	userobs "github.com/Apurer/pet-community/internal/domains/users/adapters/observability"
	userapp "github.com/Apurer/pet-community/internal/domains/users/application"
	userports "github.com/Apurer/pet-community/internal/domains/users/ports"
	platformobservability "github.com/Apurer/pet-community/internal/platform/observability"
	"github.com/Apurer/pet-community/internal/platform/uploads"
)

// Services are the instrumented use cases shared by the web process and the
// deletion worker.
type Services struct {
	Users      userports.Service
	Pets       petports.Service
	Onboarding onboardingports.Service
	Deletion   *accountapp.DeletionSteps
	Photos     *uploads.Store

	instruments *platformobservability.Instruments
}

// NewServices wraps every application service in its observability
// decorator.
func NewServices(cfg Config, stores *Stores, photos *uploads.Store, instruments *platformobservability.Instruments) *Services {
	logger := instruments.Logger
	users := userobs.New(
		userapp.NewService(stores.Users, stores.Sessions, userapp.WithSessionTTL(cfg.SessionTTL())),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	pets := petobs.New(
		petapp.NewService(stores.Pets, photos),
		petobs.WithLogger(logger),
		petobs.WithTracer(instruments.Tracer("internal.pets.application")),
		petobs.WithMeter(instruments.Meter("internal.pets.application")),
	)
	onboarding := onboardingobs.New(
		onboardingapp.NewService(stores.Drafts, users, pets, photos),
		onboardingobs.WithLogger(logger),
		onboardingobs.WithTracer(instruments.Tracer("internal.onboarding.application")),
		onboardingobs.WithMeter(instruments.Meter("internal.onboarding.application")),
	)
	return &Services{
		Users:       users,
		Pets:        pets,
		Onboarding:  onboarding,
		Deletion:    accountapp.NewDeletionSteps(users, pets),
		Photos:      photos,
		instruments: instruments,
	}
}

// Accounts builds the account service on top of the given deletion
// orchestrator.
func (s *Services) Accounts(deletions accountports.DeletionOrchestrator) accountports.Service {
	return accountobs.New(
		accountapp.NewService(s.Users, s.Pets, s.Photos, deletions),
		accountobs.WithLogger(s.logger()),
		accountobs.WithTracer(s.instruments.Tracer("internal.accounts.application")),
		accountobs.WithMeter(s.instruments.Meter("internal.accounts.application")),
	)
}

func (s *Services) logger() *slog.Logger {
	return s.instruments.Logger
}

// OpenPhotos prepares the upload tree under the application root.
func OpenPhotos(cfg Config, logger *slog.Logger) (*uploads.Store, error) {
	return uploads.New(cfg.AppRoot, uploads.WithMaxBytes(cfg.MaxUploadBytes), uploads.WithLogger(logger))
}
