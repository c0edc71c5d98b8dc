package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/pet-community/internal/domains/onboarding/domain"
)

var ErrDraftNotFound = errors.New("onboarding draft not found")

// DraftStore keeps one wizard draft per browser session token.
type DraftStore interface {
	Get(ctx context.Context, key string) (*domain.Draft, error)
	Save(ctx context.Context, key string, draft *domain.Draft) error
	Delete(ctx context.Context, key string) error
	// PurgeStale removes drafts last saved before cutoff.
	PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}
