package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/pet-community/internal/domains/users/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore abstracts session persistence keyed by token.
type SessionStore interface {
	Get(ctx context.Context, token string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, token string) error
	// PurgeExpired removes sessions that expired before now and reports how
	// many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
