package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/pet-community/internal/domains/users/domain"
	"github.com/Apurer/pet-community/internal/domains/users/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	sessions sync.Map
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	v, ok := s.sessions.Load(token)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return cloneSession(v.(domain.Session)), nil
}

func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	s.sessions.Store(session.Token, *cloneSession(*session))
	return nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.sessions.Delete(token)
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	var purged int64
	s.sessions.Range(func(key, value any) bool {
		session := value.(domain.Session)
		if session.Expired(now) {
			s.sessions.Delete(key)
			purged++
		}
		return true
	})
	return purged, nil
}

func cloneSession(in domain.Session) *domain.Session {
	out := in
	if in.Flash != nil {
		f := *in.Flash
		out.Flash = &f
	}
	return &out
}
