package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/pet-community/internal/domains/users/domain"
	"github.com/Apurer/pet-community/internal/domains/users/ports"
)

// DefaultSessionTTL provides the fallback TTL when none is configured.
const DefaultSessionTTL = 24 * time.Hour

// Service exposes user bounded context use cases.
type Service struct {
	repo       ports.Repository
	sessions   ports.SessionStore
	sessionTTL time.Duration
	now        func() time.Time
	newToken   func() string
}

type Option func(*Service)

// WithSessionTTL sets how long an idle session stays valid.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
		newToken:   newSessionToken,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) CheckUsernameAvailable(ctx context.Context, username string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return ports.ErrUsernameTaken
	case errors.Is(err, ports.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *Service) Register(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := *user
	clone.ApplyProfile(clone.Profile().Normalize())
	if err := clone.Validate(); err != nil {
		return nil, mapError(err)
	}
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = s.now().UTC().Truncate(time.Second)
	}
	return s.repo.Create(ctx, &clone)
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, update ports.ProfileUpdate) (*domain.User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.ApplyProfile(update.Profile.Normalize())
	existing.ProfilePhotoRef = strings.TrimSpace(update.ProfilePhotoRef)
	if update.PasswordHash != "" {
		existing.PasswordHash = update.PasswordHash
	}
	if err := existing.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Update(ctx, existing)
}

func (s *Service) Delete(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Directory(ctx context.Context, excludeID int64) ([]*domain.User, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	members := make([]*domain.User, 0, len(all))
	for _, u := range all {
		if u.ID != excludeID {
			members = append(members, u)
		}
	}
	sort.SliceStable(members, func(i, j int) bool {
		return domain.NormalizeUsername(members[i].Username) < domain.NormalizeUsername(members[j].Username)
	})
	return members, nil
}

func (s *Service) ResumeSession(ctx context.Context, token string) (*domain.Session, error) {
	token = strings.TrimSpace(token)
	if token != "" {
		session, err := s.sessions.Get(ctx, token)
		switch {
		case err == nil && !session.Expired(s.now()):
			return session, nil
		case err == nil:
			_ = s.sessions.Delete(ctx, token)
		case !errors.Is(err, ports.ErrSessionNotFound):
			return nil, err
		}
	}
	return &domain.Session{Token: s.newToken(), ExpiresAt: s.now().Add(s.sessionTTL)}, nil
}

// SaveSession slides the expiry forward and persists the session.
func (s *Service) SaveSession(ctx context.Context, session *domain.Session) error {
	if session == nil || session.Token == "" {
		return errors.New("session token is required")
	}
	session.ExpiresAt = s.now().Add(s.sessionTTL)
	return s.sessions.Save(ctx, session)
}

func (s *Service) EndSession(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.PurgeExpired(ctx, s.now())
}

func newSessionToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

var _ ports.Service = (*Service)(nil)
