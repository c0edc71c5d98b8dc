package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-community/internal/domains/users/domain"
	"github.com/Apurer/pet-community/internal/domains/users/ports"
)

type fakeUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*domain.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range f.users {
		if domain.NormalizeUsername(u.Username) == domain.NormalizeUsername(user.Username) {
			return nil, ports.ErrUsernameTaken
		}
	}
	copy := *user
	copy.ID = f.nextID
	f.nextID++
	f.users[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, ports.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if domain.NormalizeUsername(u.Username) == domain.NormalizeUsername(username) {
			copy := *u
			return &copy, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return nil, ports.ErrNotFound
	}
	copy := *user
	f.users[user.ID] = &copy
	out := copy
	return &out, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	delete(f.users, id)
	return u, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	var list []*domain.User
	for _, u := range f.users {
		copy := *u
		list = append(list, &copy)
	}
	return list, nil
}

type fakeSessionStore struct {
	sessions map[string]domain.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]domain.Session{}}
}

func (f *fakeSessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return &s, nil
}

func (f *fakeSessionStore) Save(_ context.Context, session *domain.Session) error {
	f.sessions[session.Token] = *session
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for token, s := range f.sessions {
		if s.Expired(now) {
			delete(f.sessions, token)
			n++
		}
	}
	return n, nil
}

func registeredUser(t *testing.T, username, password string) *domain.User {
	t.Helper()
	hash, err := domain.HashPassword(password)
	require.NoError(t, err)
	return &domain.User{
		Username:        username,
		PasswordHash:    hash,
		FullName:        " Alice Doe ",
		Email:           "alice@example.com",
		Phone:           "555-123-4567",
		ProfilePhotoRef: "uploads/profiles/" + username + ".png",
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(newFakeUserRepo(), newFakeSessionStore())
	ctx := context.Background()

	created, err := svc.Register(ctx, registeredUser(t, "Alice", "secret"))
	require.NoError(t, err)
	require.Equal(t, "Alice Doe", created.FullName)
	require.False(t, created.CreatedAt.IsZero())

	require.ErrorIs(t, svc.CheckUsernameAvailable(ctx, "alice"), ports.ErrUsernameTaken)
	require.NoError(t, svc.CheckUsernameAvailable(ctx, "bob"))

	user, err := svc.Authenticate(ctx, " alice ", "secret")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
}

func TestRegister_InvalidInput(t *testing.T) {
	svc := NewService(newFakeUserRepo(), newFakeSessionStore())
	u := registeredUser(t, "alice", "secret")
	u.Email = "nope"

	_, err := svc.Register(context.Background(), u)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	svc := NewService(newFakeUserRepo(), newFakeSessionStore())
	ctx := context.Background()
	_, err := svc.Register(ctx, registeredUser(t, "alice", "secret"))
	require.NoError(t, err)

	for _, tc := range []struct{ username, password string }{
		{"missing", "secret"},
		{"alice", "wrong!"},
		{"alice", ""},
		{"", "secret"},
	} {
		_, err := svc.Authenticate(ctx, tc.username, tc.password)
		require.ErrorIs(t, err, ErrAuthentication)
		require.ErrorIs(t, err, ports.ErrInvalidCredentials)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := NewService(newFakeUserRepo(), newFakeSessionStore())
	ctx := context.Background()
	created, err := svc.Register(ctx, registeredUser(t, "alice", "secret"))
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, created.ID, ports.ProfileUpdate{
		Profile:         domain.Profile{FullName: "Alice Smith", Email: "a.smith@example.com", Phone: "(555) 000-1111"},
		ProfilePhotoRef: "uploads/profiles/alice_edit.png",
	})
	require.NoError(t, err)
	require.Equal(t, "Alice Smith", updated.FullName)
	require.Equal(t, created.PasswordHash, updated.PasswordHash, "empty hash keeps the password")

	newHash, err := domain.HashPassword("another")
	require.NoError(t, err)
	_, err = svc.UpdateProfile(ctx, created.ID, ports.ProfileUpdate{Profile: updated.Profile(), PasswordHash: newHash, ProfilePhotoRef: updated.ProfilePhotoRef})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "alice", "another")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, created.ID, ports.ProfileUpdate{Profile: domain.Profile{FullName: "", Email: "a@example.com", Phone: "5551234567"}})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateProfile(ctx, 99, ports.ProfileUpdate{})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDirectory_SortedByUsernameWithoutCurrentMember(t *testing.T) {
	svc := NewService(newFakeUserRepo(), newFakeSessionStore())
	ctx := context.Background()
	var me *domain.User
	for _, name := range []string{"zed", "Bob", "me", "alice"} {
		u, err := svc.Register(ctx, registeredUser(t, name, "secret"))
		require.NoError(t, err)
		if name == "me" {
			me = u
		}
	}

	members, err := svc.Directory(ctx, me.ID)
	require.NoError(t, err)
	var names []string
	for _, m := range members {
		names = append(names, m.Username)
	}
	require.Equal(t, []string{"alice", "Bob", "zed"}, names)
}

func TestSessions(t *testing.T) {
	store := newFakeSessionStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(newFakeUserRepo(), store, WithSessionTTL(time.Hour), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	fresh, err := svc.ResumeSession(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, fresh.Token)
	require.False(t, fresh.LoggedIn())

	fresh.SignIn(3)
	fresh.SetFlash(domain.FlashSuccess, "Welcome back!")
	require.NoError(t, svc.SaveSession(ctx, fresh))
	require.Equal(t, now.Add(time.Hour), store.sessions[fresh.Token].ExpiresAt)

	resumed, err := svc.ResumeSession(ctx, fresh.Token)
	require.NoError(t, err)
	require.Equal(t, fresh.Token, resumed.Token)
	require.Equal(t, int64(3), resumed.UserID)

	unknown, err := svc.ResumeSession(ctx, "forged")
	require.NoError(t, err)
	require.NotEqual(t, "forged", unknown.Token)

	now = now.Add(2 * time.Hour)
	expired, err := svc.ResumeSession(ctx, fresh.Token)
	require.NoError(t, err)
	require.NotEqual(t, fresh.Token, expired.Token)
	require.False(t, expired.LoggedIn())
	require.NotContains(t, store.sessions, fresh.Token)

	require.NoError(t, store.Save(ctx, &domain.Session{Token: "old", ExpiresAt: now.Add(-time.Minute)}))
	purged, err := svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)

	require.NoError(t, svc.EndSession(ctx, ""))
}
