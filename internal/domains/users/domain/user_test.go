package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	got, err := ValidateUsername("  Alice_01 ")
	require.NoError(t, err)
	assert.Equal(t, "Alice_01", got)

	for _, bad := range []string{"", "ab", "this_name_is_way_too_long", "bad-name", "spa ce", "émile"} {
		_, err := ValidateUsername(bad)
		assert.ErrorIs(t, err, ErrInvalidUsername, bad)
	}
	assert.Equal(t, "alice_01", NormalizeUsername(" Alice_01 "))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret", "secret"))
	assert.ErrorIs(t, ValidatePassword("short", "short"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePassword("secret", "secreT"), ErrPasswordMismatch)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	u := &User{PasswordHash: hash}
	assert.True(t, u.CheckPassword("hunter22"))
	assert.False(t, u.CheckPassword("hunter23"))
	assert.False(t, u.CheckPassword(""))
	assert.False(t, (&User{}).CheckPassword("hunter22"))
}

func TestProfileProblems(t *testing.T) {
	p := Profile{FullName: " Ann ", Email: " ann@example.com ", Phone: " +1 (555) 123-4567 "}.Normalize()
	assert.Empty(t, p.Problems())

	bad := Profile{FullName: "", Email: "Ann <ann@example.com>", Phone: "12ab"}
	assert.Equal(t, []error{ErrEmptyFullName, ErrInvalidEmail, ErrInvalidPhone}, bad.Problems())
	assert.ErrorIs(t, bad.Validate(), ErrEmptyFullName)

	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidPhone("123456"))
	assert.True(t, ValidPhone("1234567"))
}

func TestSessionFlashIsOneShot(t *testing.T) {
	s := &Session{Token: "t"}
	assert.False(t, s.LoggedIn())
	s.SignIn(4)
	assert.True(t, s.LoggedIn())

	s.SetFlash(FlashSuccess, "Welcome back!")
	f := s.TakeFlash()
	require.NotNil(t, f)
	assert.Equal(t, "Welcome back!", f.Message)
	assert.Nil(t, s.TakeFlash())

	now := time.Now()
	s.ExpiresAt = now
	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}
