package domain

import "time"

// Flash levels rendered as alert styles.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Session is the server-side state behind a browser cookie.
type Session struct {
	Token     string
	UserID    int64
	Flash     *Flash
	ExpiresAt time.Time
}

// LoggedIn reports whether a member is bound to the session.
func (s *Session) LoggedIn() bool {
	return s != nil && s.UserID > 0
}

// SignIn binds the member.
func (s *Session) SignIn(userID int64) {
	s.UserID = userID
}

// SignOut unbinds the member.
func (s *Session) SignOut() {
	s.UserID = 0
}

// SetFlash replaces any pending message.
func (s *Session) SetFlash(kind, message string) {
	s.Flash = &Flash{Type: kind, Message: message}
}

// TakeFlash returns and clears the pending message.
func (s *Session) TakeFlash() *Flash {
	f := s.Flash
	s.Flash = nil
	return f
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
