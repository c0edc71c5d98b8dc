package communityserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	userdomain "github.com/Apurer/pet-community/internal/domains/users/domain"
	userports "github.com/Apurer/pet-community/internal/domains/users/ports"
)

const visitKey = "communityserver.visit"

const (
	msgPleaseLogIn    = "Please log in first."
	msgSessionExpired = "Your session expired. Please log in again."
)

// visit is the session state of one request.
type visit struct {
	session *userdomain.Session
	// user is set when the session is bound to an existing member.
	user *userdomain.User
	// stale means the session named a member that no longer exists.
	stale bool
	saved bool
}

func (v *visit) loggedIn() bool {
	return v != nil && v.user != nil
}

func (v *visit) flash(kind, message string) {
	v.session.SetFlash(kind, message)
}

type sessionManager struct {
	users  userports.Service
	opts   Options
	logger *slog.Logger
}

func newSessionManager(users userports.Service, opts Options) *sessionManager {
	return &sessionManager{users: users, opts: opts, logger: opts.Logger}
}

// Middleware resumes the visitor's session, refreshes the cookie and saves
// the session after the handler unless the handler already did.
func (m *sessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token, _ := c.Cookie(SessionCookie)
		session, err := m.users.ResumeSession(ctx, token)
		if err != nil {
			m.logger.ErrorContext(ctx, "resume session failed", slog.String("error", err.Error()))
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		v := &visit{session: session}
		if session.LoggedIn() {
			user, err := m.users.GetByID(ctx, session.UserID)
			switch {
			case err == nil:
				v.user = user
			case errors.Is(err, userports.ErrNotFound):
				v.stale = true
				session.SignOut()
			default:
				m.logger.ErrorContext(ctx, "load session member failed", slog.Int64("user_id", session.UserID), slog.String("error", err.Error()))
				c.AbortWithStatus(http.StatusServiceUnavailable)
				return
			}
		}
		m.setCookie(c, session.Token)
		c.Set(visitKey, v)
		c.Next()
		if !v.saved {
			m.save(ctx, v)
		}
	}
}

func (m *sessionManager) setCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(m.opts.SessionTTL.Seconds()), "/", "", m.opts.CookieSecure, true)
}

func (m *sessionManager) save(ctx context.Context, v *visit) {
	if v == nil || v.session == nil {
		return
	}
	v.saved = true
	if err := m.users.SaveSession(ctx, v.session); err != nil {
		m.logger.ErrorContext(ctx, "save session failed", slog.String("error", err.Error()))
	}
}

func visitOf(c *gin.Context) *visit {
	if value, ok := c.Get(visitKey); ok {
		if v, ok := value.(*visit); ok {
			return v
		}
	}
	return nil
}

// draftKey is the key the visitor's wizard progress is stored under.
func draftKey(c *gin.Context) string {
	if v := visitOf(c); v != nil && v.session != nil {
		return v.session.Token
	}
	return ""
}

// redirect saves the session before answering so the next request sees
// any flash or login change.
func (s *Server) redirect(c *gin.Context, location string) {
	s.sessions.save(c.Request.Context(), visitOf(c))
	c.Redirect(http.StatusSeeOther, location)
	c.Abort()
}

func (s *Server) redirectWithFlash(c *gin.Context, kind, message, location string) {
	if v := visitOf(c); v != nil {
		v.flash(kind, message)
	}
	s.redirect(c, location)
}

// RedirectIfLoggedIn sends members away from guest-only pages.
func (s *Server) RedirectIfLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if visitOf(c).loggedIn() {
			s.redirect(c, "/dashboard")
		}
	}
}

// RequireLogin sends guests to the login page. A session whose member was
// deleted is signed out with its own message.
func (s *Server) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v := visitOf(c)
		switch {
		case v.loggedIn():
		case v != nil && v.stale:
			s.endOnboarding(c)
			s.redirectWithFlash(c, userdomain.FlashWarning, msgSessionExpired, "/login")
		default:
			s.redirectWithFlash(c, userdomain.FlashWarning, msgPleaseLogIn, "/login")
		}
	}
}

// RequireAPIMember answers guests with a 401 problem.
func (s *Server) RequireAPIMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !visitOf(c).loggedIn() {
			respondError(c, http.StatusUnauthorized, errors.New("log in to browse the member directory"))
			c.Abort()
		}
	}
}

// endOnboarding drops any wizard progress bound to the session.
func (s *Server) endOnboarding(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.svc.Onboarding.Discard(ctx, draftKey(c)); err != nil {
		s.opts.Logger.WarnContext(ctx, "discard onboarding draft failed", slog.String("error", err.Error()))
	}
}
