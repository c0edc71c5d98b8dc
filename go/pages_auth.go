package communityserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	userapp "github.com/Apurer/pet-community/internal/domains/users/application"
	userdomain "github.com/Apurer/pet-community/internal/domains/users/domain"
)

const (
	msgInvalidLogin = "Invalid username or password."
	msgWelcomeBack  = "Welcome back!"
	msgLoggedOut    = "You have been logged out."
)

type loginPage struct {
	Username string
}

// Welcome shows the landing page to guests.
func (s *Server) Welcome(c *gin.Context) {
	s.render(c, http.StatusOK, "welcome", "Welcome", nil, struct{}{})
}

func (s *Server) ShowLogin(c *gin.Context) {
	s.render(c, http.StatusOK, "login", "Login", nil, loginPage{})
}

// Login checks the credentials and binds the member to the session.
func (s *Server) Login(c *gin.Context) {
	username := c.PostForm("username")
	user, err := s.svc.Users.Authenticate(c.Request.Context(), username, c.PostForm("password"))
	switch {
	case errors.Is(err, userapp.ErrAuthentication):
		s.render(c, http.StatusUnauthorized, "login", "Login", []string{msgInvalidLogin}, loginPage{Username: username})
		return
	case err != nil:
		s.fail(c, "authenticate member failed", err)
		return
	}
	s.endOnboarding(c)
	visitOf(c).session.SignIn(user.ID)
	s.redirectWithFlash(c, userdomain.FlashSuccess, msgWelcomeBack, "/dashboard")
}

// Logout unbinds the member and drops any wizard progress.
func (s *Server) Logout(c *gin.Context) {
	s.endOnboarding(c)
	if v := visitOf(c); v != nil {
		v.session.SignOut()
	}
	s.redirectWithFlash(c, userdomain.FlashInfo, msgLoggedOut, "/login")
}
