// Package communityserver serves the community's HTML pages and its JSON
// member directory over gin.
package communityserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	accountports "github.com/Apurer/pet-community/internal/domains/accounts/ports"
	onboardingports "github.com/Apurer/pet-community/internal/domains/onboarding/ports"
	petports "github.com/Apurer/pet-community/internal/domains/pets/ports"
	userports "github.com/Apurer/pet-community/internal/domains/users/ports"
)

const (
	// DefaultAppName is shown in the page title and navigation.
	DefaultAppName = "Pet Lovers Community"
	// DefaultMaxRequestBytes bounds a whole form submission, files included.
	DefaultMaxRequestBytes int64 = 64 << 20
	// SessionCookie names the cookie carrying the session token.
	SessionCookie = "community_session"
)

// PhotoFiles resolves stored photo references to files on disk.
type PhotoFiles interface {
	Path(ref string) (string, error)
}

// Route describes a single endpoint.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// Services bundles the use cases the handlers drive.
type Services struct {
	Users      userports.Service
	Onboarding onboardingports.Service
	Pets       petports.Service
	Accounts   accountports.Service
	Photos     PhotoFiles
}

// Options tunes the transport.
type Options struct {
	AppName         string
	SessionTTL      time.Duration
	CookieSecure    bool
	MaxRequestBytes int64
	Logger          *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.AppName == "" {
		o.AppName = DefaultAppName
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 24 * time.Hour
	}
	if o.MaxRequestBytes <= 0 {
		o.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Server holds the handlers of every page and API endpoint.
type Server struct {
	svc      Services
	opts     Options
	pages    *pageSet
	sessions *sessionManager
}

// New validates the services and parses the page templates.
func New(svc Services, opts Options) (*Server, error) {
	if svc.Users == nil || svc.Onboarding == nil || svc.Pets == nil || svc.Accounts == nil || svc.Photos == nil {
		return nil, errors.New("communityserver: every service is required")
	}
	opts = opts.withDefaults()
	pages, err := parsePages(opts.AppName)
	if err != nil {
		return nil, err
	}
	return &Server{
		svc:      svc,
		opts:     opts,
		pages:    pages,
		sessions: newSessionManager(svc.Users, opts),
	}, nil
}

// NewRouter returns a new router.
func NewRouter(svc Services, opts Options) (*gin.Engine, error) {
	return NewRouterWithGinEngine(gin.Default(), svc, opts)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, svc Services, opts Options) (*gin.Engine, error) {
	s, err := New(svc, opts)
	if err != nil {
		return nil, err
	}
	s.Register(router)
	return router, nil
}

// Register mounts the photo files, the page routes behind the session
// middleware, and the JSON API.
func (s *Server) Register(router *gin.Engine) {
	router.GET("/uploads/*filepath", s.ServePhoto)
	router.NoRoute(s.NotFound)

	web := router.Group("/", s.sessions.Middleware())
	for _, route := range s.pageRoutes() {
		web.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	api := router.Group("/api/v1", s.sessions.Middleware())
	for _, route := range s.apiRoutes() {
		api.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
}

func (s *Server) pageRoutes() []Route {
	guest := s.RedirectIfLoggedIn()
	member := s.RequireLogin()
	return []Route{
		{"Welcome", http.MethodGet, "/", chain(guest, s.Welcome)},
		{"Step1", http.MethodGet, "/onboarding/step/1", chain(guest, s.ShowCredentials)},
		{"Step1Submit", http.MethodPost, "/onboarding/step/1", chain(guest, s.SubmitCredentials)},
		{"Step2", http.MethodGet, "/onboarding/step/2", chain(guest, s.gate(2), s.ShowPersonal)},
		{"Step2Submit", http.MethodPost, "/onboarding/step/2", chain(guest, s.gate(2), s.SubmitPersonal)},
		{"Step3", http.MethodGet, "/onboarding/step/3", chain(guest, s.gate(3), s.ShowProfilePhoto)},
		{"Step3Submit", http.MethodPost, "/onboarding/step/3", chain(guest, s.gate(3), s.SubmitProfilePhoto)},
		{"Step4", http.MethodGet, "/onboarding/step/4", chain(guest, s.gate(4), s.ShowPets)},
		{"Step4Submit", http.MethodPost, "/onboarding/step/4", chain(guest, s.gate(4), s.SubmitPets)},
		{"Step5", http.MethodGet, "/onboarding/step/5", chain(guest, s.gate(5), s.ShowReview)},
		{"Complete", http.MethodPost, "/onboarding/complete", chain(guest, s.CompleteOnboarding)},
		{"Login", http.MethodGet, "/login", chain(guest, s.ShowLogin)},
		{"LoginSubmit", http.MethodPost, "/login", chain(guest, s.Login)},
		{"Logout", http.MethodGet, "/logout", s.Logout},
		{"Dashboard", http.MethodGet, "/dashboard", chain(member, s.Dashboard)},
		{"EditProfile", http.MethodGet, "/profile/edit", chain(member, s.ShowEditProfile)},
		{"EditProfileSubmit", http.MethodPost, "/profile/edit", chain(member, s.EditProfile)},
		{"DeleteProfile", http.MethodGet, "/profile/delete", chain(member, s.ShowDeleteProfile)},
		{"DeleteProfileSubmit", http.MethodPost, "/profile/delete", chain(member, s.DeleteProfile)},
	}
}

func (s *Server) apiRoutes() []Route {
	member := s.RequireAPIMember()
	return []Route{
		{"ListMembers", http.MethodGet, "/members", chain(member, s.ListMembers)},
		{"ListMemberPets", http.MethodGet, "/members/:memberId/pets", chain(member, s.ListMemberPets)},
	}
}

// chain runs handlers in order until one aborts.
func chain(handlers ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range handlers {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
