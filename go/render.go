package communityserver

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	petmapper "github.com/Apurer/pet-community/internal/domains/pets/adapters/http/mapper"
	userdomain "github.com/Apurer/pet-community/internal/domains/users/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const msgSomethingWrong = "Something went wrong. Please try again."

var pageNames = []string{
	"welcome",
	"login",
	"step1",
	"step2",
	"step3",
	"step4",
	"step5",
	"dashboard",
	"edit_profile",
	"delete_profile",
	"error",
}

type pageSet struct {
	pages map[string]*template.Template
}

// view is what the layout renders around every page.
type view struct {
	Title    string
	LoggedIn bool
	Flash    *userdomain.Flash
	Errors   []string
	Data     any
}

func parsePages(appName string) (*pageSet, error) {
	funcs := template.FuncMap{
		"appName":  func() string { return appName },
		"photoURL": petmapper.PhotoURL,
		"inc":      func(i int) int { return i + 1 },
	}
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/pet_rows.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	set := &pageSet{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		page, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := page.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		set.pages[name] = page
	}
	return set, nil
}

// render consumes the pending flash, saves the session and writes the page.
func (s *Server) render(c *gin.Context, status int, name, title string, errs []string, data any) {
	page := view{Title: title, Errors: errs, Data: data}
	if v := visitOf(c); v != nil {
		page.LoggedIn = v.loggedIn()
		page.Flash = v.session.TakeFlash()
		s.sessions.save(c.Request.Context(), v)
	}
	tmpl, ok := s.pages.pages[name]
	if !ok {
		c.String(http.StatusInternalServerError, msgSomethingWrong)
		return
	}
	c.Render(status, render.HTML{Template: tmpl, Name: "layout", Data: page})
}

// fail logs err and shows the generic error page.
func (s *Server) fail(c *gin.Context, msg string, err error) {
	s.opts.Logger.ErrorContext(c.Request.Context(), msg,
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	s.render(c, http.StatusInternalServerError, "error", "Error", []string{msgSomethingWrong}, nil)
	c.Abort()
}

// NotFound renders the page for unknown routes.
func (s *Server) NotFound(c *gin.Context) {
	s.render(c, http.StatusNotFound, "error", "Not Found", []string{"The page you requested does not exist."}, nil)
}
