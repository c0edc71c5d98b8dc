package communityserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	userports "github.com/Apurer/pet-community/internal/domains/users/ports"
	apierrors "github.com/Apurer/pet-community/internal/shared/errors"
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondError answers with the problem matching status.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	case http.StatusUnauthorized:
		problem = apierrors.ErrUnauthorized.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	respondProblem(c, problem)
}

// respondMemberError maps member lookups onto problems. Unexpected errors
// are logged and answered without their cause.
func (s *Server) respondMemberError(c *gin.Context, memberID int64, err error) {
	if errors.Is(err, userports.ErrNotFound) {
		respondProblem(c, apierrors.NewNotFoundProblem("member", memberID))
		return
	}
	s.opts.Logger.ErrorContext(c.Request.Context(), "member directory request failed",
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	respondProblem(c, apierrors.ProblemFor(err))
}
