package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// Respond writes the problem, defaulting its instance to the request path.
func Respond(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// ProblemFor classifies err: a ProblemDetail is kept, a rejected form
// becomes a validation problem, anything else an internal error without
// its cause.
func ProblemFor(err error) ProblemDetail {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return NewValidationProblem(v)
	}
	return ErrInternal
}
