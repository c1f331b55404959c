package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "studytrack/internal/platform/errors"
)

// StatusFor maps application sentinels onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrUnknownSubject):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrTransitionInFlight),
		errors.Is(err, apperrors.ErrNotRunning),
		errors.Is(err, apperrors.ErrAlreadyRunning),
		errors.Is(err, apperrors.ErrNothingToResume):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func WriteError(c *gin.Context, err error) {
	c.JSON(StatusFor(err), gin.H{"error": err.Error()})
}

// NewRouter returns a gin engine with recovery and the given route groups attached under /api.
func NewRouter(registrars ...func(gin.IRouter)) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	api := router.Group("/api")
	for _, register := range registrars {
		register(api)
	}
	return router
}
