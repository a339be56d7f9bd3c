package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelog/internal/domain"
)

// statusFor is the single mapping from error kinds to transport codes.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {error: true, message} for err. Unclassified errors are
// logged and answered with fallback so internals never leak.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error(fallback)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":   true,
		"message": domain.MessageOf(err, fallback),
	})
}
