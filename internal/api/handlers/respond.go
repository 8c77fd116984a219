// backend-go/internal/api/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

// actorHeader carries the already-authenticated caller identity. The engine
// stamps it on approvals and audit events but never authenticates itself.
const actorHeader = "X-Actor"

func actorFrom(c *gin.Context) string {
	if actor := c.GetHeader(actorHeader); actor != "" {
		return actor
	}
	return "system"
}

// respondError maps domain failures onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrMinimumOrderUnreachable):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientAvailable),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderLocked),
		errors.Is(err, domain.ErrDuplicateOrderNumber),
		errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
