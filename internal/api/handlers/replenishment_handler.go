// backend-go/internal/api/handlers/replenishment_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/service"
)

type ReplenishmentHandler struct {
	replenishment *service.ReplenishmentService
}

func NewReplenishmentHandler(replenishment *service.ReplenishmentService) *ReplenishmentHandler {
	return &ReplenishmentHandler{replenishment: replenishment}
}

// GetSuggestions computes reorder suggestions for a (store, supplier) pair.
// Products with missing inputs come back as warnings, never as a failure.
func (h *ReplenishmentHandler) GetSuggestions(c *gin.Context) {
	storeID, err := uuid.Parse(c.Query("store"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
		return
	}
	supplierID, err := uuid.Parse(c.Query("supplier"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier id"})
		return
	}

	level := domain.ServiceLevelP90
	if raw := c.Query("service_level"); raw != "" {
		parsed, ok := domain.ParseServiceLevel(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service level"})
			return
		}
		level = parsed
	}

	run, err := h.replenishment.Suggestions(c.Request.Context(), storeID, supplierID, level)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}
