// backend-go/internal/api/handlers/inventory_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/ledger"
	"github.com/andresuchdata/replenish/backend-go/internal/service"
)

type InventoryHandler struct {
	ledger        *ledger.Ledger
	replenishment *service.ReplenishmentService
}

func NewInventoryHandler(stockLedger *ledger.Ledger, replenishment *service.ReplenishmentService) *InventoryHandler {
	return &InventoryHandler{ledger: stockLedger, replenishment: replenishment}
}

// invalidateSuggestions drops cached reorder runs after a stock mutation so
// the next suggestion read reflects the new position.
func (h *InventoryHandler) invalidateSuggestions(c *gin.Context, storeID uuid.UUID) {
	if h.replenishment != nil {
		h.replenishment.InvalidateStore(c.Request.Context(), storeID)
	}
}

type recordChangeRequest struct {
	StoreID        uuid.UUID `json:"store_id" binding:"required"`
	ProductID      uuid.UUID `json:"product_id" binding:"required"`
	Delta          int       `json:"delta"`
	Reason         string    `json:"reason" binding:"required"`
	IdempotencyKey string    `json:"idempotency_key"`
}

// RecordChange appends an inventory movement. Replays with a known
// idempotency key return the previously produced snapshot.
func (h *InventoryHandler) RecordChange(c *gin.Context) {
	var req recordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snapshot, err := h.ledger.RecordChange(c.Request.Context(), ledger.ChangeInput{
		StoreID:        req.StoreID,
		ProductID:      req.ProductID,
		Delta:          req.Delta,
		Reason:         req.Reason,
		IdempotencyKey: req.IdempotencyKey,
		Actor:          actorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateSuggestions(c, req.StoreID)
	c.JSON(http.StatusCreated, snapshot)
}

type reservationRequest struct {
	StoreID   uuid.UUID `json:"store_id" binding:"required"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
}

// Reserve earmarks available stock.
func (h *InventoryHandler) Reserve(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snapshot, err := h.ledger.Reserve(c.Request.Context(), req.StoreID, req.ProductID, req.Quantity, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateSuggestions(c, req.StoreID)
	c.JSON(http.StatusCreated, snapshot)
}

// Release returns reserved stock to the available pool.
func (h *InventoryHandler) Release(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snapshot, err := h.ledger.Release(c.Request.Context(), req.StoreID, req.ProductID, req.Quantity, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateSuggestions(c, req.StoreID)
	c.JSON(http.StatusCreated, snapshot)
}

type reorderPointRequest struct {
	StoreID   uuid.UUID `json:"store_id" binding:"required"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Value     int       `json:"value"`
}

// SetReorderPoint records an explicit reorder point for a position.
func (h *InventoryHandler) SetReorderPoint(c *gin.Context) {
	var req reorderPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snapshot, err := h.ledger.SetReorderPoint(c.Request.Context(), req.StoreID, req.ProductID, req.Value, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateSuggestions(c, req.StoreID)
	c.JSON(http.StatusOK, snapshot)
}

// GetCurrent returns the latest snapshot for a (store, product) key.
func (h *InventoryHandler) GetCurrent(c *gin.Context) {
	storeID, productID, ok := parsePositionQuery(c)
	if !ok {
		return
	}

	snapshot, err := h.ledger.Current(c.Request.Context(), storeID, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetHistory returns recent snapshots newest-first.
func (h *InventoryHandler) GetHistory(c *gin.Context) {
	storeID, productID, ok := parsePositionQuery(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	history, err := h.ledger.History(c.Request.Context(), storeID, productID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if history == nil {
		history = []*domain.InventorySnapshot{}
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": history})
}

func parsePositionQuery(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	storeID, err := uuid.Parse(c.Query("store"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
		return uuid.Nil, uuid.Nil, false
	}
	productID, err := uuid.Parse(c.Query("product"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return uuid.Nil, uuid.Nil, false
	}
	return storeID, productID, true
}
