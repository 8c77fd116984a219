// backend-go/internal/api/handlers/po_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/purchasing"
)

type POHandler struct {
	purchasing *purchasing.Service
}

func NewPOHandler(purchasingService *purchasing.Service) *POHandler {
	return &POHandler{purchasing: purchasingService}
}

type createFromSuggestionsRequest struct {
	StoreID     uuid.UUID                   `json:"store_id" binding:"required"`
	SupplierID  uuid.UUID                   `json:"supplier_id" binding:"required"`
	Suggestions []*domain.ReorderSuggestion `json:"suggestions" binding:"required"`
}

// CreateFromSuggestions validates suggestion lines against the supplier's
// constraints and creates a DRAFT purchase order from them.
func (h *POHandler) CreateFromSuggestions(c *gin.Context) {
	var req createFromSuggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	po, err := h.purchasing.CreateFromSuggestions(c.Request.Context(), req.StoreID, req.SupplierID, req.Suggestions, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, po)
}

// Get returns one order with its items.
func (h *POHandler) Get(c *gin.Context) {
	po, err := h.purchasing.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

// List returns orders filtered by store and status.
func (h *POHandler) List(c *gin.Context) {
	var storeID uuid.UUID
	if raw := c.Query("store"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
			return
		}
		storeID = parsed
	}

	status := domain.PurchaseOrderStatus(c.Query("status"))
	limit := parsePositiveIntWithDefault(c.Query("limit"), 50)
	offset := parseNonNegativeInt(c.Query("offset"))

	orders, err := h.purchasing.List(c.Request.Context(), storeID, status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []*domain.PurchaseOrder{}
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type updateDraftItem struct {
	ProductID uuid.UUID    `json:"product_id" binding:"required"`
	SKU       string       `json:"sku" binding:"required"`
	Quantity  int          `json:"quantity" binding:"required"`
	UnitCost  domain.Cents `json:"unit_cost"`
	Notes     string       `json:"notes"`
}

type updateDraftRequest struct {
	Priority         domain.Priority   `json:"priority"`
	ExpectedDelivery *time.Time        `json:"expected_delivery_date"`
	Notes            string            `json:"notes"`
	Items            []updateDraftItem `json:"items"`
}

// UpdateDraft edits details and item lines of a DRAFT order.
func (h *POHandler) UpdateDraft(c *gin.Context) {
	var req updateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	update := purchasing.DraftUpdate{
		Priority: req.Priority,
		Notes:    req.Notes,
	}
	if req.ExpectedDelivery != nil {
		update.ExpectedDelivery = *req.ExpectedDelivery
	}
	if req.Items != nil {
		update.Items = make([]domain.PurchaseOrderItem, 0, len(req.Items))
		for _, item := range req.Items {
			update.Items = append(update.Items, domain.PurchaseOrderItem{
				ProductID:       item.ProductID,
				SKU:             item.SKU,
				QuantityOrdered: item.Quantity,
				UnitCost:        item.UnitCost,
				Notes:           item.Notes,
			})
		}
	}

	po, err := h.purchasing.UpdateDraft(c.Request.Context(), c.Param("number"), update, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

// Submit moves a DRAFT order to PENDING_APPROVAL.
func (h *POHandler) Submit(c *gin.Context) {
	h.runTransition(c, func() (*domain.PurchaseOrder, error) {
		return h.purchasing.Submit(c.Request.Context(), c.Param("number"), actorFrom(c))
	})
}

// Approve moves a PENDING_APPROVAL order to APPROVED.
func (h *POHandler) Approve(c *gin.Context) {
	h.runTransition(c, func() (*domain.PurchaseOrder, error) {
		return h.purchasing.Approve(c.Request.Context(), c.Param("number"), actorFrom(c))
	})
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject moves a PENDING_APPROVAL order to REJECTED with a reason.
func (h *POHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a rejection reason is required"})
		return
	}

	h.runTransition(c, func() (*domain.PurchaseOrder, error) {
		return h.purchasing.Reject(c.Request.Context(), c.Param("number"), req.Reason, actorFrom(c))
	})
}

// Send moves an APPROVED order to PROCESSING.
func (h *POHandler) Send(c *gin.Context) {
	h.runTransition(c, func() (*domain.PurchaseOrder, error) {
		return h.purchasing.Send(c.Request.Context(), c.Param("number"), actorFrom(c))
	})
}

// MarkInTransit moves a PROCESSING order to IN_TRANSIT.
func (h *POHandler) MarkInTransit(c *gin.Context) {
	h.runTransition(c, func() (*domain.PurchaseOrder, error) {
		return h.purchasing.MarkInTransit(c.Request.Context(), c.Param("number"), actorFrom(c))
	})
}

type receiveRequest struct {
	ActualDeliveryDate *time.Time `json:"actual_delivery_date"`
}

// Receive moves an IN_TRANSIT order to DELIVERED and credits the stock.
func (h *POHandler) Receive(c *gin.Context) {
	var req receiveRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actual := time.Time{}
	if req.ActualDeliveryDate != nil {
		actual = *req.ActualDeliveryDate
	}

	h.runTransition(c, func() (*domain.PurchaseOrder, error) {
		return h.purchasing.Receive(c.Request.Context(), c.Param("number"), actual, actorFrom(c))
	})
}

// Cancel moves a DRAFT order to CANCELLED.
func (h *POHandler) Cancel(c *gin.Context) {
	h.runTransition(c, func() (*domain.PurchaseOrder, error) {
		return h.purchasing.Cancel(c.Request.Context(), c.Param("number"), actorFrom(c))
	})
}

func (h *POHandler) runTransition(c *gin.Context, op func() (*domain.PurchaseOrder, error)) {
	po, err := op()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

func parsePositiveIntWithDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseNonNegativeInt(raw string) int {
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}
