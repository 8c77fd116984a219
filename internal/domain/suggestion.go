// backend-go/internal/domain/suggestion.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReorderSuggestion is one advisory line produced by the reorder calculator.
// Suggestions are transient: they live between calculation and order
// creation and are never persisted.
type ReorderSuggestion struct {
	StoreID           uuid.UUID    `json:"store_id"`
	ProductID         uuid.UUID    `json:"product_id"`
	SupplierID        uuid.UUID    `json:"supplier_id"`
	SKU               string       `json:"sku"`
	ProductName       string       `json:"product_name"`
	AvailableQuantity int          `json:"available_quantity"`
	ReorderTrigger    float64      `json:"reorder_trigger"`
	SuggestedQuantity int          `json:"suggested_quantity"`
	ServiceLevel      ServiceLevel `json:"service_level"`
	DemandP50         float64      `json:"demand_p50"`
	DemandP90         float64      `json:"demand_p90"`
	LeadTimeP50Days   int          `json:"lead_time_p50_days"`
	LeadTimeP90Days   int          `json:"lead_time_p90_days"`
	SafetyStock       float64      `json:"safety_stock"`
	UnitCost          Cents        `json:"unit_cost"`
	CasePackSize      int          `json:"case_pack_size"`
}

// Urgency orders suggestions: the deeper available stock sits below the
// trigger, the more urgent the line.
func (s *ReorderSuggestion) Urgency() float64 {
	return s.ReorderTrigger - float64(s.AvailableQuantity)
}

// MissingInputWarning reports a product that was skipped because its
// forecast or lead time profile was unavailable. A partial suggestion set is
// always preferable to none.
type MissingInputWarning struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Reason    string    `json:"reason"`
}

// SuggestionRun is one complete calculator pass for a (store, supplier)
// pair at a service level, with the products that had to be skipped.
type SuggestionRun struct {
	StoreID      uuid.UUID             `json:"store_id"`
	SupplierID   uuid.UUID             `json:"supplier_id"`
	ServiceLevel ServiceLevel          `json:"service_level"`
	GeneratedAt  time.Time             `json:"generated_at"`
	Suggestions  []*ReorderSuggestion  `json:"suggestions"`
	Warnings     []MissingInputWarning `json:"warnings,omitempty"`
}
