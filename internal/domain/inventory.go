// backend-go/internal/domain/inventory.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// InventoryStatus classifies the health of a stock position.
type InventoryStatus string

const (
	InventoryHealthy  InventoryStatus = "HEALTHY"
	InventoryLow      InventoryStatus = "LOW"
	InventoryStockout InventoryStatus = "STOCKOUT"
)

// InventorySnapshot is one entry of the append-only stock ledger for a
// (store, product) key. Snapshots are never mutated; every quantity change
// appends a new row and the most recent row is the current position.
type InventorySnapshot struct {
	ID               uuid.UUID `json:"id" db:"id"`
	StoreID          uuid.UUID `json:"store_id" db:"store_id"`
	ProductID        uuid.UUID `json:"product_id" db:"product_id"`
	QuantityOnHand   int       `json:"quantity_on_hand" db:"quantity_on_hand"`
	QuantityReserved int       `json:"quantity_reserved" db:"quantity_reserved"`
	QuantityOnOrder  int       `json:"quantity_on_order" db:"quantity_on_order"`
	CostPerUnit      Cents     `json:"cost_per_unit" db:"cost_per_unit"`
	ReorderPoint     int       `json:"reorder_point" db:"reorder_point"`
	MaxStockLevel    int       `json:"max_stock_level" db:"max_stock_level"`
	ChangeReason     string    `json:"change_reason" db:"change_reason"`
	IdempotencyKey   string    `json:"idempotency_key,omitempty" db:"idempotency_key"`
	RecordedAt       time.Time `json:"recorded_at" db:"recorded_at"`
}

// QuantityAvailable is on-hand minus reserved.
func (s *InventorySnapshot) QuantityAvailable() int {
	return s.QuantityOnHand - s.QuantityReserved
}

// IsBelowReorderPoint reports whether the available quantity has reached the
// explicit reorder point. A zero reorder point never triggers.
func (s *InventorySnapshot) IsBelowReorderPoint() bool {
	return s.ReorderPoint > 0 && s.QuantityAvailable() <= s.ReorderPoint
}

// IsStockOut reports whether there is no available stock left.
func (s *InventorySnapshot) IsStockOut() bool {
	return s.QuantityAvailable() <= 0
}

// TotalValue is the on-hand quantity valued at cost.
func (s *InventorySnapshot) TotalValue() Cents {
	return s.CostPerUnit.Mul(s.QuantityOnHand)
}

// Status classifies the position for dashboards and alerting.
func (s *InventorySnapshot) Status() InventoryStatus {
	switch {
	case s.IsStockOut():
		return InventoryStockout
	case s.IsBelowReorderPoint():
		return InventoryLow
	default:
		return InventoryHealthy
	}
}
