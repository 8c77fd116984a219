// backend-go/internal/domain/master.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Store is a retail location. Read-only master data for this engine.
type Store struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Supplier master data, including the order minimums the constraint
// validator enforces.
type Supplier struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Code             string    `json:"code" db:"code"`
	Name             string    `json:"name" db:"name"`
	LeadTimeDays     int       `json:"lead_time_days" db:"lead_time_days"`
	MinOrderQuantity int       `json:"min_order_quantity" db:"min_order_quantity"`
	MinOrderValue    Cents     `json:"min_order_value" db:"min_order_value"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Product master data. CasePackSize is the multiple the product must be
// ordered in; zero or one means no case-pack constraint.
type Product struct {
	ID           uuid.UUID `json:"id" db:"id"`
	SKU          string    `json:"sku" db:"sku"`
	Name         string    `json:"name" db:"name"`
	SupplierID   uuid.UUID `json:"supplier_id" db:"supplier_id"`
	UnitCost     Cents     `json:"unit_cost" db:"unit_cost"`
	CasePackSize int       `json:"case_pack_size" db:"case_pack_size"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RoundUpToCasePack rounds qty up to the product's case-pack multiple.
func (p *Product) RoundUpToCasePack(qty int) int {
	if p.CasePackSize <= 1 || qty <= 0 {
		return qty
	}
	if rem := qty % p.CasePackSize; rem != 0 {
		qty += p.CasePackSize - rem
	}
	return qty
}
