// backend-go/internal/domain/events.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is an outbound notification for audit and notification
// collaborators. The engine only produces events; subscriber fan-out lives
// elsewhere.
type Event interface {
	EventType() string
	OccurredAt() time.Time
}

// OrderCreatedEvent is emitted when a purchase order enters DRAFT.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	StoreID     uuid.UUID `json:"store_id"`
	SupplierID  uuid.UUID `json:"supplier_id"`
	Actor       string    `json:"actor"`
	TotalAmount Cents     `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e OrderCreatedEvent) EventType() string     { return "purchase_order.created" }
func (e OrderCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// OrderStatusChangedEvent is emitted on every lifecycle transition.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	Actor       string              `json:"actor"`
	FromStatus  PurchaseOrderStatus `json:"from_status"`
	ToStatus    PurchaseOrderStatus `json:"to_status"`
	ChangedAt   time.Time           `json:"changed_at"`
}

func (e OrderStatusChangedEvent) EventType() string     { return "purchase_order.status_changed" }
func (e OrderStatusChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// InventoryChangedEvent is emitted when a new snapshot is appended.
type InventoryChangedEvent struct {
	StoreID        uuid.UUID `json:"store_id"`
	ProductID      uuid.UUID `json:"product_id"`
	Actor          string    `json:"actor"`
	Reason         string    `json:"reason"`
	OnHandBefore   int       `json:"on_hand_before"`
	OnHandAfter    int       `json:"on_hand_after"`
	ReservedBefore int       `json:"reserved_before"`
	ReservedAfter  int       `json:"reserved_after"`
	ChangedAt      time.Time `json:"changed_at"`
}

func (e InventoryChangedEvent) EventType() string     { return "inventory.changed" }
func (e InventoryChangedEvent) OccurredAt() time.Time { return e.ChangedAt }
