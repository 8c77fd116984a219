// backend-go/internal/domain/purchase_order.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PurchaseOrderStatus is the lifecycle state of a purchase order.
type PurchaseOrderStatus string

const (
	StatusDraft           PurchaseOrderStatus = "DRAFT"
	StatusPendingApproval PurchaseOrderStatus = "PENDING_APPROVAL"
	StatusApproved        PurchaseOrderStatus = "APPROVED"
	StatusProcessing      PurchaseOrderStatus = "PROCESSING"
	StatusInTransit       PurchaseOrderStatus = "IN_TRANSIT"
	StatusDelivered       PurchaseOrderStatus = "DELIVERED"
	StatusCancelled       PurchaseOrderStatus = "CANCELLED"
	StatusRejected        PurchaseOrderStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is possible.
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRejected
}

// Priority of a purchase order.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// PurchaseOrderItem is one order line, owned exclusively by its parent
// order. TotalCost is always unit cost times quantity ordered.
type PurchaseOrderItem struct {
	ID               uuid.UUID `json:"id" db:"id"`
	PurchaseOrderID  uuid.UUID `json:"purchase_order_id" db:"purchase_order_id"`
	ProductID        uuid.UUID `json:"product_id" db:"product_id"`
	SKU              string    `json:"sku" db:"sku"`
	QuantityOrdered  int       `json:"quantity_ordered" db:"quantity_ordered"`
	QuantityReceived int       `json:"quantity_received" db:"quantity_received"`
	UnitCost         Cents     `json:"unit_cost" db:"unit_cost"`
	Notes            string    `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// TotalCost is the line value.
func (i *PurchaseOrderItem) TotalCost() Cents {
	return i.UnitCost.Mul(i.QuantityOrdered)
}

// IsFullyReceived reports whether the ordered quantity has arrived.
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.QuantityReceived >= i.QuantityOrdered
}

// PurchaseOrder is the aggregate root of the replenishment lifecycle. All
// status changes go through the transition methods below; storage code never
// writes Status directly. Version is the optimistic concurrency counter.
type PurchaseOrder struct {
	ID                   uuid.UUID           `json:"id" db:"id"`
	OrderNumber          string              `json:"order_number" db:"order_number"`
	StoreID              uuid.UUID           `json:"store_id" db:"store_id"`
	SupplierID           uuid.UUID           `json:"supplier_id" db:"supplier_id"`
	Status               PurchaseOrderStatus `json:"status" db:"status"`
	Priority             Priority            `json:"priority" db:"priority"`
	TotalAmount          Cents               `json:"total_amount" db:"total_amount"`
	TaxAmount            Cents               `json:"tax_amount" db:"tax_amount"`
	ShippingAmount       Cents               `json:"shipping_amount" db:"shipping_amount"`
	OrderDate            time.Time           `json:"order_date" db:"order_date"`
	ExpectedDeliveryDate time.Time           `json:"expected_delivery_date" db:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time          `json:"actual_delivery_date,omitempty" db:"actual_delivery_date"`
	CreatedBy            string              `json:"created_by" db:"created_by"`
	ApprovedBy           string              `json:"approved_by,omitempty" db:"approved_by"`
	SubmittedAt          *time.Time          `json:"submitted_at,omitempty" db:"submitted_at"`
	ApprovedAt           *time.Time          `json:"approved_at,omitempty" db:"approved_at"`
	SentAt               *time.Time          `json:"sent_at,omitempty" db:"sent_at"`
	ReceivedAt           *time.Time          `json:"received_at,omitempty" db:"received_at"`
	Notes                string              `json:"notes,omitempty" db:"notes"`
	Items                []PurchaseOrderItem `json:"items" db:"-"`
	Version              int64               `json:"version" db:"version"`
	CreatedAt            time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at" db:"updated_at"`
}

// NewPurchaseOrder starts an order in DRAFT for a store/supplier pair.
func NewPurchaseOrder(orderNumber string, storeID, supplierID uuid.UUID, createdBy string) *PurchaseOrder {
	now := time.Now()
	return &PurchaseOrder{
		ID:          uuid.New(),
		OrderNumber: orderNumber,
		StoreID:     storeID,
		SupplierID:  supplierID,
		Status:      StatusDraft,
		Priority:    PriorityMedium,
		OrderDate:   now,
		CreatedBy:   createdBy,
		Items:       make([]PurchaseOrderItem, 0),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddItem appends a line and recomputes the total. Only legal in DRAFT.
func (po *PurchaseOrder) AddItem(productID uuid.UUID, sku string, qty int, unitCost Cents, notes string) error {
	if po.Status != StatusDraft {
		return ErrOrderLocked
	}
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidArgument)
	}
	po.Items = append(po.Items, PurchaseOrderItem{
		ID:              uuid.New(),
		PurchaseOrderID: po.ID,
		ProductID:       productID,
		SKU:             sku,
		QuantityOrdered: qty,
		UnitCost:        unitCost,
		Notes:           notes,
		CreatedAt:       time.Now(),
	})
	po.RecalculateTotal()
	return nil
}

// ReplaceItems swaps the whole item list. Only legal in DRAFT; items are
// owned by the order and replaced as a unit.
func (po *PurchaseOrder) ReplaceItems(items []PurchaseOrderItem) error {
	if po.Status != StatusDraft {
		return ErrOrderLocked
	}
	for i := range items {
		if items[i].QuantityOrdered <= 0 {
			return fmt.Errorf("%w: quantity must be positive", ErrInvalidArgument)
		}
	}
	po.Items = make([]PurchaseOrderItem, 0, len(items))
	for i := range items {
		item := items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now()
		}
		item.PurchaseOrderID = po.ID
		po.Items = append(po.Items, item)
	}
	po.RecalculateTotal()
	return nil
}

// UpdateDetails mutates order fields that are free to change in DRAFT.
func (po *PurchaseOrder) UpdateDetails(priority Priority, expectedDelivery time.Time, notes string) error {
	if po.Status != StatusDraft {
		return ErrOrderLocked
	}
	if priority != "" {
		po.Priority = priority
	}
	if !expectedDelivery.IsZero() {
		po.ExpectedDeliveryDate = expectedDelivery
	}
	if notes != "" {
		po.Notes = notes
	}
	po.UpdatedAt = time.Now()
	return nil
}

// RecalculateTotal derives the total from the item lines plus tax and
// shipping. Called whenever items change.
func (po *PurchaseOrder) RecalculateTotal() {
	var total Cents
	for i := range po.Items {
		total += po.Items[i].TotalCost()
	}
	po.TotalAmount = total + po.TaxAmount + po.ShippingAmount
	po.UpdatedAt = time.Now()
}

// SubmitForApproval moves DRAFT to PENDING_APPROVAL.
func (po *PurchaseOrder) SubmitForApproval() error {
	if po.Status != StatusDraft {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, po.Status, StatusPendingApproval)
	}
	if len(po.Items) == 0 {
		return ErrEmptyOrder
	}
	now := time.Now()
	po.Status = StatusPendingApproval
	po.SubmittedAt = &now
	po.UpdatedAt = now
	return nil
}

// Approve stamps the approver and moves PENDING_APPROVAL to APPROVED.
func (po *PurchaseOrder) Approve(approverID string) error {
	if po.Status != StatusPendingApproval {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, po.Status, StatusApproved)
	}
	now := time.Now()
	po.Status = StatusApproved
	po.ApprovedBy = approverID
	po.ApprovedAt = &now
	po.UpdatedAt = now
	return nil
}

// Reject moves PENDING_APPROVAL to REJECTED, appending the reason to notes.
func (po *PurchaseOrder) Reject(reason string) error {
	if po.Status != StatusPendingApproval {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, po.Status, StatusRejected)
	}
	po.Status = StatusRejected
	if po.Notes != "" {
		po.Notes += "\n"
	}
	po.Notes += "REJECTED: " + reason
	po.UpdatedAt = time.Now()
	return nil
}

// Send moves APPROVED to PROCESSING and stamps the sent time.
func (po *PurchaseOrder) Send() error {
	if po.Status != StatusApproved {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, po.Status, StatusProcessing)
	}
	now := time.Now()
	po.Status = StatusProcessing
	po.SentAt = &now
	po.UpdatedAt = now
	return nil
}

// MarkInTransit moves PROCESSING to IN_TRANSIT.
func (po *PurchaseOrder) MarkInTransit() error {
	if po.Status != StatusProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, po.Status, StatusInTransit)
	}
	po.Status = StatusInTransit
	po.UpdatedAt = time.Now()
	return nil
}

// Receive moves IN_TRANSIT to DELIVERED, stamps the actual delivery date and
// marks every line fully received. Crediting the inventory ledger is the
// caller's job; the order number keys the idempotent credits.
func (po *PurchaseOrder) Receive(actualDelivery time.Time) error {
	if po.Status != StatusInTransit {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, po.Status, StatusDelivered)
	}
	if actualDelivery.IsZero() {
		actualDelivery = time.Now()
	}
	now := time.Now()
	po.Status = StatusDelivered
	po.ActualDeliveryDate = &actualDelivery
	po.ReceivedAt = &now
	for i := range po.Items {
		po.Items[i].QuantityReceived = po.Items[i].QuantityOrdered
	}
	po.UpdatedAt = now
	return nil
}

// Cancel moves DRAFT to CANCELLED. No other state may be cancelled.
func (po *PurchaseOrder) Cancel() error {
	if po.Status != StatusDraft {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, po.Status, StatusCancelled)
	}
	po.Status = StatusCancelled
	po.UpdatedAt = time.Now()
	return nil
}
