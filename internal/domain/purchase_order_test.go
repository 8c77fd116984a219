package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	po := NewPurchaseOrder("PO-S01-SUP1-000001", uuid.New(), uuid.New(), "buyer-1")
	require.NoError(t, po.AddItem(uuid.New(), "SKU-001", 10, 250, ""))
	return po
}

func TestNewPurchaseOrder_Defaults(t *testing.T) {
	po := NewPurchaseOrder("PO-S01-SUP1-000001", uuid.New(), uuid.New(), "buyer-1")

	assert.Equal(t, StatusDraft, po.Status)
	assert.Equal(t, PriorityMedium, po.Priority)
	assert.Equal(t, int64(1), po.Version)
	assert.Empty(t, po.Items)
}

func TestAddItem_RecalculatesTotal(t *testing.T) {
	po := newDraftOrder(t)
	require.NoError(t, po.AddItem(uuid.New(), "SKU-002", 4, 100, ""))

	// 10 x 250 + 4 x 100
	assert.Equal(t, Cents(2900), po.TotalAmount)
}

func TestAddItem_LockedOutsideDraft(t *testing.T) {
	po := newDraftOrder(t)
	require.NoError(t, po.SubmitForApproval())

	err := po.AddItem(uuid.New(), "SKU-003", 1, 100, "")
	assert.ErrorIs(t, err, ErrOrderLocked)
}

func TestSubmitForApproval_EmptyOrder(t *testing.T) {
	po := NewPurchaseOrder("PO-S01-SUP1-000002", uuid.New(), uuid.New(), "buyer-1")

	err := po.SubmitForApproval()
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Equal(t, StatusDraft, po.Status)
}

func TestLifecycle_HappyPath(t *testing.T) {
	po := newDraftOrder(t)

	require.NoError(t, po.SubmitForApproval())
	assert.Equal(t, StatusPendingApproval, po.Status)
	require.NotNil(t, po.SubmittedAt)

	require.NoError(t, po.Approve("manager-1"))
	assert.Equal(t, StatusApproved, po.Status)
	assert.Equal(t, "manager-1", po.ApprovedBy)
	require.NotNil(t, po.ApprovedAt)

	require.NoError(t, po.Send())
	assert.Equal(t, StatusProcessing, po.Status)
	require.NotNil(t, po.SentAt)

	require.NoError(t, po.MarkInTransit())
	assert.Equal(t, StatusInTransit, po.Status)

	delivered := time.Now().Add(-2 * time.Hour)
	require.NoError(t, po.Receive(delivered))
	assert.Equal(t, StatusDelivered, po.Status)
	require.NotNil(t, po.ActualDeliveryDate)
	assert.True(t, po.ActualDeliveryDate.Equal(delivered))
	for _, item := range po.Items {
		assert.True(t, item.IsFullyReceived())
	}
	assert.True(t, po.Status.IsTerminal())
}

func TestReject_AppendsReasonToNotes(t *testing.T) {
	po := newDraftOrder(t)
	po.Notes = "rush order"
	require.NoError(t, po.SubmitForApproval())

	require.NoError(t, po.Reject("budget exceeded"))
	assert.Equal(t, StatusRejected, po.Status)
	assert.Contains(t, po.Notes, "REJECTED: budget exceeded")
	assert.Contains(t, po.Notes, "rush order")
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		run  func(po *PurchaseOrder) error
	}{
		{"approve from draft", func(po *PurchaseOrder) error { return po.Approve("m") }},
		{"reject from draft", func(po *PurchaseOrder) error { return po.Reject("r") }},
		{"send from draft", func(po *PurchaseOrder) error { return po.Send() }},
		{"transit from draft", func(po *PurchaseOrder) error { return po.MarkInTransit() }},
		{"receive from draft", func(po *PurchaseOrder) error { return po.Receive(time.Now()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			po := newDraftOrder(t)
			err := tt.run(po)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, StatusDraft, po.Status)
		})
	}
}

func TestCancel_OnlyFromDraft(t *testing.T) {
	po := newDraftOrder(t)
	require.NoError(t, po.Cancel())
	assert.Equal(t, StatusCancelled, po.Status)

	po = newDraftOrder(t)
	require.NoError(t, po.SubmitForApproval())
	assert.ErrorIs(t, po.Cancel(), ErrInvalidTransition)
}

func TestRecalculateTotal_IncludesTaxAndShipping(t *testing.T) {
	po := newDraftOrder(t)
	po.TaxAmount = 275
	po.ShippingAmount = 500
	po.RecalculateTotal()

	assert.Equal(t, Cents(10*250+275+500), po.TotalAmount)
}
