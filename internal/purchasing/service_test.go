package purchasing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/ledger"
	"github.com/andresuchdata/replenish/backend-go/internal/reorder"
	"github.com/andresuchdata/replenish/backend-go/internal/repository/memory"
)

type serviceFixture struct {
	orders     *memory.OrderStore
	master     *memory.MasterDataStore
	leadTimes  *memory.LeadTimeStore
	snapshots  *memory.SnapshotStore
	ledger     *ledger.Ledger
	svc        *Service

	storeID    uuid.UUID
	supplierID uuid.UUID
	productID  uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		orders:     memory.NewOrderStore(),
		master:     memory.NewMasterDataStore(),
		leadTimes:  memory.NewLeadTimeStore(),
		snapshots:  memory.NewSnapshotStore(),
		storeID:    uuid.New(),
		supplierID: uuid.New(),
		productID:  uuid.New(),
	}
	f.ledger = ledger.NewLedger(f.snapshots, nil)
	f.svc = NewService(f.orders, f.master, f.leadTimes, f.ledger, reorder.NewValidator(), nil, nil)

	f.master.AddStore(&domain.Store{ID: f.storeID, Code: "S01", Name: "Downtown"})
	f.master.AddSupplier(&domain.Supplier{ID: f.supplierID, Code: "SUP1", Name: "Acme", LeadTimeDays: 7})
	f.master.AddProduct(&domain.Product{
		ID:         f.productID,
		SKU:        "SKU-001",
		Name:       "Widget",
		SupplierID: f.supplierID,
		UnitCost:   250,
	})
	return f
}

func (f *serviceFixture) suggestions() []*domain.ReorderSuggestion {
	return []*domain.ReorderSuggestion{{
		StoreID:           f.storeID,
		ProductID:         f.productID,
		SupplierID:        f.supplierID,
		SKU:               "SKU-001",
		SuggestedQuantity: 40,
		UnitCost:          250,
	}}
}

func (f *serviceFixture) createDraft(t *testing.T) *domain.PurchaseOrder {
	t.Helper()
	po, err := f.svc.CreateFromSuggestions(context.Background(), f.storeID, f.supplierID, f.suggestions(), "buyer")
	require.NoError(t, err)
	return po
}

func (f *serviceFixture) advanceToInTransit(t *testing.T, orderNumber string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Submit(ctx, orderNumber, "buyer")
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, orderNumber, "manager")
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, orderNumber, "buyer")
	require.NoError(t, err)
	_, err = f.svc.MarkInTransit(ctx, orderNumber, "carrier")
	require.NoError(t, err)
}

func TestCreateFromSuggestions(t *testing.T) {
	f := newServiceFixture(t)
	po := f.createDraft(t)

	assert.Equal(t, domain.StatusDraft, po.Status)
	assert.True(t, strings.HasPrefix(po.OrderNumber, "PO-S01-SUP1-"), po.OrderNumber)
	assert.Equal(t, "buyer", po.CreatedBy)
	require.Len(t, po.Items, 1)
	assert.Equal(t, 40, po.Items[0].QuantityOrdered)
	assert.Equal(t, domain.Cents(10_000), po.TotalAmount)
	assert.False(t, po.ExpectedDeliveryDate.IsZero())

	stored, err := f.svc.Get(context.Background(), po.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, po.ID, stored.ID)
}

func TestCreateFromSuggestions_NoOrderableLines(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.CreateFromSuggestions(context.Background(), f.storeID, f.supplierID, nil, "buyer")
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
}

func TestCreateFromSuggestions_UnknownStore(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.CreateFromSuggestions(context.Background(), uuid.New(), f.supplierID, f.suggestions(), "buyer")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFullLifecycle(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	po := f.createDraft(t)

	f.advanceToInTransit(t, po.OrderNumber)

	// Sending booked the ordered quantity as on-order stock.
	position, err := f.ledger.Current(ctx, f.storeID, f.productID)
	require.NoError(t, err)
	assert.Equal(t, 40, position.QuantityOnOrder)
	assert.Equal(t, 0, position.QuantityOnHand)

	delivered := time.Now()
	received, err := f.svc.Receive(ctx, po.OrderNumber, delivered, "receiver")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, received.Status)
	require.NotNil(t, received.ActualDeliveryDate)
	assert.True(t, received.Items[0].IsFullyReceived())

	position, err = f.ledger.Current(ctx, f.storeID, f.productID)
	require.NoError(t, err)
	assert.Equal(t, 40, position.QuantityOnHand)
	assert.Equal(t, 0, position.QuantityOnOrder)
	assert.Equal(t, domain.Cents(250), position.CostPerUnit)
}

func TestReceive_Replay(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	po := f.createDraft(t)
	f.advanceToInTransit(t, po.OrderNumber)

	_, err := f.svc.Receive(ctx, po.OrderNumber, time.Now(), "receiver")
	require.NoError(t, err)

	// Replaying the receive must not double-credit the stock.
	replayed, err := f.svc.Receive(ctx, po.OrderNumber, time.Now(), "receiver")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, replayed.Status)

	position, err := f.ledger.Current(ctx, f.storeID, f.productID)
	require.NoError(t, err)
	assert.Equal(t, 40, position.QuantityOnHand)
}

func TestReceive_RefreshesLeadTimeProfile(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	po := f.createDraft(t)
	f.advanceToInTransit(t, po.OrderNumber)

	_, err := f.svc.Receive(ctx, po.OrderNumber, time.Now(), "receiver")
	require.NoError(t, err)

	profile, err := f.leadTimes.Profile(ctx, f.supplierID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.SampleSize)
	assert.NotNil(t, profile.LastUpdatedFromPO)
}

func TestReceive_BeforeTransit(t *testing.T) {
	f := newServiceFixture(t)
	po := f.createDraft(t)

	_, err := f.svc.Receive(context.Background(), po.OrderNumber, time.Now(), "receiver")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApprove_RequiresPendingApproval(t *testing.T) {
	f := newServiceFixture(t)
	po := f.createDraft(t)

	_, err := f.svc.Approve(context.Background(), po.OrderNumber, "manager")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReject(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	po := f.createDraft(t)

	_, err := f.svc.Submit(ctx, po.OrderNumber, "buyer")
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, po.OrderNumber, "budget exceeded", "manager")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Contains(t, rejected.Notes, "budget exceeded")
}

func TestCancel_OnlyFromDraft(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	po := f.createDraft(t)

	cancelled, err := f.svc.Cancel(ctx, po.OrderNumber, "buyer")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	_, err = f.svc.Cancel(ctx, po.OrderNumber, "buyer")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdateDraft(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	po := f.createDraft(t)

	updated, err := f.svc.UpdateDraft(ctx, po.OrderNumber, DraftUpdate{
		Priority: domain.PriorityHigh,
		Notes:    "rush order",
		Items: []domain.PurchaseOrderItem{{
			ProductID:       f.productID,
			SKU:             "SKU-001",
			QuantityOrdered: 60,
			UnitCost:        250,
		}},
	}, "buyer")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Equal(t, "rush order", updated.Notes)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 60, updated.Items[0].QuantityOrdered)
	assert.Equal(t, domain.Cents(15_000), updated.TotalAmount)
}

func TestUpdateDraft_LockedAfterSubmit(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	po := f.createDraft(t)

	_, err := f.svc.Submit(ctx, po.OrderNumber, "buyer")
	require.NoError(t, err)

	_, err = f.svc.UpdateDraft(ctx, po.OrderNumber, DraftUpdate{Notes: "too late"}, "buyer")
	assert.ErrorIs(t, err, domain.ErrOrderLocked)
}

func TestList_FiltersByStatus(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	po := f.createDraft(t)
	_, err := f.svc.Submit(ctx, po.OrderNumber, "buyer")
	require.NoError(t, err)

	pending, err := f.svc.List(ctx, f.storeID, domain.StatusPendingApproval, 10, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, po.OrderNumber, pending[0].OrderNumber)

	drafts, err := f.svc.List(ctx, f.storeID, domain.StatusDraft, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestGet_NotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Get(context.Background(), "PO-MISSING")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
