package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/repository/memory"
)

func newTestLedger() *Ledger {
	return NewLedger(memory.NewSnapshotStore(), nil)
}

func TestRecordChange_AppendsSnapshots(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	storeID, productID := uuid.New(), uuid.New()

	snap, err := l.RecordChange(ctx, ChangeInput{
		StoreID: storeID, ProductID: productID,
		Delta: 20, Reason: "delivery", Actor: "clerk-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 20, snap.QuantityOnHand)

	snap, err = l.RecordChange(ctx, ChangeInput{
		StoreID: storeID, ProductID: productID,
		Delta: -5, Reason: "sale", Actor: "clerk-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 15, snap.QuantityOnHand)

	history, err := l.History(ctx, storeID, productID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Newest first.
	assert.Equal(t, 15, history[0].QuantityOnHand)
	assert.Equal(t, 20, history[1].QuantityOnHand)
}

func TestRecordChange_RejectsNegativeResult(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	storeID, productID := uuid.New(), uuid.New()

	_, err := l.RecordChange(ctx, ChangeInput{
		StoreID: storeID, ProductID: productID,
		Delta: 5, Reason: "delivery",
	})
	require.NoError(t, err)

	_, err = l.RecordChange(ctx, ChangeInput{
		StoreID: storeID, ProductID: productID,
		Delta: -6, Reason: "sale",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	// The rejected change must not have appended anything.
	current, err := l.Current(ctx, storeID, productID)
	require.NoError(t, err)
	assert.Equal(t, 5, current.QuantityOnHand)
	history, err := l.History(ctx, storeID, productID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRecordChange_IdempotentReplay(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	storeID, productID := uuid.New(), uuid.New()

	_, err := l.RecordChange(ctx, ChangeInput{
		StoreID: storeID, ProductID: productID,
		Delta: 20, Reason: "delivery",
	})
	require.NoError(t, err)

	input := ChangeInput{
		StoreID: storeID, ProductID: productID,
		Delta: -5, Reason: "sale", IdempotencyKey: "tx-1",
	}
	first, err := l.RecordChange(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 15, first.QuantityOnHand)

	replay, err := l.RecordChange(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID)
	assert.Equal(t, 15, replay.QuantityOnHand)

	current, err := l.Current(ctx, storeID, productID)
	require.NoError(t, err)
	assert.Equal(t, 15, current.QuantityOnHand)
}

func TestReserve_FailsBeyondAvailable(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	storeID, productID := uuid.New(), uuid.New()

	_, err := l.RecordChange(ctx, ChangeInput{
		StoreID: storeID, ProductID: productID,
		Delta: 10, Reason: "delivery",
	})
	require.NoError(t, err)

	snap, err := l.Reserve(ctx, storeID, productID, 6, "picker-1")
	require.NoError(t, err)
	assert.Equal(t, 6, snap.QuantityReserved)
	assert.Equal(t, 4, snap.QuantityAvailable())

	_, err = l.Reserve(ctx, storeID, productID, 5, "picker-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientAvailable)
}

func TestRelease_ReturnsReservedStock(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	storeID, productID := uuid.New(), uuid.New()

	_, err := l.RecordChange(ctx, ChangeInput{
		StoreID: storeID, ProductID: productID,
		Delta: 10, Reason: "delivery",
	})
	require.NoError(t, err)
	_, err = l.Reserve(ctx, storeID, productID, 6, "picker-1")
	require.NoError(t, err)

	snap, err := l.Release(ctx, storeID, productID, 4, "picker-1")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.QuantityReserved)

	_, err = l.Release(ctx, storeID, productID, 3, "picker-1")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestSetReorderPoint(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	storeID, productID := uuid.New(), uuid.New()

	_, err := l.SetReorderPoint(ctx, storeID, productID, -1, "planner-1")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	snap, err := l.SetReorderPoint(ctx, storeID, productID, 12, "planner-1")
	require.NoError(t, err)
	assert.Equal(t, 12, snap.ReorderPoint)
	assert.Equal(t, 0, snap.QuantityOnHand)
}

func TestRecordChange_ConcurrentAppendsStayConsistent(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	storeID, productID := uuid.New(), uuid.New()

	_, err := l.RecordChange(ctx, ChangeInput{
		StoreID: storeID, ProductID: productID,
		Delta: 1000, Reason: "delivery",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.RecordChange(ctx, ChangeInput{
				StoreID: storeID, ProductID: productID,
				Delta: -10, Reason: "sale",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	current, err := l.Current(ctx, storeID, productID)
	require.NoError(t, err)
	assert.Equal(t, 500, current.QuantityOnHand)
}
