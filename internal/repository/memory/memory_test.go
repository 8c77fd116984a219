package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

func TestOrderStore_DuplicateOrderNumber(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()

	po := domain.NewPurchaseOrder("PO-S01-SUP1-000001", uuid.New(), uuid.New(), "buyer")
	require.NoError(t, s.Create(ctx, po))

	dup := domain.NewPurchaseOrder("PO-S01-SUP1-000001", uuid.New(), uuid.New(), "buyer")
	assert.ErrorIs(t, s.Create(ctx, dup), domain.ErrDuplicateOrderNumber)
}

func TestOrderStore_StaleVersionRejected(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()

	po := domain.NewPurchaseOrder("PO-S01-SUP1-000002", uuid.New(), uuid.New(), "buyer")
	require.NoError(t, s.Create(ctx, po))

	first, err := s.GetByNumber(ctx, po.OrderNumber)
	require.NoError(t, err)
	second, err := s.GetByNumber(ctx, po.OrderNumber)
	require.NoError(t, err)

	first.Notes = "first writer"
	require.NoError(t, s.Update(ctx, first))

	second.Notes = "second writer"
	assert.ErrorIs(t, s.Update(ctx, second), domain.ErrConcurrentModification)

	stored, err := s.GetByNumber(ctx, po.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, "first writer", stored.Notes)
	assert.Equal(t, int64(2), stored.Version)
}

func TestOrderStore_UpdateBumpsVersion(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()

	po := domain.NewPurchaseOrder("PO-S01-SUP1-000003", uuid.New(), uuid.New(), "buyer")
	require.NoError(t, s.Create(ctx, po))

	loaded, err := s.GetByNumber(ctx, po.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)

	require.NoError(t, s.Update(ctx, loaded))
	assert.Equal(t, int64(2), loaded.Version)
}

func TestOrderStore_GetReturnsClone(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()

	po := domain.NewPurchaseOrder("PO-S01-SUP1-000004", uuid.New(), uuid.New(), "buyer")
	require.NoError(t, po.AddItem(uuid.New(), "SKU-001", 5, 100, ""))
	require.NoError(t, s.Create(ctx, po))

	loaded, err := s.GetByNumber(ctx, po.OrderNumber)
	require.NoError(t, err)
	loaded.Items[0].QuantityOrdered = 999

	fresh, err := s.GetByNumber(ctx, po.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.Items[0].QuantityOrdered)
}
