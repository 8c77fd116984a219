// backend-go/internal/ledger/ledger.go
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/events"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
)

// Ledger owns all inventory mutation. Every change appends a snapshot;
// nothing is updated in place. Appends for the same (store, product) key are
// serialized through a per-key lock, different keys proceed in parallel.
type Ledger struct {
	snapshots repository.SnapshotStore
	publisher events.Publisher

	mu        sync.Mutex
	locks     map[positionKey]*sync.Mutex
}

type positionKey struct {
	storeID   uuid.UUID
	productID uuid.UUID
}

func NewLedger(snapshots repository.SnapshotStore, publisher events.Publisher) *Ledger {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &Ledger{
		snapshots: snapshots,
		publisher: publisher,
		locks:     make(map[positionKey]*sync.Mutex),
	}
}

// ChangeInput describes one requested ledger append.
type ChangeInput struct {
	StoreID        uuid.UUID
	ProductID      uuid.UUID
	Delta          int
	OnOrderDelta   int
	Reason         string
	IdempotencyKey string
	Actor          string
	// CostPerUnit replaces the carried unit cost when positive.
	CostPerUnit    domain.Cents
}

// RecordChange appends a snapshot whose on-hand quantity is the previous
// value plus the delta. A change that would drive on-hand negative fails
// with domain.ErrInvalidQuantity and appends nothing. When the idempotency
// key was already applied, the snapshot it produced is returned unchanged.
func (l *Ledger) RecordChange(ctx context.Context, input ChangeInput) (*domain.InventorySnapshot, error) {
	unlock := l.lockPosition(input.StoreID, input.ProductID)
	defer unlock()

	if input.IdempotencyKey != "" {
		prior, err := l.snapshots.FindByIdempotencyKey(ctx, input.StoreID, input.ProductID, input.IdempotencyKey)
		if err == nil {
			return prior, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	current, err := l.currentOrZero(ctx, input.StoreID, input.ProductID)
	if err != nil {
		return nil, err
	}

	onHand := current.QuantityOnHand + input.Delta
	if onHand < 0 {
		return nil, fmt.Errorf("%w: on-hand %d with delta %d", domain.ErrInvalidQuantity, current.QuantityOnHand, input.Delta)
	}

	onOrder := current.QuantityOnOrder + input.OnOrderDelta
	if onOrder < 0 {
		onOrder = 0
	}

	next := cloneForAppend(current)
	next.QuantityOnHand = onHand
	next.QuantityOnOrder = onOrder
	next.ChangeReason = input.Reason
	next.IdempotencyKey = input.IdempotencyKey
	if input.CostPerUnit > 0 {
		next.CostPerUnit = input.CostPerUnit
	}

	if err := l.append(ctx, current, next, input.Actor); err != nil {
		return nil, err
	}

	return next, nil
}

// Reserve earmarks qty units of available stock. It fails with
// domain.ErrInsufficientAvailable when qty exceeds on-hand minus reserved.
func (l *Ledger) Reserve(ctx context.Context, storeID, productID uuid.UUID, qty int, actor string) (*domain.InventorySnapshot, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: reserve quantity must be positive, got %d", domain.ErrInvalidQuantity, qty)
	}

	unlock := l.lockPosition(storeID, productID)
	defer unlock()

	current, err := l.currentOrZero(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	if qty > current.QuantityAvailable() {
		return nil, fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientAvailable, qty, current.QuantityAvailable())
	}

	next := cloneForAppend(current)
	next.QuantityReserved += qty
	next.ChangeReason = "reservation"

	if err := l.append(ctx, current, next, actor); err != nil {
		return nil, err
	}

	return next, nil
}

// Release returns previously reserved units to the available pool.
func (l *Ledger) Release(ctx context.Context, storeID, productID uuid.UUID, qty int, actor string) (*domain.InventorySnapshot, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: release quantity must be positive, got %d", domain.ErrInvalidQuantity, qty)
	}

	unlock := l.lockPosition(storeID, productID)
	defer unlock()

	current, err := l.currentOrZero(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	if qty > current.QuantityReserved {
		return nil, fmt.Errorf("%w: releasing %d with only %d reserved", domain.ErrInvalidQuantity, qty, current.QuantityReserved)
	}

	next := cloneForAppend(current)
	next.QuantityReserved -= qty
	next.ChangeReason = "release"

	if err := l.append(ctx, current, next, actor); err != nil {
		return nil, err
	}

	return next, nil
}

// Current returns the most recent snapshot for the key, or
// domain.ErrNotFound when nothing was ever recorded.
func (l *Ledger) Current(ctx context.Context, storeID, productID uuid.UUID) (*domain.InventorySnapshot, error) {
	return l.snapshots.Latest(ctx, storeID, productID)
}

// History returns snapshots newest-first, up to limit.
func (l *Ledger) History(ctx context.Context, storeID, productID uuid.UUID, limit int) ([]*domain.InventorySnapshot, error) {
	return l.snapshots.History(ctx, storeID, productID, limit)
}

// SetReorderPoint records an explicit reorder point for the position. It
// fails with domain.ErrInvalidArgument when the value is negative.
func (l *Ledger) SetReorderPoint(ctx context.Context, storeID, productID uuid.UUID, value int, actor string) (*domain.InventorySnapshot, error) {
	if value < 0 {
		return nil, fmt.Errorf("%w: reorder point must not be negative, got %d", domain.ErrInvalidArgument, value)
	}

	unlock := l.lockPosition(storeID, productID)
	defer unlock()

	current, err := l.currentOrZero(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	next := cloneForAppend(current)
	next.ReorderPoint = value
	next.ChangeReason = "reorder_point_update"

	if err := l.append(ctx, current, next, actor); err != nil {
		return nil, err
	}

	return next, nil
}

func (l *Ledger) append(ctx context.Context, before, next *domain.InventorySnapshot, actor string) error {
	if err := l.snapshots.Append(ctx, next); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}

	event := domain.InventoryChangedEvent{
		StoreID:        next.StoreID,
		ProductID:      next.ProductID,
		Actor:          actor,
		Reason:         next.ChangeReason,
		OnHandBefore:   before.QuantityOnHand,
		OnHandAfter:    next.QuantityOnHand,
		ReservedBefore: before.QuantityReserved,
		ReservedAfter:  next.QuantityReserved,
		ChangedAt:      next.RecordedAt,
	}
	if err := l.publisher.Publish(ctx, event); err != nil {
		// The append already happened; a lost notification is not a
		// reason to fail the write.
		log.Warn().Err(err).
			Str("store_id", next.StoreID.String()).
			Str("product_id", next.ProductID.String()).
			Msg("failed to publish inventory change event")
	}

	return nil
}

// currentOrZero returns the latest snapshot, or a zero-quantity baseline
// when no snapshot exists yet for the key.
func (l *Ledger) currentOrZero(ctx context.Context, storeID, productID uuid.UUID) (*domain.InventorySnapshot, error) {
	current, err := l.snapshots.Latest(ctx, storeID, productID)
	if err == nil {
		return current, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.InventorySnapshot{
			StoreID:   storeID,
			ProductID: productID,
		}, nil
	}
	return nil, fmt.Errorf("failed to load current snapshot: %w", err)
}

func cloneForAppend(current *domain.InventorySnapshot) *domain.InventorySnapshot {
	next := *current
	next.ID = uuid.New()
	next.IdempotencyKey = ""
	next.RecordedAt = time.Now().UTC()
	return &next
}

func (l *Ledger) lockPosition(storeID, productID uuid.UUID) func() {
	key := positionKey{storeID: storeID, productID: productID}

	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
