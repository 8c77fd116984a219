// backend-go/internal/repository/postgres/inventory_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

type snapshotStore struct {
	db *DB
}

// NewSnapshotStore returns the postgres-backed inventory ledger. Rows carry
// a bigserial seq column so equal timestamps resolve by insertion order.
func NewSnapshotStore(db *DB) *snapshotStore {
	return &snapshotStore{db: db}
}

func (r *snapshotStore) Append(ctx context.Context, snap *domain.InventorySnapshot) error {
	query := `
		INSERT INTO inventory_snapshots (
			id, store_id, product_id, quantity_on_hand, quantity_reserved,
			quantity_on_order, cost_per_unit, reorder_point, max_stock_level,
			change_reason, idempotency_key, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		snap.ID, snap.StoreID, snap.ProductID, snap.QuantityOnHand, snap.QuantityReserved,
		snap.QuantityOnOrder, snap.CostPerUnit, snap.ReorderPoint, snap.MaxStockLevel,
		snap.ChangeReason, snap.IdempotencyKey, snap.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append inventory snapshot: %w", err)
	}

	return nil
}

func (r *snapshotStore) Latest(ctx context.Context, storeID, productID uuid.UUID) (*domain.InventorySnapshot, error) {
	query := `
		SELECT id, store_id, product_id, quantity_on_hand, quantity_reserved,
		       quantity_on_order, cost_per_unit, reorder_point, max_stock_level,
		       change_reason, COALESCE(idempotency_key, '') AS idempotency_key, recorded_at
		FROM inventory_snapshots
		WHERE store_id = $1 AND product_id = $2
		ORDER BY recorded_at DESC, seq DESC
		LIMIT 1
	`

	var snap domain.InventorySnapshot
	if err := sqlx.GetContext(ctx, r.db, &snap, query, storeID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return &snap, nil
}

func (r *snapshotStore) FindByIdempotencyKey(ctx context.Context, storeID, productID uuid.UUID, key string) (*domain.InventorySnapshot, error) {
	query := `
		SELECT id, store_id, product_id, quantity_on_hand, quantity_reserved,
		       quantity_on_order, cost_per_unit, reorder_point, max_stock_level,
		       change_reason, COALESCE(idempotency_key, '') AS idempotency_key, recorded_at
		FROM inventory_snapshots
		WHERE store_id = $1 AND product_id = $2 AND idempotency_key = $3
		ORDER BY recorded_at DESC, seq DESC
		LIMIT 1
	`

	var snap domain.InventorySnapshot
	if err := sqlx.GetContext(ctx, r.db, &snap, query, storeID, productID, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find snapshot by idempotency key: %w", err)
	}

	return &snap, nil
}

func (r *snapshotStore) History(ctx context.Context, storeID, productID uuid.UUID, limit int) ([]*domain.InventorySnapshot, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, store_id, product_id, quantity_on_hand, quantity_reserved,
		       quantity_on_order, cost_per_unit, reorder_point, max_stock_level,
		       change_reason, COALESCE(idempotency_key, '') AS idempotency_key, recorded_at
		FROM inventory_snapshots
		WHERE store_id = $1 AND product_id = $2
		ORDER BY recorded_at DESC, seq DESC
		LIMIT $3
	`

	var snaps []*domain.InventorySnapshot
	if err := sqlx.SelectContext(ctx, r.db, &snaps, query, storeID, productID, limit); err != nil {
		return nil, fmt.Errorf("failed to get snapshot history: %w", err)
	}

	return snaps, nil
}
