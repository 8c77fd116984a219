// backend-go/internal/repository/postgres/master_repository.go
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

type masterDataStore struct {
	db *DB
}

// NewMasterDataStore returns the read-only master data lookup backed by the
// tables the admin plumbing maintains.
func NewMasterDataStore(db *DB) *masterDataStore {
	return &masterDataStore{db: db}
}

func (r *masterDataStore) Store(ctx context.Context, id uuid.UUID) (*domain.Store, error) {
	query := `
		SELECT id, code, name, created_at, updated_at
		FROM stores
		WHERE id = $1
	`

	var store domain.Store
	if err := sqlx.GetContext(ctx, r.db, &store, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	return &store, nil
}

func (r *masterDataStore) Supplier(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	query := `
		SELECT id, code, name, lead_time_days, min_order_quantity, min_order_value,
		       created_at, updated_at
		FROM suppliers
		WHERE id = $1
	`

	var supplier domain.Supplier
	if err := sqlx.GetContext(ctx, r.db, &supplier, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}

	return &supplier, nil
}

func (r *masterDataStore) Product(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, sku, name, supplier_id, unit_cost, case_pack_size,
		       created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var product domain.Product
	if err := sqlx.GetContext(ctx, r.db, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

func (r *masterDataStore) ProductsBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*domain.Product, error) {
	query := `
		SELECT id, sku, name, supplier_id, unit_cost, case_pack_size,
		       created_at, updated_at
		FROM products
		WHERE supplier_id = $1
		ORDER BY sku ASC
	`

	var products []*domain.Product
	if err := sqlx.SelectContext(ctx, r.db, &products, query, supplierID); err != nil {
		return nil, fmt.Errorf("failed to list supplier products: %w", err)
	}

	return products, nil
}
