// backend-go/internal/repository/postgres/order_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

type orderStore struct {
	db *DB
}

// NewOrderStore returns the postgres-backed purchase order store.
func NewOrderStore(db *DB) *orderStore {
	return &orderStore{db: db}
}

func (r *orderStore) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO purchase_orders (
				id, order_number, store_id, supplier_id, status, priority,
				total_amount, tax_amount, shipping_amount, order_date,
				expected_delivery_date, actual_delivery_date, created_by,
				approved_by, submitted_at, approved_at, sent_at, received_at,
				notes, version, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			          $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		`

		_, err := tx.ExecContext(ctx, query,
			po.ID, po.OrderNumber, po.StoreID, po.SupplierID, po.Status, po.Priority,
			po.TotalAmount, po.TaxAmount, po.ShippingAmount, po.OrderDate,
			po.ExpectedDeliveryDate, po.ActualDeliveryDate, po.CreatedBy,
			nullIfEmpty(po.ApprovedBy), po.SubmittedAt, po.ApprovedAt, po.SentAt, po.ReceivedAt,
			po.Notes, po.Version, po.CreatedAt, po.UpdatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return domain.ErrDuplicateOrderNumber
			}
			return fmt.Errorf("failed to insert purchase order: %w", err)
		}

		return r.insertItems(ctx, tx, po)
	})
}

func (r *orderStore) insertItems(ctx context.Context, tx *sql.Tx, po *domain.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_order_items (
			id, purchase_order_id, product_id, sku, quantity_ordered,
			quantity_received, unit_cost, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i := range po.Items {
		item := &po.Items[i]
		if _, err := stmt.ExecContext(ctx,
			item.ID, po.ID, item.ProductID, item.SKU, item.QuantityOrdered,
			item.QuantityReceived, item.UnitCost, item.Notes, item.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert purchase order item: %w", err)
		}
	}

	return nil
}

func (r *orderStore) GetByNumber(ctx context.Context, orderNumber string) (*domain.PurchaseOrder, error) {
	query := `
		SELECT id, order_number, store_id, supplier_id, status, priority,
		       total_amount, tax_amount, shipping_amount, order_date,
		       expected_delivery_date, actual_delivery_date, created_by,
		       COALESCE(approved_by, '') AS approved_by, submitted_at, approved_at,
		       sent_at, received_at, COALESCE(notes, '') AS notes, version,
		       created_at, updated_at
		FROM purchase_orders
		WHERE order_number = $1
	`

	var po domain.PurchaseOrder
	if err := sqlx.GetContext(ctx, r.db, &po, query, orderNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}

	items, err := r.itemsForOrder(ctx, po.ID)
	if err != nil {
		return nil, err
	}
	po.Items = items

	return &po, nil
}

func (r *orderStore) itemsForOrder(ctx context.Context, orderID uuid.UUID) ([]domain.PurchaseOrderItem, error) {
	query := `
		SELECT id, purchase_order_id, product_id, sku, quantity_ordered,
		       quantity_received, unit_cost, COALESCE(notes, '') AS notes, created_at
		FROM purchase_order_items
		WHERE purchase_order_id = $1
		ORDER BY sku ASC
	`

	var items []domain.PurchaseOrderItem
	if err := sqlx.SelectContext(ctx, r.db, &items, query, orderID); err != nil {
		return nil, fmt.Errorf("failed to get purchase order items: %w", err)
	}

	return items, nil
}

// Update persists the order under an optimistic version check: the row is
// only written when the stored version still equals the version the caller
// read, and the counter is bumped in the same statement. Items are replaced
// wholesale inside the same transaction.
func (r *orderStore) Update(ctx context.Context, po *domain.PurchaseOrder) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE purchase_orders SET
				status = $1, priority = $2, total_amount = $3, tax_amount = $4,
				shipping_amount = $5, expected_delivery_date = $6,
				actual_delivery_date = $7, approved_by = $8, submitted_at = $9,
				approved_at = $10, sent_at = $11, received_at = $12, notes = $13,
				version = version + 1, updated_at = $14
			WHERE id = $15 AND version = $16
		`

		res, err := tx.ExecContext(ctx, query,
			po.Status, po.Priority, po.TotalAmount, po.TaxAmount,
			po.ShippingAmount, po.ExpectedDeliveryDate,
			po.ActualDeliveryDate, nullIfEmpty(po.ApprovedBy), po.SubmittedAt,
			po.ApprovedAt, po.SentAt, po.ReceivedAt, po.Notes,
			po.UpdatedAt, po.ID, po.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update purchase order: %w", err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if rows == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM purchase_orders WHERE id = $1)`, po.ID,
			).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check purchase order existence: %w", err)
			}
			if !exists {
				return domain.ErrNotFound
			}
			return domain.ErrConcurrentModification
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM purchase_order_items WHERE purchase_order_id = $1`, po.ID,
		); err != nil {
			return fmt.Errorf("failed to clear purchase order items: %w", err)
		}

		return r.insertItems(ctx, tx, po)
	})
	if err != nil {
		return err
	}

	po.Version++
	return nil
}

func (r *orderStore) List(ctx context.Context, storeID uuid.UUID, status domain.PurchaseOrderStatus, limit, offset int) ([]*domain.PurchaseOrder, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, order_number, store_id, supplier_id, status, priority,
		       total_amount, tax_amount, shipping_amount, order_date,
		       expected_delivery_date, actual_delivery_date, created_by,
		       COALESCE(approved_by, '') AS approved_by, submitted_at, approved_at,
		       sent_at, received_at, COALESCE(notes, '') AS notes, version,
		       created_at, updated_at
		FROM purchase_orders
		WHERE ($1::uuid IS NULL OR store_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, order_number ASC
		LIMIT $3 OFFSET $4
	`

	var storeArg interface{}
	if storeID != uuid.Nil {
		storeArg = storeID
	}

	var orders []*domain.PurchaseOrder
	if err := sqlx.SelectContext(ctx, r.db, &orders, query, storeArg, string(status), limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	for _, po := range orders {
		items, err := r.itemsForOrder(ctx, po.ID)
		if err != nil {
			return nil, err
		}
		po.Items = items
	}

	return orders, nil
}

func (r *orderStore) ExistsOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchase_orders WHERE order_number = $1)`, orderNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
	return exists, nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
