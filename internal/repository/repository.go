// backend-go/internal/repository/repository.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

// SnapshotStore persists the append-only inventory ledger. Implementations
// must order rows by recorded timestamp with insertion order as tie-break.
type SnapshotStore interface {
	Append(ctx context.Context, snap *domain.InventorySnapshot) error
	// Latest returns the most recent snapshot for the key, or domain.ErrNotFound.
	Latest(ctx context.Context, storeID, productID uuid.UUID) (*domain.InventorySnapshot, error)
	// FindByIdempotencyKey returns the snapshot a prior replay produced, or domain.ErrNotFound.
	FindByIdempotencyKey(ctx context.Context, storeID, productID uuid.UUID, key string) (*domain.InventorySnapshot, error)
	// History returns snapshots newest-first, up to limit.
	History(ctx context.Context, storeID, productID uuid.UUID, limit int) ([]*domain.InventorySnapshot, error)
}

// OrderStore persists purchase orders with their items. Update applies an
// optimistic version check: it succeeds only when the stored version equals
// the version the caller read, and bumps it by one.
type OrderStore interface {
	Create(ctx context.Context, po *domain.PurchaseOrder) error
	GetByNumber(ctx context.Context, orderNumber string) (*domain.PurchaseOrder, error)
	// Update fails with domain.ErrConcurrentModification on a version mismatch.
	Update(ctx context.Context, po *domain.PurchaseOrder) error
	List(ctx context.Context, storeID uuid.UUID, status domain.PurchaseOrderStatus, limit, offset int) ([]*domain.PurchaseOrder, error)
	ExistsOrderNumber(ctx context.Context, orderNumber string) (bool, error)
}

// MasterDataStore is the read-only view over store/supplier/product master
// data owned by an external collaborator.
type MasterDataStore interface {
	Store(ctx context.Context, id uuid.UUID) (*domain.Store, error)
	Supplier(ctx context.Context, id uuid.UUID) (*domain.Supplier, error)
	Product(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ProductsBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*domain.Product, error)
}

// LeadTimeStore reads and refreshes supplier lead time statistics.
type LeadTimeStore interface {
	// Profile prefers a (supplier, product) row and falls back to the
	// supplier-wide row; domain.ErrNotFound when neither exists.
	Profile(ctx context.Context, supplierID, productID uuid.UUID) (*domain.LeadTimeProfile, error)
	Save(ctx context.Context, profile *domain.LeadTimeProfile) error
}

// ForecastProvider yields the forecast currently trusted for decisioning.
// Implementations include the local forecast table and the remote forecast
// service client.
type ForecastProvider interface {
	ActiveForecast(ctx context.Context, storeID, productID uuid.UUID) (*domain.DemandForecast, error)
}

// ForecastStore extends the provider with ingestion: saving a forecast
// supersedes the previously active one for the same key.
type ForecastStore interface {
	ForecastProvider
	Save(ctx context.Context, forecast *domain.DemandForecast) error
}
