// backend-go/internal/repository/memory/memory.go
// Package memory holds in-memory store implementations used by tests and
// the dev fixture loader. They honor the same contracts as the postgres
// implementations, including ordering and version-check semantics.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

type snapshotKey struct {
	store   uuid.UUID
	product uuid.UUID
}

// SnapshotStore is an in-memory append-only ledger.
type SnapshotStore struct {
	mu   sync.RWMutex
	rows map[snapshotKey][]*domain.InventorySnapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{rows: make(map[snapshotKey][]*domain.InventorySnapshot)}
}

func (s *SnapshotStore) Append(_ context.Context, snap *domain.InventorySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snap
	key := snapshotKey{store: snap.StoreID, product: snap.ProductID}
	s.rows[key] = append(s.rows[key], &cp)
	return nil
}

func (s *SnapshotStore) Latest(_ context.Context, storeID, productID uuid.UUID) (*domain.InventorySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.rows[snapshotKey{store: storeID, product: productID}]
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	// Slice order is insertion order; later timestamps always win, equal
	// timestamps fall back to insertion order.
	best := rows[0]
	for _, row := range rows[1:] {
		if !row.RecordedAt.Before(best.RecordedAt) {
			best = row
		}
	}
	cp := *best
	return &cp, nil
}

func (s *SnapshotStore) FindByIdempotencyKey(_ context.Context, storeID, productID uuid.UUID, key string) (*domain.InventorySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows[snapshotKey{store: storeID, product: productID}] {
		if row.IdempotencyKey != "" && row.IdempotencyKey == key {
			cp := *row
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *SnapshotStore) History(_ context.Context, storeID, productID uuid.UUID, limit int) ([]*domain.InventorySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.rows[snapshotKey{store: storeID, product: productID}]
	out := make([]*domain.InventorySnapshot, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		cp := *rows[i]
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// OrderStore is an in-memory purchase order store with optimistic locking.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]*domain.PurchaseOrder
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]*domain.PurchaseOrder)}
}

func cloneOrder(po *domain.PurchaseOrder) *domain.PurchaseOrder {
	cp := *po
	cp.Items = make([]domain.PurchaseOrderItem, len(po.Items))
	copy(cp.Items, po.Items)
	return &cp
}

func (s *OrderStore) Create(_ context.Context, po *domain.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[po.OrderNumber]; ok {
		return domain.ErrDuplicateOrderNumber
	}
	s.orders[po.OrderNumber] = cloneOrder(po)
	return nil
}

func (s *OrderStore) GetByNumber(_ context.Context, orderNumber string) (*domain.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	po, ok := s.orders[orderNumber]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneOrder(po), nil
}

func (s *OrderStore) Update(_ context.Context, po *domain.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[po.OrderNumber]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != po.Version {
		return domain.ErrConcurrentModification
	}
	po.Version++
	s.orders[po.OrderNumber] = cloneOrder(po)
	return nil
}

func (s *OrderStore) List(_ context.Context, storeID uuid.UUID, status domain.PurchaseOrderStatus, limit, offset int) ([]*domain.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.PurchaseOrder, 0, len(s.orders))
	for _, po := range s.orders {
		if storeID != uuid.Nil && po.StoreID != storeID {
			continue
		}
		if status != "" && po.Status != status {
			continue
		}
		out = append(out, cloneOrder(po))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].OrderNumber < out[j].OrderNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *OrderStore) ExistsOrderNumber(_ context.Context, orderNumber string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.orders[orderNumber]
	return ok, nil
}

// MasterDataStore is a fixture-backed master data lookup.
type MasterDataStore struct {
	mu        sync.RWMutex
	stores    map[uuid.UUID]*domain.Store
	suppliers map[uuid.UUID]*domain.Supplier
	products  map[uuid.UUID]*domain.Product
}

func NewMasterDataStore() *MasterDataStore {
	return &MasterDataStore{
		stores:    make(map[uuid.UUID]*domain.Store),
		suppliers: make(map[uuid.UUID]*domain.Supplier),
		products:  make(map[uuid.UUID]*domain.Product),
	}
}

func (s *MasterDataStore) AddStore(st *domain.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	s.stores[st.ID] = &cp
}

func (s *MasterDataStore) AddSupplier(sup *domain.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sup
	s.suppliers[sup.ID] = &cp
}

func (s *MasterDataStore) AddProduct(p *domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

func (s *MasterDataStore) Store(_ context.Context, id uuid.UUID) (*domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stores[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *MasterDataStore) Supplier(_ context.Context, id uuid.UUID) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sup, ok := s.suppliers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *sup
	return &cp, nil
}

func (s *MasterDataStore) Product(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MasterDataStore) ProductsBySupplier(_ context.Context, supplierID uuid.UUID) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Product, 0)
	for _, p := range s.products {
		if p.SupplierID == supplierID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].SKU, out[j].SKU) < 0
	})
	return out, nil
}

type leadTimeKey struct {
	supplier uuid.UUID
	product  uuid.UUID
}

// LeadTimeStore keeps lead time profiles keyed by (supplier, product) with
// a supplier-wide fallback under the nil product id.
type LeadTimeStore struct {
	mu       sync.RWMutex
	profiles map[leadTimeKey]*domain.LeadTimeProfile
}

func NewLeadTimeStore() *LeadTimeStore {
	return &LeadTimeStore{profiles: make(map[leadTimeKey]*domain.LeadTimeProfile)}
}

func (s *LeadTimeStore) Profile(_ context.Context, supplierID, productID uuid.UUID) (*domain.LeadTimeProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[leadTimeKey{supplier: supplierID, product: productID}]; ok {
		cp := *p
		return &cp, nil
	}
	if p, ok := s.profiles[leadTimeKey{supplier: supplierID}]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (s *LeadTimeStore) Save(_ context.Context, profile *domain.LeadTimeProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *profile
	s.profiles[leadTimeKey{supplier: profile.SupplierID, product: profile.ProductID}] = &cp
	return nil
}

type forecastKey struct {
	store   uuid.UUID
	product uuid.UUID
}

// ForecastStore keeps the active forecast per (store, product). Saving a
// new forecast supersedes the previous one; superseded rows are retained
// for inspection.
type ForecastStore struct {
	mu     sync.RWMutex
	active map[forecastKey]*domain.DemandForecast
	older  []*domain.DemandForecast
}

func NewForecastStore() *ForecastStore {
	return &ForecastStore{active: make(map[forecastKey]*domain.DemandForecast)}
}

func (s *ForecastStore) ActiveForecast(_ context.Context, storeID, productID uuid.UUID) (*domain.DemandForecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.active[forecastKey{store: storeID, product: productID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (s *ForecastStore) Save(_ context.Context, forecast *domain.DemandForecast) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := forecastKey{store: forecast.StoreID, product: forecast.ProductID}
	if prev, ok := s.active[key]; ok {
		prev.IsActive = false
		s.older = append(s.older, prev)
	}
	cp := *forecast
	cp.IsActive = true
	s.active[key] = &cp
	return nil
}
