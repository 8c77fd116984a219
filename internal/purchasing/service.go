// backend-go/internal/purchasing/service.go
package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/events"
	"github.com/andresuchdata/replenish/backend-go/internal/ledger"
	"github.com/andresuchdata/replenish/backend-go/internal/reorder"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
	"github.com/andresuchdata/replenish/backend-go/internal/storage"
)

// Service drives the purchase order lifecycle. Every transition is load,
// aggregate method, optimistic-version save; a concurrent writer surfaces as
// domain.ErrConcurrentModification and the caller decides whether to retry.
type Service struct {
	orders    repository.OrderStore
	master    repository.MasterDataStore
	leadTimes repository.LeadTimeStore
	ledger    *ledger.Ledger
	validator *reorder.Validator
	publisher events.Publisher
	archive   storage.ObjectStorage
}

func NewService(
	orders repository.OrderStore,
	master repository.MasterDataStore,
	leadTimes repository.LeadTimeStore,
	stockLedger *ledger.Ledger,
	validator *reorder.Validator,
	publisher events.Publisher,
	archive storage.ObjectStorage,
) *Service {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &Service{
		orders:    orders,
		master:    master,
		leadTimes: leadTimes,
		ledger:    stockLedger,
		validator: validator,
		publisher: publisher,
		archive:   archive,
	}
}

// CreateFromSuggestions validates the suggestion lines against the
// supplier's constraints and creates a DRAFT order from the result.
func (s *Service) CreateFromSuggestions(ctx context.Context, storeID, supplierID uuid.UUID, suggestions []*domain.ReorderSuggestion, actor string) (*domain.PurchaseOrder, error) {
	store, err := s.master.Store(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	supplier, err := s.master.Supplier(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier: %w", err)
	}

	lines, err := s.validator.Validate(suggestions, supplier)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	orderNumber, err := generateOrderNumber(ctx, s.orders, store, supplier)
	if err != nil {
		return nil, err
	}

	po := domain.NewPurchaseOrder(orderNumber, storeID, supplierID, actor)
	po.ExpectedDeliveryDate = time.Now().AddDate(0, 0, s.expectedLeadTimeDays(ctx, supplier))

	for _, line := range lines {
		if err := po.AddItem(line.ProductID, line.SKU, line.SuggestedQuantity, line.UnitCost, ""); err != nil {
			return nil, err
		}
	}

	if err := s.orders.Create(ctx, po); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.OrderCreatedEvent{
		OrderID:     po.ID,
		OrderNumber: po.OrderNumber,
		StoreID:     po.StoreID,
		SupplierID:  po.SupplierID,
		Actor:       actor,
		TotalAmount: po.TotalAmount,
		CreatedAt:   po.CreatedAt,
	})

	return po, nil
}

// Get returns the order with its items.
func (s *Service) Get(ctx context.Context, orderNumber string) (*domain.PurchaseOrder, error) {
	return s.orders.GetByNumber(ctx, orderNumber)
}

// List returns orders filtered by store and status.
func (s *Service) List(ctx context.Context, storeID uuid.UUID, status domain.PurchaseOrderStatus, limit, offset int) ([]*domain.PurchaseOrder, error) {
	return s.orders.List(ctx, storeID, status, limit, offset)
}

// DraftUpdate carries the fields a DRAFT order may change. Nil slices and
// zero values leave the corresponding field untouched.
type DraftUpdate struct {
	Priority         domain.Priority
	ExpectedDelivery time.Time
	Notes            string
	Items            []domain.PurchaseOrderItem
}

// UpdateDraft edits order details and item lines. Only legal while the
// order is still in DRAFT; any other state fails with domain.ErrOrderLocked.
func (s *Service) UpdateDraft(ctx context.Context, orderNumber string, update DraftUpdate, actor string) (*domain.PurchaseOrder, error) {
	return s.transition(ctx, orderNumber, actor, func(po *domain.PurchaseOrder) error {
		if err := po.UpdateDetails(update.Priority, update.ExpectedDelivery, update.Notes); err != nil {
			return err
		}
		if update.Items != nil {
			return po.ReplaceItems(update.Items)
		}
		return nil
	})
}

// Submit moves a DRAFT order to PENDING_APPROVAL.
func (s *Service) Submit(ctx context.Context, orderNumber, actor string) (*domain.PurchaseOrder, error) {
	return s.transition(ctx, orderNumber, actor, func(po *domain.PurchaseOrder) error {
		return po.SubmitForApproval()
	})
}

// Approve moves a PENDING_APPROVAL order to APPROVED, stamping the approver.
func (s *Service) Approve(ctx context.Context, orderNumber, approverID string) (*domain.PurchaseOrder, error) {
	return s.transition(ctx, orderNumber, approverID, func(po *domain.PurchaseOrder) error {
		return po.Approve(approverID)
	})
}

// Reject moves a PENDING_APPROVAL order to REJECTED with a reason.
func (s *Service) Reject(ctx context.Context, orderNumber, reason, actor string) (*domain.PurchaseOrder, error) {
	return s.transition(ctx, orderNumber, actor, func(po *domain.PurchaseOrder) error {
		return po.Reject(reason)
	})
}

// Send moves an APPROVED order to PROCESSING, archives the order document
// and books the ordered quantities as on-order stock.
func (s *Service) Send(ctx context.Context, orderNumber, actor string) (*domain.PurchaseOrder, error) {
	po, err := s.transition(ctx, orderNumber, actor, func(po *domain.PurchaseOrder) error {
		return po.Send()
	})
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		if err := archiveOrder(ctx, s.archive, po); err != nil {
			// The order is already with the supplier; losing the archive
			// copy must not fail the send.
			log.Warn().Err(err).Str("order_number", po.OrderNumber).Msg("failed to archive sent order")
		}
	}

	for i := range po.Items {
		item := &po.Items[i]
		_, err := s.ledger.RecordChange(ctx, ledger.ChangeInput{
			StoreID:        po.StoreID,
			ProductID:      item.ProductID,
			OnOrderDelta:   item.QuantityOrdered,
			Reason:         "purchase_order_sent",
			IdempotencyKey: fmt.Sprintf("PO:%s:%s:sent", po.OrderNumber, item.SKU),
			Actor:          actor,
		})
		if err != nil {
			log.Warn().Err(err).Str("order_number", po.OrderNumber).Str("sku", item.SKU).Msg("failed to book on-order quantity")
		}
	}

	return po, nil
}

// MarkInTransit moves a PROCESSING order to IN_TRANSIT.
func (s *Service) MarkInTransit(ctx context.Context, orderNumber, actor string) (*domain.PurchaseOrder, error) {
	return s.transition(ctx, orderNumber, actor, func(po *domain.PurchaseOrder) error {
		return po.MarkInTransit()
	})
}

// Cancel moves a DRAFT order to CANCELLED.
func (s *Service) Cancel(ctx context.Context, orderNumber, actor string) (*domain.PurchaseOrder, error) {
	return s.transition(ctx, orderNumber, actor, func(po *domain.PurchaseOrder) error {
		return po.Cancel()
	})
}

// Receive moves an IN_TRANSIT order to DELIVERED, credits the received
// quantities to the inventory ledger and folds the observed delivery into
// the supplier's lead time profile. The ledger credits are keyed by order
// number and SKU, so replaying a receive call never double-credits stock.
func (s *Service) Receive(ctx context.Context, orderNumber string, actualDelivery time.Time, actor string) (*domain.PurchaseOrder, error) {
	current, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	po := current
	if po.Status != domain.StatusDelivered {
		po, err = s.transition(ctx, orderNumber, actor, func(po *domain.PurchaseOrder) error {
			return po.Receive(actualDelivery)
		})
		if err != nil {
			return nil, err
		}
		defer s.refreshLeadTime(ctx, po)
	}

	// Replaying a receive on an already delivered order only re-applies
	// the ledger credits, which the idempotency keys turn into no-ops.
	for i := range po.Items {
		item := &po.Items[i]
		_, err := s.ledger.RecordChange(ctx, ledger.ChangeInput{
			StoreID:        po.StoreID,
			ProductID:      item.ProductID,
			Delta:          item.QuantityReceived,
			OnOrderDelta:   -item.QuantityReceived,
			Reason:         "purchase_order_received",
			IdempotencyKey: fmt.Sprintf("PO:%s:%s", po.OrderNumber, item.SKU),
			Actor:          actor,
			CostPerUnit:    item.UnitCost,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to credit received stock for %s: %w", item.SKU, err)
		}
	}

	return po, nil
}

// transition runs load, mutate, save and emits the status change event.
func (s *Service) transition(ctx context.Context, orderNumber, actor string, mutate func(po *domain.PurchaseOrder) error) (*domain.PurchaseOrder, error) {
	po, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	fromStatus := po.Status

	if err := mutate(po); err != nil {
		return nil, err
	}

	if err := s.orders.Update(ctx, po); err != nil {
		return nil, err
	}

	if po.Status != fromStatus {
		s.publish(ctx, domain.OrderStatusChangedEvent{
			OrderID:     po.ID,
			OrderNumber: po.OrderNumber,
			Actor:       actor,
			FromStatus:  fromStatus,
			ToStatus:    po.Status,
			ChangedAt:   po.UpdatedAt,
		})
	}

	return po, nil
}

// refreshLeadTime folds one delivered order into the supplier-wide lead
// time profile, creating the profile on first observation.
func (s *Service) refreshLeadTime(ctx context.Context, po *domain.PurchaseOrder) {
	profile, err := s.leadTimes.Profile(ctx, po.SupplierID, uuid.Nil)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Str("order_number", po.OrderNumber).Msg("failed to load lead time profile")
			return
		}
		now := time.Now()
		profile = &domain.LeadTimeProfile{
			ID:         uuid.New(),
			SupplierID: po.SupplierID,
			CreatedAt:  now,
		}
	}

	orderedAt := po.OrderDate
	if po.SentAt != nil {
		orderedAt = *po.SentAt
	}
	actual := time.Now()
	if po.ActualDeliveryDate != nil {
		actual = *po.ActualDeliveryDate
	}

	profile.ObserveDelivery(orderedAt, po.ExpectedDeliveryDate, actual)
	profile.LastUpdatedFromPO = po.ReceivedAt
	profile.UpdatedAt = time.Now()

	if err := s.leadTimes.Save(ctx, profile); err != nil {
		log.Warn().Err(err).Str("order_number", po.OrderNumber).Msg("failed to save lead time profile")
	}
}

func (s *Service) expectedLeadTimeDays(ctx context.Context, supplier *domain.Supplier) int {
	profile, err := s.leadTimes.Profile(ctx, supplier.ID, uuid.Nil)
	if err == nil && profile.HasSufficientData() {
		return profile.LeadTimeForServiceLevel(domain.ServiceLevelP90)
	}
	return supplier.LeadTimeDays
}

func (s *Service) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event_type", event.EventType()).Msg("failed to publish order event")
	}
}
