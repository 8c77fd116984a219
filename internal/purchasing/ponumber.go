// backend-go/internal/purchasing/ponumber.go
package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
)

// maxOrderNumberAttempts bounds the collision retry loop; with a
// time-derived suffix plus counter, exhaustion means the store is broken.
const maxOrderNumberAttempts = 20

// generateOrderNumber builds PO-<store>-<supplier>-<suffix> with a
// time-derived six digit suffix, bumping the suffix until the number is
// unused.
func generateOrderNumber(ctx context.Context, orders repository.OrderStore, store *domain.Store, supplier *domain.Supplier) (string, error) {
	base := time.Now().Unix() % 1_000_000

	for attempt := int64(0); attempt < maxOrderNumberAttempts; attempt++ {
		suffix := (base + attempt) % 1_000_000
		candidate := fmt.Sprintf("PO-%s-%s-%06d", store.Code, supplier.Code, suffix)

		exists, err := orders.ExistsOrderNumber(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check order number: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: could not find a free order number for %s/%s", domain.ErrDuplicateOrderNumber, store.Code, supplier.Code)
}
