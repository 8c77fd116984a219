// backend-go/internal/purchasing/export.go
package purchasing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/storage"
)

// archiveOrder renders the order as CSV and uploads it to the supplier
// document archive. Called when the order is sent to the supplier.
func archiveOrder(ctx context.Context, store storage.ObjectStorage, po *domain.PurchaseOrder) error {
	payload, err := renderOrderCSV(po)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("purchase-orders/%s.csv", po.OrderNumber)
	if err := store.UploadObject(ctx, key, payload); err != nil {
		return fmt.Errorf("failed to archive order %s: %w", po.OrderNumber, err)
	}
	return nil
}

func renderOrderCSV(po *domain.PurchaseOrder) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"order_number", "sku", "quantity", "unit_cost", "line_total"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to render order csv: %w", err)
	}

	for i := range po.Items {
		item := &po.Items[i]
		record := []string{
			po.OrderNumber,
			item.SKU,
			strconv.Itoa(item.QuantityOrdered),
			item.UnitCost.String(),
			item.TotalCost().String(),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to render order csv: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to render order csv: %w", err)
	}

	return buf.Bytes(), nil
}
