// backend-go/internal/reorder/calculator.go
package reorder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
)

// unprovenLeadTimeMultiplier pads the nominal lead time for suppliers whose
// delivery history is too thin to trust the observed percentiles.
const unprovenLeadTimeMultiplier = 1.5

// calcConcurrency bounds the per-product fan-out of one calculator run.
const calcConcurrency = 8

// Calculator produces reorder suggestions for a (store, supplier) pair. It
// is read-only over its inputs and safe to call concurrently; identical
// inputs produce identical output.
type Calculator struct {
	snapshots repository.SnapshotStore
	forecasts repository.ForecastProvider
	leadTimes repository.LeadTimeStore
	master    repository.MasterDataStore
}

func NewCalculator(
	snapshots repository.SnapshotStore,
	forecasts repository.ForecastProvider,
	leadTimes repository.LeadTimeStore,
	master repository.MasterDataStore,
) *Calculator {
	return &Calculator{
		snapshots: snapshots,
		forecasts: forecasts,
		leadTimes: leadTimes,
		master:    master,
	}
}

// Calculate evaluates every product the supplier carries and returns one
// suggestion per product sitting at or below its reorder trigger. Products
// whose forecast or lead time profile cannot be loaded are skipped and
// reported as warnings; a partial result set is always preferable to none.
func (c *Calculator) Calculate(ctx context.Context, storeID, supplierID uuid.UUID, level domain.ServiceLevel) (*domain.SuggestionRun, error) {
	supplier, err := c.master.Supplier(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier: %w", err)
	}

	products, err := c.master.ProductsBySupplier(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier products: %w", err)
	}

	run := &domain.SuggestionRun{
		StoreID:      storeID,
		SupplierID:   supplierID,
		ServiceLevel: level,
		GeneratedAt:  time.Now().UTC(),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(calcConcurrency)

	for _, product := range products {
		product := product
		g.Go(func() error {
			suggestion, warning, err := c.evaluateProduct(gctx, storeID, supplier, product, level)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			if warning != nil {
				run.Warnings = append(run.Warnings, *warning)
			}
			if suggestion != nil {
				run.Suggestions = append(run.Suggestions, suggestion)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortSuggestions(run.Suggestions)
	sort.Slice(run.Warnings, func(i, j int) bool {
		return run.Warnings[i].SKU < run.Warnings[j].SKU
	})

	return run, nil
}

// evaluateProduct returns at most one of (suggestion, warning). A non-nil
// error is reserved for context cancellation; per-product data problems
// degrade to warnings.
func (c *Calculator) evaluateProduct(
	ctx context.Context,
	storeID uuid.UUID,
	supplier *domain.Supplier,
	product *domain.Product,
	level domain.ServiceLevel,
) (*domain.ReorderSuggestion, *domain.MissingInputWarning, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	snapshot, err := c.snapshots.Latest(ctx, storeID, product.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Str("sku", product.SKU).Msg("snapshot lookup failed, skipping product")
			return nil, missingInput(product, "inventory snapshot unavailable"), nil
		}
		// Never stocked at this store: evaluate against a zero position.
		snapshot = &domain.InventorySnapshot{StoreID: storeID, ProductID: product.ID}
	}

	forecast, err := c.forecasts.ActiveForecast(ctx, storeID, product.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Str("sku", product.SKU).Msg("forecast lookup failed, skipping product")
		}
		return nil, missingInput(product, "no active demand forecast"), nil
	}

	profile, err := c.leadTimes.Profile(ctx, supplier.ID, product.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Str("sku", product.SKU).Msg("lead time lookup failed, skipping product")
		}
		return nil, missingInput(product, "no lead time profile"), nil
	}

	available := snapshot.QuantityAvailable()
	demandP50 := forecast.ForecastValue(domain.ServiceLevelP50)
	demandP90 := forecast.ForecastValue(domain.ServiceLevelP90)

	safetyStock := safetyStockFor(demandP50, demandP90, supplier, profile)
	trigger := reorderTrigger(snapshot, demandP50, profile, safetyStock)

	if float64(available) > trigger {
		return nil, nil, nil
	}

	demandAtLevel := forecast.ForecastValue(level)
	leadTimeAtLevel := profile.LeadTimeForServiceLevel(level)

	quantity := demandAtLevel*float64(leadTimeAtLevel) - float64(available) + safetyStock
	if quantity < 0 {
		quantity = 0
	}
	suggested := product.RoundUpToCasePack(int(math.Ceil(quantity)))

	return &domain.ReorderSuggestion{
		StoreID:           storeID,
		ProductID:         product.ID,
		SupplierID:        supplier.ID,
		SKU:               product.SKU,
		ProductName:       product.Name,
		AvailableQuantity: available,
		ReorderTrigger:    trigger,
		SuggestedQuantity: suggested,
		ServiceLevel:      level,
		DemandP50:         demandP50,
		DemandP90:         demandP90,
		LeadTimeP50Days:   profile.LeadTimeForServiceLevel(domain.ServiceLevelP50),
		LeadTimeP90Days:   profile.LeadTimeForServiceLevel(domain.ServiceLevelP90),
		SafetyStock:       safetyStock,
		UnitCost:          product.UnitCost,
		CasePackSize:      product.CasePackSize,
	}, nil, nil
}

// safetyStockFor buffers the spread between median and P90 demand over the
// supplier's P90 lead time. Suppliers without enough delivery history fall
// back to the nominal lead time padded by a conservative multiplier.
func safetyStockFor(demandP50, demandP90 float64, supplier *domain.Supplier, profile *domain.LeadTimeProfile) float64 {
	spread := demandP90 - demandP50
	if spread < 0 {
		spread = 0
	}

	var factor float64
	if profile.HasSufficientData() {
		factor = float64(profile.LeadTimeForServiceLevel(domain.ServiceLevelP90))
	} else {
		nominal := profile.LeadTimeDays
		if nominal <= 0 {
			nominal = supplier.LeadTimeDays
		}
		factor = float64(nominal) * unprovenLeadTimeMultiplier
	}

	return spread * factor
}

// reorderTrigger prefers an explicitly configured reorder point and
// otherwise derives one from median demand over the median lead time plus
// safety stock.
func reorderTrigger(snapshot *domain.InventorySnapshot, demandP50 float64, profile *domain.LeadTimeProfile, safetyStock float64) float64 {
	if snapshot.ReorderPoint > 0 {
		return float64(snapshot.ReorderPoint)
	}
	leadTimeP50 := profile.LeadTimeForServiceLevel(domain.ServiceLevelP50)
	return demandP50*float64(leadTimeP50) + safetyStock
}

// sortSuggestions orders most depleted first, with SKU as a deterministic
// tie-break.
func sortSuggestions(suggestions []*domain.ReorderSuggestion) {
	sort.Slice(suggestions, func(i, j int) bool {
		ui, uj := suggestions[i].Urgency(), suggestions[j].Urgency()
		if ui != uj {
			return ui > uj
		}
		return suggestions[i].SKU < suggestions[j].SKU
	})
}

func missingInput(product *domain.Product, reason string) *domain.MissingInputWarning {
	return &domain.MissingInputWarning{
		ProductID: product.ID,
		SKU:       product.SKU,
		Reason:    reason,
	}
}
