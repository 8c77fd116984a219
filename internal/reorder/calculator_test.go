package reorder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/repository/memory"
)

type calcFixture struct {
	snapshots  *memory.SnapshotStore
	forecasts  *memory.ForecastStore
	leadTimes  *memory.LeadTimeStore
	master     *memory.MasterDataStore

	calc       *Calculator
	storeID    uuid.UUID
	supplierID uuid.UUID
}

func newCalcFixture(t *testing.T) *calcFixture {
	t.Helper()
	f := &calcFixture{
		snapshots:  memory.NewSnapshotStore(),
		forecasts:  memory.NewForecastStore(),
		leadTimes:  memory.NewLeadTimeStore(),
		master:     memory.NewMasterDataStore(),
		storeID:    uuid.New(),
		supplierID: uuid.New(),
	}
	f.calc = NewCalculator(f.snapshots, f.forecasts, f.leadTimes, f.master)
	f.master.AddStore(&domain.Store{ID: f.storeID, Code: "S01", Name: "Downtown"})
	f.master.AddSupplier(&domain.Supplier{ID: f.supplierID, Code: "SUP1", Name: "Acme", LeadTimeDays: 7})
	return f
}

func (f *calcFixture) addProduct(t *testing.T, sku string, casePack int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:           uuid.New(),
		SKU:          sku,
		Name:         "Product " + sku,
		SupplierID:   f.supplierID,
		UnitCost:     100,
		CasePackSize: casePack,
	}
	f.master.AddProduct(p)
	return p
}

func (f *calcFixture) addSnapshot(t *testing.T, productID uuid.UUID, onHand, reserved, reorderPoint int) {
	t.Helper()
	err := f.snapshots.Append(context.Background(), &domain.InventorySnapshot{
		ID:               uuid.New(),
		StoreID:          f.storeID,
		ProductID:        productID,
		QuantityOnHand:   onHand,
		QuantityReserved: reserved,
		ReorderPoint:     reorderPoint,
		RecordedAt:       time.Now(),
	})
	require.NoError(t, err)
}

func (f *calcFixture) addForecast(t *testing.T, productID uuid.UUID, p50, p90 float64) {
	t.Helper()
	err := f.forecasts.Save(context.Background(), &domain.DemandForecast{
		ID:           uuid.New(),
		StoreID:      f.storeID,
		ProductID:    productID,
		ForecastDate: time.Now(),
		HorizonDays:  14,
		P50Forecast:  p50,
		P90Forecast:  p90,
		P95Forecast:  p90 * 1.2,
		IsActive:     true,
	})
	require.NoError(t, err)
}

func (f *calcFixture) addProfile(t *testing.T, p50, p90, sampleSize int) {
	t.Helper()
	err := f.leadTimes.Save(context.Background(), &domain.LeadTimeProfile{
		ID:              uuid.New(),
		SupplierID:      f.supplierID,
		LeadTimeDays:    p50,
		P50LeadTimeDays: p50,
		P90LeadTimeDays: p90,
		P95LeadTimeDays: p90 + 2,
		SampleSize:      sampleSize,
	})
	require.NoError(t, err)
}

func TestCalculate_SuggestedQuantity(t *testing.T) {
	f := newCalcFixture(t)
	product := f.addProduct(t, "SKU-001", 0)
	f.addSnapshot(t, product.ID, 8, 0, 12)
	f.addForecast(t, product.ID, 2, 5)
	f.addProfile(t, 7, 10, 25)

	run, err := f.calc.Calculate(context.Background(), f.storeID, f.supplierID, domain.ServiceLevelP90)
	require.NoError(t, err)
	require.Len(t, run.Suggestions, 1)
	require.Empty(t, run.Warnings)

	s := run.Suggestions[0]
	// safety = (5-2) x 10 = 30; qty = 5 x 10 - 8 + 30 = 72
	assert.Equal(t, 72, s.SuggestedQuantity)
	assert.Equal(t, 30.0, s.SafetyStock)
	assert.Equal(t, 12.0, s.ReorderTrigger)
	assert.Equal(t, 8, s.AvailableQuantity)
}

func TestCalculate_CasePackRounding(t *testing.T) {
	f := newCalcFixture(t)
	product := f.addProduct(t, "SKU-001", 25)
	f.addSnapshot(t, product.ID, 8, 0, 12)
	f.addForecast(t, product.ID, 2, 5)
	f.addProfile(t, 7, 10, 25)

	run, err := f.calc.Calculate(context.Background(), f.storeID, f.supplierID, domain.ServiceLevelP90)
	require.NoError(t, err)
	require.Len(t, run.Suggestions, 1)

	// 72 rounds up to the next multiple of 25.
	assert.Equal(t, 75, run.Suggestions[0].SuggestedQuantity)
}

func TestCalculate_DerivedTriggerWithoutReorderPoint(t *testing.T) {
	f := newCalcFixture(t)
	product := f.addProduct(t, "SKU-001", 0)
	f.addSnapshot(t, product.ID, 8, 0, 0)
	f.addForecast(t, product.ID, 2, 5)
	f.addProfile(t, 7, 10, 25)

	run, err := f.calc.Calculate(context.Background(), f.storeID, f.supplierID, domain.ServiceLevelP90)
	require.NoError(t, err)
	require.Len(t, run.Suggestions, 1)

	// trigger = 2 x 7 + 30 = 44
	assert.Equal(t, 44.0, run.Suggestions[0].ReorderTrigger)
}

func TestCalculate_ThinHistoryUsesConservativeFallback(t *testing.T) {
	f := newCalcFixture(t)
	product := f.addProduct(t, "SKU-001", 0)
	f.addSnapshot(t, product.ID, 8, 0, 12)
	f.addForecast(t, product.ID, 2, 5)
	f.addProfile(t, 7, 10, 5)

	run, err := f.calc.Calculate(context.Background(), f.storeID, f.supplierID, domain.ServiceLevelP90)
	require.NoError(t, err)
	require.Len(t, run.Suggestions, 1)

	// safety = (5-2) x 7 x 1.5 = 31.5 with unproven lead time history
	assert.Equal(t, 31.5, run.Suggestions[0].SafetyStock)
}

func TestCalculate_SkipsWellStockedProduct(t *testing.T) {
	f := newCalcFixture(t)
	product := f.addProduct(t, "SKU-001", 0)
	f.addSnapshot(t, product.ID, 500, 0, 12)
	f.addForecast(t, product.ID, 2, 5)
	f.addProfile(t, 7, 10, 25)

	run, err := f.calc.Calculate(context.Background(), f.storeID, f.supplierID, domain.ServiceLevelP90)
	require.NoError(t, err)
	assert.Empty(t, run.Suggestions)
	assert.Empty(t, run.Warnings)
}

func TestCalculate_ReservedStockReducesAvailability(t *testing.T) {
	f := newCalcFixture(t)
	product := f.addProduct(t, "SKU-001", 0)
	f.addSnapshot(t, product.ID, 20, 15, 12)
	f.addForecast(t, product.ID, 2, 5)
	f.addProfile(t, 7, 10, 25)

	run, err := f.calc.Calculate(context.Background(), f.storeID, f.supplierID, domain.ServiceLevelP90)
	require.NoError(t, err)
	require.Len(t, run.Suggestions, 1)
	assert.Equal(t, 5, run.Suggestions[0].AvailableQuantity)
}

func TestCalculate_MissingInputsBecomeWarnings(t *testing.T) {
	f := newCalcFixture(t)
	complete := f.addProduct(t, "SKU-001", 0)
	f.addSnapshot(t, complete.ID, 8, 0, 12)
	f.addForecast(t, complete.ID, 2, 5)
	f.addProfile(t, 7, 10, 25)

	noForecast := f.addProduct(t, "SKU-404", 0)
	f.addSnapshot(t, noForecast.ID, 3, 0, 12)

	run, err := f.calc.Calculate(context.Background(), f.storeID, f.supplierID, domain.ServiceLevelP90)
	require.NoError(t, err)
	require.Len(t, run.Suggestions, 1)
	assert.Equal(t, "SKU-001", run.Suggestions[0].SKU)
	require.Len(t, run.Warnings, 1)
	assert.Equal(t, "SKU-404", run.Warnings[0].SKU)
	assert.Equal(t, "no active demand forecast", run.Warnings[0].Reason)
}

func TestCalculate_SortsByUrgencyThenSKU(t *testing.T) {
	f := newCalcFixture(t)
	f.addProfile(t, 7, 10, 25)

	// Urgency = trigger - available: b=10, a=4, c=4 (a/c tie on SKU).
	a := f.addProduct(t, "SKU-A", 0)
	f.addSnapshot(t, a.ID, 8, 0, 12)
	f.addForecast(t, a.ID, 2, 5)

	b := f.addProduct(t, "SKU-B", 0)
	f.addSnapshot(t, b.ID, 2, 0, 12)
	f.addForecast(t, b.ID, 2, 5)

	c := f.addProduct(t, "SKU-C", 0)
	f.addSnapshot(t, c.ID, 8, 0, 12)
	f.addForecast(t, c.ID, 2, 5)

	run, err := f.calc.Calculate(context.Background(), f.storeID, f.supplierID, domain.ServiceLevelP90)
	require.NoError(t, err)
	require.Len(t, run.Suggestions, 3)
	assert.Equal(t, "SKU-B", run.Suggestions[0].SKU)
	assert.Equal(t, "SKU-A", run.Suggestions[1].SKU)
	assert.Equal(t, "SKU-C", run.Suggestions[2].SKU)
}

func TestCalculate_Deterministic(t *testing.T) {
	f := newCalcFixture(t)
	f.addProfile(t, 7, 10, 25)
	for _, sku := range []string{"SKU-A", "SKU-B", "SKU-C", "SKU-D"} {
		p := f.addProduct(t, sku, 0)
		f.addSnapshot(t, p.ID, 8, 0, 12)
		f.addForecast(t, p.ID, 2, 5)
	}

	first, err := f.calc.Calculate(context.Background(), f.storeID, f.supplierID, domain.ServiceLevelP90)
	require.NoError(t, err)
	second, err := f.calc.Calculate(context.Background(), f.storeID, f.supplierID, domain.ServiceLevelP90)
	require.NoError(t, err)

	require.Equal(t, len(first.Suggestions), len(second.Suggestions))
	for i := range first.Suggestions {
		assert.Equal(t, first.Suggestions[i].SKU, second.Suggestions[i].SKU)
		assert.Equal(t, first.Suggestions[i].SuggestedQuantity, second.Suggestions[i].SuggestedQuantity)
	}
}

func TestCalculate_UnknownSupplier(t *testing.T) {
	f := newCalcFixture(t)

	_, err := f.calc.Calculate(context.Background(), f.storeID, uuid.New(), domain.ServiceLevelP90)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
