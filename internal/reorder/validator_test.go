package reorder

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

func suggestionLine(sku string, qty, casePack int, unitCost domain.Cents, urgency float64) *domain.ReorderSuggestion {
	return &domain.ReorderSuggestion{
		ProductID:         uuid.New(),
		SKU:               sku,
		SuggestedQuantity: qty,
		CasePackSize:      casePack,
		UnitCost:          unitCost,
		ReorderTrigger:    urgency,
	}
}

func TestValidate_RoundsToCasePack(t *testing.T) {
	v := NewValidator()
	lines, err := v.Validate([]*domain.ReorderSuggestion{
		suggestionLine("SKU-A", 72, 25, 100, 10),
	}, &domain.Supplier{})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 75, lines[0].SuggestedQuantity)
}

func TestValidate_DropsZeroQuantityLines(t *testing.T) {
	v := NewValidator()
	lines, err := v.Validate([]*domain.ReorderSuggestion{
		suggestionLine("SKU-A", 0, 12, 100, 10),
		suggestionLine("SKU-B", 5, 1, 100, 4),
	}, &domain.Supplier{})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "SKU-B", lines[0].SKU)
}

func TestValidate_DoesNotModifyInput(t *testing.T) {
	v := NewValidator()
	input := []*domain.ReorderSuggestion{
		suggestionLine("SKU-A", 72, 25, 100, 10),
	}
	_, err := v.Validate(input, &domain.Supplier{})
	require.NoError(t, err)
	assert.Equal(t, 72, input[0].SuggestedQuantity)
}

func TestValidate_OrdersMostUrgentFirst(t *testing.T) {
	v := NewValidator()
	lines, err := v.Validate([]*domain.ReorderSuggestion{
		suggestionLine("SKU-A", 10, 1, 100, 4),
		suggestionLine("SKU-B", 10, 1, 100, 20),
	}, &domain.Supplier{})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "SKU-B", lines[0].SKU)
	assert.Equal(t, "SKU-A", lines[1].SKU)
}

func TestValidate_PadsLeastUrgentLineToMinimumQuantity(t *testing.T) {
	v := NewValidator()
	lines, err := v.Validate([]*domain.ReorderSuggestion{
		suggestionLine("SKU-A", 30, 1, 100, 20),
		suggestionLine("SKU-B", 24, 12, 100, 4),
	}, &domain.Supplier{MinOrderQuantity: 100})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// 30 + 24 = 54 units; deficit 46 fills in case packs of 12 on the least
	// urgent line: 4 packs add 48 units.
	assert.Equal(t, 30, lines[0].SuggestedQuantity)
	assert.Equal(t, 72, lines[1].SuggestedQuantity)
}

func TestValidate_ScalesLeastUrgentLineToMinimumValue(t *testing.T) {
	v := NewValidator()
	lines, err := v.Validate([]*domain.ReorderSuggestion{
		suggestionLine("SKU-A", 40, 1, 1000, 20),
		suggestionLine("SKU-B", 30, 10, 800, 4),
	}, &domain.Supplier{MinOrderValue: 100_000})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// $400 + $240 = $640 against a $1000 minimum. The least urgent line
	// absorbs the $360 deficit in $80 case-pack steps: 5 packs, 50 units.
	assert.Equal(t, 40, lines[0].SuggestedQuantity)
	assert.Equal(t, 80, lines[1].SuggestedQuantity)
	assert.GreaterOrEqual(t, int64(orderValue(lines)), int64(100_000))
}

func TestValidate_MinimumValueSkipsZeroCostLines(t *testing.T) {
	v := NewValidator()
	lines, err := v.Validate([]*domain.ReorderSuggestion{
		suggestionLine("SKU-A", 10, 1, 500, 20),
		suggestionLine("SKU-B", 10, 1, 0, 4),
	}, &domain.Supplier{MinOrderValue: 10_000})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// SKU-B cannot absorb value, so SKU-A is padded instead: $50 at $5 per
	// unit needs 10 more units.
	assert.Equal(t, 20, lines[0].SuggestedQuantity)
	assert.Equal(t, 10, lines[1].SuggestedQuantity)
}

func TestValidate_MinimumValueUnreachable(t *testing.T) {
	v := NewValidator()
	_, err := v.Validate([]*domain.ReorderSuggestion{
		suggestionLine("SKU-A", 10, 1, 0, 20),
	}, &domain.Supplier{MinOrderValue: 10_000})
	assert.ErrorIs(t, err, domain.ErrMinimumOrderUnreachable)
}

func TestValidate_MinimumUnreachableWithNoOrderableLines(t *testing.T) {
	v := NewValidator()
	_, err := v.Validate([]*domain.ReorderSuggestion{
		suggestionLine("SKU-A", 0, 12, 100, 20),
	}, &domain.Supplier{MinOrderQuantity: 50})
	assert.ErrorIs(t, err, domain.ErrMinimumOrderUnreachable)
}

func TestValidate_EmptyInputWithoutMinimums(t *testing.T) {
	v := NewValidator()
	lines, err := v.Validate(nil, &domain.Supplier{})
	require.NoError(t, err)
	assert.Empty(t, lines)
}
