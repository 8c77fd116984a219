// backend-go/internal/reorder/validator.go
package reorder

import (
	"fmt"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

// Validator turns a candidate suggestion set into order lines that satisfy
// the supplier's commercial constraints: case-pack rounding, minimum order
// quantity and minimum order value.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate rounds every line to its case pack, drops lines that round to
// zero, and scales the least urgent lines up in case-pack increments until
// the supplier's minimum order quantity and value are both met. The input
// is not modified; callers get adjusted copies ordered most urgent first.
// It fails with domain.ErrMinimumOrderUnreachable when no line can absorb
// the remaining deficit.
func (v *Validator) Validate(suggestions []*domain.ReorderSuggestion, supplier *domain.Supplier) ([]*domain.ReorderSuggestion, error) {
	lines := make([]*domain.ReorderSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		line := *s
		line.SuggestedQuantity = roundToCasePack(line.SuggestedQuantity, line.CasePackSize)
		if line.SuggestedQuantity <= 0 {
			continue
		}
		lines = append(lines, &line)
	}
	sortSuggestions(lines)

	if len(lines) == 0 {
		if supplier.MinOrderQuantity > 0 || supplier.MinOrderValue > 0 {
			return nil, fmt.Errorf("%w: no orderable lines", domain.ErrMinimumOrderUnreachable)
		}
		return lines, nil
	}

	if err := meetMinimumQuantity(lines, supplier.MinOrderQuantity); err != nil {
		return nil, err
	}
	if err := meetMinimumValue(lines, supplier.MinOrderValue); err != nil {
		return nil, err
	}

	return lines, nil
}

// meetMinimumQuantity pads the least urgent line in case-pack steps until
// the total unit count reaches the supplier minimum.
func meetMinimumQuantity(lines []*domain.ReorderSuggestion, minQuantity int) error {
	total := 0
	for _, line := range lines {
		total += line.SuggestedQuantity
	}
	if total >= minQuantity {
		return nil
	}

	line := lines[len(lines)-1]
	step := casePackStep(line.CasePackSize)
	deficit := minQuantity - total
	steps := (deficit + step - 1) / step
	line.SuggestedQuantity += steps * step
	return nil
}

// meetMinimumValue pads the least urgent lines in case-pack steps until the
// order value reaches the supplier minimum. Lines with a zero unit cost
// cannot absorb value, so they are passed over.
func meetMinimumValue(lines []*domain.ReorderSuggestion, minValue domain.Cents) error {
	total := orderValue(lines)
	if total >= minValue {
		return nil
	}

	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if line.UnitCost <= 0 {
			continue
		}
		step := casePackStep(line.CasePackSize)
		stepValue := line.UnitCost.Mul(step)

		deficit := int64(minValue - total)
		steps := (deficit + int64(stepValue) - 1) / int64(stepValue)
		line.SuggestedQuantity += int(steps) * step
		return nil
	}

	return fmt.Errorf("%w: order value %s below supplier minimum %s", domain.ErrMinimumOrderUnreachable, total, minValue)
}

func orderValue(lines []*domain.ReorderSuggestion) domain.Cents {
	var total domain.Cents
	for _, line := range lines {
		total += line.UnitCost.Mul(line.SuggestedQuantity)
	}
	return total
}

func roundToCasePack(qty, casePack int) int {
	if casePack <= 1 || qty <= 0 {
		return qty
	}
	if rem := qty % casePack; rem != 0 {
		qty += casePack - rem
	}
	return qty
}

func casePackStep(casePack int) int {
	if casePack <= 1 {
		return 1
	}
	return casePack
}
