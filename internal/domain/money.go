package domain

import "fmt"

// Cents is a monetary amount in the smallest currency unit. Order totals and
// unit costs are kept integral to avoid floating point drift when summing
// line items and comparing against supplier minimums.
type Cents int64

// Mul multiplies the amount by a unit count.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// String renders the amount as a decimal value, e.g. 123456 -> "1234.56".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
