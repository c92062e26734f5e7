package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxRate is the GST rate applied to every order.
var TaxRate = decimal.NewFromFloat(0.18)

// sqftDivisor converts width*height in inches to square feet.
var sqftDivisor = decimal.NewFromInt(144)

// lineTotalTolerance is the largest accepted drift between the submitted line
// total and unit_price * quantity.
var lineTotalTolerance = decimal.NewFromFloat(0.01)

var ErrInvalidLineItem = errors.New("invalid_line_item")

// Line is a single priced glass pane position.
type Line struct {
	Quantity   int
	Width      decimal.Decimal
	Height     decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Quote is the priced view of an order. All monetary amounts are rounded
// half-up to two decimal places.
type Quote struct {
	Subtotal  decimal.Decimal
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
	TotalSqft decimal.Decimal
}

// Price computes subtotal, tax, total and total area for the given lines.
func Price(lines []Line) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, fmt.Errorf("%w: order has no line items", ErrInvalidLineItem)
	}

	subtotal := decimal.Zero
	sqft := decimal.Zero
	for i, line := range lines {
		if err := validateLine(i, line); err != nil {
			return Quote{}, err
		}
		subtotal = subtotal.Add(line.TotalPrice)
		qty := decimal.NewFromInt(int64(line.Quantity))
		sqft = sqft.Add(line.Width.Mul(line.Height).Mul(qty).Div(sqftDivisor))
	}

	subtotal = subtotal.Round(2)
	taxAmount := subtotal.Mul(TaxRate).Round(2)

	return Quote{
		Subtotal:  subtotal,
		TaxRate:   TaxRate,
		TaxAmount: taxAmount,
		Total:     subtotal.Add(taxAmount),
		TotalSqft: sqft.Round(2),
	}, nil
}

// SplitAdvance divides a total into advance and remaining legs for the given
// percent. The two legs always add back up to the total to the cent.
func SplitAdvance(total decimal.Decimal, percent int) (advance, remaining decimal.Decimal) {
	advance = total.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)).Round(2)
	remaining = total.Sub(advance)
	return advance, remaining
}

func validateLine(i int, line Line) error {
	switch {
	case line.Quantity <= 0:
		return fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidLineItem, i)
	case !line.Width.IsPositive():
		return fmt.Errorf("%w: line %d width must be positive", ErrInvalidLineItem, i)
	case !line.Height.IsPositive():
		return fmt.Errorf("%w: line %d height must be positive", ErrInvalidLineItem, i)
	case line.UnitPrice.IsNegative():
		return fmt.Errorf("%w: line %d unit price cannot be negative", ErrInvalidLineItem, i)
	}

	expected := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	if line.TotalPrice.Sub(expected).Abs().GreaterThan(lineTotalTolerance) {
		return fmt.Errorf("%w: line %d total %s does not match unit price * quantity (%s)",
			ErrInvalidLineItem, i, line.TotalPrice.StringFixed(2), expected.StringFixed(2))
	}
	return nil
}
