package checkout

import (
	"github.com/shopspring/decimal"

	"kasir/internal/domain"
)

var oneHundred = decimal.NewFromInt(100)

// DiscountMode of the operator-entered manual discount
type DiscountMode string

const (
	DiscountNone       DiscountMode = "none"
	DiscountPercentage DiscountMode = "percentage"
	DiscountFixed      DiscountMode = "fixed"
)

// ManualDiscount is applied on top of the customer-type discount
type ManualDiscount struct {
	Mode  DiscountMode    `json:"mode"`
	Value decimal.Decimal `json:"value"`
}

// Totals derived from a cart. Tier and manual discounts are two independent
// deductions from the subtotal, summed and clamped so the total never goes
// negative; they are not compounded multiplicatively.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TierDiscount   decimal.Decimal `json:"tier_discount"`
	ManualDiscount decimal.Decimal `json:"manual_discount"`
	DiscountTotal  decimal.Decimal `json:"discount_total"`
	Total          decimal.Decimal `json:"total"`
}

// ComputeTotals is a pure function of its inputs: identical cart, customer
// type and manual discount always yield identical totals.
func ComputeTotals(cart *Cart, customerType domain.CustomerType, manual ManualDiscount) Totals {
	subtotal := decimal.Zero
	for _, line := range cart.Lines() {
		unit := line.Product.TierPrice(customerType.Name)
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(line.Quantity)))
	}

	tier := subtotal.Mul(customerType.DiscountPercentage).Div(oneHundred)
	if tier.IsNegative() {
		tier = decimal.Zero
	}

	manualAmt := manualAmount(subtotal, manual)

	discount := tier.Add(manualAmt)
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:       subtotal,
		TierDiscount:   tier,
		ManualDiscount: manualAmt,
		DiscountTotal:  discount,
		Total:          total,
	}
}

func manualAmount(subtotal decimal.Decimal, manual ManualDiscount) decimal.Decimal {
	if manual.Value.IsNegative() {
		return decimal.Zero
	}
	switch manual.Mode {
	case DiscountPercentage:
		return subtotal.Mul(manual.Value).Div(oneHundred)
	case DiscountFixed:
		// a fixed discount can never exceed the subtotal on its own
		if manual.Value.GreaterThan(subtotal) {
			return subtotal
		}
		return manual.Value
	default:
		return decimal.Zero
	}
}
