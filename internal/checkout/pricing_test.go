package checkout

import (
	"testing"

	"github.com/shopspring/decimal"

	"kasir/internal/domain"
)

func customerType(name string, discount int64) domain.CustomerType {
	return domain.CustomerType{
		Name:               name,
		DisplayName:        name,
		DiscountPercentage: decimal.NewFromInt(discount),
	}
}

func eq(t *testing.T, got decimal.Decimal, want int64, what string) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("%s: expected %d, got %s", what, want, got)
	}
}

func TestResolvePriceTiers(t *testing.T) {
	p := product("a", 10000, 9000, 8000)
	cases := []struct {
		customerType string
		want         int64
	}{
		{domain.CustomerRegular, 10000},
		{domain.CustomerSales, 9000},
		{domain.CustomerBengkel, 8000},
		{"walk-in", 10000}, // unknown falls back to regular
		{"", 10000},
	}
	for _, tc := range cases {
		if got := p.TierPrice(tc.customerType); !got.Equal(decimal.NewFromInt(tc.want)) {
			t.Fatalf("tier %q: expected %d, got %s", tc.customerType, tc.want, got)
		}
	}
}

func TestComputeTotalsRegularNoDiscount(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 2)
	c.Add(product("b", 7000, 5000, 4000), 1)

	totals := ComputeTotals(&c, customerType(domain.CustomerRegular, 0), ManualDiscount{})
	eq(t, totals.Subtotal, 27000, "subtotal")
	eq(t, totals.DiscountTotal, 0, "discount")
	eq(t, totals.Total, 27000, "total")
}

func TestComputeTotalsSalesTier(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 2)
	c.Add(product("b", 7000, 5000, 4000), 1)

	totals := ComputeTotals(&c, customerType(domain.CustomerSales, 10), ManualDiscount{})
	eq(t, totals.Subtotal, 23000, "subtotal") // 9000*2 + 5000
	eq(t, totals.TierDiscount, 2300, "tier discount")
	eq(t, totals.Total, 20700, "total")
}

func TestComputeTotalsManualPercentage(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 2) // subtotal 20000

	totals := ComputeTotals(&c, customerType(domain.CustomerRegular, 0),
		ManualDiscount{Mode: DiscountPercentage, Value: decimal.NewFromInt(5)})
	eq(t, totals.ManualDiscount, 1000, "manual discount")
	eq(t, totals.Total, 19000, "total")
}

func TestComputeTotalsManualFixedClamped(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 1)

	totals := ComputeTotals(&c, customerType(domain.CustomerRegular, 0),
		ManualDiscount{Mode: DiscountFixed, Value: decimal.NewFromInt(999999)})
	eq(t, totals.ManualDiscount, 10000, "fixed discount clamps at subtotal")
	eq(t, totals.Total, 0, "total")
}

// The two discounts are additive deductions from subtotal, not compounded
func TestComputeTotalsDiscountsAreAdditive(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 1) // subtotal 10000

	totals := ComputeTotals(&c, customerType(domain.CustomerSales, 10),
		ManualDiscount{Mode: DiscountPercentage, Value: decimal.NewFromInt(10)})
	// sales subtotal 9000, tier 900, manual 900; compounding would give 8100*0.9
	eq(t, totals.Subtotal, 9000, "subtotal")
	eq(t, totals.DiscountTotal, 1800, "additive discount")
	eq(t, totals.Total, 7200, "total")
}

func TestComputeTotalsNeverNegative(t *testing.T) {
	var c Cart
	c.Add(product("a", 1000, 1000, 1000), 1)

	totals := ComputeTotals(&c, customerType(domain.CustomerRegular, 100),
		ManualDiscount{Mode: DiscountFixed, Value: decimal.NewFromInt(1000)})
	eq(t, totals.Total, 0, "total clamped at zero")
	if totals.Total.GreaterThan(totals.Subtotal) {
		t.Fatalf("total exceeds subtotal")
	}
}

func TestComputeTotalsNegativeManualIgnored(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 1)

	totals := ComputeTotals(&c, customerType(domain.CustomerRegular, 0),
		ManualDiscount{Mode: DiscountFixed, Value: decimal.NewFromInt(-500)})
	eq(t, totals.DiscountTotal, 0, "negative manual value ignored")
	eq(t, totals.Total, 10000, "total")
}

func TestComputeTotalsDeterministic(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 3)
	ct := customerType(domain.CustomerSales, 10)
	manual := ManualDiscount{Mode: DiscountPercentage, Value: decimal.NewFromInt(2)}

	first := ComputeTotals(&c, ct, manual)
	second := ComputeTotals(&c, ct, manual)
	if !first.Total.Equal(second.Total) || !first.DiscountTotal.Equal(second.DiscountTotal) {
		t.Fatalf("recomputation diverged: %+v vs %+v", first, second)
	}
}

// Fractional tier prices must accumulate exactly, line after line
func TestComputeTotalsExactFractions(t *testing.T) {
	var c Cart
	p := product("a", 0, 0, 0)
	p.PriceRegular = decimal.RequireFromString("0.10")
	for i := 0; i < 3; i++ {
		c.Add(p, 1)
	}
	totals := ComputeTotals(&c, customerType(domain.CustomerRegular, 0), ManualDiscount{})
	if !totals.Subtotal.Equal(decimal.RequireFromString("0.30")) {
		t.Fatalf("expected exact 0.30, got %s", totals.Subtotal)
	}
}
