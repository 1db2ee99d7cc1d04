package checkout

import (
	"testing"

	"github.com/shopspring/decimal"

	"kasir/internal/domain"
)

func product(id string, regular, sales, bengkel int64) domain.Product {
	return domain.Product{
		ID:           id,
		Name:         "Product " + id,
		SKU:          "SKU-" + id,
		PriceRegular: decimal.NewFromInt(regular),
		PriceSales:   decimal.NewFromInt(sales),
		PriceBengkel: decimal.NewFromInt(bengkel),
		Stock:        100,
		MinStock:     5,
	}
}

func checkInvariants(t *testing.T, c *Cart) {
	t.Helper()
	seen := make(map[string]bool)
	for _, line := range c.Lines() {
		if seen[line.Product.ID] {
			t.Fatalf("duplicate line for product %s", line.Product.ID)
		}
		seen[line.Product.ID] = true
		if line.Quantity < 1 {
			t.Fatalf("line %s has quantity %d", line.Product.ID, line.Quantity)
		}
	}
}

func TestCartAddMergesByProduct(t *testing.T) {
	var c Cart
	p := product("a", 10000, 9000, 8000)

	c.Add(p, 1)
	c.Add(p, 1)
	c.Add(p, 1)
	checkInvariants(t, &c)

	var c2 Cart
	c2.Add(p, 3)

	if got, want := c.Quantity("a"), c2.Quantity("a"); got != want {
		t.Fatalf("three adds of 1 != one add of 3: %d vs %d", got, want)
	}
	if len(c.Lines()) != 1 {
		t.Fatalf("expected single line, got %d", len(c.Lines()))
	}
}

func TestCartAddRejectsNonPositive(t *testing.T) {
	var c Cart
	p := product("a", 10000, 9000, 8000)
	if c.Add(p, 0) {
		t.Fatalf("add of 0 accepted")
	}
	if c.Add(p, -2) {
		t.Fatalf("add of -2 accepted")
	}
	if !c.Empty() {
		t.Fatalf("cart should still be empty")
	}
}

func TestCartSetQuantityIsAbsolute(t *testing.T) {
	var c Cart
	p := product("a", 10000, 9000, 8000)
	c.Add(p, 5)
	c.SetQuantity("a", 2)
	if got := c.Quantity("a"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	checkInvariants(t, &c)
}

func TestCartSetQuantityRemovesOnNonPositive(t *testing.T) {
	for _, qty := range []int64{0, -5} {
		var c Cart
		c.Add(product("a", 10000, 9000, 8000), 3)
		c.SetQuantity("a", qty)
		if !c.Empty() {
			t.Fatalf("SetQuantity(%d) did not remove the line", qty)
		}
	}
}

func TestCartRemoveIdempotent(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 1)
	c.Remove("a")
	c.Remove("a")
	c.Remove("never-added")
	if !c.Empty() {
		t.Fatalf("cart not empty after removes")
	}
}

func TestCartClearIdempotent(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 2)
	c.Clear()
	c.Clear()
	if !c.Empty() {
		t.Fatalf("cart not empty after clear")
	}
}

func TestCartPreservesInsertionOrder(t *testing.T) {
	var c Cart
	c.Add(product("a", 1, 1, 1), 1)
	c.Add(product("b", 1, 1, 1), 1)
	c.Add(product("c", 1, 1, 1), 1)
	c.Add(product("a", 1, 1, 1), 1) // merge must not reorder

	lines := c.Lines()
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if lines[i].Product.ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, lines[i].Product.ID)
		}
	}
}
