package checkout

import (
	"testing"

	"github.com/shopspring/decimal"

	"kasir/internal/domain"
)

func TestCanCheckoutEmptyCart(t *testing.T) {
	var c Cart
	for _, amount := range []int64{0, 50000} {
		d := CanCheckout(&c, decimal.Zero, PaymentIntent{
			Method: domain.PaymentCash,
			Amount: decimal.NewFromInt(amount),
		})
		if d.Allowed || d.Reason != ReasonEmptyCart {
			t.Fatalf("amount %d: expected empty-cart, got %+v", amount, d)
		}
	}
}

func TestCanCheckoutInvalidAmount(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 1)

	d := CanCheckout(&c, decimal.NewFromInt(10000), PaymentIntent{
		Method: domain.PaymentCash,
		Amount: decimal.NewFromInt(-1),
	})
	if d.Allowed || d.Reason != ReasonInvalidAmount {
		t.Fatalf("expected invalid-amount, got %+v", d)
	}

	d = CanCheckout(&c, decimal.NewFromInt(10000), PaymentIntent{
		Method: "cek",
		Amount: decimal.NewFromInt(10000),
	})
	if d.Allowed || d.Reason != ReasonInvalidAmount {
		t.Fatalf("expected invalid-amount for bad method, got %+v", d)
	}
}

func TestCanCheckoutInsufficient(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 1)

	d := CanCheckout(&c, decimal.NewFromInt(20700), PaymentIntent{
		Method: domain.PaymentCash,
		Amount: decimal.NewFromInt(15000),
	})
	if d.Allowed || d.Reason != ReasonInsufficientPayment {
		t.Fatalf("expected insufficient-payment, got %+v", d)
	}
	if d.Change != nil {
		t.Fatalf("blocked checkout must not compute change")
	}
}

func TestCanCheckoutChange(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 1)

	d := CanCheckout(&c, decimal.NewFromInt(20700), PaymentIntent{
		Method: domain.PaymentCash,
		Amount: decimal.NewFromInt(25000),
	})
	if !d.Allowed {
		t.Fatalf("expected allowed, got %+v", d)
	}
	if d.Change == nil || !d.Change.Equal(decimal.NewFromInt(4300)) {
		t.Fatalf("expected change 4300, got %v", d.Change)
	}
}

func TestCanCheckoutExactPayment(t *testing.T) {
	var c Cart
	c.Add(product("a", 10000, 9000, 8000), 1)

	d := CanCheckout(&c, decimal.NewFromInt(10000), PaymentIntent{
		Method: domain.PaymentTransfer,
		Amount: decimal.NewFromInt(10000),
	})
	if !d.Allowed || !d.Change.Equal(decimal.Zero) {
		t.Fatalf("exact payment should pass with zero change, got %+v", d)
	}
}
