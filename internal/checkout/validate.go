package checkout

import (
	"github.com/shopspring/decimal"

	"kasir/internal/domain"
)

// PaymentIntent is what the customer presents at the till
type PaymentIntent struct {
	Method domain.PaymentMethod `json:"method"`
	Amount decimal.Decimal      `json:"amount"`
}

// Reason a checkout is blocked
type Reason string

const (
	ReasonEmptyCart           Reason = "empty-cart"
	ReasonInvalidAmount       Reason = "invalid-amount"
	ReasonInsufficientPayment Reason = "insufficient-payment"
)

// Decision is advisory: the persistence side re-validates sufficiency and
// stock and stays authoritative.
type Decision struct {
	Allowed bool             `json:"allowed"`
	Change  *decimal.Decimal `json:"change,omitempty"`
	Reason  Reason           `json:"reason,omitempty"`
}

// CanCheckout decides whether checkout may proceed and computes change.
// It never auto-corrects the tendered amount; blocked checkouts carry a
// distinct reason for user feedback.
func CanCheckout(cart *Cart, total decimal.Decimal, payment PaymentIntent) Decision {
	if cart.Empty() {
		return Decision{Reason: ReasonEmptyCart}
	}
	if payment.Amount.IsNegative() || !payment.Method.Valid() {
		return Decision{Reason: ReasonInvalidAmount}
	}
	if payment.Amount.LessThan(total) {
		return Decision{Reason: ReasonInsufficientPayment}
	}
	change := payment.Amount.Sub(total)
	return Decision{Allowed: true, Change: &change}
}
