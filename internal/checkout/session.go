package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kasir/internal/domain"
)

var (
	ErrUnknownProduct     = errors.New("product not in catalog")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrSessionReset       = errors.New("session was reset while submitting")
)

// BlockedError carries the validator reason when a submit is refused
type BlockedError struct {
	Reason Reason
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("checkout blocked: %s", e.Reason)
}

// Submitter is the external persistence collaborator. It independently
// validates stock and payment and is the source of truth for final pricing.
type Submitter interface {
	Submit(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error)
}

// Session is one cashier terminal's in-progress transaction. All state is
// private to the session; the mutex serializes the UI-driven mutation
// stream and enforces at most one in-flight submission.
type Session struct {
	mu sync.Mutex

	id        string
	catalog   *Catalog
	submitter Submitter

	cart         Cart
	customerType string
	manual       ManualDiscount
	payment      PaymentIntent

	inFlight bool
	// generation bumps on cancel/reset so a late collaborator reply is
	// discarded instead of mutating a cart that no longer exists
	generation uint64
}

func NewSession(catalog *Catalog, submitter Submitter) *Session {
	return &Session{
		id:           uuid.NewString(),
		catalog:      catalog,
		submitter:    submitter,
		customerType: domain.CustomerRegular,
		payment:      PaymentIntent{Method: domain.PaymentCash},
	}
}

func (s *Session) ID() string { return s.id }

// AddProduct merges quantity into the cart line for a catalog product
func (s *Session) AddProduct(productID string, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p, ok := s.catalog.Product(productID)
	if !ok {
		return ErrUnknownProduct
	}
	s.cart.Add(p, quantity)
	return nil
}

// SetQuantity sets a line to an absolute quantity; <= 0 removes the line
func (s *Session) SetQuantity(productID string, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.SetQuantity(productID, quantity)
}

// RemoveProduct drops a line, idempotently
func (s *Session) RemoveProduct(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(productID)
}

// SelectCustomerType switches the active tier. Unknown names are accepted
// and price at the regular tier with no discount.
func (s *Session) SelectCustomerType(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerType = name
}

// SetManualDiscount replaces the operator discount
func (s *Session) SetManualDiscount(d ManualDiscount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manual = d
}

// SetPayment replaces the tendered payment intent
func (s *Session) SetPayment(p PaymentIntent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payment = p
}

// Totals recomputes the price breakdown from current state
func (s *Session) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalsLocked()
}

func (s *Session) totalsLocked() Totals {
	return ComputeTotals(&s.cart, s.catalog.CustomerType(s.customerType), s.manual)
}

// Decision runs the checkout validator against current state
func (s *Session) Decision() Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CanCheckout(&s.cart, s.totalsLocked().Total, s.payment)
}

// BuildRequest projects the cart and payment into a submission payload
func (s *Session) BuildRequest() domain.TransactionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildRequestLocked()
}

func (s *Session) buildRequestLocked() domain.TransactionRequest {
	lines := s.cart.Lines()
	items := make([]domain.RequestItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.RequestItem{ProductID: line.Product.ID, Quantity: line.Quantity})
	}
	return domain.TransactionRequest{
		CustomerType:  s.customerType,
		Items:         items,
		PaymentMethod: s.payment.Method,
		PaymentAmount: s.payment.Amount,
	}
}

// Submit validates, hands the request to the collaborator and, only on a
// confirmed success, clears the cart and resets payment state. On failure
// everything is left untouched so the cashier can adjust and retry.
func (s *Session) Submit(ctx context.Context) (*domain.Transaction, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	decision := CanCheckout(&s.cart, s.totalsLocked().Total, s.payment)
	if !decision.Allowed {
		s.mu.Unlock()
		return nil, &BlockedError{Reason: decision.Reason}
	}
	req := s.buildRequestLocked()
	gen := s.generation
	s.inFlight = true
	s.mu.Unlock()

	txn, err := s.submitter.Submit(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if s.generation != gen {
		// the session was cancelled while the call was outstanding
		return nil, ErrSessionReset
	}
	if err != nil {
		return nil, err
	}
	s.resetLocked()
	return txn, nil
}

// Cancel discards the in-progress transaction. Any outstanding submission
// result will be dropped when it arrives.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.cart.Clear()
	s.customerType = domain.CustomerRegular
	s.manual = ManualDiscount{}
	s.payment = PaymentIntent{Method: domain.PaymentCash}
	s.generation++
}

// View is a consistent read-only snapshot for display
type View struct {
	ID           string         `json:"id"`
	CustomerType string         `json:"customer_type"`
	Lines        []ViewLine     `json:"lines"`
	Manual       ManualDiscount `json:"manual_discount"`
	Payment      PaymentIntent  `json:"payment"`
	Totals       Totals         `json:"totals"`
	Decision     Decision       `json:"decision"`
}

// ViewLine is one displayed cart row with its resolved unit price
type ViewLine struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Snapshot renders the session under one lock acquisition
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := s.totalsLocked()
	lines := s.cart.Lines()
	viewLines := make([]ViewLine, 0, len(lines))
	for _, line := range lines {
		unit := line.Product.TierPrice(s.customerType)
		viewLines = append(viewLines, ViewLine{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			ProductSKU:  line.Product.SKU,
			Quantity:    line.Quantity,
			UnitPrice:   unit,
			LineTotal:   unit.Mul(decimal.NewFromInt(line.Quantity)),
		})
	}
	return View{
		ID:           s.id,
		CustomerType: s.customerType,
		Lines:        viewLines,
		Manual:       s.manual,
		Payment:      s.payment,
		Totals:       totals,
		Decision:     CanCheckout(&s.cart, totals.Total, s.payment),
	}
}
