package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"kasir/internal/domain"
	"kasir/internal/events"
	"kasir/internal/repository"
)

var (
	ErrNotEnoughStock      = errors.New("not enough stock")
	ErrUnknownCustomerType = errors.New("unknown customer type")
	ErrUnknownProduct      = errors.New("unknown product")
	ErrInsufficientPayment = errors.New("payment amount is insufficient")
)

// TransactionService is the persistence side of checkout: it re-resolves
// tier prices, re-validates payment and stock, and atomically commits the
// sale with the stock decrement. It is authoritative; whatever a terminal
// computed locally is advisory only.
type TransactionService struct {
	products  repository.ProductRepository
	types     repository.CustomerTypeRepository
	txns      repository.TransactionRepository
	tx        repository.TxManager
	publisher events.Publisher
	logger    zerolog.Logger
}

func NewTransactionService(
	products repository.ProductRepository,
	types repository.CustomerTypeRepository,
	txns repository.TransactionRepository,
	tx repository.TxManager,
	publisher events.Publisher,
	logger zerolog.Logger,
) *TransactionService {
	return &TransactionService{
		products:  products,
		types:     types,
		txns:      txns,
		tx:        tx,
		publisher: publisher,
		logger:    logger,
	}
}

// Create validates and commits a submitted sale. On any validation error
// nothing is written, so the submitting terminal keeps its cart and can
// retry after the cashier adjusts.
func (s *TransactionService) Create(ctx context.Context, cashier domain.User, req domain.TransactionRequest) (*domain.Transaction, error) {
	if len(req.Items) == 0 || !req.PaymentMethod.Valid() || req.PaymentAmount.IsNegative() {
		return nil, ErrInvalidInput
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, ErrInvalidInput
		}
	}

	var created *domain.Transaction
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		customerType, err := s.types.GetByName(ctx, req.CustomerType)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUnknownCustomerType
			}
			return err
		}

		// load and check stock; accumulate updates to avoid partial state
		productCopies := make(map[string]*domain.Product)
		items := make([]domain.TransactionItem, 0, len(req.Items))
		subtotal := decimal.Zero
		discountTotal := decimal.Zero

		for _, it := range req.Items {
			p, err := s.products.GetByID(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrUnknownProduct, it.ProductID)
				}
				return err
			}
			if p.Stock < it.Quantity {
				return fmt.Errorf("%w: %s", ErrNotEnoughStock, p.Name)
			}
			p.Stock -= it.Quantity
			productCopies[p.ID] = p

			qty := decimal.NewFromInt(it.Quantity)
			unit := p.TierPrice(req.CustomerType)
			lineGross := unit.Mul(qty)
			lineDiscount := lineGross.Mul(customerType.DiscountPercentage).Div(decimal.NewFromInt(100))

			items = append(items, domain.TransactionItem{
				ProductID:      p.ID,
				ProductName:    p.Name,
				ProductSKU:     p.SKU,
				Quantity:       it.Quantity,
				UnitPrice:      unit,
				DiscountAmount: lineDiscount,
				TotalPrice:     lineGross.Sub(lineDiscount),
			})
			subtotal = subtotal.Add(lineGross)
			discountTotal = discountTotal.Add(lineDiscount)
		}

		total := subtotal.Sub(discountTotal)
		if req.PaymentAmount.LessThan(total) {
			return ErrInsufficientPayment
		}

		number, err := s.nextNumber(ctx)
		if err != nil {
			return err
		}

		t := domain.Transaction{
			TransactionNumber:   number,
			CustomerType:        customerType.Name,
			CustomerTypeDisplay: customerType.DisplayName,
			Items:               items,
			Subtotal:            subtotal,
			DiscountTotal:       discountTotal,
			TotalAmount:         total,
			PaymentMethod:       req.PaymentMethod,
			PaymentAmount:       req.PaymentAmount,
			ChangeAmount:        req.PaymentAmount.Sub(total),
			CashierID:           cashier.ID,
			CashierName:         cashier.Username,
			Status:              domain.TransactionCompleted,
		}
		if err := s.txns.Create(ctx, &t); err != nil {
			return err
		}

		// persist the stock decrements
		for _, p := range productCopies {
			if err := s.products.Update(ctx, p); err != nil {
				return err
			}
		}
		created = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	// best-effort event; the sale is already committed
	if err := s.publisher.TransactionCompleted(ctx, created); err != nil {
		s.logger.Warn().Err(err).Str("transaction", created.TransactionNumber).
			Msg("failed to publish transaction event")
	}
	return created, nil
}

// nextNumber yields TRX<yyyymmdd><seq>
func (s *TransactionService) nextNumber(ctx context.Context) (string, error) {
	count, err := s.txns.Count(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TRX%s%04d", time.Now().Format("20060102"), count+1), nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.txns.GetByID(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, limit int) ([]domain.Transaction, error) {
	return s.txns.List(ctx, limit)
}
