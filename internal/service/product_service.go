package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"kasir/internal/domain"
	"kasir/internal/repository"
)

// ProductService encapsulates catalog business logic
type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrSKUTaken     = errors.New("sku already in use")
)

func (s *ProductService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.Name == "" || p.SKU == "" || p.Stock < 0 || p.MinStock < 0 {
		return nil, ErrInvalidInput
	}
	if p.PriceRegular.IsNegative() || p.PriceSales.IsNegative() || p.PriceBengkel.IsNegative() {
		return nil, ErrInvalidInput
	}
	if existing, err := s.repo.GetBySKU(ctx, p.SKU); err == nil && existing != nil {
		return nil, ErrSKUTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	cp := p
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateProductParams carries a partial update; nil fields are left as is
type UpdateProductParams struct {
	Name         *string
	Description  *string
	PriceRegular *decimal.Decimal
	PriceSales   *decimal.Decimal
	PriceBengkel *decimal.Decimal
	Stock        *int64
	MinStock     *int64
	Category     *string
}

func (s *ProductService) Update(ctx context.Context, id string, params UpdateProductParams) (*domain.Product, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		if *params.Name == "" {
			return nil, ErrInvalidInput
		}
		p.Name = *params.Name
	}
	if params.Description != nil {
		p.Description = *params.Description
	}
	for _, pair := range []struct {
		src *decimal.Decimal
		dst *decimal.Decimal
	}{
		{params.PriceRegular, &p.PriceRegular},
		{params.PriceSales, &p.PriceSales},
		{params.PriceBengkel, &p.PriceBengkel},
	} {
		if pair.src == nil {
			continue
		}
		if pair.src.IsNegative() {
			return nil, ErrInvalidInput
		}
		*pair.dst = *pair.src
	}
	if params.Stock != nil {
		if *params.Stock < 0 {
			return nil, ErrInvalidInput
		}
		p.Stock = *params.Stock
	}
	if params.MinStock != nil {
		if *params.MinStock < 0 {
			return nil, ErrInvalidInput
		}
		p.MinStock = *params.MinStock
	}
	if params.Category != nil {
		p.Category = *params.Category
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, f)
}

// ListLowStock returns products at or below their minimum stock threshold
func (s *ProductService) ListLowStock(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListLowStock(ctx)
}
