package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"kasir/internal/domain"
	"kasir/internal/repository"
)

var ErrCustomerTypeTaken = errors.New("customer type already exists")

var maxDiscount = decimal.NewFromInt(100)

// CustomerTypeService manages the discount classes
type CustomerTypeService struct {
	repo repository.CustomerTypeRepository
}

func NewCustomerTypeService(repo repository.CustomerTypeRepository) *CustomerTypeService {
	return &CustomerTypeService{repo: repo}
}

func (s *CustomerTypeService) Create(ctx context.Context, t domain.CustomerType) (*domain.CustomerType, error) {
	if t.Name == "" || t.DisplayName == "" {
		return nil, ErrInvalidInput
	}
	if t.DiscountPercentage.IsNegative() || t.DiscountPercentage.GreaterThan(maxDiscount) {
		return nil, ErrInvalidInput
	}
	if existing, err := s.repo.GetByName(ctx, t.Name); err == nil && existing != nil {
		return nil, ErrCustomerTypeTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	cp := t
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *CustomerTypeService) GetByName(ctx context.Context, name string) (*domain.CustomerType, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByName(ctx, name)
}

func (s *CustomerTypeService) List(ctx context.Context) ([]domain.CustomerType, error) {
	return s.repo.List(ctx)
}
