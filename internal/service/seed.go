package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"kasir/internal/domain"
	"kasir/internal/repository"
)

// SeedService creates the default customer types and admin account.
// Seeding is idempotent: if any customer type exists it does nothing.
type SeedService struct {
	types repository.CustomerTypeRepository
	auth  *AuthService
}

func NewSeedService(types repository.CustomerTypeRepository, auth *AuthService) *SeedService {
	return &SeedService{types: types, auth: auth}
}

// Run returns true when defaults were created, false when already seeded
func (s *SeedService) Run(ctx context.Context) (bool, error) {
	existing, err := s.types.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	defaults := []domain.CustomerType{
		{Name: domain.CustomerRegular, DisplayName: "Pelanggan Biasa", DiscountPercentage: decimal.Zero},
		{Name: domain.CustomerSales, DisplayName: "Sales", DiscountPercentage: decimal.NewFromInt(5)},
		{Name: domain.CustomerBengkel, DisplayName: "Bengkel", DiscountPercentage: decimal.NewFromInt(10)},
	}
	for _, t := range defaults {
		ct := t
		if err := s.types.Create(ctx, &ct); err != nil {
			return false, err
		}
	}

	if _, err := s.auth.Register(ctx, "admin", "admin123", domain.RoleAdmin); err != nil &&
		!errors.Is(err, ErrUsernameTaken) {
		return false, err
	}
	return true, nil
}
