package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kasir/internal/domain"
	"kasir/internal/repository"
)

func TestSeed_RunOnce(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	types := repository.NewMemoryCustomerTypes(store)
	auth := NewAuthService(repository.NewMemoryUsers(store), "secret", time.Hour)
	seed := NewSeedService(types, auth)

	created, err := seed.Run(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !created {
		t.Fatalf("expected first run to create defaults")
	}

	all, err := types.List(ctx)
	if err != nil {
		t.Fatalf("list types: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 customer types, got %d", len(all))
	}

	if _, _, err := auth.Login(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("admin login after seed: %v", err)
	}

	// second run is a no-op
	created, err = seed.Run(ctx)
	if err != nil {
		t.Fatalf("seed again: %v", err)
	}
	if created {
		t.Fatalf("expected second run to be a no-op")
	}
}

func TestSeed_DiscountDefaults(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	types := repository.NewMemoryCustomerTypes(store)
	auth := NewAuthService(repository.NewMemoryUsers(store), "secret", time.Hour)
	if _, err := NewSeedService(types, auth).Run(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	want := map[string]int64{
		domain.CustomerRegular: 0,
		domain.CustomerSales:   5,
		domain.CustomerBengkel: 10,
	}
	for name, pct := range want {
		ct, err := types.GetByName(ctx, name)
		if err != nil {
			t.Fatalf("get %s: %v", name, err)
		}
		if !ct.DiscountPercentage.Equal(decimal.NewFromInt(pct)) {
			t.Fatalf("%s discount = %s, want %d", name, ct.DiscountPercentage, pct)
		}
	}
}
