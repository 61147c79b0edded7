package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automarket/internal/config"
	"automarket/internal/model"
)

type pricingStoreStub struct {
	entries map[string]*model.PricingEntry
	failing bool
}

func pricingKey(service model.ServiceType, role model.UserRole, category model.Category) string {
	return fmt.Sprintf("%s:%s:%s", service, role, category)
}

func (p *pricingStoreStub) GetEntry(ctx context.Context, service model.ServiceType, role model.UserRole, category model.Category) (*model.PricingEntry, error) {
	if p.failing {
		return nil, fmt.Errorf("simulated database failure")
	}
	return p.entries[pricingKey(service, role, category)], nil
}

func (p *pricingStoreStub) ListByRoleCategory(ctx context.Context, role model.UserRole, category model.Category) ([]*model.PricingEntry, error) {
	if p.failing {
		return nil, fmt.Errorf("simulated database failure")
	}
	var out []*model.PricingEntry
	for _, e := range p.entries {
		if e.UserRole == role && e.Category == category {
			out = append(out, e)
		}
	}
	return out, nil
}

func testFallback() config.DefaultPricingConfig {
	return config.DefaultPricingConfig{
		Version: "v1",
		PerDay: map[string]map[string]float64{
			"vip": {
				"user":   2,
				"dealer": 1.5,
			},
			"color_highlighting": {
				"user":   0.5,
				"dealer": 0.5,
			},
		},
	}
}

func TestPricingResolve_ConfiguredEntryWins(t *testing.T) {
	store := &pricingStoreStub{entries: map[string]*model.PricingEntry{
		pricingKey(model.ServiceTypeVip, model.RoleUser, model.CategoryCars): {
			ServiceType: model.ServiceTypeVip,
			UserRole:    model.RoleUser,
			Category:    model.CategoryCars,
			Price:       decimal.NewFromFloat(3.25),
		},
	}}
	svc := NewPricingService(store, nil, 0, testFallback())

	price := svc.Resolve(context.Background(), model.ServiceTypeVip, model.RoleUser, model.CategoryCars)
	assert.True(t, price.Equal(decimal.NewFromFloat(3.25)), "price = %s", price)
}

func TestPricingResolve_FallbackIsDeterministic(t *testing.T) {
	store := &pricingStoreStub{entries: map[string]*model.PricingEntry{}}
	svc := NewPricingService(store, nil, 0, testFallback())

	// no row configured: the fallback table answers, identically every time
	for i := 0; i < 3; i++ {
		price := svc.Resolve(context.Background(), model.ServiceTypeVip, model.RoleDealer, model.CategoryCars)
		assert.True(t, price.Equal(decimal.NewFromFloat(1.5)), "price = %s", price)
	}
}

func TestPricingResolve_UnknownCombinationIsZero(t *testing.T) {
	store := &pricingStoreStub{entries: map[string]*model.PricingEntry{}}
	svc := NewPricingService(store, nil, 0, testFallback())

	price := svc.Resolve(context.Background(), model.ServiceTypeAutoRenewal, model.RoleAutosalon, model.CategoryParts)
	assert.True(t, price.IsZero())
}

func TestPricingResolve_StoreFailureDegradesToFallback(t *testing.T) {
	store := &pricingStoreStub{failing: true}
	svc := NewPricingService(store, nil, 0, testFallback())

	price := svc.Resolve(context.Background(), model.ServiceTypeVip, model.RoleUser, model.CategoryCars)
	assert.True(t, price.Equal(decimal.NewFromInt(2)), "price = %s", price)
}

func TestPricingList_MarksFallbackRows(t *testing.T) {
	store := &pricingStoreStub{entries: map[string]*model.PricingEntry{
		pricingKey(model.ServiceTypeVip, model.RoleUser, model.CategoryCars): {
			ServiceType:  model.ServiceTypeVip,
			UserRole:     model.RoleUser,
			Category:     model.CategoryCars,
			Price:        decimal.NewFromInt(3),
			DurationDays: 7,
		},
	}}
	svc := NewPricingService(store, nil, 0, testFallback())

	resolved, version, err := svc.List(context.Background(), model.RoleUser, model.CategoryCars)
	require.NoError(t, err)
	assert.Equal(t, "v1", version)

	byService := make(map[model.ServiceType]ResolvedPrice, len(resolved))
	for _, r := range resolved {
		byService[r.ServiceType] = r
	}

	vip := byService[model.ServiceTypeVip]
	assert.False(t, vip.IsFallback)
	assert.True(t, vip.PricePerDay.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, 7, vip.DurationDays)

	highlight := byService[model.ServiceTypeColorHighlighting]
	assert.True(t, highlight.IsFallback)
	assert.True(t, highlight.PricePerDay.Equal(decimal.NewFromFloat(0.5)))
}
