package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"automarket/internal/config"
	"automarket/internal/model"
)

// PricingService resolves the price per day for a
// (service type, user role, category) triple: configured pricing row first,
// versioned fallback table second. Resolution never fails: a missing row is
// a designed default, not an error, and is not logged at error severity.
type PricingService struct {
	store    PricingStore
	cache    *redis.Client // nil disables caching
	cacheTTL time.Duration
	fallback config.DefaultPricingConfig
}

func NewPricingService(store PricingStore, cache *redis.Client, cacheTTL time.Duration, fallback config.DefaultPricingConfig) *PricingService {
	return &PricingService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		fallback: fallback,
	}
}

// Resolve returns the price per day for the triple. Database trouble degrades
// to the fallback table so a purchase never fails on pricing lookup alone.
func (s *PricingService) Resolve(ctx context.Context, service model.ServiceType, role model.UserRole, category model.Category) decimal.Decimal {
	if price, ok := s.cachedPrice(ctx, service, role, category); ok {
		return price
	}

	entry, err := s.store.GetEntry(ctx, service, role, category)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"service":  service,
			"role":     role,
			"category": category,
		}).Warnf("pricing lookup failed, using fallback table %s: %v", s.fallback.Version, err)
		return s.fallback.Resolve(service, role)
	}
	if entry == nil {
		return s.fallback.Resolve(service, role)
	}

	s.storePrice(ctx, service, role, category, entry.Price)
	return entry.Price
}

// ResolvedPrice is one row of the public pricing listing.
type ResolvedPrice struct {
	ServiceType  model.ServiceType `json:"service_type"`
	PricePerDay  decimal.Decimal   `json:"price_per_day"`
	DurationDays int               `json:"duration_days"`
	IsFallback   bool              `json:"is_fallback"`
}

// List returns the effective price for every service type for a role/category
// pair, marking which rows came from the fallback table, plus the fallback
// table version.
func (s *PricingService) List(ctx context.Context, role model.UserRole, category model.Category) ([]ResolvedPrice, string, error) {
	entries, err := s.store.ListByRoleCategory(ctx, role, category)
	if err != nil {
		return nil, "", fmt.Errorf("list pricing entries: %w", err)
	}

	configured := make(map[model.ServiceType]*model.PricingEntry, len(entries))
	for _, e := range entries {
		configured[e.ServiceType] = e
	}

	all := []model.ServiceType{
		model.ServiceTypeFree, model.ServiceTypeVip, model.ServiceTypeVipPlus,
		model.ServiceTypeSuperVip, model.ServiceTypeColorHighlighting, model.ServiceTypeAutoRenewal,
	}

	resolved := make([]ResolvedPrice, 0, len(all))
	for _, svc := range all {
		if e, ok := configured[svc]; ok {
			resolved = append(resolved, ResolvedPrice{
				ServiceType:  svc,
				PricePerDay:  e.Price,
				DurationDays: e.DurationDays,
				IsFallback:   false,
			})
			continue
		}
		resolved = append(resolved, ResolvedPrice{
			ServiceType:  svc,
			PricePerDay:  s.fallback.Resolve(svc, role),
			DurationDays: 1,
			IsFallback:   true,
		})
	}

	return resolved, s.fallback.Version, nil
}

func (s *PricingService) cacheKey(service model.ServiceType, role model.UserRole, category model.Category) string {
	return fmt.Sprintf("pricing:%s:%s:%s", service, role, category)
}

func (s *PricingService) cachedPrice(ctx context.Context, service model.ServiceType, role model.UserRole, category model.Category) (decimal.Decimal, bool) {
	if s.cache == nil {
		return decimal.Zero, false
	}
	raw, err := s.cache.Get(ctx, s.cacheKey(service, role, category)).Result()
	if err != nil {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return price, true
}

func (s *PricingService) storePrice(ctx context.Context, service model.ServiceType, role model.UserRole, category model.Category, price decimal.Decimal) {
	if s.cache == nil {
		return
	}
	// cache failures never block pricing
	_ = s.cache.Set(ctx, s.cacheKey(service, role, category), price.String(), s.cacheTTL).Err()
}
