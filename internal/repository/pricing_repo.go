package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"automarket/internal/model"
)

type PricingRepository struct {
	db *gorm.DB
}

func NewPricingRepository(db *gorm.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

// GetEntry returns the pricing row for the triple, or (nil, nil) when no row
// exists. A missing row is not an error: the resolver applies the fallback.
func (r *PricingRepository) GetEntry(ctx context.Context, service model.ServiceType, role model.UserRole, category model.Category) (*model.PricingEntry, error) {
	var entry model.PricingEntry
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("service_type = ? AND user_role = ? AND category = ?", service, role, category).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListByRoleCategory returns all configured entries for a role/category pair.
func (r *PricingRepository) ListByRoleCategory(ctx context.Context, role model.UserRole, category model.Category) ([]*model.PricingEntry, error) {
	var entries []*model.PricingEntry
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("user_role = ? AND category = ?", role, category).
		Order("service_type ASC").
		Find(&entries).Error
	return entries, err
}
