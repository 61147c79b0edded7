package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"automarket/internal/model"
)

// ListingRepository reads and writes the promotional state of car and part
// listings through one category-parameterized interface, so the purchase path
// stays generic over the listing kind.
type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Get(ctx context.Context, category model.Category, id int64) (*model.Listing, error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)

	switch category {
	case model.CategoryParts:
		var part model.Part
		if err := db.First(&part, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrListingNotFound
			}
			return nil, err
		}
		return &model.Listing{ID: part.ID, SellerID: part.SellerID, Category: category, Promo: part.Promo}, nil
	default:
		var car model.Car
		if err := db.First(&car, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrListingNotFound
			}
			return nil, err
		}
		return &model.Listing{ID: car.ID, SellerID: car.SellerID, Category: category, Promo: car.Promo}, nil
	}
}

// UpdatePromo overwrites the full promotional state of a listing.
func (r *ListingRepository) UpdatePromo(ctx context.Context, category model.Category, id int64, promo model.PromoState) error {
	db := dbFrom(ctx, r.db).WithContext(ctx)

	var result *gorm.DB
	switch category {
	case model.CategoryParts:
		result = db.Model(&model.Part{}).Where("id = ?", id).Select(promoColumns).Updates(&model.Part{Promo: promo})
	default:
		result = db.Model(&model.Car{}).Where("id = ?", id).Select(promoColumns).Updates(&model.Car{Promo: promo})
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

// promoColumns forces gorm to write zero values (false/0/NULL) too.
var promoColumns = []string{
	"vip_status", "vip_expiration_date", "vip_active",
	"color_highlighting_enabled", "color_highlighting_expiration_date",
	"color_highlighting_total_days", "color_highlighting_remaining_days",
	"auto_renewal_enabled", "auto_renewal_expiration_date",
	"auto_renewal_days", "auto_renewal_total_days", "auto_renewal_remaining_days",
}

// DecrementRemainingDays takes one day off every listing with an active
// counter for the given add-on. Used by the nightly maintenance job.
func (r *ListingRepository) DecrementRemainingDays(ctx context.Context, category model.Category, addOn model.ServiceType) (int64, error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)

	var column, enabled string
	switch addOn {
	case model.ServiceTypeColorHighlighting:
		column, enabled = "color_highlighting_remaining_days", "color_highlighting_enabled"
	case model.ServiceTypeAutoRenewal:
		column, enabled = "auto_renewal_remaining_days", "auto_renewal_enabled"
	default:
		return 0, errors.New("not a counter-based add-on: " + string(addOn))
	}

	result := db.Model(r.modelFor(category)).
		Where(enabled+" = ? AND "+column+" > 0", true).
		UpdateColumn(column, gorm.Expr(column+" - 1"))
	return result.RowsAffected, result.Error
}

// DisableExhaustedAddOn flips an add-on off once its counter hit zero or its
// expiration passed.
func (r *ListingRepository) DisableExhaustedAddOn(ctx context.Context, category model.Category, addOn model.ServiceType, now time.Time) (int64, error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)

	var column, enabled, expiration string
	switch addOn {
	case model.ServiceTypeColorHighlighting:
		column, enabled, expiration = "color_highlighting_remaining_days", "color_highlighting_enabled", "color_highlighting_expiration_date"
	case model.ServiceTypeAutoRenewal:
		column, enabled, expiration = "auto_renewal_remaining_days", "auto_renewal_enabled", "auto_renewal_expiration_date"
	default:
		return 0, errors.New("not a counter-based add-on: " + string(addOn))
	}

	result := db.Model(r.modelFor(category)).
		Where(enabled+" = ? AND ("+column+" <= 0 OR ("+expiration+" IS NOT NULL AND "+expiration+" < ?))", true, now).
		Update(enabled, false)
	return result.RowsAffected, result.Error
}

func (r *ListingRepository) modelFor(category model.Category) interface{} {
	if category == model.CategoryParts {
		return &model.Part{}
	}
	return &model.Car{}
}
