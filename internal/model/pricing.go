package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingEntry is the admin-managed price-per-day for one
// (service_type, user_role, category) triple. Read-heavy, write-rare.
// When no row matches a requested triple the resolver falls back to the
// versioned default table from configuration.
type PricingEntry struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ServiceType  ServiceType     `gorm:"type:varchar(32);not null;uniqueIndex:idx_service_role_category" json:"service_type"`
	UserRole     UserRole        `gorm:"type:varchar(20);not null;uniqueIndex:idx_service_role_category" json:"user_role"`
	Category     Category        `gorm:"type:varchar(20);not null;uniqueIndex:idx_service_role_category" json:"category"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	DurationDays int             `gorm:"not null;default:1" json:"duration_days"`
	IsDailyPrice bool            `gorm:"not null;default:true" json:"is_daily_price"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PricingEntry) TableName() string {
	return "pricing_entries"
}
