package model

import (
	"time"
)

// PromoState is the set of promotional fields carried by every listing,
// cars and parts alike. Expiration is passive: nothing flips vip_status back
// to none when the date passes, readers must derive the effective state via
// EffectiveVip / AddOnActive.
type PromoState struct {
	VipStatus         VipStatus  `gorm:"type:varchar(20);not null;default:none" json:"vip_status"`
	VipExpirationDate *time.Time `json:"vip_expiration_date"`
	VipActive         bool       `gorm:"not null;default:false" json:"vip_active"`

	ColorHighlightingEnabled        bool       `gorm:"not null;default:false" json:"color_highlighting_enabled"`
	ColorHighlightingExpirationDate *time.Time `json:"color_highlighting_expiration_date"`
	ColorHighlightingTotalDays      int        `gorm:"not null;default:0" json:"color_highlighting_total_days"`
	ColorHighlightingRemainingDays  int        `gorm:"not null;default:0" json:"color_highlighting_remaining_days"`

	AutoRenewalEnabled        bool       `gorm:"not null;default:false" json:"auto_renewal_enabled"`
	AutoRenewalExpirationDate *time.Time `json:"auto_renewal_expiration_date"`
	AutoRenewalDays           int        `gorm:"not null;default:0" json:"auto_renewal_days"`
	AutoRenewalTotalDays      int        `gorm:"not null;default:0" json:"auto_renewal_total_days"`
	AutoRenewalRemainingDays  int        `gorm:"not null;default:0" json:"auto_renewal_remaining_days"`
}

// EffectiveVip derives the tier that is actually in force at now.
// Invariant: vip_status = none implies vip_expiration_date is null, so a nil
// expiration on a paid tier means "no end date" and counts as active.
func (p *PromoState) EffectiveVip(now time.Time) (VipStatus, bool) {
	if p.VipStatus == VipStatusNone || p.VipStatus == "" {
		return VipStatusNone, false
	}
	if p.VipExpirationDate != nil && !p.VipExpirationDate.After(now) {
		return p.VipStatus, false
	}
	return p.VipStatus, true
}

// ColorHighlightingActive reports whether the highlight add-on is in force at now.
func (p *PromoState) ColorHighlightingActive(now time.Time) bool {
	if !p.ColorHighlightingEnabled {
		return false
	}
	return p.ColorHighlightingExpirationDate == nil || p.ColorHighlightingExpirationDate.After(now)
}

// AutoRenewalActive reports whether the auto-renewal add-on is in force at now.
func (p *PromoState) AutoRenewalActive(now time.Time) bool {
	if !p.AutoRenewalEnabled {
		return false
	}
	return p.AutoRenewalExpirationDate == nil || p.AutoRenewalExpirationDate.After(now)
}

// Car is a vehicle listing. Only the fields the promotion engine touches are
// modeled; the full listing lives in the marketplace service.
type Car struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID  int64      `gorm:"index;not null" json:"seller_id"`
	Brand     string     `gorm:"type:varchar(64)" json:"brand"`
	Model     string     `gorm:"type:varchar(64)" json:"model"`
	Promo     PromoState `gorm:"embedded" json:"promo"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Car) TableName() string {
	return "cars"
}

// Part is a vehicle-part listing.
type Part struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID  int64      `gorm:"index;not null" json:"seller_id"`
	Title     string     `gorm:"type:varchar(128)" json:"title"`
	Promo     PromoState `gorm:"embedded" json:"promo"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Part) TableName() string {
	return "parts"
}

// Listing is the category-independent view the purchase path works with.
type Listing struct {
	ID       int64
	SellerID int64
	Category Category
	Promo    PromoState
}
