package service

import (
	"context"
	"time"

	"automarket/internal/model"
)

// StatusService is the read path for a listing's promotional state. Expiry is
// passive: the stored vip_status is never flipped back on read, the effective
// state is derived against now instead.
type StatusService struct {
	listings ListingStore
	now      func() time.Time
}

func NewStatusService(listings ListingStore) *StatusService {
	return &StatusService{listings: listings, now: time.Now}
}

// ListingStatus reports both the stored tier and whether it is currently in
// force.
type ListingStatus struct {
	VipStatus         model.VipStatus `json:"vip_status"`
	VipExpirationDate *time.Time      `json:"vip_expiration_date,omitempty"`
	IsActive          bool            `json:"is_active"`
	ColorHighlighting bool            `json:"color_highlighting"`
	AutoRenewal       bool            `json:"auto_renewal"`
}

func (s *StatusService) GetStatus(ctx context.Context, category model.Category, listingID int64) (*ListingStatus, error) {
	listing, err := s.listings.Get(ctx, category, listingID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status, active := listing.Promo.EffectiveVip(now)

	return &ListingStatus{
		VipStatus:         status,
		VipExpirationDate: listing.Promo.VipExpirationDate,
		IsActive:          active,
		ColorHighlighting: listing.Promo.ColorHighlightingActive(now),
		AutoRenewal:       listing.Promo.AutoRenewalActive(now),
	}, nil
}
