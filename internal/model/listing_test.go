package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveVip(t *testing.T) {
	now := time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name       string
		promo      PromoState
		wantStatus VipStatus
		wantActive bool
	}{
		{
			name:       "no tier",
			promo:      PromoState{VipStatus: VipStatusNone},
			wantStatus: VipStatusNone,
			wantActive: false,
		},
		{
			name:       "empty status treated as none",
			promo:      PromoState{},
			wantStatus: VipStatusNone,
			wantActive: false,
		},
		{
			name:       "active tier",
			promo:      PromoState{VipStatus: VipStatusVip, VipExpirationDate: &future},
			wantStatus: VipStatusVip,
			wantActive: true,
		},
		{
			name:       "expired tier keeps its label but is inactive",
			promo:      PromoState{VipStatus: VipStatusSuperVip, VipExpirationDate: &past},
			wantStatus: VipStatusSuperVip,
			wantActive: false,
		},
		{
			name:       "expiring exactly now is inactive",
			promo:      PromoState{VipStatus: VipStatusVip, VipExpirationDate: &now},
			wantStatus: VipStatusVip,
			wantActive: false,
		},
		{
			name:       "paid tier with no end date stays active",
			promo:      PromoState{VipStatus: VipStatusVipPlus},
			wantStatus: VipStatusVipPlus,
			wantActive: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, active := tt.promo.EffectiveVip(now)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantActive, active)
		})
	}
}

func TestAddOnActive(t *testing.T) {
	now := time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	p := PromoState{}
	assert.False(t, p.ColorHighlightingActive(now), "disabled add-on")
	assert.False(t, p.AutoRenewalActive(now), "disabled add-on")

	p = PromoState{ColorHighlightingEnabled: true, ColorHighlightingExpirationDate: &future}
	assert.True(t, p.ColorHighlightingActive(now))

	p = PromoState{ColorHighlightingEnabled: true, ColorHighlightingExpirationDate: &past}
	assert.False(t, p.ColorHighlightingActive(now))

	p = PromoState{AutoRenewalEnabled: true}
	assert.True(t, p.AutoRenewalActive(now), "enabled with no end date")
}
