package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automarket/internal/model"
	"automarket/internal/repository"
)

func TestGetStatus_DerivesEffectiveState(t *testing.T) {
	expired := fixedNow().Add(-time.Hour)
	live := fixedNow().Add(time.Hour)

	db := newMemDB()
	db.addListing(model.CategoryCars, 1, 10, model.PromoState{
		VipStatus:                 model.VipStatusVip,
		VipExpirationDate:         &expired,
		VipActive:                 true,
		AutoRenewalEnabled:        true,
		AutoRenewalExpirationDate: &live,
	})

	svc := NewStatusService(db)
	svc.now = fixedNow

	status, err := svc.GetStatus(context.Background(), model.CategoryCars, 1)
	require.NoError(t, err)

	// the stored tier is reported but flagged inactive past its expiration
	assert.Equal(t, model.VipStatusVip, status.VipStatus)
	assert.False(t, status.IsActive)
	assert.False(t, status.ColorHighlighting)
	assert.True(t, status.AutoRenewal)
	require.NotNil(t, status.VipExpirationDate)
	assert.Equal(t, expired, *status.VipExpirationDate)

	// the stored row itself never changes on read
	assert.Equal(t, model.VipStatusVip, db.listings[listingKey(model.CategoryCars, 1)].Promo.VipStatus)
}

func TestGetStatus_UnknownListing(t *testing.T) {
	svc := NewStatusService(newMemDB())

	_, err := svc.GetStatus(context.Background(), model.CategoryParts, 404)
	assert.ErrorIs(t, err, repository.ErrListingNotFound)
}
