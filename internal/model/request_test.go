package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseRequest_Coercions(t *testing.T) {
	tests := []struct {
		name string
		body string
		want PurchaseRequest
	}{
		{
			name: "native types",
			body: `{"vip_status":"vip","days":7,"color_highlighting":true}`,
			want: PurchaseRequest{VipStatus: VipStatusVip, Days: 7, ColorHighlighting: true},
		},
		{
			name: "stringly typed legacy client",
			body: `{"vip_status":"super_vip","days":"14","color_highlighting":"true","auto_renewal":"1","auto_renewal_days":"3"}`,
			want: PurchaseRequest{VipStatus: VipStatusSuperVip, Days: 14, ColorHighlighting: true, AutoRenewal: true, AutoRenewalDays: 3},
		},
		{
			name: "numeric booleans",
			body: `{"vip_status":"none","color_highlighting":1,"auto_renewal":0}`,
			want: PurchaseRequest{VipStatus: VipStatusNone, ColorHighlighting: true},
		},
		{
			name: "nulls and empty strings fall to zero values",
			body: `{"vip_status":"vip","days":null,"color_highlighting":"","color_highlighting_days":""}`,
			want: PurchaseRequest{VipStatus: VipStatusVip},
		},
		{
			name: "fractional day count survives decoding",
			body: `{"vip_status":"vip","days":2.6}`,
			want: PurchaseRequest{VipStatus: VipStatusVip, Days: 2.6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PurchaseRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPurchaseRequest_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"garbage boolean", `{"color_highlighting":"yes"}`},
		{"garbage day count", `{"days":"a week"}`},
		{"malformed json", `{"vip_status":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PurchaseRequest
			assert.Error(t, json.Unmarshal([]byte(tt.body), &got))
		})
	}
}

func TestFlexDaysNormalized(t *testing.T) {
	tests := []struct {
		in   FlexDays
		want int
	}{
		{1, 1},
		{2.4, 2},
		{2.5, 3},
		{0.2, 1},
		{30, 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Normalized(), "Normalized(%v)", float64(tt.in))
	}
}
