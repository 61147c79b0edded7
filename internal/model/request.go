package model

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"automarket/internal/expiry"
)

// Clients of the old marketplace API send booleans as true, "true" or 1 and
// day counts as numbers or numeric strings depending on the frontend version.
// The coercion happens here, once, at the JSON boundary; everything past
// request parsing works with strict types.

// FlexBool accepts true/false, "true"/"false", "1"/"0" and 1/0.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null":
		*b = false
		return nil
	case "true", "1", `"true"`, `"1"`:
		*b = true
		return nil
	case "false", "0", `"false"`, `"0"`, `""`:
		*b = false
		return nil
	}
	return fmt.Errorf("invalid boolean value %s", data)
}

// FlexDays accepts a JSON number or a numeric string. Zero means "not set".
type FlexDays float64

func (d *FlexDays) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" || string(data) == `""` {
		*d = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid day count %s", data)
	}
	*d = FlexDays(v)
	return nil
}

// Normalized rounds to a whole day count with a minimum of one day.
// Call only when the value is set (non-zero).
func (d FlexDays) Normalized() int {
	return expiry.NormalizeDays(float64(d))
}

// PurchaseRequest is the body of a VIP purchase call after JSON decoding.
type PurchaseRequest struct {
	VipStatus             VipStatus `json:"vip_status"`
	Days                  FlexDays  `json:"days"`
	ColorHighlighting     FlexBool  `json:"color_highlighting"`
	ColorHighlightingDays FlexDays  `json:"color_highlighting_days"`
	AutoRenewal           FlexBool  `json:"auto_renewal"`
	AutoRenewalDays       FlexDays  `json:"auto_renewal_days"`
	// RequestID is an optional client idempotency key; a retried request with
	// the same key is answered from the existing ledger entry, not re-charged.
	RequestID string `json:"request_id"`
}
