package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Discount code kinds. Influencer codes carry a commission shape; lead
// reservation codes are single-use holds created when a lead is captured.
const (
	CodeKindInfluencer      = "influencer"
	CodeKindLeadReservation = "lead_reservation"
)

// Value shapes shared by discounts and commissions.
const (
	ValuePercentage = "percentage"
	ValueFixed      = "fixed"
)

type DiscountCode struct {
	ID              int64                  `json:"-"`
	CodeID          string                 `json:"code_id"`
	Code            string                 `json:"code"`
	Kind            string                 `json:"kind"`
	DiscountType    string                 `json:"discount_type"`
	DiscountValue   decimal.Decimal        `json:"discount_value"`
	CommissionType  string                 `json:"commission_type,omitempty"`
	CommissionValue decimal.Decimal        `json:"commission_value,omitempty"`
	MinPurchase     *int64                 `json:"min_purchase,omitempty"`
	MaxUses         *int64                 `json:"max_uses,omitempty"`
	UsedCount       int64                  `json:"used_count"`
	IsActive        bool                   `json:"is_active"`
	LeadID          string                 `json:"lead_id,omitempty"`
	ValidFrom       time.Time              `json:"valid_from"`
	ValidUntil      *time.Time             `json:"valid_until,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	MetaData        map[string]interface{} `json:"meta_data,omitempty"`
}

func (code *DiscountCode) ToJSON() ([]byte, error) {
	return json.Marshal(code)
}

// ExpiryBoundary returns the instant after which the code is no longer
// redeemable. Codes are valid until the end of the valid_until day in the
// given location. Returns the zero time when the code never expires.
func (code *DiscountCode) ExpiryBoundary(loc *time.Location) time.Time {
	if code.ValidUntil == nil {
		return time.Time{}
	}
	day := code.ValidUntil.In(loc)
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}

// IsExpired reports whether now falls after the code's expiry boundary.
func (code *DiscountCode) IsExpired(now time.Time, loc *time.Location) bool {
	boundary := code.ExpiryBoundary(loc)
	if boundary.IsZero() {
		return false
	}
	return now.After(boundary)
}

// IsNotStarted reports whether the code's validity window has not opened yet.
func (code *DiscountCode) IsNotStarted(now time.Time) bool {
	return now.Before(code.ValidFrom)
}

// IsExhausted reports whether the code has no redemption slots left.
func (code *DiscountCode) IsExhausted() bool {
	return code.MaxUses != nil && code.UsedCount >= *code.MaxUses
}

// DiscountAmount computes the discount owed on a purchase amount in minor
// units. Percentage discounts are rounded to the nearest minor unit, and the
// result never exceeds the purchase amount itself.
func (code *DiscountCode) DiscountAmount(purchaseAmount int64) int64 {
	var amount int64
	switch code.DiscountType {
	case ValuePercentage:
		amount = decimal.NewFromInt(purchaseAmount).
			Mul(code.DiscountValue).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	case ValueFixed:
		amount = code.DiscountValue.Round(0).IntPart()
	}
	if amount > purchaseAmount {
		amount = purchaseAmount
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}

// HasCommission reports whether the code carries a commission shape that can
// be settled. Lead reservation codes legitimately carry none.
func (code *DiscountCode) HasCommission() bool {
	return code.CommissionType == ValuePercentage || code.CommissionType == ValueFixed
}

// CommissionAmount computes the commission owed at settlement time.
// Percentage commission is computed against the discount-attributed revenue;
// fixed commission is a flat amount per qualifying use.
func (code *DiscountCode) CommissionAmount(attributedRevenue int64) int64 {
	switch code.CommissionType {
	case ValuePercentage:
		return decimal.NewFromInt(attributedRevenue).
			Mul(code.CommissionValue).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	case ValueFixed:
		return code.CommissionValue.Round(0).Mul(decimal.NewFromInt(code.UsedCount)).IntPart()
	}
	return 0
}
