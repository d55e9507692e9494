package model

// Redemption rejection reasons. The ledger always reports a specific reason
// so checkout can render an accurate message, never a generic failure.
const (
	RejectionNotFound     = "not_found"
	RejectionInactive     = "inactive"
	RejectionExpired      = "expired"
	RejectionNotStarted   = "not_started"
	RejectionBelowMinimum = "below_minimum"
	RejectionExhausted    = "exhausted"
)

// RedemptionResult reports the outcome of a redemption attempt. On success
// DiscountAmount holds the computed discount and UsedCount the counter after
// the increment; on rejection Reason holds one of the Rejection constants.
type RedemptionResult struct {
	Accepted       bool   `json:"accepted"`
	Reason         string `json:"reason,omitempty"`
	CodeID         string `json:"code_id,omitempty"`
	DiscountAmount int64  `json:"discount_amount,omitempty"`
	UsedCount      int64  `json:"used_count,omitempty"`
}
