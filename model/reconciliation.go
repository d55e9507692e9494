package model

// PaymentOutcome reports what applying a gateway event actually changed.
// Duplicate deliveries and stale out-of-order events come back with
// Duplicate set and nothing else touched, so the HTTP layer can acknowledge
// them without side effects.
type PaymentOutcome struct {
	Payment           *Payment `json:"payment,omitempty"`
	Duplicate         bool     `json:"duplicate"`
	Ignored           bool     `json:"ignored"`
	OrderTransitioned bool     `json:"order_transitioned"`
	FirstPaid         bool     `json:"first_paid"`
	OrderID           string   `json:"order_id"`
	CodeID            string   `json:"code_id,omitempty"`
	CodeKind          string   `json:"code_kind,omitempty"`
	LeadID            string   `json:"lead_id,omitempty"`
}
