package model

import (
	"encoding/json"
	"time"
)

// Payment statuses as recorded internally after mapping gateway events.
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusApproved = "APPROVED"
	PaymentStatusRejected = "REJECTED"
	PaymentStatusRefunded = "REFUNDED"
)

type Payment struct {
	ID          int64                  `json:"-"`
	PaymentID   string                 `json:"payment_id"`
	OrderID     string                 `json:"order_id"`
	ProviderRef string                 `json:"provider_ref"`
	Status      string                 `json:"status"`
	Amount      int64                  `json:"amount"`
	RawPayload  json.RawMessage        `json:"raw_payload,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	MetaData    map[string]interface{} `json:"meta_data,omitempty"`
}

// paymentPrecedence orders payment statuses for out-of-order delivery
// handling: PENDING < APPROVED/REJECTED < REFUNDED. An event mapping to an
// equal-or-lower precedence than the recorded status is a stale replay.
var paymentPrecedence = map[string]int{
	PaymentStatusPending:  1,
	PaymentStatusApproved: 2,
	PaymentStatusRejected: 2,
	PaymentStatusRefunded: 3,
}

// PaymentStatusPrecedence returns the precedence rank of a payment status,
// or 0 for an unknown status.
func PaymentStatusPrecedence(status string) int {
	return paymentPrecedence[status]
}

// PaymentEvent is the body of a gateway webhook delivery. ExternalReference
// carries the internal order ID the gateway was handed at checkout time;
// ProviderRef identifies the payment on the provider side.
type PaymentEvent struct {
	EventID           string          `json:"id"`
	ProviderStatus    string          `json:"status"`
	ProviderRef       string          `json:"payment_id"`
	ExternalReference string          `json:"external_reference"`
	Amount            int64           `json:"amount"`
	RawPayload        json.RawMessage `json:"-"`
}

// MapProviderStatus maps a gateway-side payment status to the internal
// payment status. The second return value is false for event types this
// engine does not act on; such events are acknowledged and dropped.
func MapProviderStatus(providerStatus string) (string, bool) {
	switch providerStatus {
	case "pending", "in_process":
		return PaymentStatusPending, true
	case "approved":
		return PaymentStatusApproved, true
	case "rejected", "cancelled":
		return PaymentStatusRejected, true
	case "refunded", "charged_back":
		return PaymentStatusRefunded, true
	}
	return "", false
}

// OrderStatusForPayment returns the order transition a newly recorded
// payment status drives, or empty when the payment status does not move
// the order (a bare PENDING acknowledgement).
func OrderStatusForPayment(paymentStatus string) string {
	switch paymentStatus {
	case PaymentStatusApproved:
		return OrderStatusPaid
	case PaymentStatusRejected:
		return OrderStatusCancelled
	case PaymentStatusRefunded:
		return OrderStatusRefunded
	}
	return ""
}

func (payment *Payment) ToJSON() ([]byte, error) {
	return json.Marshal(payment)
}
