package model

import (
	"encoding/json"
	"time"
)

// Order statuses. Transitions are forward-only and validated centrally
// through OrderTransitions; a PAID order can only move to REFUNDED.
const (
	OrderStatusPending         = "PENDING"
	OrderStatusAwaitingPayment = "AWAITING_PAYMENT"
	OrderStatusPaid            = "PAID"
	OrderStatusCancelled       = "CANCELLED"
	OrderStatusExpired         = "EXPIRED"
	OrderStatusRefunded        = "REFUNDED"
)

// OrderTransitions is the closed set of allowed order status transitions.
// Any transition not listed here is rejected, which is what protects the
// order lifecycle from late, out-of-order gateway events.
var OrderTransitions = map[string][]string{
	OrderStatusPending:         {OrderStatusAwaitingPayment, OrderStatusCancelled},
	OrderStatusAwaitingPayment: {OrderStatusPaid, OrderStatusCancelled, OrderStatusExpired},
	OrderStatusPaid:            {OrderStatusRefunded},
	OrderStatusCancelled:       {},
	OrderStatusExpired:         {},
	OrderStatusRefunded:        {},
}

// CanTransitionOrder reports whether an order may move from one status to
// another according to the transition table.
func CanTransitionOrder(from, to string) bool {
	for _, allowed := range OrderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID             int64  `json:"-"`
	OrderID        string `json:"order_id"`
	DiscountCodeID string `json:"discount_code_id,omitempty"`
	DiscountAmount int64  `json:"discount_amount"`
	// DiscountRedeemed marks that the code's usage was already counted at
	// checkout time, so the first-paid attribution must not count it again.
	DiscountRedeemed bool                   `json:"discount_redeemed"`
	TotalAmount      int64                  `json:"total_amount"`
	Status           string                 `json:"status"`
	Items            []OrderItem            `json:"items,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	MetaData         map[string]interface{} `json:"meta_data,omitempty"`
}

// OrderItem snapshots the unit price at checkout time so later catalog
// changes cannot alter a past order.
type OrderItem struct {
	ID        int64  `json:"-"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

func (order *Order) ToJSON() ([]byte, error) {
	return json.Marshal(order)
}

// IsTerminal reports whether the order has reached a state with no outgoing
// transitions except the refund path on PAID.
func (order *Order) IsTerminal() bool {
	switch order.Status {
	case OrderStatusCancelled, OrderStatusExpired, OrderStatusRefunded:
		return true
	}
	return false
}
