package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/veldcommerce/veld/model"
)

type CreateDiscountCode struct {
	Code            string                 `json:"code"`
	Kind            string                 `json:"kind"`
	DiscountType    string                 `json:"discount_type"`
	DiscountValue   decimal.Decimal        `json:"discount_value"`
	CommissionType  string                 `json:"commission_type,omitempty"`
	CommissionValue decimal.Decimal        `json:"commission_value,omitempty"`
	MinPurchase     *int64                 `json:"min_purchase,omitempty"`
	MaxUses         *int64                 `json:"max_uses,omitempty"`
	LeadID          string                 `json:"lead_id,omitempty"`
	ValidFrom       *time.Time             `json:"valid_from,omitempty"`
	ValidUntil      *time.Time             `json:"valid_until,omitempty"`
	MetaData        map[string]interface{} `json:"meta_data,omitempty"`
}

type RedeemCode struct {
	PurchaseAmount int64 `json:"purchase_amount"`
}

type RecordOrder struct {
	DiscountCodeID string `json:"discount_code_id,omitempty"`
	DiscountAmount int64  `json:"discount_amount"`
	// DiscountRedeemed tells the engine the code's usage was already counted
	// at checkout time, so the first-paid attribution must skip this order.
	DiscountRedeemed bool                   `json:"discount_redeemed,omitempty"`
	TotalAmount      int64                  `json:"total_amount"`
	Items            []RecordOrderItem      `json:"items"`
	MetaData         map[string]interface{} `json:"meta_data,omitempty"`
}

type RecordOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type TriggerScan struct {
	Limit int `json:"limit,omitempty"`
}

func (d *CreateDiscountCode) ToDiscountCode() *model.DiscountCode {
	code := &model.DiscountCode{
		Code:            d.Code,
		Kind:            d.Kind,
		DiscountType:    d.DiscountType,
		DiscountValue:   d.DiscountValue,
		CommissionType:  d.CommissionType,
		CommissionValue: d.CommissionValue,
		MinPurchase:     d.MinPurchase,
		MaxUses:         d.MaxUses,
		LeadID:          d.LeadID,
		ValidUntil:      d.ValidUntil,
		MetaData:        d.MetaData,
	}
	if d.ValidFrom != nil {
		code.ValidFrom = *d.ValidFrom
	}
	return code
}

func (o *RecordOrder) ToOrder() *model.Order {
	order := &model.Order{
		DiscountCodeID:   o.DiscountCodeID,
		DiscountAmount:   o.DiscountAmount,
		DiscountRedeemed: o.DiscountRedeemed,
		TotalAmount:      o.TotalAmount,
		MetaData:         o.MetaData,
	}
	for _, item := range o.Items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return order
}
