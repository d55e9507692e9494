/*
Copyright 2024 Veld Commerce Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/veldcommerce/veld/model"
)

func leadRequiredForReservation(d *CreateDiscountCode) validation.RuleFunc {
	return func(value interface{}) error {
		if d.Kind == model.CodeKindLeadReservation && d.LeadID == "" {
			return errors.New("lead_id is required for lead reservation codes")
		}
		return nil
	}
}

func (d *CreateDiscountCode) ValidateCreateDiscountCode() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Code, validation.Required, validation.Length(2, 64)),
		validation.Field(&d.Kind, validation.Required, validation.In(model.CodeKindInfluencer, model.CodeKindLeadReservation), validation.By(leadRequiredForReservation(d))),
		validation.Field(&d.DiscountType, validation.Required, validation.In(model.ValuePercentage, model.ValueFixed)),
		validation.Field(&d.DiscountValue, validation.Required),
		validation.Field(&d.CommissionType, validation.In(model.ValuePercentage, model.ValueFixed)),
	)
}

func (r *RedeemCode) ValidateRedeemCode() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PurchaseAmount, validation.Required, validation.Min(1)),
	)
}

func (o *RecordOrder) ValidateRecordOrder() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.TotalAmount, validation.Required, validation.Min(1)),
		validation.Field(&o.Items, validation.Required),
	)
}

func (i RecordOrderItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ProductID, validation.Required),
		validation.Field(&i.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&i.UnitPrice, validation.Required, validation.Min(1)),
	)
}
