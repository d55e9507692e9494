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

package veld

import (
	"context"
	"fmt"
	"time"

	"github.com/veldcommerce/veld/internal/apierror"
	"github.com/veldcommerce/veld/model"
)

// CreateDiscountCode validates and persists a new discount code. The caller
// supplies the human-facing code string and value shapes; the engine assigns
// the code ID and activates the code.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - code *model.DiscountCode: The discount code to create.
//
// Returns:
// - *model.DiscountCode: The created discount code.
// - error: An error if validation or persistence fails.
func (v *Veld) CreateDiscountCode(ctx context.Context, code *model.DiscountCode) (*model.DiscountCode, error) {
	if code.Kind != model.CodeKindInfluencer && code.Kind != model.CodeKindLeadReservation {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("unknown code kind %q", code.Kind), nil)
	}
	if code.DiscountType != model.ValuePercentage && code.DiscountType != model.ValueFixed {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("unknown discount type %q", code.DiscountType), nil)
	}
	if code.CommissionType != "" && code.CommissionType != model.ValuePercentage && code.CommissionType != model.ValueFixed {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("unknown commission type %q", code.CommissionType), nil)
	}
	if code.Kind == model.CodeKindLeadReservation && code.LeadID == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "lead reservation codes require a lead_id", nil)
	}
	if code.ValidUntil != nil && code.ValidUntil.Before(code.ValidFrom) {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "valid_until precedes valid_from", nil)
	}

	code.CodeID = model.GenerateUUIDWithSuffix("code")
	code.IsActive = true
	code.UsedCount = 0
	code.CreatedAt = time.Now()
	if code.ValidFrom.IsZero() {
		code.ValidFrom = time.Now()
	}
	// Lead reservation codes are single-use holds.
	if code.Kind == model.CodeKindLeadReservation && code.MaxUses == nil {
		one := int64(1)
		code.MaxUses = &one
	}

	return v.datasource.CreateDiscountCode(ctx, code)
}

// GetDiscountCode retrieves a discount code by its human-facing code string.
func (v *Veld) GetDiscountCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	return v.datasource.GetDiscountCodeByCode(ctx, code)
}

// GetAllDiscountCodes retrieves the most recently created discount codes.
func (v *Veld) GetAllDiscountCodes(ctx context.Context) ([]*model.DiscountCode, error) {
	return v.datasource.GetAllDiscountCodes(ctx)
}

// RecordOrder persists a new order with its line items. Orders start in
// PENDING and move to AWAITING_PAYMENT once handed to the gateway.
func (v *Veld) RecordOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	if order.OrderID == "" {
		order.OrderID = model.GenerateUUIDWithSuffix("ord")
	}
	if order.Status == "" {
		order.Status = model.OrderStatusPending
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	return v.datasource.RecordOrder(ctx, order)
}

// GetOrder retrieves an order by ID.
func (v *Veld) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return v.datasource.GetOrder(ctx, orderID)
}
