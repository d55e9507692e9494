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
	"time"

	"github.com/veldcommerce/veld/config"
	"github.com/veldcommerce/veld/internal/apierror"
	"github.com/veldcommerce/veld/model"
)

// TryRedeem validates and redeems a discount code against a purchase amount
// in minor units. Validation order: existence and active flag, validity
// window (inclusive until end of the valid_until day in the business time
// zone), minimum purchase, remaining uses. The final check-and-increment is
// a single conditional UPDATE, so two concurrent checkouts racing for the
// last slot of a limited-use code cannot both succeed.
//
// Rejections come back as a result with a specific reason and a nil error;
// an error is returned only for store failures.
func (v *Veld) TryRedeem(ctx context.Context, code string, purchaseAmount int64) (*model.RedemptionResult, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	loc := cfg.Location()
	now := time.Now()

	dc, err := v.datasource.GetDiscountCodeByCode(ctx, code)
	if err != nil {
		if apiErr, ok := err.(apierror.APIError); ok && apiErr.Code == apierror.ErrNotFound {
			return &model.RedemptionResult{Reason: model.RejectionNotFound}, nil
		}
		return nil, err
	}

	if !dc.IsActive {
		switch {
		case dc.IsExhausted():
			return &model.RedemptionResult{Reason: model.RejectionExhausted, CodeID: dc.CodeID}, nil
		case dc.IsExpired(now, loc):
			return &model.RedemptionResult{Reason: model.RejectionExpired, CodeID: dc.CodeID}, nil
		default:
			return &model.RedemptionResult{Reason: model.RejectionInactive, CodeID: dc.CodeID}, nil
		}
	}
	if dc.IsNotStarted(now) {
		return &model.RedemptionResult{Reason: model.RejectionNotStarted, CodeID: dc.CodeID}, nil
	}
	if dc.IsExpired(now, loc) {
		return &model.RedemptionResult{Reason: model.RejectionExpired, CodeID: dc.CodeID}, nil
	}
	if dc.MinPurchase != nil && purchaseAmount < *dc.MinPurchase {
		return &model.RedemptionResult{Reason: model.RejectionBelowMinimum, CodeID: dc.CodeID}, nil
	}
	if dc.IsExhausted() {
		return &model.RedemptionResult{Reason: model.RejectionExhausted, CodeID: dc.CodeID}, nil
	}

	usedCount, ok, err := v.datasource.IncrementDiscountCodeUsage(ctx, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race for the last slot, or the code was settled between
		// the read and the increment.
		return &model.RedemptionResult{Reason: model.RejectionExhausted, CodeID: dc.CodeID}, nil
	}

	return &model.RedemptionResult{
		Accepted:       true,
		CodeID:         dc.CodeID,
		DiscountAmount: dc.DiscountAmount(purchaseAmount),
		UsedCount:      usedCount,
	}, nil
}
