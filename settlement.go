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

	"github.com/sirupsen/logrus"

	"github.com/veldcommerce/veld/model"
)

// SettleDiscountCode applies the terminal transition to one discount code:
// the code is deactivated and the owed commission recorded in a single
// atomic unit. The operation is idempotent by construction: the queue may
// redeliver a settlement job, and a code that already settled comes back as
// a no-op with its previously recorded commission unchanged.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - codeID string: The ID of the discount code to settle.
//
// Returns:
// - *model.Commission: The recorded commission, nil for codes without one.
// - error: A transient store error (retryable) or a permanent configuration
//   error (the worker marks the job failed, not retried).
func (v *Veld) SettleDiscountCode(ctx context.Context, codeID string) (*model.Commission, error) {
	commission, settled, err := v.datasource.SettleDiscountCode(ctx, codeID)
	if err != nil {
		return nil, err
	}

	if !settled {
		logrus.Infof("Code %s already settled, treating redelivery as success", codeID)
		return commission, nil
	}

	if commission != nil {
		logrus.Infof("Code %s settled, commission %s owed %d against basis %d", codeID, commission.CommissionID, commission.Amount, commission.Basis)
	} else {
		logrus.Infof("Code %s settled with no commission owed", codeID)
	}
	return commission, nil
}

// GetCommission returns the commission recorded for a settled code.
func (v *Veld) GetCommission(ctx context.Context, codeID string) (*model.Commission, error) {
	return v.datasource.GetCommissionByCodeID(ctx, codeID)
}
