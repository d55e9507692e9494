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

	"github.com/veldcommerce/veld/internal/notification"
	"github.com/veldcommerce/veld/model"
)

// ReconcilePaymentEvent maps one gateway delivery onto internal order and
// payment state. Delivery is at-least-once and possibly out of order: stale
// and duplicate events come back as acknowledged no-ops, and the first
// transition into PAID triggers the dependent side effects behind their own
// dedup keys.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - event *model.PaymentEvent: The gateway event to reconcile.
//
// Returns:
// - *model.PaymentOutcome: What the event changed.
// - error: A store error; the HTTP layer maps it to a retryable status.
func (v *Veld) ReconcilePaymentEvent(ctx context.Context, event *model.PaymentEvent) (*model.PaymentOutcome, error) {
	status, known := model.MapProviderStatus(event.ProviderStatus)
	if !known {
		logrus.Infof("Ignoring gateway event %s with unhandled status %q", event.EventID, event.ProviderStatus)
		return &model.PaymentOutcome{Ignored: true}, nil
	}

	outcome, err := v.datasource.ApplyPaymentEvent(ctx, event, status)
	if err != nil {
		return nil, err
	}

	if outcome.Duplicate {
		logrus.Infof("Acknowledged duplicate/stale gateway event %s for payment %s", event.EventID, event.ProviderRef)
		return outcome, nil
	}

	// The reconciliation is committed at this point. A failed notification
	// enqueue is reported but does not fail the event: returning an error
	// would make the gateway redeliver an event the store already treats as
	// a duplicate, and the notification would never fire.
	if outcome.FirstPaid && outcome.CodeKind == model.CodeKindLeadReservation && outcome.LeadID != "" {
		if err := v.queue.EnqueueLeadNotification(ctx, outcome.LeadID); err != nil {
			notification.NotifyError(err)
			logrus.Errorf("Failed to enqueue lead notification for lead %s: %v", outcome.LeadID, err)
		}
	}

	return outcome, nil
}
