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
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/veldcommerce/veld/config"
	"github.com/veldcommerce/veld/internal/notification"
	"github.com/veldcommerce/veld/internal/request"
)

// LeadNotificationPayload is the body delivered to the configured webhook
// when a lead's reserved discount converts on a paid order.
type LeadNotificationPayload struct {
	Event     string    `json:"event"`
	LeadID    string    `json:"lead_id"`
	Timestamp time.Time `json:"timestamp"`
}

// DeliverLeadNotification posts a lead-converted event to the merchant's
// configured notification webhook. Called from the notification worker; a
// non-2xx response is returned as an error so the queue retries with
// backoff, while a missing webhook URL is a configured no-op.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - leadID string: The lead whose reserved code was redeemed on a paid order.
//
// Returns:
// - error: An error if delivery fails and should be retried.
func (v *Veld) DeliverLeadNotification(ctx context.Context, leadID string) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}

	if conf.Notification.Webhook.Url == "" {
		logrus.Infof("No notification webhook configured, dropping lead %s event", leadID)
		return nil
	}

	payload := LeadNotificationPayload{
		Event:     "lead.converted",
		LeadID:    leadID,
		Timestamp: time.Now(),
	}

	body, err := request.ToJsonReq(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, conf.Notification.Webhook.Url, body)
	if err != nil {
		return err
	}
	for key, value := range conf.Notification.Webhook.Headers {
		req.Header.Set(key, value)
	}

	var response map[string]interface{}
	resp, err := request.Call(req, &response)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil && !errors.Is(err, io.EOF) {
		notification.NotifyError(err)
		return errors.Wrapf(err, "lead notification delivery for %s failed", leadID)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := errors.Errorf("lead notification for %s rejected with status %d", leadID, resp.StatusCode)
		notification.NotifyError(err)
		return err
	}

	logrus.Infof("Delivered lead.converted notification for lead %s", leadID)
	return nil
}
