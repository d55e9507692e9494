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
package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/gin-gonic/gin"

	"github.com/veldcommerce/veld/internal/apierror"
	"github.com/veldcommerce/veld/model"
)

// ReceivePaymentEvent handles a payment gateway webhook delivery. Delivery
// is at-least-once and possibly out of order, so the handler acknowledges
// duplicates, stale replays and unhandled event types with 200 and no side
// effects. Any non-2xx response makes the gateway redeliver, which is the
// desired behavior for transient store failures and for events racing ahead
// of their order's commit.
//
// Parameters:
// - c: The Gin context containing the request and response.
//
// Responses:
// - 400 Bad Request: If the body is not a parsable event.
// - 404 Not Found: If no order matches the event's external reference.
// - 500 Internal Server Error: On transient store failure.
// - 200 OK: The reconciliation outcome, including no-op acknowledgments.
func (a Api) ReceivePaymentEvent(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var event model.PaymentEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if event.ProviderRef == "" || event.ExternalReference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_id and external_reference are required"})
		return
	}
	// The raw body is retained on the payment row for later audit.
	event.RawPayload = raw

	outcome, err := a.veld.ReconcilePaymentEvent(c.Request.Context(), &event)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, outcome)
}
