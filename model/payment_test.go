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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusPrecedence(t *testing.T) {
	// PENDING < APPROVED/REJECTED < REFUNDED: a late low-precedence event
	// must never displace the recorded status.
	assert.Less(t, PaymentStatusPrecedence(PaymentStatusPending), PaymentStatusPrecedence(PaymentStatusApproved))
	assert.Equal(t, PaymentStatusPrecedence(PaymentStatusApproved), PaymentStatusPrecedence(PaymentStatusRejected))
	assert.Less(t, PaymentStatusPrecedence(PaymentStatusApproved), PaymentStatusPrecedence(PaymentStatusRefunded))
	assert.Equal(t, 0, PaymentStatusPrecedence("UNKNOWN"))
}

func TestMapProviderStatus(t *testing.T) {
	tests := []struct {
		provider string
		status   string
		known    bool
	}{
		{"pending", PaymentStatusPending, true},
		{"in_process", PaymentStatusPending, true},
		{"approved", PaymentStatusApproved, true},
		{"rejected", PaymentStatusRejected, true},
		{"cancelled", PaymentStatusRejected, true},
		{"refunded", PaymentStatusRefunded, true},
		{"charged_back", PaymentStatusRefunded, true},
		{"authorized", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			status, known := MapProviderStatus(tt.provider)
			assert.Equal(t, tt.known, known)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestOrderStatusForPayment(t *testing.T) {
	assert.Equal(t, OrderStatusPaid, OrderStatusForPayment(PaymentStatusApproved))
	assert.Equal(t, OrderStatusCancelled, OrderStatusForPayment(PaymentStatusRejected))
	assert.Equal(t, OrderStatusRefunded, OrderStatusForPayment(PaymentStatusRefunded))
	assert.Equal(t, "", OrderStatusForPayment(PaymentStatusPending))
}
