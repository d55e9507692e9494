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

	"github.com/veldcommerce/veld/model"
)

// MockDataSource is a function-field datasource used by the engine's tests
// to script store behavior without a database.
type MockDataSource struct {
	MockCreateDiscountCode         func(ctx context.Context, code *model.DiscountCode) (*model.DiscountCode, error)
	MockGetDiscountCodeByCode      func(ctx context.Context, code string) (*model.DiscountCode, error)
	MockGetDiscountCodeByID        func(ctx context.Context, codeID string) (*model.DiscountCode, error)
	MockGetAllDiscountCodes        func(ctx context.Context) ([]*model.DiscountCode, error)
	MockGetExpiredActiveCodes      func(ctx context.Context, cutoff time.Time, limit int) ([]*model.DiscountCode, error)
	MockIncrementDiscountCodeUsage func(ctx context.Context, code string) (int64, bool, error)
	MockRecordOrder                func(ctx context.Context, order *model.Order) (*model.Order, error)
	MockGetOrder                   func(ctx context.Context, orderID string) (*model.Order, error)
	MockTransitionOrder            func(ctx context.Context, orderID string, to string) error
	MockGetPaymentByProviderRef    func(ctx context.Context, providerRef string) (*model.Payment, error)
	MockApplyPaymentEvent          func(ctx context.Context, event *model.PaymentEvent, status string) (*model.PaymentOutcome, error)
	MockSettleDiscountCode         func(ctx context.Context, codeID string) (*model.Commission, bool, error)
	MockGetCommissionByCodeID      func(ctx context.Context, codeID string) (*model.Commission, error)
}

// MockTaskQueue is a function-field queue used by the engine's tests to
// script enqueue behavior without a broker.
type MockTaskQueue struct {
	MockEnqueueSettlement       func(ctx context.Context, codeID string) error
	MockEnqueueLeadNotification func(ctx context.Context, leadID string) error
	MockEnqueueScan             func(ctx context.Context, limit int) error
}

func (m *MockTaskQueue) EnqueueSettlement(ctx context.Context, codeID string) error {
	return m.MockEnqueueSettlement(ctx, codeID)
}

func (m *MockTaskQueue) EnqueueLeadNotification(ctx context.Context, leadID string) error {
	return m.MockEnqueueLeadNotification(ctx, leadID)
}

func (m *MockTaskQueue) EnqueueScan(ctx context.Context, limit int) error {
	return m.MockEnqueueScan(ctx, limit)
}

func (m *MockDataSource) CreateDiscountCode(ctx context.Context, code *model.DiscountCode) (*model.DiscountCode, error) {
	return m.MockCreateDiscountCode(ctx, code)
}

func (m *MockDataSource) GetDiscountCodeByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	return m.MockGetDiscountCodeByCode(ctx, code)
}

func (m *MockDataSource) GetDiscountCodeByID(ctx context.Context, codeID string) (*model.DiscountCode, error) {
	return m.MockGetDiscountCodeByID(ctx, codeID)
}

func (m *MockDataSource) GetAllDiscountCodes(ctx context.Context) ([]*model.DiscountCode, error) {
	return m.MockGetAllDiscountCodes(ctx)
}

func (m *MockDataSource) GetExpiredActiveCodes(ctx context.Context, cutoff time.Time, limit int) ([]*model.DiscountCode, error) {
	return m.MockGetExpiredActiveCodes(ctx, cutoff, limit)
}

func (m *MockDataSource) IncrementDiscountCodeUsage(ctx context.Context, code string) (int64, bool, error) {
	return m.MockIncrementDiscountCodeUsage(ctx, code)
}

func (m *MockDataSource) RecordOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	return m.MockRecordOrder(ctx, order)
}

func (m *MockDataSource) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return m.MockGetOrder(ctx, orderID)
}

func (m *MockDataSource) TransitionOrder(ctx context.Context, orderID string, to string) error {
	return m.MockTransitionOrder(ctx, orderID, to)
}

func (m *MockDataSource) GetPaymentByProviderRef(ctx context.Context, providerRef string) (*model.Payment, error) {
	return m.MockGetPaymentByProviderRef(ctx, providerRef)
}

func (m *MockDataSource) ApplyPaymentEvent(ctx context.Context, event *model.PaymentEvent, status string) (*model.PaymentOutcome, error) {
	return m.MockApplyPaymentEvent(ctx, event, status)
}

func (m *MockDataSource) SettleDiscountCode(ctx context.Context, codeID string) (*model.Commission, bool, error) {
	return m.MockSettleDiscountCode(ctx, codeID)
}

func (m *MockDataSource) GetCommissionByCodeID(ctx context.Context, codeID string) (*model.Commission, error) {
	return m.MockGetCommissionByCodeID(ctx, codeID)
}
