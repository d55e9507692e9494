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
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/veldcommerce/veld/config"
	"github.com/veldcommerce/veld/internal/apierror"
	"github.com/veldcommerce/veld/model"
)

func mockLedgerConfig() {
	config.MockConfig(&config.Configuration{
		Redis:      config.RedisConfig{Dns: "localhost:6379"},
		DataSource: config.DataSourceConfig{Dns: "postgres://postgres:@localhost:5432/veld?sslmode=disable"},
	})
}

func int64Ptr(v int64) *int64 {
	return &v
}

func activeCode() *model.DiscountCode {
	validUntil := time.Now().Add(72 * time.Hour)
	return &model.DiscountCode{
		CodeID:        "code_123",
		Code:          "SUMMER10",
		Kind:          model.CodeKindInfluencer,
		DiscountType:  model.ValuePercentage,
		DiscountValue: decimal.NewFromInt(10),
		IsActive:      true,
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    &validUntil,
	}
}

func TestTryRedeem_Accepted(t *testing.T) {
	mockLedgerConfig()

	ds := &MockDataSource{
		MockGetDiscountCodeByCode: func(ctx context.Context, code string) (*model.DiscountCode, error) {
			return activeCode(), nil
		},
		MockIncrementDiscountCodeUsage: func(ctx context.Context, code string) (int64, bool, error) {
			return 4, true, nil
		},
	}
	v := &Veld{datasource: ds}

	result, err := v.TryRedeem(context.Background(), "SUMMER10", 10000)
	assert.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, int64(1000), result.DiscountAmount)
	assert.Equal(t, int64(4), result.UsedCount)
}

func TestTryRedeem_NotFound(t *testing.T) {
	mockLedgerConfig()

	ds := &MockDataSource{
		MockGetDiscountCodeByCode: func(ctx context.Context, code string) (*model.DiscountCode, error) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "not found", nil)
		},
	}
	v := &Veld{datasource: ds}

	result, err := v.TryRedeem(context.Background(), "MISSING", 10000)
	assert.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, model.RejectionNotFound, result.Reason)
}

func TestTryRedeem_Expired(t *testing.T) {
	mockLedgerConfig()

	code := activeCode()
	past := time.Now().Add(-48 * time.Hour)
	code.ValidUntil = &past

	ds := &MockDataSource{
		MockGetDiscountCodeByCode: func(ctx context.Context, c string) (*model.DiscountCode, error) {
			return code, nil
		},
	}
	v := &Veld{datasource: ds}

	result, err := v.TryRedeem(context.Background(), "SUMMER10", 10000)
	assert.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, model.RejectionExpired, result.Reason)
}

func TestTryRedeem_ExpiresEndOfDayInclusive(t *testing.T) {
	mockLedgerConfig()

	// A code expiring today is still redeemable until midnight in the
	// business time zone.
	cnf, err := config.Fetch()
	assert.NoError(t, err)
	today := time.Now().In(cnf.Location())
	code := activeCode()
	code.ValidUntil = &today

	ds := &MockDataSource{
		MockGetDiscountCodeByCode: func(ctx context.Context, c string) (*model.DiscountCode, error) {
			return code, nil
		},
		MockIncrementDiscountCodeUsage: func(ctx context.Context, c string) (int64, bool, error) {
			return 1, true, nil
		},
	}
	v := &Veld{datasource: ds}

	result, err := v.TryRedeem(context.Background(), "SUMMER10", 10000)
	assert.NoError(t, err)
	assert.True(t, result.Accepted)
}

func TestTryRedeem_NotStarted(t *testing.T) {
	mockLedgerConfig()

	code := activeCode()
	code.ValidFrom = time.Now().Add(24 * time.Hour)

	ds := &MockDataSource{
		MockGetDiscountCodeByCode: func(ctx context.Context, c string) (*model.DiscountCode, error) {
			return code, nil
		},
	}
	v := &Veld{datasource: ds}

	result, err := v.TryRedeem(context.Background(), "SUMMER10", 10000)
	assert.NoError(t, err)
	assert.Equal(t, model.RejectionNotStarted, result.Reason)
}

func TestTryRedeem_BelowMinimum(t *testing.T) {
	mockLedgerConfig()

	code := activeCode()
	code.MinPurchase = int64Ptr(5000)

	ds := &MockDataSource{
		MockGetDiscountCodeByCode: func(ctx context.Context, c string) (*model.DiscountCode, error) {
			return code, nil
		},
	}
	v := &Veld{datasource: ds}

	result, err := v.TryRedeem(context.Background(), "SUMMER10", 4999)
	assert.NoError(t, err)
	assert.Equal(t, model.RejectionBelowMinimum, result.Reason)
}

func TestTryRedeem_ExhaustedBeforeIncrement(t *testing.T) {
	mockLedgerConfig()

	code := activeCode()
	code.MaxUses = int64Ptr(5)
	code.UsedCount = 5

	ds := &MockDataSource{
		MockGetDiscountCodeByCode: func(ctx context.Context, c string) (*model.DiscountCode, error) {
			return code, nil
		},
	}
	v := &Veld{datasource: ds}

	result, err := v.TryRedeem(context.Background(), "SUMMER10", 10000)
	assert.NoError(t, err)
	assert.Equal(t, model.RejectionExhausted, result.Reason)
}

func TestTryRedeem_LostRaceForLastSlot(t *testing.T) {
	mockLedgerConfig()

	code := activeCode()
	code.MaxUses = int64Ptr(1)

	// The read sees a free slot but the guarded UPDATE loses the race.
	ds := &MockDataSource{
		MockGetDiscountCodeByCode: func(ctx context.Context, c string) (*model.DiscountCode, error) {
			return code, nil
		},
		MockIncrementDiscountCodeUsage: func(ctx context.Context, c string) (int64, bool, error) {
			return 0, false, nil
		},
	}
	v := &Veld{datasource: ds}

	result, err := v.TryRedeem(context.Background(), "SUMMER10", 10000)
	assert.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, model.RejectionExhausted, result.Reason)
}

func TestTryRedeem_InactiveClassification(t *testing.T) {
	mockLedgerConfig()

	tests := []struct {
		name   string
		mutate func(code *model.DiscountCode)
		reason string
	}{
		{"settled exhausted code", func(code *model.DiscountCode) {
			code.IsActive = false
			code.MaxUses = int64Ptr(5)
			code.UsedCount = 5
		}, model.RejectionExhausted},
		{"settled expired code", func(code *model.DiscountCode) {
			code.IsActive = false
			past := time.Now().Add(-48 * time.Hour)
			code.ValidUntil = &past
		}, model.RejectionExpired},
		{"manually deactivated code", func(code *model.DiscountCode) {
			code.IsActive = false
		}, model.RejectionInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := activeCode()
			tt.mutate(code)

			ds := &MockDataSource{
				MockGetDiscountCodeByCode: func(ctx context.Context, c string) (*model.DiscountCode, error) {
					return code, nil
				},
			}
			v := &Veld{datasource: ds}

			result, err := v.TryRedeem(context.Background(), "SUMMER10", 10000)
			assert.NoError(t, err)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}
}
