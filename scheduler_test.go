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
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/veldcommerce/veld/model"
)

func scanTestRedis(t *testing.T) redis.UniversalClient {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func expiredCode(id string) *model.DiscountCode {
	validUntil := time.Now().Add(-72 * time.Hour)
	return &model.DiscountCode{
		CodeID:       id,
		Code:         "OLD-" + id,
		Kind:         model.CodeKindInfluencer,
		DiscountType: model.ValuePercentage,
		IsActive:     true,
		ValidFrom:    validUntil.Add(-30 * 24 * time.Hour),
		ValidUntil:   &validUntil,
	}
}

func TestScanExpiredDiscountCodes_PartialEnqueueFailureDoesNotAbortRun(t *testing.T) {
	mockLedgerConfig()

	codes := []*model.DiscountCode{
		expiredCode("code_1"), expiredCode("code_2"), expiredCode("code_3"),
	}
	ds := &MockDataSource{
		MockGetExpiredActiveCodes: func(ctx context.Context, cutoff time.Time, limit int) ([]*model.DiscountCode, error) {
			return codes, nil
		},
	}

	var attempted []string
	q := &MockTaskQueue{
		MockEnqueueSettlement: func(ctx context.Context, codeID string) error {
			attempted = append(attempted, codeID)
			if codeID == "code_2" {
				return errors.New("broker unavailable")
			}
			return nil
		},
	}

	v := &Veld{datasource: ds, queue: q, redis: scanTestRedis(t)}

	count, err := v.ScanExpiredDiscountCodes(context.Background(), 0)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	// One failing enqueue must not block the rest of the batch.
	assert.Equal(t, []string{"code_1", "code_2", "code_3"}, attempted)
}

func TestScanExpiredDiscountCodes_SkipsWhenLockHeld(t *testing.T) {
	mockLedgerConfig()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	assert.NoError(t, mr.Set(scanLockKey, "another-instance"))

	storeQueried := false
	ds := &MockDataSource{
		MockGetExpiredActiveCodes: func(ctx context.Context, cutoff time.Time, limit int) ([]*model.DiscountCode, error) {
			storeQueried = true
			return nil, nil
		},
	}

	v := &Veld{datasource: ds, queue: &MockTaskQueue{}, redis: client}

	count, err := v.ScanExpiredDiscountCodes(context.Background(), 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
	// The holder covers the same work; losing the lock is a quiet no-op.
	assert.False(t, storeQueried)
}

func TestScanExpiredDiscountCodes_ReleasesLockAfterRun(t *testing.T) {
	mockLedgerConfig()

	ds := &MockDataSource{
		MockGetExpiredActiveCodes: func(ctx context.Context, cutoff time.Time, limit int) ([]*model.DiscountCode, error) {
			return []*model.DiscountCode{expiredCode("code_1")}, nil
		},
	}
	enqueued := 0
	q := &MockTaskQueue{
		MockEnqueueSettlement: func(ctx context.Context, codeID string) error {
			enqueued++
			return nil
		},
	}

	v := &Veld{datasource: ds, queue: q, redis: scanTestRedis(t)}

	for i := 0; i < 2; i++ {
		count, err := v.ScanExpiredDiscountCodes(context.Background(), 0)
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	}
	assert.Equal(t, 2, enqueued)
}
