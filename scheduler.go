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

	"github.com/sirupsen/logrus"

	"github.com/veldcommerce/veld/config"
	redlock "github.com/veldcommerce/veld/internal/lock"
	"github.com/veldcommerce/veld/internal/notification"
	"github.com/veldcommerce/veld/model"
)

const scanLockKey = "veld:scan:discount-codes"

// ScanExpiredDiscountCodes runs one scan tick: it queries still-active
// discount codes whose validity window closed and enqueues one dedup-guarded
// settlement job per code. The run itself mutates no entity state.
//
// A Redis lock keeps overlapping runs across worker instances from scanning
// concurrently; losing the lock is a quiet no-op since the holder covers the
// same work. Per-code enqueue failures are logged and never abort the run.
// The batch is bounded per tick; a full batch is logged and the remainder
// drains on the next tick.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - limit int: Batch size override; zero uses the configured batch size.
//
// Returns:
// - int: The number of codes scanned this run.
// - error: An error if the scan query failed.
func (v *Veld) ScanExpiredDiscountCodes(ctx context.Context, limit int) (int, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return 0, err
	}
	if limit <= 0 {
		limit = cfg.Scan.BatchSize
	}

	locker := redlock.NewLocker(v.redis, scanLockKey, model.GenerateUUIDWithSuffix("scan"))
	if err := locker.Lock(ctx, 5*time.Minute); err != nil {
		logrus.Infof("Scan skipped, another run holds the lock: %v", err)
		return 0, nil
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logrus.Warnf("Failed to release scan lock: %v", err)
		}
	}()

	// Codes dated before the start of today in the business time zone have
	// passed their end-of-day expiry boundary.
	loc := cfg.Location()
	now := time.Now().In(loc)
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	codes, err := v.datasource.GetExpiredActiveCodes(ctx, cutoff, limit)
	if err != nil {
		notification.NotifyError(err)
		return 0, err
	}

	for _, code := range codes {
		if err := v.queue.EnqueueSettlement(ctx, code.CodeID); err != nil {
			logrus.Errorf("Failed to enqueue settlement for code %s: %v", code.CodeID, err)
			notification.NotifyError(err)
		}
	}

	if len(codes) == limit {
		logrus.Infof("Scan batch full at %d codes, remainder drains on the next run", limit)
	}
	logrus.Infof("Scan run complete, %d expired codes scanned", len(codes))
	return len(codes), nil
}
