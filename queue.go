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
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/veldcommerce/veld/config"
	redis_db "github.com/veldcommerce/veld/internal/redis-db"
	"github.com/veldcommerce/veld/model"

	"github.com/hibiken/asynq"
)

// Queue represents the durable job queue for settlement and notification
// tasks. Dedup rides on asynq task IDs: a task ID stays reserved while the
// task is pending, active or retained, so two submissions with the same
// singleton key inside the retention window collapse into one job.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// SettlementTaskID builds the singleton key for a code settlement job.
func SettlementTaskID(codeID string) string {
	return fmt.Sprintf("code-settle:%s", codeID)
}

// LeadNotificationTaskID builds the singleton key for a lead notification job.
func LeadNotificationTaskID(leadID string) string {
	return fmt.Sprintf("lead-notification:%s", leadID)
}

// ScanTaskID is the singleton key for a manually triggered scan run.
const ScanTaskID = "code-scan:manual"

// NewQueue initializes a new Queue instance with the provided configuration.
//
// Parameters:
// - conf *config.Configuration: The configuration for the queue.
//
// Returns:
// - *Queue: A pointer to the newly created Queue instance.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// EnqueueSettlement enqueues a settlement job for a discount code behind its
// singleton key. The retention window spans at least one full scheduling
// period, so overlapping scan runs or manual re-triggers never double-enqueue
// the same code.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - codeID string: The ID of the discount code to settle.
//
// Returns:
// - error: An error if the task could not be enqueued. A collapse onto an
//   existing job is success.
func (q *Queue) EnqueueSettlement(ctx context.Context, codeID string) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(model.SettlementTask{CodeID: codeID})
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.TaskID(SettlementTaskID(codeID)),
		asynq.Queue(cfg.Queue.SettlementQueue),
		asynq.Retention(time.Duration(cfg.Queue.SettlementWindowSeconds) * time.Second),
		asynq.MaxRetry(cfg.Queue.MaxRetryAttempts),
	}
	task := asynq.NewTask(cfg.Queue.SettlementQueue, payload, taskOptions...)
	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			log.Printf(" [*] Settlement already enqueued for code: %s", codeID)
			return nil
		}
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued settlement: %s", codeID)
	return nil
}

// EnqueueLeadNotification enqueues a lead notification job behind its
// singleton key with a one hour suppression window, so a duplicate delivery
// of the same paid event cannot re-trigger the notification.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - leadID string: The ID of the lead to notify about.
//
// Returns:
// - error: An error if the task could not be enqueued. A collapse onto an
//   existing job is success.
func (q *Queue) EnqueueLeadNotification(ctx context.Context, leadID string) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(model.LeadNotificationTask{LeadID: leadID})
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.TaskID(LeadNotificationTaskID(leadID)),
		asynq.Queue(cfg.Queue.NotificationQueue),
		asynq.Retention(time.Duration(cfg.Queue.NotificationWindowSeconds) * time.Second),
		asynq.MaxRetry(cfg.Queue.MaxRetryAttempts),
	}
	task := asynq.NewTask(cfg.Queue.NotificationQueue, payload, taskOptions...)
	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			log.Printf(" [*] Lead notification already enqueued: %s", leadID)
			return nil
		}
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued lead notification: %s", leadID)
	return nil
}

// EnqueueScan enqueues a manually triggered scan run. A short retention keeps
// rapid re-triggers from stacking scan jobs while still allowing another run
// shortly after.
func (q *Queue) EnqueueScan(ctx context.Context, limit int) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(model.ScanTask{Limit: limit})
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.TaskID(ScanTaskID),
		asynq.Queue(cfg.Queue.ScanQueue),
		asynq.Retention(time.Minute),
	}
	task := asynq.NewTask(cfg.Queue.ScanQueue, payload, taskOptions...)
	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			log.Println(" [*] Scan already enqueued")
			return nil
		}
		log.Println(err, info)
		return err
	}
	log.Println(" [*] Successfully enqueued scan run")
	return nil
}
