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

	"github.com/redis/go-redis/v9"

	"github.com/veldcommerce/veld/config"
	"github.com/veldcommerce/veld/database"
	redis_db "github.com/veldcommerce/veld/internal/redis-db"
)

// TaskQueue is the enqueue surface of the durable job queue. Implemented by
// Queue; consumers depend on it so batch processing stays testable without a
// live broker.
type TaskQueue interface {
	EnqueueSettlement(ctx context.Context, codeID string) error
	EnqueueLeadNotification(ctx context.Context, leadID string) error
	EnqueueScan(ctx context.Context, limit int) error
}

// Veld is the settlement and reconciliation engine. The relational store is
// the single source of truth for entity state; the queue is the sole arbiter
// of job dedup. No mutable entity state is cached in process.
type Veld struct {
	queue      TaskQueue
	redis      redis.UniversalClient
	datasource database.IDataSource
}

// NewVeld initializes a new engine instance with the provided datasource.
// It fetches the configuration and initializes the Redis client and queue.
//
// Parameters:
// - db database.IDataSource: The datasource for database operations.
//
// Returns:
// - *Veld: A pointer to the newly created Veld instance.
// - error: An error if any of the initialization steps fail.
func NewVeld(db database.IDataSource) (*Veld, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient(configuration.Redis.Dns)
	if err != nil {
		return nil, err
	}
	newQueue := NewQueue(configuration)
	return &Veld{datasource: db, queue: newQueue, redis: redisClient.Client()}, nil
}

// Queue exposes the engine's queue client for command wiring.
func (v *Veld) Queue() TaskQueue {
	return v.queue
}
