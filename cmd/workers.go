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

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/veldcommerce/veld/config"
	"github.com/veldcommerce/veld/internal/apierror"
	redis_db "github.com/veldcommerce/veld/internal/redis-db"
	"github.com/veldcommerce/veld/model"

	"github.com/hibiken/asynq"
)

// processSettlement drives one discount code into its terminal state. A
// transient store failure is handed back to the queue for redelivery with
// backoff; a code whose commission configuration can never settle is marked
// failed without retrying.
func (v *veldInstance) processSettlement(ctx context.Context, t *asynq.Task) error {
	task, err := model.ParseSettlementTask(t.Payload())
	if err != nil {
		logrus.Error(err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	commission, err := v.veld.SettleDiscountCode(ctx, task.CodeID)
	if err != nil {
		if apiErr, ok := err.(apierror.APIError); ok && apiErr.Code == apierror.ErrPermanent {
			logrus.Errorf("Settlement of code %s failed permanently: %v", task.CodeID, err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		logrus.Infof("Settlement of code %s pushed back for retry due to error: %v", task.CodeID, err)
		return err
	}

	if commission != nil {
		log.Println(" [*] Code Settled", task.CodeID, "commission", commission.CommissionID)
	} else {
		log.Println(" [*] Code Settled", task.CodeID)
	}
	return nil
}

// processLeadNotification delivers the outbound notification for a captured
// lead whose reserved code converted.
func (v *veldInstance) processLeadNotification(ctx context.Context, t *asynq.Task) error {
	task, err := model.ParseLeadNotificationTask(t.Payload())
	if err != nil {
		logrus.Error(err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := v.veld.DeliverLeadNotification(ctx, task.LeadID); err != nil {
		logrus.Infof("Lead notification %s pushed back for retry due to error: %v", task.LeadID, err)
		return err
	}

	log.Println(" [*] Lead Notification Delivered", task.LeadID)
	return nil
}

// processScan runs one scan tick over expired active discount codes.
func (v *veldInstance) processScan(ctx context.Context, t *asynq.Task) error {
	task, err := model.ParseScanTask(t.Payload())
	if err != nil {
		logrus.Error(err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	count, err := v.veld.ScanExpiredDiscountCodes(ctx, task.Limit)
	if err != nil {
		logrus.Infof("Scan run pushed back for retry due to error: %v", err)
		return err
	}

	log.Println(" [*] Scan Run Complete, codes scanned:", count)
	return nil
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Queue.SettlementQueue] = 3
	queues[cfg.Queue.NotificationQueue] = 1
	queues[cfg.Queue.ScanQueue] = 1
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: conf.Queue.WorkerConcurrency,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(v *veldInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	mux.HandleFunc(cfg.Queue.SettlementQueue, v.processSettlement)
	mux.HandleFunc(cfg.Queue.NotificationQueue, v.processLeadNotification)
	mux.HandleFunc(cfg.Queue.ScanQueue, v.processScan)
}

// initializeScanScheduler registers the cron-triggered scan in the business
// time zone. The scheduler only enqueues the scan task; the scan handler
// holds the cross-instance lock.
func initializeScanScheduler(conf *config.Configuration) (*asynq.Scheduler, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		&asynq.SchedulerOpts{
			Location: conf.Location(),
		},
	)

	task := asynq.NewTask(conf.Queue.ScanQueue, nil, asynq.Queue(conf.Queue.ScanQueue))
	entryID, err := scheduler.Register(conf.Scan.CronSchedule, task)
	if err != nil {
		return nil, fmt.Errorf("error registering scan schedule: %v", err)
	}
	log.Printf("Registered scan schedule %q as entry %s", conf.Scan.CronSchedule, entryID)

	return scheduler, nil
}

// workerCommands defines the "workers" command: the settlement, notification
// and scan consumers plus the cron scheduler for the scan.
func workerCommands(v *veldInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start veld workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			queues := initializeQueues()

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(v, mux)

			scheduler, err := initializeScanScheduler(conf)
			if err != nil {
				log.Fatal(err)
			}
			if err := scheduler.Start(); err != nil {
				log.Fatalf("could not start scheduler: %v", err)
			}
			defer scheduler.Shutdown()

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
