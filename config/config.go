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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5002"

	// Scan defaults: one daily run, ten codes per tick, dedup window covering
	// a full scheduling period so overlapping runs collapse.
	DEFAULT_SCAN_CRON       = "0 2 * * *"
	DEFAULT_SCAN_BATCH_SIZE = 10
	DEFAULT_TIME_ZONE       = "America/Sao_Paulo"

	DEFAULT_SETTLEMENT_WINDOW_SECONDS   = 86400
	DEFAULT_NOTIFICATION_WINDOW_SECONDS = 3600
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Secure    bool   `json:"secure" envconfig:"VELD_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"VELD_SERVER_SECRET_KEY"`
	Port      string `json:"port" envconfig:"VELD_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"VELD_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"VELD_REDIS_DNS"`
}

// QueueConfig names the durable queues and sizes the workers that consume
// them. Dedup windows are in seconds to match the queue API surface.
type QueueConfig struct {
	SettlementQueue           string `json:"settlement_queue" envconfig:"VELD_QUEUE_SETTLEMENT"`
	NotificationQueue         string `json:"notification_queue" envconfig:"VELD_QUEUE_NOTIFICATION"`
	ScanQueue                 string `json:"scan_queue" envconfig:"VELD_QUEUE_SCAN"`
	WorkerConcurrency         int    `json:"worker_concurrency" envconfig:"VELD_QUEUE_WORKER_CONCURRENCY"`
	MaxRetryAttempts          int    `json:"max_retry_attempts" envconfig:"VELD_QUEUE_MAX_RETRY_ATTEMPTS"`
	SettlementWindowSeconds   int    `json:"settlement_window_seconds" envconfig:"VELD_QUEUE_SETTLEMENT_WINDOW_SECONDS"`
	NotificationWindowSeconds int    `json:"notification_window_seconds" envconfig:"VELD_QUEUE_NOTIFICATION_WINDOW_SECONDS"`
}

// ScanConfig controls the cron-triggered expiry scan.
type ScanConfig struct {
	CronSchedule string `json:"cron_schedule" envconfig:"VELD_SCAN_CRON_SCHEDULE"`
	BatchSize    int    `json:"batch_size" envconfig:"VELD_SCAN_BATCH_SIZE"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"VELD_PROJECT_NAME"`
	TimeZone     string           `json:"time_zone" envconfig:"VELD_TIME_ZONE"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Queue        QueueConfig      `json:"queue"`
	Scan         ScanConfig       `json:"scan"`
	Notification Notification     `json:"notification"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("veld", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called veld.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Veld Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.TimeZone == "" {
		cnf.TimeZone = DEFAULT_TIME_ZONE
	}
	if _, err := time.LoadLocation(cnf.TimeZone); err != nil {
		log.Printf("Error: invalid time zone %q", cnf.TimeZone)
		return err
	}

	if cnf.Queue.SettlementQueue == "" {
		cnf.Queue.SettlementQueue = "code:settlement"
	}
	if cnf.Queue.NotificationQueue == "" {
		cnf.Queue.NotificationQueue = "lead:notification"
	}
	if cnf.Queue.ScanQueue == "" {
		cnf.Queue.ScanQueue = "code:scan"
	}
	if cnf.Queue.WorkerConcurrency <= 0 {
		cnf.Queue.WorkerConcurrency = 1
	}
	if cnf.Queue.MaxRetryAttempts <= 0 {
		cnf.Queue.MaxRetryAttempts = 5
	}
	if cnf.Queue.SettlementWindowSeconds <= 0 {
		cnf.Queue.SettlementWindowSeconds = DEFAULT_SETTLEMENT_WINDOW_SECONDS
	}
	if cnf.Queue.NotificationWindowSeconds <= 0 {
		cnf.Queue.NotificationWindowSeconds = DEFAULT_NOTIFICATION_WINDOW_SECONDS
	}

	if cnf.Scan.CronSchedule == "" {
		cnf.Scan.CronSchedule = DEFAULT_SCAN_CRON
	}
	if cnf.Scan.BatchSize <= 0 {
		cnf.Scan.BatchSize = DEFAULT_SCAN_BATCH_SIZE
	}

	return nil
}

// Location returns the configured business time zone. The validity boundary
// of discount codes is inclusive until end of day in this zone, and the scan
// cron fires in it.
func (cnf *Configuration) Location() *time.Location {
	loc, err := time.LoadLocation(cnf.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if err := mockConfig.validateAndAddDefaults(); err != nil {
		log.Printf("Warning: mock config validation failed: %v", err)
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
