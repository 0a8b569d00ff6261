/*
Copyright 2024 Blnk Finance Authors.

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
	DEFAULT_DATA_SOURCE_DNS      = "mongodb://localhost:27017"
	DEFAULT_DATABASE             = "tractian"
	DEFAULT_COLLECTION           = "workorders"
	DEFAULT_MAX_CONNECT_ATTEMPTS = 5
	DEFAULT_CONNECT_RETRY_DELAY  = 2
	DEFAULT_OUTBOUND_WORKERS     = 1
	legacyInboundDirEnv          = "DATA_INBOUND_DIR"
	legacyOutboundDirEnv         = "DATA_OUTBOUND_DIR"
)

var ConfigStore atomic.Value

type DataSourceConfig struct {
	Dns                  string `json:"dns" envconfig:"TRACSYNC_DATA_SOURCE_DNS"`
	Database             string `json:"database" envconfig:"TRACSYNC_DATA_SOURCE_DATABASE"`
	Collection           string `json:"collection" envconfig:"TRACSYNC_DATA_SOURCE_COLLECTION"`
	MaxConnectAttempts   int    `json:"max_connect_attempts" envconfig:"TRACSYNC_DATA_SOURCE_MAX_CONNECT_ATTEMPTS"`
	ConnectRetryDelaySec int    `json:"connect_retry_delay_sec" envconfig:"TRACSYNC_DATA_SOURCE_CONNECT_RETRY_DELAY_SEC"`
}

// ConnectRetryDelay returns the pause between connection attempts.
func (d DataSourceConfig) ConnectRetryDelay() time.Duration {
	return time.Duration(d.ConnectRetryDelaySec) * time.Second
}

type InboundConfig struct {
	Dir string `json:"dir" envconfig:"TRACSYNC_DATA_INBOUND_DIR"`
}

type OutboundConfig struct {
	Dir     string `json:"dir" envconfig:"TRACSYNC_DATA_OUTBOUND_DIR"`
	Workers int    `json:"workers" envconfig:"TRACSYNC_OUTBOUND_WORKERS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"TRACSYNC_REDIS_DNS"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url" envconfig:"TRACSYNC_SLACK_WEBHOOK_URL"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"TRACSYNC_PROJECT_NAME"`
	DataSource   DataSourceConfig `json:"data_source"`
	Inbound      InboundConfig    `json:"inbound"`
	Outbound     OutboundConfig   `json:"outbound"`
	Redis        RedisConfig      `json:"redis"`
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
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("tracsync", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return nil
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called tracsync.json or set the TRACSYNC_ env variables ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		cnf.ProjectName = "TracOS Sync"
	}

	// The pipeline has historically been configured through these two variables.
	if cnf.Inbound.Dir == "" {
		cnf.Inbound.Dir = os.Getenv(legacyInboundDirEnv)
	}
	if cnf.Outbound.Dir == "" {
		cnf.Outbound.Dir = os.Getenv(legacyOutboundDirEnv)
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Inbound.Dir = strings.TrimSpace(cnf.Inbound.Dir)
	cnf.Outbound.Dir = strings.TrimSpace(cnf.Outbound.Dir)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Inbound.Dir == "" {
		log.Println("Error: inbound directory is empty. It's a required field.")
		return errors.New("inbound directory is required")
	}

	if cnf.Outbound.Dir == "" {
		log.Println("Error: outbound directory is empty. It's a required field.")
		return errors.New("outbound directory is required")
	}

	if cnf.DataSource.Dns == "" {
		cnf.DataSource.Dns = DEFAULT_DATA_SOURCE_DNS
		log.Printf("Warning: Data source DNS not specified in config. Setting default: %s", DEFAULT_DATA_SOURCE_DNS)
	}
	if cnf.DataSource.Database == "" {
		cnf.DataSource.Database = DEFAULT_DATABASE
	}
	if cnf.DataSource.Collection == "" {
		cnf.DataSource.Collection = DEFAULT_COLLECTION
	}
	if cnf.DataSource.MaxConnectAttempts <= 0 {
		cnf.DataSource.MaxConnectAttempts = DEFAULT_MAX_CONNECT_ATTEMPTS
	}
	if cnf.DataSource.ConnectRetryDelaySec <= 0 {
		cnf.DataSource.ConnectRetryDelaySec = DEFAULT_CONNECT_RETRY_DELAY
	}

	if cnf.Outbound.Workers <= 0 {
		cnf.Outbound.Workers = DEFAULT_OUTBOUND_WORKERS
	}
	if cnf.Outbound.Workers > 1 && cnf.Redis.Dns == "" {
		log.Printf("Warning: %d outbound workers configured without redis. Writes will not be locked per work order.", cnf.Outbound.Workers)
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
