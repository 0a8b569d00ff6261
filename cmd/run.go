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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/blnkfinance/tracsync"
	"github.com/blnkfinance/tracsync/database"
	"github.com/blnkfinance/tracsync/internal/notification"
	redis_db "github.com/blnkfinance/tracsync/internal/redis-db"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// phase is one independently connected step of a sync run.
type phase struct {
	name string
	run  func(ctx context.Context, s *tracsync.Sync) (tracsync.Report, error)
}

var (
	inboundPhase = phase{name: tracsync.PhaseInbound, run: func(ctx context.Context, s *tracsync.Sync) (tracsync.Report, error) {
		return s.ProcessInbound(ctx)
	}}
	outboundPhase = phase{name: tracsync.PhaseOutbound, run: func(ctx context.Context, s *tracsync.Sync) (tracsync.Report, error) {
		return s.ProcessOutbound(ctx)
	}}
)

// openDataSource connects to the configured storage. The returned func releases it.
func (app *syncInstance) openDataSource(ctx context.Context) (database.IDataSource, func(), error) {
	if app.storage == storageMemory {
		if app.memory == nil {
			app.memory = database.NewMemoryDataSource()
		}
		return app.memory, func() {}, nil
	}

	ds, err := database.NewMongoDataSource(ctx, database.MongoConfig{
		Dns:                app.cnf.DataSource.Dns,
		Database:           app.cnf.DataSource.Database,
		Collection:         app.cnf.DataSource.Collection,
		MaxConnectAttempts: app.cnf.DataSource.MaxConnectAttempts,
		ConnectRetryDelay:  app.cnf.DataSource.ConnectRetryDelay(),
	})
	if err != nil {
		return nil, nil, err
	}
	return ds, func() {
		if err := ds.Close(context.Background()); err != nil {
			logrus.WithError(err).Warn("failed to disconnect from mongodb")
		}
	}, nil
}

// openRedis connects to redis when one is configured; a nil client disables export locking.
func (app *syncInstance) openRedis() (*redis_db.Redis, error) {
	if app.cnf.Redis.Dns == "" {
		return nil, nil
	}
	return redis_db.NewRedisClient(strings.Split(app.cnf.Redis.Dns, ","))
}

// newSync builds a sync core on top of ds from the loaded configuration.
func (app *syncInstance) newSync(ds database.IDataSource, redisClient *redis_db.Redis) (*tracsync.Sync, error) {
	opts := tracsync.Options{
		InboundDir:      app.cnf.Inbound.Dir,
		OutboundDir:     app.cnf.Outbound.Dir,
		OutboundWorkers: app.cnf.Outbound.Workers,
	}
	if redisClient != nil {
		opts.Redis = redisClient.Client()
	}
	return tracsync.NewSync(ds, opts)
}

// runPhase connects, runs p and logs its report. Every phase gets its own connection
// so a storage outage during one does not poison the other.
func (app *syncInstance) runPhase(ctx context.Context, p phase) error {
	logger := logrus.WithField("phase", p.name)

	ds, closeDataSource, err := app.openDataSource(ctx)
	if err != nil {
		return fmt.Errorf("%s phase: %w", p.name, err)
	}
	defer closeDataSource()

	redisClient, err := app.openRedis()
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, exporting without per work order locks")
		redisClient = nil
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	s, err := app.newSync(ds, redisClient)
	if err != nil {
		return fmt.Errorf("%s phase: %w", p.name, err)
	}

	report, err := p.run(ctx, s)
	logger.WithFields(logrus.Fields{
		"run_id":    report.RunID,
		"processed": report.Processed,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"skipped":   report.Skipped,
	}).Info("phase finished")
	if err != nil {
		return fmt.Errorf("%s phase: %w", p.name, err)
	}
	return nil
}

// executePhases runs every phase in order, even when an earlier one fails, and reports
// all fatal failures together.
func executePhases(ctx context.Context, phases []phase, run func(context.Context, phase) error) error {
	var errs []error
	for _, p := range phases {
		if err := run(ctx, p); err != nil {
			notification.NotifyError(err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func phaseCommand(app *syncInstance, use, short string, phases ...phase) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return executePhases(ctx, phases, app.runPhase)
		},
	}
}

func runCommands(app *syncInstance) *cobra.Command {
	return phaseCommand(app, "run", "run the inbound phase, then the outbound phase", inboundPhase, outboundPhase)
}

func inboundCommands(app *syncInstance) *cobra.Command {
	return phaseCommand(app, "inbound", "import customer work order files into TracOS", inboundPhase)
}

func outboundCommands(app *syncInstance) *cobra.Command {
	return phaseCommand(app, "outbound", "export unsynced TracOS work orders as customer files", outboundPhase)
}
