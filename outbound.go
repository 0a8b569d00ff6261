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

package tracsync

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/blnkfinance/tracsync/internal/files"
	redlock "github.com/blnkfinance/tracsync/internal/lock"
	"github.com/blnkfinance/tracsync/internal/syncerror"
	"github.com/blnkfinance/tracsync/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// ProcessOutbound exports every unsynced work order to the outbound directory as
// workorder_<orderNo>.json and marks it synced once the file is in place. A work order
// whose export fails stays unsynced and is retried on the next run.
//
// Up to Options.OutboundWorkers work orders are exported at once. With more than one
// worker and a redis client configured, each work order is exported under its own lock.
func (s *Sync) ProcessOutbound(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString(), Phase: PhaseOutbound}
	ctx, span := tracer.Start(ctx, "ProcessOutbound")
	defer span.End()
	span.SetAttributes(
		attribute.String("tracsync.run_id", report.RunID),
		attribute.Int("tracsync.workers", s.opts.OutboundWorkers),
	)

	logger := logrus.WithFields(logrus.Fields{"run_id": report.RunID, "phase": PhaseOutbound})
	logger.WithField("dir", s.opts.OutboundDir).Info("starting outbound work order processing")

	if err := files.EnsureDir(s.opts.OutboundDir); err != nil {
		span.RecordError(err)
		return report, err
	}

	pending, err := s.PendingExports(ctx)
	if err != nil {
		return report, err
	}

	var mu sync.Mutex
	runID := report.RunID
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.OutboundWorkers)

	for i := range pending {
		workOrder := pending[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			err := s.exportWorkOrder(gctx, &workOrder, runID)

			mu.Lock()
			report.Processed++
			if err != nil {
				report.Failed++
			} else {
				report.Succeeded++
			}
			mu.Unlock()

			if err != nil {
				logger.WithField("order_no", workOrder.Number).WithError(err).Error("failed to export work order")
				if syncerror.IsConnection(err) {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return report, err
	}
	if err := ctx.Err(); err != nil {
		logger.WithError(err).Warn("outbound work order processing interrupted")
		span.RecordError(err)
		return report, err
	}

	logger.WithFields(logrus.Fields{
		"processed": report.Processed,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("outbound work order processing completed")
	return report, nil
}

func (s *Sync) exportWorkOrder(ctx context.Context, w *model.WorkOrder, owner string) error {
	logger := logrus.WithField("order_no", w.Number)

	if s.opts.Redis != nil && s.opts.OutboundWorkers > 1 {
		locker := redlock.NewWorkOrderLocker(s.opts.Redis, w.Number, owner)
		if err := locker.WaitLock(ctx, s.opts.LockTimeout, s.opts.LockWait); err != nil {
			return fmt.Errorf("failed to lock work order %d: %w", w.Number, err)
		}
		defer func() {
			if err := locker.Unlock(context.Background()); err != nil {
				logger.WithError(err).Warn("failed to release work order lock")
			}
		}()
	}

	customer := WorkOrderToCustomer(*w)
	path := filepath.Join(s.opts.OutboundDir, customer.OutboundFileName())

	if err := files.WriteJSONFile(path, customer); err != nil {
		return err
	}

	if _, err := s.MarkExported(ctx, w); err != nil {
		return err
	}

	logger.WithField("file", filepath.Base(path)).Info("exported work order")
	return nil
}
