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
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/blnkfinance/tracsync/database"
	"github.com/blnkfinance/tracsync/internal/files"
	"github.com/blnkfinance/tracsync/internal/syncerror"
	"github.com/blnkfinance/tracsync/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	PhaseInbound  = "inbound"
	PhaseOutbound = "outbound"
)

// ProcessInbound reads every customer work order file in the inbound directory,
// translates it and upserts it by number. A file that cannot be read, parsed or stored
// is logged and counted as failed without stopping the batch. Only a ConnectionError
// ends the phase early.
//
// Parameters:
// - ctx context.Context: The context for the operation.
//
// Returns:
// - Report: Counters for the phase.
// - error: A fatal error that stopped the phase, or nil.
func (s *Sync) ProcessInbound(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString(), Phase: PhaseInbound}
	ctx, span := tracer.Start(ctx, "ProcessInbound")
	defer span.End()
	span.SetAttributes(attribute.String("tracsync.run_id", report.RunID))

	logger := logrus.WithFields(logrus.Fields{"run_id": report.RunID, "phase": PhaseInbound})
	logger.WithField("dir", s.opts.InboundDir).Info("starting inbound work order processing")

	paths, ignored, err := files.ListJSONFiles(s.opts.InboundDir)
	if errors.Is(err, fs.ErrNotExist) {
		logger.WithField("dir", s.opts.InboundDir).Warn("inbound directory does not exist, nothing to process")
		return report, nil
	}
	if err != nil {
		span.RecordError(err)
		return report, err
	}
	report.Skipped = ignored

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Processed++
		fileLogger := logger.WithField("file", filepath.Base(path))

		workOrder, err := s.ingestFile(ctx, path)
		if err != nil {
			report.Failed++
			fileLogger.WithError(err).Error("skipping inbound file")
			if syncerror.IsConnection(err) {
				span.RecordError(err)
				return report, err
			}
			continue
		}

		report.Succeeded++
		fileLogger.WithField("order_no", workOrder.Number).Info("processed inbound work order")
	}

	logger.WithFields(logrus.Fields{
		"processed": report.Processed,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"skipped":   report.Skipped,
	}).Info("inbound work order processing completed")
	return report, nil
}

func (s *Sync) ingestFile(ctx context.Context, path string) (*model.WorkOrder, error) {
	data, err := files.ReadFile(path)
	if err != nil {
		return nil, err
	}

	customer, err := ParseCustomerWorkOrder(data)
	if err != nil {
		return nil, err
	}

	workOrder := CustomerToWorkOrder(customer)
	return s.UpsertWorkOrder(ctx, &workOrder, database.FieldNumber)
}
