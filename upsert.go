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

	"github.com/blnkfinance/tracsync/database"
	"github.com/blnkfinance/tracsync/internal/syncerror"
	"github.com/blnkfinance/tracsync/model"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// keyValue returns the value of keyField on w. Only the business number is a
// supported uniqueness key.
func keyValue(w *model.WorkOrder, keyField string) (interface{}, error) {
	switch keyField {
	case database.FieldNumber:
		return w.Number, nil
	default:
		return nil, syncerror.NewValidationError(fmt.Sprintf("%q is not a unique work order key", keyField), nil, map[string]string{"key_field": keyField})
	}
}

// persistenceError wraps a storage failure as a PersistenceError. A ConnectionError,
// raised only when the connect retries are exhausted, is passed through unchanged.
func persistenceError(err error, message string, number int64) error {
	if syncerror.IsConnection(err) {
		return err
	}
	return syncerror.NewPersistenceError(message, err, map[string]int64{"order_no": number})
}

// UpsertWorkOrder stores w, keyed by keyField. An existing record with the same key is
// replaced as a whole; otherwise w is inserted.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - w *model.WorkOrder: The work order to store.
// - keyField string: The uniqueness key; only database.FieldNumber is supported.
//
// Returns:
// - *model.WorkOrder: The stored work order. If the record vanished between lookup and
// replace, w is returned unmodified and no error is reported.
// - error: A ValidationError for an unsupported key, or a PersistenceError when storage fails.
func (s *Sync) UpsertWorkOrder(ctx context.Context, w *model.WorkOrder, keyField string) (*model.WorkOrder, error) {
	ctx, span := tracer.Start(ctx, "UpsertWorkOrder")
	defer span.End()

	if w == nil {
		return nil, syncerror.NewValidationError("work order is required", nil, nil)
	}
	span.SetAttributes(
		attribute.Int64("tracsync.number", w.Number),
		attribute.String("tracsync.key_field", keyField),
	)

	value, err := keyValue(w, keyField)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger := logrus.WithField("order_no", w.Number)

	existing, err := s.datasource.FindByField(ctx, keyField, value)
	if err != nil {
		span.RecordError(err)
		return nil, persistenceError(err, "failed to look up work order", w.Number)
	}

	if existing == nil {
		inserted, err := s.datasource.Insert(ctx, w)
		if err != nil {
			span.RecordError(err)
			return nil, persistenceError(err, "failed to insert work order", w.Number)
		}
		span.AddEvent("inserted")
		logger.Info("inserted work order")
		return inserted, nil
	}

	updated, err := s.datasource.Update(ctx, existing.Number, w)
	if err != nil {
		span.RecordError(err)
		return nil, persistenceError(err, "failed to update work order", w.Number)
	}
	if updated == nil {
		span.AddEvent("update matched nothing")
		logger.Warn("work order disappeared before it could be replaced, nothing was written")
		return w, nil
	}

	span.AddEvent("updated")
	logger.Info("updated work order")
	return updated, nil
}
