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

	"github.com/blnkfinance/tracsync/database"
	"github.com/blnkfinance/tracsync/internal/syncerror"
	"github.com/blnkfinance/tracsync/model"
)

// PendingExports returns every work order that has not been exported yet, ordered by number.
func (s *Sync) PendingExports(ctx context.Context) ([]model.WorkOrder, error) {
	ctx, span := tracer.Start(ctx, "PendingExports")
	defer span.End()

	workOrders, err := s.datasource.FindWhereSynced(ctx, false)
	if err != nil {
		span.RecordError(err)
		return nil, persistenceError(err, "failed to select unsynced work orders", 0)
	}
	return workOrders, nil
}

// MarkExported records that w has been written to the customer side. It must only be
// called once that write returned without error.
func (s *Sync) MarkExported(ctx context.Context, w *model.WorkOrder) (*model.WorkOrder, error) {
	if w == nil {
		return nil, syncerror.NewValidationError("work order is required", nil, nil)
	}
	synced := *w
	synced.MarkSynced(s.now())
	return s.UpsertWorkOrder(ctx, &synced, database.FieldNumber)
}
