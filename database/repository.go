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

package database

import (
	"context"

	"github.com/blnkfinance/tracsync/model"
)

// Field names of the canonical work order document.
const (
	FieldNumber   = "number"
	FieldStatus   = "status"
	FieldTitle    = "title"
	FieldIsSynced = "isSynced"
)

// IDataSource is the storage port the sync core depends on, grouping the work order
// lookups, writes and the connection health check.
type IDataSource interface {
	workOrderReader // Lookups by field and by sync state
	workOrderWriter // Inserts and full-document replaces
	health          // Reachability check used while connecting
}

// workOrderReader defines lookups over the work order collection.
type workOrderReader interface {
	FindByField(ctx context.Context, field string, value interface{}) (*model.WorkOrder, error) // Returns nil, nil when nothing matches
	FindWhereSynced(ctx context.Context, isSynced bool) ([]model.WorkOrder, error)             // Returns work orders by sync state, ordered by number
}

// workOrderWriter defines writes to the work order collection.
type workOrderWriter interface {
	Insert(ctx context.Context, workOrder *model.WorkOrder) (*model.WorkOrder, error)                // Inserts a new work order
	Update(ctx context.Context, number int64, workOrder *model.WorkOrder) (*model.WorkOrder, error) // Replaces the work order with the given number; nil, nil when zero documents matched
}

// health defines connectivity checks against the backend.
type health interface {
	Ping(ctx context.Context) error
}
