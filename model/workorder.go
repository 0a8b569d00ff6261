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

package model

import "time"

// Status is the single lifecycle state of a TracOS work order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on_hold"
	StatusCancelled  Status = "cancelled"
	StatusDeleted    Status = "deleted"
)

// Valid reports whether s is one of the known TracOS statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled, StatusDeleted:
		return true
	}
	return false
}

// WorkOrder is the canonical TracOS representation held in the document store.
// Number is the unique business key and never changes once the record exists.
type WorkOrder struct {
	Number      int64      `json:"number" bson:"number"`
	Status      Status     `json:"status" bson:"status"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
	Deleted     bool       `json:"deleted" bson:"deleted"`
	DeletedAt   *time.Time `json:"deletedAt" bson:"deletedAt"`
	IsSynced    bool       `json:"isSynced" bson:"isSynced"`
	SyncedAt    *time.Time `json:"syncedAt" bson:"syncedAt"`
}

// MarkSynced flips the work order into the synced state. IsSynced and SyncedAt
// always move together.
func (w *WorkOrder) MarkSynced(at time.Time) {
	w.IsSynced = true
	w.SyncedAt = &at
}

// ClearSync resets the sync state so the record is picked up by the next export.
func (w *WorkOrder) ClearSync() {
	w.IsSynced = false
	w.SyncedAt = nil
}

// SyncStateValid reports whether IsSynced and SyncedAt agree with each other.
func (w WorkOrder) SyncStateValid() bool {
	return w.IsSynced == (w.SyncedAt != nil)
}
