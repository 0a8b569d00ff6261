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

import (
	"fmt"
	"strings"
	"time"
)

// CustomerWorkOrder is the customer-facing work order exchanged through JSON files.
// The json field names are part of the customer contract and must not change.
type CustomerWorkOrder struct {
	OrderNo        int64      `json:"orderNo"`
	IsActive       bool       `json:"isActive"`
	IsCanceled     bool       `json:"isCanceled"`
	IsDeleted      bool       `json:"isDeleted"`
	IsDone         bool       `json:"isDone"`
	IsOnHold       bool       `json:"isOnHold"`
	IsPending      bool       `json:"isPending"`
	IsSynced       bool       `json:"isSynced"`
	Summary        string     `json:"summary"`
	CreationDate   time.Time  `json:"creationDate"`
	LastUpdateDate time.Time  `json:"lastUpdateDate"`
	DeletedDate    *time.Time `json:"deletedDate"`
}

// isoLayouts are the ISO-8601 renderings accepted on ingest. Customer systems
// frequently omit the zone offset; such timestamps are read as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseISOTime parses an ISO-8601 timestamp as produced by customer systems.
func ParseISOTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an ISO-8601 timestamp", value)
}

// OutboundFileName returns the deterministic file name an exported work order is written to.
func (c CustomerWorkOrder) OutboundFileName() string {
	return fmt.Sprintf("workorder_%d.json", c.OrderNo)
}
