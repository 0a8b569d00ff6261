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
	"errors"
	"time"

	"github.com/blnkfinance/tracsync/database"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("tracsync")

const (
	// DefaultLockTimeout bounds how long a per-order lock may be held during export.
	DefaultLockTimeout = 30 * time.Second
	// DefaultLockWait bounds how long an export worker waits for another worker's lock.
	DefaultLockWait = 10 * time.Second
)

// Options carries everything the sync core needs from its caller. It is built from
// the loaded configuration by the command layer.
type Options struct {
	InboundDir      string
	OutboundDir     string
	OutboundWorkers int
	// Redis is optional. When set and OutboundWorkers > 1, each exported work order
	// is written under a per-order lock.
	Redis       redis.UniversalClient
	LockTimeout time.Duration
	LockWait    time.Duration
	// Clock returns the current time. Defaults to time.Now in UTC.
	Clock func() time.Time
}

// Sync represents the work order synchronization core.
type Sync struct {
	datasource database.IDataSource
	opts       Options
	now        func() time.Time
}

// Report summarizes one inbound or outbound phase.
type Report struct {
	RunID     string `json:"run_id"`
	Phase     string `json:"phase"`
	Processed int    `json:"processed"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
}

// NewSync initializes a new instance of Sync with the provided datasource.
//
// Parameters:
// - ds database.IDataSource: The storage port for work orders.
// - opts Options: Directories, export concurrency and optional redis client.
//
// Returns:
// - *Sync: A pointer to the newly created Sync instance.
// - error: An error if the datasource is missing.
func NewSync(ds database.IDataSource, opts Options) (*Sync, error) {
	if ds == nil {
		return nil, errors.New("a datasource is required")
	}
	if opts.OutboundWorkers <= 0 {
		opts.OutboundWorkers = 1
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if opts.LockWait <= 0 {
		opts.LockWait = DefaultLockWait
	}
	now := opts.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Sync{datasource: ds, opts: opts, now: now}, nil
}
