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
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/blnkfinance/tracsync/model"
)

// Compile-time assertion that MemoryDataSource satisfies the storage port.
var _ IDataSource = (*MemoryDataSource)(nil)

// ErrDuplicateNumber is returned when inserting a work order whose number is already stored.
var ErrDuplicateNumber = errors.New("work order number already exists")

// MemoryDataSource keeps work orders in a map keyed by number. It backs the tests
// and the `--storage memory` dry run. Writes are serialized by a single mutex.
type MemoryDataSource struct {
	mu         sync.RWMutex
	workOrders map[int64]model.WorkOrder
	pingErr    error
}

func NewMemoryDataSource() *MemoryDataSource {
	return &MemoryDataSource{workOrders: make(map[int64]model.WorkOrder)}
}

// SetPingError makes subsequent Ping calls fail with err. Passing nil restores health.
func (m *MemoryDataSource) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

func (m *MemoryDataSource) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingErr
}

func (m *MemoryDataSource) FindByField(_ context.Context, field string, value interface{}) (*model.WorkOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if field == FieldNumber {
		number, ok := toInt64(value)
		if !ok {
			return nil, fmt.Errorf("value %v for field %s is not an integer", value, field)
		}
		w, found := m.workOrders[number]
		if !found {
			return nil, nil
		}
		return &w, nil
	}

	for _, number := range m.sortedNumbers() {
		w := m.workOrders[number]
		match, err := fieldMatches(w, field, value)
		if err != nil {
			return nil, err
		}
		if match {
			return &w, nil
		}
	}
	return nil, nil
}

func (m *MemoryDataSource) Insert(_ context.Context, workOrder *model.WorkOrder) (*model.WorkOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.workOrders[workOrder.Number]; exists {
		return nil, errors.Wrapf(ErrDuplicateNumber, "insert work order %d", workOrder.Number)
	}
	m.workOrders[workOrder.Number] = *workOrder
	stored := *workOrder
	return &stored, nil
}

func (m *MemoryDataSource) Update(_ context.Context, number int64, workOrder *model.WorkOrder) (*model.WorkOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.workOrders[number]; !exists {
		return nil, nil
	}
	if workOrder.Number != number {
		if _, taken := m.workOrders[workOrder.Number]; taken {
			return nil, errors.Wrapf(ErrDuplicateNumber, "replace work order %d", number)
		}
		delete(m.workOrders, number)
	}
	m.workOrders[workOrder.Number] = *workOrder
	stored := *workOrder
	return &stored, nil
}

func (m *MemoryDataSource) FindWhereSynced(_ context.Context, isSynced bool) ([]model.WorkOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	workOrders := make([]model.WorkOrder, 0)
	for _, number := range m.sortedNumbers() {
		w := m.workOrders[number]
		if w.IsSynced == isSynced {
			workOrders = append(workOrders, w)
		}
	}
	return workOrders, nil
}

// Len returns the number of stored work orders.
func (m *MemoryDataSource) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workOrders)
}

func (m *MemoryDataSource) sortedNumbers() []int64 {
	numbers := make([]int64, 0, len(m.workOrders))
	for number := range m.workOrders {
		numbers = append(numbers, number)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers
}

func fieldMatches(w model.WorkOrder, field string, value interface{}) (bool, error) {
	switch field {
	case FieldStatus:
		switch v := value.(type) {
		case model.Status:
			return w.Status == v, nil
		case string:
			return string(w.Status) == v, nil
		}
	case FieldTitle:
		if v, ok := value.(string); ok {
			return w.Title == v, nil
		}
	case FieldIsSynced:
		if v, ok := value.(bool); ok {
			return w.IsSynced == v, nil
		}
	default:
		return false, fmt.Errorf("unsupported lookup field %q", field)
	}
	return false, fmt.Errorf("value %v has the wrong type for field %s", value, field)
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	}
	return 0, false
}
