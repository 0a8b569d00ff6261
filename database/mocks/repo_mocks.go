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
package mocks

import (
	"context"

	"github.com/blnkfinance/tracsync/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) FindByField(ctx context.Context, field string, value interface{}) (*model.WorkOrder, error) {
	args := m.Called(ctx, field, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkOrder), args.Error(1)
}

func (m *MockDataSource) FindWhereSynced(ctx context.Context, isSynced bool) ([]model.WorkOrder, error) {
	args := m.Called(ctx, isSynced)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkOrder), args.Error(1)
}

func (m *MockDataSource) Insert(ctx context.Context, workOrder *model.WorkOrder) (*model.WorkOrder, error) {
	args := m.Called(ctx, workOrder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkOrder), args.Error(1)
}

func (m *MockDataSource) Update(ctx context.Context, number int64, workOrder *model.WorkOrder) (*model.WorkOrder, error) {
	args := m.Called(ctx, number, workOrder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkOrder), args.Error(1)
}

func (m *MockDataSource) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
