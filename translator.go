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
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/blnkfinance/tracsync/internal/syncerror"
	"github.com/blnkfinance/tracsync/model"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"
)

// statusFlag ties one customer status flag to its TracOS status.
type statusFlag struct {
	name   string
	status model.Status
	flag   func(c *model.CustomerWorkOrder) *bool
}

// statusPriority is evaluated in order; the first flag set wins.
var statusPriority = []statusFlag{
	{name: "isPending", status: model.StatusPending, flag: func(c *model.CustomerWorkOrder) *bool { return &c.IsPending }},
	{name: "isOnHold", status: model.StatusOnHold, flag: func(c *model.CustomerWorkOrder) *bool { return &c.IsOnHold }},
	{name: "isDone", status: model.StatusCompleted, flag: func(c *model.CustomerWorkOrder) *bool { return &c.IsDone }},
	{name: "isCanceled", status: model.StatusCancelled, flag: func(c *model.CustomerWorkOrder) *bool { return &c.IsCanceled }},
	{name: "isDeleted", status: model.StatusDeleted, flag: func(c *model.CustomerWorkOrder) *bool { return &c.IsDeleted }},
}

// customerPayload mirrors CustomerWorkOrder with pointer fields so absent keys can be told
// apart from zero values.
type customerPayload struct {
	OrderNo        *int64  `json:"orderNo"`
	IsActive       *bool   `json:"isActive"`
	IsCanceled     *bool   `json:"isCanceled"`
	IsDeleted      *bool   `json:"isDeleted"`
	IsDone         *bool   `json:"isDone"`
	IsOnHold       *bool   `json:"isOnHold"`
	IsPending      *bool   `json:"isPending"`
	IsSynced       *bool   `json:"isSynced"`
	Summary        *string `json:"summary"`
	CreationDate   *string `json:"creationDate"`
	LastUpdateDate *string `json:"lastUpdateDate"`
	DeletedDate    *string `json:"deletedDate"`
}

func isoTimestamp(value interface{}) error {
	v, _ := validation.Indirect(value)
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := model.ParseISOTime(s); err != nil {
		return errors.New("must be an ISO-8601 timestamp")
	}
	return nil
}

func (p *customerPayload) validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.OrderNo, validation.NotNil),
		validation.Field(&p.Summary, validation.NotNil),
		validation.Field(&p.CreationDate, validation.NotNil, validation.Required, validation.By(isoTimestamp)),
		validation.Field(&p.LastUpdateDate, validation.NotNil, validation.Required, validation.By(isoTimestamp)),
		validation.Field(&p.DeletedDate, validation.By(isoTimestamp)),
		validation.Field(&p.IsCanceled, validation.NotNil),
		validation.Field(&p.IsDeleted, validation.NotNil),
		validation.Field(&p.IsDone, validation.NotNil),
		validation.Field(&p.IsOnHold, validation.NotNil),
		validation.Field(&p.IsPending, validation.NotNil),
	)
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// ParseCustomerWorkOrder decodes and validates one customer work order document.
// The whole record is rejected with a ValidationError when a required field is
// missing or carries the wrong type; nothing is partially translated.
func ParseCustomerWorkOrder(data []byte) (model.CustomerWorkOrder, error) {
	var p customerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return model.CustomerWorkOrder{}, syncerror.NewValidationError("malformed customer work order", err, nil)
	}
	if err := p.validate(); err != nil {
		return model.CustomerWorkOrder{}, syncerror.NewValidationError("invalid customer work order", err, err)
	}

	// Timestamps were checked by validate.
	created, _ := model.ParseISOTime(*p.CreationDate)
	updated, _ := model.ParseISOTime(*p.LastUpdateDate)
	var deleted *time.Time
	if p.DeletedDate != nil && strings.TrimSpace(*p.DeletedDate) != "" {
		d, _ := model.ParseISOTime(*p.DeletedDate)
		deleted = &d
	}

	return model.CustomerWorkOrder{
		OrderNo:        *p.OrderNo,
		IsActive:       boolOr(p.IsActive, true),
		IsCanceled:     *p.IsCanceled,
		IsDeleted:      *p.IsDeleted,
		IsDone:         *p.IsDone,
		IsOnHold:       *p.IsOnHold,
		IsPending:      *p.IsPending,
		IsSynced:       boolOr(p.IsSynced, false),
		Summary:        *p.Summary,
		CreationDate:   created,
		LastUpdateDate: updated,
		DeletedDate:    deleted,
	}, nil
}

// resolveStatus walks statusPriority and returns the first status whose flag is set.
func resolveStatus(c *model.CustomerWorkOrder) model.Status {
	for _, entry := range statusPriority {
		if *entry.flag(c) {
			return entry.status
		}
	}
	return model.StatusPending
}

// CustomerToWorkOrder translates a customer work order into its TracOS form.
// The result is always unsynced: an ingested record has not been exported in its current form.
func CustomerToWorkOrder(c model.CustomerWorkOrder) model.WorkOrder {
	if !c.IsActive {
		logrus.WithField("order_no", c.OrderNo).Warn("isActive=false has no TracOS counterpart and is ignored")
	}

	var deletedAt *time.Time
	if c.DeletedDate != nil {
		d := *c.DeletedDate
		deletedAt = &d
	}

	return model.WorkOrder{
		Number:      c.OrderNo,
		Status:      resolveStatus(&c),
		Title:       c.Summary,
		Description: c.Summary,
		CreatedAt:   c.CreationDate,
		UpdatedAt:   c.LastUpdateDate,
		Deleted:     c.IsDeleted,
		DeletedAt:   deletedAt,
		IsSynced:    false,
		SyncedAt:    nil,
	}
}

// WorkOrderToCustomer translates a TracOS work order into the customer form. Exactly one
// status flag is set, except for statuses with no customer counterpart (in_progress),
// which leave every flag false. isDeleted follows the status alone; the Deleted flag is not
// exported, while DeletedAt is always carried over as deletedDate.
func WorkOrderToCustomer(w model.WorkOrder) model.CustomerWorkOrder {
	var deletedDate *time.Time
	if w.DeletedAt != nil {
		d := *w.DeletedAt
		deletedDate = &d
	}

	c := model.CustomerWorkOrder{
		OrderNo:        w.Number,
		IsActive:       true,
		IsSynced:       w.IsSynced,
		Summary:        w.Title,
		CreationDate:   w.CreatedAt,
		LastUpdateDate: w.UpdatedAt,
		DeletedDate:    deletedDate,
	}

	for _, entry := range statusPriority {
		if entry.status == w.Status {
			*entry.flag(&c) = true
			return c
		}
	}

	logrus.WithFields(logrus.Fields{
		"order_no": w.Number,
		"status":   w.Status,
	}).Warn("status has no customer flag, exporting with every status flag false")
	return c
}
