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

package syncerror

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	// ErrValidation marks a malformed input record. The record is skipped.
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	// ErrPersistence marks a failed storage operation for a single record.
	ErrPersistence ErrorCode = "PERSISTENCE_ERROR"
	// ErrConnection marks storage that stayed unreachable after all retries. Fatal for the run.
	ErrConnection ErrorCode = "CONNECTION_ERROR"
)

type SyncError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func newSyncError(code ErrorCode, message string, err error, details interface{}) *SyncError {
	return &SyncError{
		Code:    code,
		Message: message,
		Details: details,
		Err:     err,
	}
}

func NewValidationError(message string, err error, details interface{}) *SyncError {
	return newSyncError(ErrValidation, message, err, details)
}

func NewPersistenceError(message string, err error, details interface{}) *SyncError {
	return newSyncError(ErrPersistence, message, err, details)
}

func NewConnectionError(message string, err error, details interface{}) *SyncError {
	return newSyncError(ErrConnection, message, err, details)
}

// CodeOf returns the code of the outermost SyncError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Code
	}
	return ""
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrValidation
}

func IsPersistence(err error) bool {
	return CodeOf(err) == ErrPersistence
}

func IsConnection(err error) bool {
	return CodeOf(err) == ErrConnection
}
