// Package errors provides standardized error handling for the reservation notifier.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Fatal, startup only.
	ErrCodeConfigMissing        ErrorCode = "CONFIG_MISSING"
	ErrCodeCapabilityInitFailed ErrorCode = "CAPABILITY_INIT_FAILED"

	// Per-record, recovered by skipping the record and logging.
	ErrCodeDriverNotFound   ErrorCode = "DRIVER_NOT_FOUND"
	ErrCodeMissingRecipient ErrorCode = "MISSING_RECIPIENT"
	ErrCodeUnknownStatus    ErrorCode = "UNKNOWN_STATUS"
	ErrCodeDispatchFailed   ErrorCode = "DISPATCH_FAILED"

	// Recovered by scheduled resubscription.
	ErrCodeSubscriptionError ErrorCode = "SUBSCRIPTION_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from err, or empty string for foreign errors.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsPerRecord reports whether err is recovered by skipping a single record.
// Anything outside this set escaping the change handler is a defect in the
// handler, not a per-record condition.
func IsPerRecord(err error) bool {
	switch CodeOf(err) {
	case ErrCodeDriverNotFound, ErrCodeMissingRecipient, ErrCodeUnknownStatus, ErrCodeDispatchFailed:
		return true
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigMissingError creates a fatal startup error for an absent required value.
func NewConfigMissingError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigMissing,
		Message:   "Required configuration value is missing",
		Details:   fmt.Sprintf("key: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCapabilityInitFailedError creates a fatal startup error for a capability
// (store or email provider) that could not be initialized.
func NewCapabilityInitFailedError(capability string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCapabilityInitFailed,
		Message:   "External capability initialization failed",
		Details:   fmt.Sprintf("capability: %s, error: %s", capability, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDriverNotFoundError creates a per-record error for an unresolvable driver id.
func NewDriverNotFoundError(driverID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDriverNotFound,
		Message:   "Driver record not found",
		Details:   fmt.Sprintf("driverId: %s", driverID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingRecipientError creates a per-record error for an absent customer email.
func NewMissingRecipientError(reservationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingRecipient,
		Message:   "Reservation has no customer email",
		Details:   fmt.Sprintf("reservationId: %s", reservationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownStatusError creates a per-record error for a status with no
// registered notification template.
func NewUnknownStatusError(status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownStatus,
		Message:   "No notification template registered for status",
		Details:   fmt.Sprintf("status: %s", status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDispatchFailedError creates a per-record error for a failed email send.
// detail carries the provider's structured error body when available.
func NewDispatchFailedError(detail string, err error) *StandardError {
	e := &StandardError{
		Code:      ErrCodeDispatchFailed,
		Message:   "Email dispatch failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
	if detail != "" {
		e.Metadata = map[string]interface{}{"providerResponse": detail}
	}
	return e
}

// NewSubscriptionError creates a recoverable subscription-level error.
// The manager reacts by scheduling a fresh subscription after a fixed delay.
func NewSubscriptionError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubscriptionError,
		Message:   "Change subscription failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
