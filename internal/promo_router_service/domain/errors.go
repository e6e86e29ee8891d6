package domain

import "errors"

var (
	// ErrNotFound indicates that no promotion record matches the phone number.
	// It is a normal business outcome, not a failure.
	ErrNotFound = errors.New("promotion not found")
	// ErrLookupFailure indicates the record store could not be read.
	ErrLookupFailure = errors.New("record lookup failed")
	// ErrSendFailure indicates the channel send API did not accept a message.
	ErrSendFailure = errors.New("message send failed")
	// ErrPayloadShapeMismatch indicates a webhook body carried no processable message.
	ErrPayloadShapeMismatch = errors.New("no message in webhook payload")
	// ErrConfigAbsent indicates an optional collaborator is not configured.
	ErrConfigAbsent = errors.New("configuration absent")
)
