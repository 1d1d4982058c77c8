// Package errors classifies AWS SDK failures into the categories callers act on.
package errors

import (
	goerrors "errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ConflictError indicates a uniqueness/conditional conflict; callers should not blindly retry.
type ConflictError struct{ Cause error }

func (e *ConflictError) Error() string { return fmt.Sprintf("conflict: %v", e.Cause) }
func (e *ConflictError) Unwrap() error { return e.Cause }

// RetryableError indicates the request may succeed on retry with backoff.
type RetryableError struct{ Cause error }

func (e *RetryableError) Error() string { return fmt.Sprintf("retryable: %v", e.Cause) }
func (e *RetryableError) Unwrap() error { return e.Cause }

// OpError is a generic wrapper for unexpected failures.
type OpError struct{ Cause error }

func (e *OpError) Error() string { return fmt.Sprintf("op error: %v", e.Cause) }
func (e *OpError) Unwrap() error { return e.Cause }

// Classify maps smithy errors from DynamoDB and Bedrock to the categories above.
// Errors that are already classified are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if Category(err) != "" {
		return err
	}
	var api smithy.APIError
	if goerrors.As(err, &api) {
		switch api.ErrorCode() {
		case "ConditionalCheckFailedException", "TransactionCanceledException":
			return &ConflictError{Cause: err}
		case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded",
			"TransactionInProgressException", "ServiceUnavailableException", "ModelNotReadyException",
			"ModelTimeoutException", "InternalServerException":
			return &RetryableError{Cause: err}
		}
	}
	return &OpError{Cause: err}
}

// Category names the classification of err: "conflict", "retryable", "op" or
// "" when err was not produced by Classify.
func Category(err error) string {
	var (
		c *ConflictError
		r *RetryableError
		o *OpError
	)
	switch {
	case goerrors.As(err, &c):
		return "conflict"
	case goerrors.As(err, &r):
		return "retryable"
	case goerrors.As(err, &o):
		return "op"
	}
	return ""
}

// IsConflict reports whether err is, or wraps, a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return goerrors.As(err, &c)
}
