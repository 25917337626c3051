package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// Error codes
// -----------------------------------------------------------------------------

const (
	CodeHTTPError           = "HTTP_ERROR"
	CodeNetworkError        = "NETWORK_ERROR"
	CodeAborted             = "ECONNABORTED"
	CodeTimeoutError        = "TIMEOUT_ERROR"
	CodeServerError         = "SERVER_ERROR"
	CodeCurrenciesFetch     = "CURRENCIES_FETCH_ERROR"
	CodeMarketFetch         = "MARKET_FETCH_ERROR"
	CodeNetworkOffline      = "NETWORK_OFFLINE"
	CodeUnknown             = "UNKNOWN_ERROR"
	DefaultNetworkErrorText = "Network request failed"
)

// ErrInvalidArgument marks programmer errors: nil callbacks, empty storage
// keys, impossible intervals. Never retried and never classified as network.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgument wraps ErrInvalidArgument with a description.
func InvalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------
// ApiError
// -----------------------------------------------------------------------------

// ApiError is the classified failure produced at the request boundary.
// Status is 0 when no HTTP response was received.
type ApiError struct {
	Message   string
	Code      string
	Status    int
	Timestamp time.Time
	Cause     error
}

func NewApiError(message, code string, status int) *ApiError {
	return &ApiError{
		Message:   message,
		Code:      code,
		Status:    status,
		Timestamp: time.Now(),
	}
}

func (e *ApiError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s [%s %d]", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Code)
}

func (e *ApiError) Unwrap() error {
	return e.Cause
}

// HasStatus reports whether an HTTP status was received
func (e *ApiError) HasStatus() bool {
	return e.Status != 0
}

// Clone returns a copy stamped with the given time
func (e *ApiError) Clone(at time.Time) *ApiError {
	c := *e
	c.Timestamp = at
	return &c
}

// -----------------------------------------------------------------------------

// AsApiError extracts an *ApiError from err's chain, or builds an
// UNKNOWN_ERROR one around it.
func AsApiError(err error) *ApiError {
	if err == nil {
		return nil
	}
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &ApiError{
		Message:   err.Error(),
		Code:      CodeUnknown,
		Timestamp: time.Now(),
		Cause:     err,
	}
}

// -----------------------------------------------------------------------------
// Retryability tables
// -----------------------------------------------------------------------------

var retryableCodes = map[string]struct{}{
	CodeNetworkError: {},
	CodeTimeoutError: {},
	CodeServerError:  {},
	CodeAborted:      {},
}

var retryableStatuses = map[int]struct{}{
	408: {}, 429: {}, 500: {}, 502: {}, 503: {}, 504: {},
}

func IsRetryableCode(code string) bool {
	_, ok := retryableCodes[code]
	return ok
}

func IsRetryableStatus(status int) bool {
	_, ok := retryableStatuses[status]
	return ok
}

// -----------------------------------------------------------------------------
// Storage errors
// -----------------------------------------------------------------------------

type StorageError struct {
	Message string
	Cause   error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to maxRetries times, doubling the delay after
// each failure. Used for startup connections, not for request traffic.
func RetryWithBackoff(ctx context.Context, log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	if maxRetries < 1 {
		return InvalidArgument("maxRetries must be at least 1, got %d", maxRetries)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, maxRetries, lastErr)
}
