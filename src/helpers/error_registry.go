package helpers

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// User facing messages
// -----------------------------------------------------------------------------

const (
	MsgUnknownError   = "Unknown error occurred"
	MsgOffline        = "No internet connection. Please check your network and try again."
	MsgNetworkError   = "Network error. Please check your connection and try again."
	MsgTimeout        = "Request timed out. Please try again."
	MsgServerError    = "Server error. Please try again later."
	MsgNotFound       = "Requested resource not found."
	MsgRateLimited    = "Too many requests. Please wait a moment and try again."
	MsgUnexpected     = "An unexpected error occurred"
	MsgConnectionLost = "Internet connection lost"

	NetworkErrorKey = "network"
)

// -----------------------------------------------------------------------------

// ErrorInfo is a classified error owned by the registry
type ErrorInfo struct {
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Status    int       `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Retryable bool      `json:"retryable"`
	Detail    string    `json:"-"` // full error chain, for logs only
}

type KeyedError struct {
	Key   string    `json:"key"`
	Error ErrorInfo `json:"error"`
}

// -----------------------------------------------------------------------------
// ErrorRegistry
// -----------------------------------------------------------------------------

// ErrorRegistry is a keyed collection of classified errors aware of
// connectivity. Going offline records a NETWORK_OFFLINE entry under "network".
type ErrorRegistry struct {
	mu     sync.RWMutex
	errors map[string]ErrorInfo
	online bool

	probe       interfaces.IConnectivityProbe
	unsubscribe func()
	notifier    Notifier[string]
	logger      *logger.Logger
	now         func() time.Time
}

func NewErrorRegistry(probe interfaces.IConnectivityProbe, log *logger.Logger) *ErrorRegistry {
	r := &ErrorRegistry{
		errors: make(map[string]ErrorInfo),
		online: true,
		probe:  probe,
		logger: log,
		now:    time.Now,
	}
	if probe != nil {
		r.online = probe.IsOnline()
		r.unsubscribe = probe.Subscribe(r.handleConnectivity)
	}
	return r
}

// -----------------------------------------------------------------------------

func (r *ErrorRegistry) handleConnectivity(online bool) {
	r.mu.Lock()
	r.online = online
	r.mu.Unlock()

	if online {
		r.notifier.Notify(NetworkErrorKey)
		return
	}
	r.Add(NetworkErrorKey, NewApiError(MsgConnectionLost, CodeNetworkOffline, 0))
}

// IsOnline returns the registry's view of connectivity
func (r *ErrorRegistry) IsOnline() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.online
}

// Subscribe registers fn, called with the affected key after each change
func (r *ErrorRegistry) Subscribe(fn func(key string)) func() {
	return r.notifier.Subscribe(fn)
}

// -----------------------------------------------------------------------------

// Add classifies err and stores it under key, replacing any previous entry.
// A nil err is ignored.
func (r *ErrorRegistry) Add(key string, err error) {
	if err == nil {
		return
	}

	info := ErrorInfo{
		Message:   err.Error(),
		Code:      CodeUnknown,
		Timestamp: r.now(),
		Detail:    fmt.Sprintf("%+v", err),
	}

	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		info.Message = apiErr.Message
		if apiErr.Code != "" {
			info.Code = apiErr.Code
		}
		info.Status = apiErr.Status
	}
	if info.Message == "" {
		info.Message = MsgUnexpected
	}

	r.mu.Lock()
	info.Retryable = r.isRetryableLocked(info.Code, info.Status)
	r.errors[key] = info
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Debug("Recorded %s under %q (retryable=%t)", info.Code, key, info.Retryable)
	}
	r.notifier.Notify(key)
}

// IsRetryable applies the retryability rule to a code/status pair
func (r *ErrorRegistry) IsRetryable(code string, status int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isRetryableLocked(code, status)
}

func (r *ErrorRegistry) isRetryableLocked(code string, status int) bool {
	return IsRetryableCode(code) || IsRetryableStatus(status) || !r.online
}

// -----------------------------------------------------------------------------

func (r *ErrorRegistry) Remove(key string) {
	r.mu.Lock()
	_, existed := r.errors[key]
	delete(r.errors, key)
	r.mu.Unlock()

	if existed {
		r.notifier.Notify(key)
	}
}

func (r *ErrorRegistry) Clear() {
	r.mu.Lock()
	n := len(r.errors)
	r.errors = make(map[string]ErrorInfo)
	r.mu.Unlock()

	if n > 0 {
		r.notifier.Notify("")
	}
}

func (r *ErrorRegistry) Get(key string) (ErrorInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.errors[key]
	return info, ok
}

func (r *ErrorRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.errors)
}

func (r *ErrorRegistry) HasAny() bool {
	return r.Count() > 0
}

// All returns every entry sorted by key
func (r *ErrorRegistry) All() []KeyedError {
	r.mu.RLock()
	out := make([]KeyedError, 0, len(r.errors))
	for k, v := range r.errors {
		out = append(out, KeyedError{Key: k, Error: v})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Retryable returns the entries classified as retryable
func (r *ErrorRegistry) Retryable() []KeyedError {
	all := r.All()
	out := all[:0]
	for _, e := range all {
		if e.Error.Retryable {
			out = append(out, e)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// FormatUserMessage renders info for display.
// Precedence: offline, then code, then status, then the raw message.
func (r *ErrorRegistry) FormatUserMessage(info *ErrorInfo) string {
	if info == nil {
		return MsgUnknownError
	}
	if !r.IsOnline() {
		return MsgOffline
	}

	switch info.Code {
	case CodeNetworkError, CodeAborted:
		return MsgNetworkError
	case CodeTimeoutError:
		return MsgTimeout
	}

	switch {
	case info.Status >= 500:
		return MsgServerError
	case info.Status == 404:
		return MsgNotFound
	case info.Status == 429:
		return MsgRateLimited
	}

	if info.Message != "" {
		return info.Message
	}
	return MsgUnexpected
}

// UserMessage formats the entry stored under key
func (r *ErrorRegistry) UserMessage(key string) string {
	info, ok := r.Get(key)
	if !ok {
		return r.FormatUserMessage(nil)
	}
	return r.FormatUserMessage(&info)
}

// -----------------------------------------------------------------------------

// Close detaches from the connectivity probe and drops every entry
func (r *ErrorRegistry) Close() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	r.Clear()
}
