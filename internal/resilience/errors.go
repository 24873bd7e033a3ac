package resilience

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failed provider interaction.
type Kind string

const (
	KindAuthError         Kind = "auth_error"
	KindQuotaExceeded     Kind = "quota_exceeded"
	KindRateLimitExceeded Kind = "rate_limit_exceeded"
	KindTimeout           Kind = "timeout"
	KindParseError        Kind = "parse_error"
	KindInvalidResponse   Kind = "invalid_response"
	KindRequestFailed     Kind = "request_failed"
)

// ServiceError is the only error type callers of the executor and the AI
// services see.
type ServiceError struct {
	Kind       Kind
	Message    string
	Retryable  bool
	RetryAfter time.Duration // set for KindRateLimitExceeded
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewError builds a ServiceError with the retry hint implied by kind: the
// caller may try again later for throttling and timeouts, never for auth,
// decode failures or exhausted retries.
func NewError(kind Kind, message string, err error) *ServiceError {
	return &ServiceError{
		Kind:      kind,
		Message:   message,
		Retryable: retryableKinds[kind],
		Err:       err,
	}
}

var retryableKinds = map[Kind]bool{
	KindQuotaExceeded:     true,
	KindRateLimitExceeded: true,
	KindTimeout:           true,
}

// KindOf returns the kind of the first ServiceError in err's chain, or "".
func KindOf(err error) Kind {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
