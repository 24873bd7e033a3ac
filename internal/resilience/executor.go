package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"interviewassist/core/internal/llm"
	"interviewassist/core/internal/metrics"
	"interviewassist/core/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
)

// LabelHealthCheck is the label used by availability probes.
const LabelHealthCheck = "health_check"

var (
	authSignals  = []string{"API_KEY_INVALID", "PERMISSION_DENIED", "API key not valid", "UNAUTHENTICATED"}
	quotaSignals = []string{"QUOTA_EXCEEDED", "RESOURCE_EXHAUSTED"}
)

// Executor wraps every provider call with admission control, a per-attempt
// deadline, bounded retries and error classification. One executor (and so
// one rate limiter) is shared by every service in the process.
type Executor struct {
	provider    llm.Provider
	limiter     *RateLimiter
	logger      *zap.Logger
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time

	mu     sync.RWMutex
	status models.ProviderStatus
}

type Option func(*Executor)

func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(e *Executor) {
		if d >= 0 {
			e.retryDelay = d
		}
	}
}

// WithSleep replaces the backoff wait, mainly so tests can record delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

func NewExecutor(provider llm.Provider, limiter *RateLimiter, opts ...Option) *Executor {
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimit, DefaultRateWindow)
	}
	e := &Executor{
		provider:    provider,
		limiter:     limiter,
		logger:      zap.NewNop(),
		timeout:     DefaultTimeout,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		sleep:       sleepContext,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.status = models.ProviderStatus{
		Available: true,
		Provider:  e.providerName(),
	}
	return e
}

func (e *Executor) Limiter() *RateLimiter {
	return e.limiter
}

// GenerateText runs one prompt against the provider under the executor's policy.
func (e *Executor) GenerateText(ctx context.Context, label, prompt string) (string, error) {
	if e.provider == nil {
		return "", NewError(KindRequestFailed, "no text-generation provider configured", nil)
	}
	return Do(ctx, e, label, func(ctx context.Context) (string, error) {
		return e.provider.GenerateText(ctx, prompt)
	})
}

// Do executes op under the executor's policy. op receives a context that is
// cancelled when its attempt times out; a result it delivers after that is
// discarded.
func Do[T any](ctx context.Context, e *Executor, label string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	start := e.now()
	logger := e.logger.With(zap.String("label", label))

	allowed, wait := e.limiter.TryAcquire()
	if !allowed {
		svcErr := NewError(KindRateLimitExceeded,
			fmt.Sprintf("Rate limit exceeded. Please wait %d seconds.", int(math.Ceil(wait.Seconds()))), nil)
		svcErr.RetryAfter = wait
		logger.Warn("provider call rejected by rate limiter", zap.Duration("retry_after", wait))
		metrics.ObserveProviderRequest(label, string(svcErr.Kind), 0)
		return zero, svcErr
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if attempt > 1 {
			e.limiter.RecordRequest()
		}
		metrics.IncProviderAttempt(label)

		result, err := runAttempt(ctx, e.timeout, op)
		if err == nil {
			e.finish(label, start, nil)
			return result, nil
		}

		if ctx.Err() != nil {
			svcErr := NewError(KindRequestFailed, "request cancelled", ctx.Err())
			e.finish(label, start, svcErr)
			return zero, svcErr
		}

		kind, retry := classify(err)
		logger.Warn("provider attempt failed",
			zap.Int("attempt", attempt),
			zap.String("kind", string(kind)),
			zap.Error(err))

		if !retry {
			svcErr := terminalError(kind, err)
			e.finish(label, start, svcErr)
			return zero, svcErr
		}

		lastErr = err
		if attempt < e.maxAttempts {
			if err := e.sleep(ctx, time.Duration(attempt)*e.retryDelay); err != nil {
				svcErr := NewError(KindRequestFailed, "request cancelled", err)
				e.finish(label, start, svcErr)
				return zero, svcErr
			}
		}
	}

	svcErr := NewError(KindRequestFailed,
		fmt.Sprintf("AI request failed after %d attempts", e.maxAttempts), lastErr)
	e.finish(label, start, svcErr)
	return zero, svcErr
}

type attemptResult[T any] struct {
	value T
	err   error
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// buffered so an abandoned attempt can still deliver and exit
	done := make(chan attemptResult[T], 1)
	go func() {
		value, err := op(attemptCtx)
		done <- attemptResult[T]{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-attemptCtx.Done():
		var zero T
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, NewError(KindTimeout, fmt.Sprintf("request timeout after %s", timeout), attemptCtx.Err())
	}
}

// classify maps a failed attempt to a kind and whether another attempt is
// worthwhile. Structured provider codes win over message matching.
func classify(err error) (Kind, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind, svcErr.Kind == KindTimeout || svcErr.Kind == KindRequestFailed
	}

	var provErr *llm.ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Code {
		case llm.ErrCodeAPIKey:
			return KindAuthError, false
		case llm.ErrCodeQuota, llm.ErrCodeRateLimit:
			return KindQuotaExceeded, false
		case llm.ErrCodeOffline:
			return KindRequestFailed, false
		case llm.ErrCodeTimeout:
			return KindTimeout, true
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, true
	}

	msg := err.Error()
	for _, signal := range authSignals {
		if strings.Contains(msg, signal) {
			return KindAuthError, false
		}
	}
	for _, signal := range quotaSignals {
		if strings.Contains(msg, signal) {
			return KindQuotaExceeded, false
		}
	}
	if strings.Contains(strings.ToLower(msg), "quota") {
		return KindQuotaExceeded, false
	}
	return KindRequestFailed, true
}

func terminalError(kind Kind, err error) *ServiceError {
	switch kind {
	case KindAuthError:
		return NewError(kind, "AI API authentication failed", err)
	case KindQuotaExceeded:
		return NewError(kind, "AI API quota exceeded. Please try again later.", err)
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return NewError(kind, "AI request failed", err)
}

func (e *Executor) finish(label string, start time.Time, err *ServiceError) {
	outcome := "success"
	if err != nil {
		outcome = string(err.Kind)
	}
	metrics.ObserveProviderRequest(label, outcome, e.now().Sub(start))

	// throttling says nothing about provider health
	if err != nil && err.Kind == KindRateLimitExceeded {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.LastCheckedAt = e.now()
	if err == nil {
		e.status.Available = true
		e.status.LastErrorKind = ""
		e.status.LastError = ""
	} else {
		e.status.Available = false
		e.status.LastErrorKind = string(err.Kind)
		e.status.LastError = err.Error()
	}
	metrics.SetProviderAvailable(e.status.Available)
}

// Status is the provider health as observed by the most recent execution.
func (e *Executor) Status() models.ProviderStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Probe sends the trivial availability prompt and reports the refreshed status.
func (e *Executor) Probe(ctx context.Context) models.ProviderStatus {
	if _, err := e.GenerateText(ctx, LabelHealthCheck, llm.ProbePrompt); err != nil {
		e.logger.Info("AI service not available", zap.Error(err))
	}
	return e.Status()
}

func (e *Executor) providerName() string {
	if e.provider == nil {
		return ""
	}
	return e.provider.GetProviderName()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
