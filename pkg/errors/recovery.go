package errors

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/pkg/logger"
)

// -----
// Recovery Functions
// -----

// RecoverWithContext handles panics and converts them to errors
func RecoverWithContext(_ context.Context, operation string) error {
	if r := recover(); r != nil {
		stack := string(debug.Stack())
		logger.Error("panic recovered",
			"operation", operation,
			"panic", r,
			"stack", stack,
		)

		// Convert panic to error
		var err error
		switch v := r.(type) {
		case error:
			err = v
		case string:
			err = errors.New(v)
		default:
			err = fmt.Errorf("panic: %v", v)
		}

		return core.NewError(err, core.ErrorCodeInternalPanic, map[string]any{
			"operation": operation,
			"panic":     fmt.Sprintf("%v", r),
		})
	}
	return nil
}

// WithRecover executes a function with panic recovery
func WithRecover(operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			logger.Error("panic recovered",
				"operation", operation,
				"panic", r,
				"stack", stack,
			)

			// Convert panic to error
			var panicErr error
			switch v := r.(type) {
			case error:
				panicErr = v
			case string:
				panicErr = errors.New(v)
			default:
				panicErr = fmt.Errorf("panic: %v", v)
			}

			err = core.NewError(panicErr, core.ErrorCodeInternalPanic, map[string]any{
				"operation": operation,
				"panic":     fmt.Sprintf("%v", r),
			})
		}
	}()

	return fn()
}

// -----
// Retry Mechanisms using retry-go
// -----

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts     uint
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	RetryableErrors []string // Error codes that should trigger retry
}

// DefaultRetryConfig returns sensible defaults. Snippet reads are the one
// retryable failure in this codebase: watch mode can catch an editor
// mid-way through a truncate-then-write save.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		RetryableErrors: []string{
			string(core.ErrorCodeSnippetRead),
		},
	}
}

// WithRetry executes a function with retry logic using retry-go
func WithRetry(ctx context.Context, operation string, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	err := retry.Do(fn, retryOptions(ctx, operation, config)...)
	if err != nil {
		if retry.IsRecoverable(err) {
			return core.NewError(err, "MAX_RETRIES_EXCEEDED", map[string]any{
				"operation": operation,
				"attempts":  config.MaxAttempts,
			})
		}
		return err
	}

	return nil
}

// WithRetryTyped executes a function with retry logic and returns a typed result
func WithRetryTyped[T any](
	ctx context.Context,
	operation string,
	config *RetryConfig,
	fn func() (T, error),
) (T, error) {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var result T
	err := retry.Do(func() error {
		var retryErr error
		result, retryErr = fn()
		return retryErr
	}, retryOptions(ctx, operation, config)...)

	if err != nil {
		if retry.IsRecoverable(err) {
			return result, core.NewError(err, "MAX_RETRIES_EXCEEDED", map[string]any{
				"operation": operation,
				"attempts":  config.MaxAttempts,
			})
		}
		return result, err
	}

	return result, nil
}

// retryOptions builds the shared retry-go option set
func retryOptions(ctx context.Context, operation string, config *RetryConfig) []retry.Option {
	return []retry.Option{
		retry.Attempts(config.MaxAttempts),
		retry.Delay(config.InitialDelay),
		retry.MaxDelay(config.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("operation failed, retrying",
				"operation", operation,
				"attempt", n+1,
				"max_attempts", config.MaxAttempts,
				"error", err,
			)
		}),
		// Only retry if the error is retryable
		retry.RetryIf(func(err error) bool {
			return isRetryable(err, config.RetryableErrors)
		}),
	}
}

// isRetryable checks if an error should trigger a retry
func isRetryable(err error, retryableCodes []string) bool {
	if err == nil {
		return false
	}

	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		return false
	}

	for _, code := range retryableCodes {
		if coreErr.Code == core.ErrorCode(code) {
			return true
		}
	}

	return false
}

// -----
// Graceful Degradation
// -----

// GracefulDegradeConfig configures graceful degradation behavior
type GracefulDegradeConfig struct {
	LogWarning bool
}

// WithGracefulDegrade executes a function and returns a default value on error
func WithGracefulDegrade[T any](operation string, config *GracefulDegradeConfig, defaultVal T, fn func() (T, error)) T {
	result, err := fn()
	if err != nil {
		if config != nil && config.LogWarning {
			logger.Warn("operation degraded gracefully",
				"operation", operation,
				"error", err,
			)
		}
		return defaultVal
	}
	return result
}
