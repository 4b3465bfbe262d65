// Package middleware contains Telegram bot middlewares for request processing.
package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOVERY MIDDLEWARE
// Catches panics in handlers so one bad update never takes the bot down.
// ══════════════════════════════════════════════════════════════════════════════

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	// EnableStackTrace enables capturing stack traces on panic.
	EnableStackTrace bool

	// UserErrorMessage is the message sent to users when a panic occurs.
	UserErrorMessage string

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultRecoveryConfig returns sensible defaults for recovery middleware.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		EnableStackTrace: true,
		UserErrorMessage: "😔 Something went wrong on our side. Please try again in a moment.",
	}
}

// RecoveryResult describes what happened inside the wrapped handler.
type RecoveryResult struct {
	// Recovered is true when a panic was caught.
	Recovered bool

	// UserMessage is the text to send to the user when Recovered is true.
	UserMessage string

	// Err is the error returned by the handler (nil when Recovered).
	Err error
}

// RecoveryMiddleware recovers from panics in update handlers.
type RecoveryMiddleware struct {
	config RecoveryConfig
	logger *slog.Logger
}

// NewRecoveryMiddleware creates a new recovery middleware.
func NewRecoveryMiddleware(config RecoveryConfig) *RecoveryMiddleware {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RecoveryMiddleware{config: config, logger: logger}
}

// RecoverWithHandler runs fn, converting a panic into a RecoveryResult
// instead of letting it propagate up the polling loop.
func (m *RecoveryMiddleware) RecoverWithHandler(telegramID int64, command string, fn func() error) (result RecoveryResult) {
	defer func() {
		if r := recover(); r != nil {
			attrs := []any{
				"telegram_id", telegramID,
				"command", command,
				"panic", fmt.Sprintf("%v", r),
			}
			if m.config.EnableStackTrace {
				attrs = append(attrs, "stack", string(debug.Stack()))
			}
			m.logger.Error("panic recovered in handler", attrs...)

			result = RecoveryResult{
				Recovered:   true,
				UserMessage: m.config.UserErrorMessage,
			}
		}
	}()

	return RecoveryResult{Err: fn()}
}
