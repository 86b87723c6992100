// Package logger wraps zerolog the way the rest of the stack expects:
// chainable *zerolog.Event getters plus context-correlated child loggers.
package logger

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger.
type Logger struct {
	logger *zerolog.Logger
}

// ctxKey is the type for context value keys this package owns.
type ctxKey string

const (
	ctxKeySessionID ctxKey = "session_id"
	ctxKeyProofID   ctxKey = "proof_id"
)

// New creates a new logger instance from a level and an output format
// ("json" or "console").
func New(level, format string) *Logger {
	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var l zerolog.Logger
	if format == "pretty" || format == "console" {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Caller().Logger()
	} else {
		l = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()
	}

	return &Logger{logger: &l}
}

// WithContext attaches sessionID/proofID to ctx so downstream logging calls
// can recover them without threading extra parameters through every call.
func WithContext(ctx context.Context, sessionID, proofID string) context.Context {
	if sessionID != "" {
		ctx = context.WithValue(ctx, ctxKeySessionID, sessionID)
	}
	if proofID != "" {
		ctx = context.WithValue(ctx, ctxKeyProofID, proofID)
	}
	return ctx
}

func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.logger.Fatal() }

// WithField returns a new logger with an additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	nl := l.logger.With().Interface(key, value).Logger()
	return &Logger{logger: &nl}
}

// WithTraceContext returns a logger annotated with the sessionId/proofId
// carried on ctx, per §7's correlation requirement for internal errors.
func (l *Logger) WithTraceContext(ctx context.Context) *Logger {
	sessionID, _ := ctx.Value(ctxKeySessionID).(string)
	proofID, _ := ctx.Value(ctxKeyProofID).(string)

	if sessionID == "" && proofID == "" {
		return l
	}

	withCtx := l.logger.With()
	if sessionID != "" {
		withCtx = withCtx.Str("session_id", sessionID)
	}
	if proofID != "" {
		withCtx = withCtx.Str("proof_id", proofID)
	}
	nl := withCtx.Logger()
	return &Logger{logger: &nl}
}

// GetZerolog returns the underlying zerolog logger for advanced use.
func (l *Logger) GetZerolog() *zerolog.Logger {
	return l.logger
}
