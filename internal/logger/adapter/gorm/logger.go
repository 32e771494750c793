// Package gorm routes gorm statement logs through zerolog.
package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Logger implements gorm's logger.Interface on top of a zerolog logger.
// Failing statements are logged at error level without their SQL text,
// slow statements at warn and every statement with its SQL only at trace.
type Logger struct {
	log           zerolog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// New returns a Logger writing to the global zerolog logger.
func New(slowThreshold time.Duration) *Logger {
	return NewWithLogger(log.Logger, slowThreshold)
}

// NewWithLogger returns a Logger writing to l.
func NewWithLogger(l zerolog.Logger, slowThreshold time.Duration) *Logger {
	return &Logger{
		log:           l.With().Str("component", "gorm").Logger(),
		level:         gormlogger.Warn,
		slowThreshold: slowThreshold,
	}
}

// LogMode returns a copy of the logger with the given gorm level.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	n := *l
	n.level = level

	return &n
}

// Info logs a gorm info message.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.Info().Ctx(ctx).Msgf(msg, args...)
	}
}

// Warn logs a gorm warning.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Warn().Ctx(ctx).Msgf(msg, args...)
	}
}

// Error logs a gorm error.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.Error().Ctx(ctx).Msgf(msg, args...)
	}
}

// Trace is called by gorm after every statement.
func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		_, rows := fc()
		l.log.Error().Ctx(ctx).Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Msg("statement failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		_, rows := fc()
		l.log.Warn().Ctx(ctx).Dur("elapsed", elapsed).Int64("rows", rows).
			Dur("threshold", l.slowThreshold).Msg("slow statement")
	}

	if e := l.log.Trace(); e.Enabled() {
		sql, rows := fc()
		e.Ctx(ctx).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("statement")
	}
}
