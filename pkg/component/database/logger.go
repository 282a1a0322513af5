package database

import (
	"context"
	"errors"
	"time"

	"github.com/kart-io/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/edurag/pkg/infra/tracing"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

// GormLogger writes gorm output through the global structured logger.
// Record-not-found is never logged as a failure: ownership checks hit it on
// every foreign or missing id.
type GormLogger struct {
	Driver        string
	LogLevel      gormlogger.LogLevel
	SlowThreshold time.Duration
}

// NewGormLogger creates a GormLogger for the given driver.
func NewGormLogger(driver string, level gormlogger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		Driver:        driver,
		LogLevel:      level,
		SlowThreshold: slowThreshold,
	}
}

// LogMode implements gormlogger.Interface.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Info {
		logger.Global().WithCtx(ctx).Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Warn {
		logger.Global().WithCtx(ctx).Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Error {
		logger.Global().WithCtx(ctx).Errorf(msg, data...)
	}
}

// Trace implements gormlogger.Interface.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.SlowThreshold > 0 && elapsed > l.SlowThreshold

	var msg string
	switch {
	case failed && l.LogLevel >= gormlogger.Error:
		msg = "database query failed"
	case slow && l.LogLevel >= gormlogger.Warn:
		msg = "slow database query"
	case l.LogLevel >= gormlogger.Info:
		msg = "database query"
	default:
		return
	}

	sql, rows := fc()
	fields := []interface{}{
		"driver", l.Driver,
		"sql", sql,
		"rows", rows,
		"duration_ms", float64(elapsed.Microseconds()) / 1e3,
	}
	if traceID := tracing.TraceIDFromContext(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	log := logger.Global().WithCtx(ctx)
	switch {
	case failed:
		log.Errorw(msg, append(fields, "error", err.Error())...)
	case slow:
		log.Warnw(msg, append(fields, "threshold_ms", l.SlowThreshold.Milliseconds())...)
	default:
		log.Infow(msg, fields...)
	}
}
