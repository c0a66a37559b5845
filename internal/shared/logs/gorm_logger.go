package logs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	glogger "gorm.io/gorm/logger"

	"github.com/mgmcelwee/evony/modules/kit/tracex"
)

type GormLogger struct {
	level         glogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger 把 GORM 的 SQL 日志接到进程 logger。
func NewGormLogger(level glogger.LogLevel, slowThreshold time.Duration) glogger.Interface {
	return &GormLogger{level: level, slowThreshold: slowThreshold}
}

// ParseGormLevel silent/error/warn/info，其他按 warn。
func ParseGormLevel(s string) glogger.LogLevel {
	switch s {
	case "silent":
		return glogger.Silent
	case "error":
		return glogger.Error
	case "info", "debug":
		return glogger.Info
	default:
		return glogger.Warn
	}
}

func (l *GormLogger) LogMode(level glogger.LogLevel) glogger.Interface {
	next := *l
	next.level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= glogger.Info {
		logger.Info("gorm: "+msg, ctxFields(ctx, zap.Any("data", data))...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= glogger.Warn {
		logger.Warn("gorm: "+msg, ctxFields(ctx, zap.Any("data", data))...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= glogger.Error {
		logger.Error("gorm: "+msg, ctxFields(ctx, zap.Any("data", data))...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= glogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := ctxFields(ctx,
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	)

	switch {
	case err != nil && !errors.Is(err, glogger.ErrRecordNotFound):
		logger.Error("gorm trace error", append(fields, zap.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		logger.Warn("gorm slow query", fields...)
	case l.level >= glogger.Info:
		logger.Debug("gorm trace", fields...)
	}
}

// ctxFields 带上 tick/trace id，方便把 SQL 和某次世界推进对上。
func ctxFields(ctx context.Context, fields ...zap.Field) []zap.Field {
	if id, ok := tracex.TraceIDFrom(ctx); ok {
		fields = append(fields, zap.String("trace_id", id))
	}
	if id, ok := tracex.TickIDFrom(ctx); ok {
		fields = append(fields, zap.String("tick_id", id))
	}
	return fields
}
