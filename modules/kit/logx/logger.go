package logx

import (
	"context"

	"go.uber.org/zap"
)

// Logger 是跨服务可复用的最小日志接口。
//
// 约束：
// - 只承载结构化字段 + ctx 透传（trace/span/tick 等）
// - With 用于在一段流程里固定公共字段（例如 raid_id）
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	WithContext(ctx context.Context) Logger
}

// Nop 返回一个什么都不做的 Logger，测试和未注入日志的场景使用。
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...zap.Field)           {}
func (nopLogger) Error(string, ...zap.Field)          {}
func (nopLogger) Debug(string, ...zap.Field)          {}
func (nopLogger) Warn(string, ...zap.Field)           {}
func (n nopLogger) With(...zap.Field) Logger          { return n }
func (n nopLogger) WithContext(context.Context) Logger { return n }
