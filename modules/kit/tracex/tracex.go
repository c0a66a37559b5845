package tracex

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type traceIDKey struct{}
type spanIDKey struct{}
type tickIDKey struct{}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func TraceIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, traceIDKey{})
}

func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanIDKey{}, spanID)
}

func SpanIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, spanIDKey{})
}

// WithTickID 标记一次世界推进，同一次 tick 内的所有日志共享同一个 tick_id。
func WithTickID(ctx context.Context, tickID string) context.Context {
	return context.WithValue(ctx, tickIDKey{}, tickID)
}

func TickIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, tickIDKey{})
}

// NewTraceID 生成 32 位 hex 的 trace_id（uuid v4 去掉分隔符）。
func NewTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewTickID 生成 tick_id。
func NewTickID() string {
	return uuid.NewString()
}

func stringFrom(ctx context.Context, key any) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, ok := ctx.Value(key).(string)
	return s, ok && s != ""
}
