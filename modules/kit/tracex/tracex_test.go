package tracex

import (
	"context"
	"testing"
)

func TestTraceID_RoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "t-1")
	if got, ok := TraceIDFrom(ctx); !ok || got != "t-1" {
		t.Fatalf("期望 TraceIDFrom round-trip 成功，got=%q ok=%v", got, ok)
	}
}

func TestTickID_空值视为不存在(t *testing.T) {
	ctx := WithTickID(context.Background(), "")
	if _, ok := TickIDFrom(ctx); ok {
		t.Fatalf("期望空 tick_id 视为不存在")
	}
}

func TestNewTraceID_格式(t *testing.T) {
	id := NewTraceID()
	if len(id) != 32 {
		t.Fatalf("期望 32 位 hex, got=%q", id)
	}
	if NewTickID() == NewTickID() {
		t.Fatalf("期望两次生成的 tick_id 不同")
	}
}
