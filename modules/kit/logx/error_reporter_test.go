package logx

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mgmcelwee/evony/modules/kit/errx"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildErrorLog_能提取语义与栈(t *testing.T) {
	cause := errors.New("db down")
	e := errx.NewSys("WORLD_TICK_FAILED", "世界推进失败").
		WithData("city_id", 7).
		WithCause(cause)

	meta := BuildErrorLog(e)
	if meta.Code != "WORLD_TICK_FAILED" {
		t.Fatalf("期望 meta.Code=WORLD_TICK_FAILED, got=%q", meta.Code)
	}
	if meta.Msg == "" {
		t.Fatalf("期望 meta.Msg 非空")
	}
	if meta.Data == nil || meta.Data["city_id"] != 7 {
		t.Fatalf("期望 meta.Data 包含 city_id=7, got=%v", meta.Data)
	}
	if len(meta.CauseChain) == 0 {
		t.Fatalf("期望 meta.CauseChain 非空")
	}
	if meta.Origin == "" || meta.Stack == "" {
		t.Fatalf("期望 meta.Origin/meta.Stack 非空 origin=%q stack=%q", meta.Origin, meta.Stack)
	}
}

func TestReportSysError_输出error级别与错误码(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))

	err := errx.ErrUnavailable.WithCause(errors.New("conn refused"))
	ReportSysError(context.Background(), l, NewSysLog("world_tick", err))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("期望 1 条日志, got=%d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("期望 ERROR 级别, got=%v", entries[0].Level)
	}
	if !strings.HasPrefix(entries[0].Message, "world_tick") {
		t.Fatalf("期望消息以 action 开头, got=%q", entries[0].Message)
	}
	if got := entries[0].ContextMap()["error_code"]; got != string(errx.CodeUnavailable) {
		t.Fatalf("期望 error_code=%s, got=%v", errx.CodeUnavailable, got)
	}
}

func TestReportAccess_按状态码分级(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))

	ReportAccess(context.Background(), l, "GET /world/tick", 200)
	ReportAccess(context.Background(), l, "POST /raids", 409)
	ReportAccess(context.Background(), l, "POST /raids", 503)

	want := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	got := logs.All()
	if len(got) != len(want) {
		t.Fatalf("期望 %d 条日志, got=%d", len(want), len(got))
	}
	for i := range want {
		if got[i].Level != want[i] {
			t.Fatalf("期望第 %d 条级别=%v, got=%v", i, want[i], got[i].Level)
		}
	}
}

func TestNop_不会panic(t *testing.T) {
	l := Nop().With(zap.Int("k", 1)).WithContext(context.Background())
	l.Info("x")
	l.Error("x")
}
