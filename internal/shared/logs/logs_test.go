package logs

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	glogger "gorm.io/gorm/logger"

	"github.com/mgmcelwee/evony/modules/kit/tracex"
)

func withObserver(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger
	logger = zap.New(core)
	t.Cleanup(func() { logger = prev })
	return logs
}

func TestParseLevel_大小写与回退(t *testing.T) {
	if parseLevel("DEBUG") != zapcore.DebugLevel {
		t.Fatalf("期望大小写不敏感")
	}
	if parseLevel("nonsense") != zapcore.InfoLevel {
		t.Fatalf("期望非法级别回退 info")
	}
}

func TestGormLogger_错误与慢查询(t *testing.T) {
	logs := withObserver(t)
	gl := NewGormLogger(glogger.Warn, 10*time.Millisecond)
	ctx := tracex.WithTickID(context.Background(), "tick-1")
	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), sql, errors.New("deadlock"))
	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	gl.Trace(ctx, time.Now(), sql, glogger.ErrRecordNotFound)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("期望 2 条日志（错误 + 慢查询）, got=%d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel || entries[1].Level != zapcore.WarnLevel {
		t.Fatalf("期望 error 与 warn, got=%v %v", entries[0].Level, entries[1].Level)
	}
	if entries[0].ContextMap()["tick_id"] != "tick-1" {
		t.Fatalf("期望带 tick_id, got=%v", entries[0].ContextMap())
	}
}

func TestGormLogger_LogMode不修改原对象(t *testing.T) {
	gl := NewGormLogger(glogger.Warn, 0).(*GormLogger)
	_ = gl.LogMode(glogger.Silent)
	if gl.level != glogger.Warn {
		t.Fatalf("期望 LogMode 返回副本")
	}
}
