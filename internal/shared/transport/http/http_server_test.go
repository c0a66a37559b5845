package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mgmcelwee/evony/internal/shared/transport/http/middleware"
	"github.com/mgmcelwee/evony/modules/kit/logx"
)

type pingModule struct{}

func (pingModule) HttpRegister(g *gin.RouterGroup) {
	g.GET("/ping", func(c *gin.Context) {
		c.JSON(nethttp.StatusConflict, gin.H{"code": "WORLD_RAID_LIMIT"})
	})
}

func TestNewHttpServer_Healthz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := NewHttpServer(":0", gin.New(), logx.Nop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
	s.Handler().ServeHTTP(w, req)

	if w.Code != nethttp.StatusOK {
		t.Fatalf("期望 200, got=%d", w.Code)
	}
	if w.Header().Get(middleware.HeaderTraceID) == "" {
		t.Fatalf("期望响应回写 trace_id")
	}
}

func TestAccessLog_记录状态码与业务码(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)

	s := NewHttpServer(":0", gin.New(), logx.NewZapLogger(zap.New(core)))
	s.Register(pingModule{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodGet, "/ping", nil)
	req.Header.Set(middleware.HeaderTraceID, "trace-1")
	s.Handler().ServeHTTP(w, req)

	if got := w.Header().Get(middleware.HeaderTraceID); got != "trace-1" {
		t.Fatalf("期望沿用请求里的 trace_id, got=%s", got)
	}
	entries := logs.FilterMessage("access").All()
	if len(entries) != 1 {
		t.Fatalf("期望一条访问日志, got=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(nethttp.StatusConflict) || fields["code"] != "WORLD_RAID_LIMIT" {
		t.Fatalf("期望记录 409 与业务码, got=%v", fields)
	}
	if fields["action"] != "GET /ping" || fields["trace_id"] != "trace-1" {
		t.Fatalf("期望 action 与 trace_id 正确, got=%v", fields)
	}
}
