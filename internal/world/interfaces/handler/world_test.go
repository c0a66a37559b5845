package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mgmcelwee/evony/internal/world/app"
	mailmem "github.com/mgmcelwee/evony/internal/world/infra/mail/memory"
	"github.com/mgmcelwee/evony/internal/world/infra/persistence/memory"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type stubGate struct {
	err  error
	last time.Time
	hits int
}

func (g *stubGate) MaybeTick(context.Context) (time.Time, error) {
	g.hits++
	if g.err != nil {
		return time.Time{}, g.err
	}
	return g.last, nil
}

func (g *stubGate) LastTickAt() time.Time { return g.last }

type testEnv struct {
	engine *gin.Engine
	store  *memory.Store
	gate   *stubGate
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	memory.SeedDemo(store, t0)
	svc := app.NewWorldService(store, mailmem.NewMailer(), nil, app.SchedulerOptions{})
	gate := &stubGate{last: t0}

	engine := gin.New()
	h := NewWorldHandler(svc, gate, nil, WithClock(func() time.Time { return t0 }))
	h.RegisterRoutes(engine.Group(""))
	return &testEnv{engine: engine, store: store, gate: gate}
}

func (e *testEnv) do(method, path string, userID string, body any) (*httptest.ResponseRecorder, Response) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	var resp Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestLaunchRaid_成功返回行军(t *testing.T) {
	env := newEnv(t)

	w, resp := env.do(nethttp.MethodPost, "/raids", "1", gin.H{
		"attacker_city_id": 1,
		"target_city_id":   2,
		"troops":           []gin.H{{"code": "t1_inf", "count": 20}},
	})
	if w.Code != nethttp.StatusOK || resp.Code != CodeOK {
		t.Fatalf("期望 200/OK, got=%d body=%s", w.Code, w.Body.String())
	}
	data, _ := resp.Data.(map[string]any)
	raid, _ := data["raid"].(map[string]any)
	if raid["status"] != "enroute" {
		t.Fatalf("期望 status=enroute, got=%v", raid)
	}
	if _, has := raid["returns_at"]; has {
		t.Fatalf("期望出发时 returns_at 为空, got=%v", raid["returns_at"])
	}
	if got := env.store.Garrison(1, 1); got != 80 {
		t.Fatalf("期望驻军扣减到 80, got=%d", got)
	}
	if env.gate.hits != 1 {
		t.Fatalf("期望请求前触发一次读时推进, got=%d", env.gate.hits)
	}
}

func TestLaunchRaid_错误映射(t *testing.T) {
	cases := []struct {
		name   string
		user   string
		body   any
		status int
		code   string
		reason string
	}{
		{"缺少玩家id", "", gin.H{"attacker_city_id": 1, "target_city_id": 2}, nethttp.StatusBadRequest, "CODE_REQ_PARAM_ERROR", "missing_user_id"},
		{"请求体非法", "1", gin.H{"attacker_city_id": "x"}, nethttp.StatusBadRequest, "CODE_REQ_PARAM_ERROR", "invalid_body"},
		{"同一座城", "1", gin.H{"attacker_city_id": 1, "target_city_id": 1, "troops": []gin.H{{"code": "t1_inf", "count": 1}}}, nethttp.StatusBadRequest, "WORLD_INVALID_RAID", "same_city"},
		{"不是自己的城", "2", gin.H{"attacker_city_id": 1, "target_city_id": 2, "troops": []gin.H{{"code": "t1_inf", "count": 1}}}, nethttp.StatusNotFound, "WORLD_CITY_NOT_FOUND", ""},
		{"兵力不足", "1", gin.H{"attacker_city_id": 1, "target_city_id": 2, "troops": []gin.H{{"code": "t1_inf", "count": 101}}}, nethttp.StatusConflict, "WORLD_NOT_ENOUGH_TROOPS", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newEnv(t)
			w, resp := env.do(nethttp.MethodPost, "/raids", tc.user, tc.body)
			if w.Code != tc.status || resp.Code != tc.code {
				t.Fatalf("期望 %d/%s, got=%d body=%s", tc.status, tc.code, w.Code, w.Body.String())
			}
			if tc.reason != "" {
				data, _ := resp.Data.(map[string]any)
				if data["reason"] != tc.reason {
					t.Fatalf("期望 reason=%s, got=%v", tc.reason, resp.Data)
				}
			}
		})
	}
}

func TestRecallRaid_与战报(t *testing.T) {
	env := newEnv(t)
	_, resp := env.do(nethttp.MethodPost, "/raids", "1", gin.H{
		"attacker_city_id": 1,
		"target_city_id":   2,
		"troops":           []gin.H{{"code": "t1_cav", "count": 5}},
	})
	if resp.Code != CodeOK {
		t.Fatalf("期望出征成功, got=%+v", resp)
	}

	w, resp := env.do(nethttp.MethodPost, "/raids/1/recall", "1", nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("期望召回成功, got=%d body=%s", w.Code, w.Body.String())
	}
	data, _ := resp.Data.(map[string]any)
	if data["status"] != "returning" {
		t.Fatalf("期望召回后 returning, got=%v", data)
	}

	w, _ = env.do(nethttp.MethodGet, "/raids/1/report", "1", nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("期望攻方能看战报, got=%d body=%s", w.Code, w.Body.String())
	}
	w, resp = env.do(nethttp.MethodGet, "/raids/1/report", "2", nil)
	if w.Code != nethttp.StatusNotFound || resp.Code != "WORLD_RAID_NOT_FOUND" {
		t.Fatalf("期望非攻方按不存在处理, got=%d body=%s", w.Code, w.Body.String())
	}
	w, _ = env.do(nethttp.MethodPost, "/raids/abc/recall", "1", nil)
	if w.Code != nethttp.StatusBadRequest {
		t.Fatalf("期望非法 id 返回 400, got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestPreviewRaid_查询参数(t *testing.T) {
	env := newEnv(t)

	w, resp := env.do(nethttp.MethodGet, "/raids/preview?attacker_city_id=1&target_city_id=2", "1", nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("期望预览成功, got=%d body=%s", w.Code, w.Body.String())
	}
	data, _ := resp.Data.(map[string]any)
	if data["max_active_raids"] != float64(1) || data["limit_reached"] != false {
		t.Fatalf("期望主城 1 级最多 1 路且未达上限, got=%v", data)
	}

	w, _ = env.do(nethttp.MethodGet, "/raids/preview?attacker_city_id=1", "1", nil)
	if w.Code != nethttp.StatusBadRequest {
		t.Fatalf("期望缺少参数返回 400, got=%d", w.Code)
	}
}

func TestTickOnRead_推进失败返回503(t *testing.T) {
	env := newEnv(t)
	env.gate.err = app.ErrTickFailed.WithCause(errors.New("db down"))

	w, resp := env.do(nethttp.MethodGet, "/world/tick", "1", nil)
	if w.Code != nethttp.StatusServiceUnavailable || resp.Code != string(app.CodeTickFailed) {
		t.Fatalf("期望 503/%s, got=%d body=%s", app.CodeTickFailed, w.Code, w.Body.String())
	}
	if bytes.Contains(w.Body.Bytes(), []byte("db down")) {
		t.Fatalf("期望不向客户端暴露内部错误, body=%s", w.Body.String())
	}
}

func TestWorldTick_返回最近推进时刻(t *testing.T) {
	env := newEnv(t)

	w, resp := env.do(nethttp.MethodGet, "/world/tick", "", nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("期望 200, got=%d", w.Code)
	}
	data, _ := resp.Data.(map[string]any)
	if data["last_tick_at"] != t0.Format(time.RFC3339) {
		t.Fatalf("期望 last_tick_at=%s, got=%v", t0.Format(time.RFC3339), data["last_tick_at"])
	}
}

func TestListRaids_与详情带剩余时间(t *testing.T) {
	env := newEnv(t)
	_, resp := env.do(nethttp.MethodPost, "/raids", "1", gin.H{
		"attacker_city_id": 1,
		"target_city_id":   2,
		"troops":           []gin.H{{"code": "t1_inf", "count": 10}},
	})
	if resp.Code != CodeOK {
		t.Fatalf("期望出征成功, got=%+v", resp)
	}

	w, resp := env.do(nethttp.MethodGet, "/raids", "1", nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("期望列表成功, got=%d body=%s", w.Code, w.Body.String())
	}
	data, _ := resp.Data.(map[string]any)
	list, _ := data["raids"].([]any)
	if len(list) != 1 {
		t.Fatalf("期望 1 条行军, got=%v", data)
	}
	raid, _ := list[0].(map[string]any)
	if raid["status"] != "enroute" || raid["time_remaining_seconds"] != raid["outbound_seconds"] {
		t.Fatalf("期望刚出发时剩余时间等于去程时间, got=%v", raid)
	}

	_, resp = env.do(nethttp.MethodGet, "/raids", "2", nil)
	data, _ = resp.Data.(map[string]any)
	if list, _ := data["raids"].([]any); len(list) != 0 {
		t.Fatalf("期望守方列表为空, got=%v", data)
	}

	w, resp = env.do(nethttp.MethodGet, "/raids?status=lost", "1", nil)
	if w.Code != nethttp.StatusBadRequest || resp.Code != "WORLD_INVALID_RAID" {
		t.Fatalf("期望未知状态返回 400, got=%d body=%s", w.Code, w.Body.String())
	}

	w, resp = env.do(nethttp.MethodGet, "/raids/1", "1", nil)
	data, _ = resp.Data.(map[string]any)
	if w.Code != nethttp.StatusOK || data["id"] != float64(1) {
		t.Fatalf("期望查到行军 1, got=%d body=%s", w.Code, w.Body.String())
	}
	w, resp = env.do(nethttp.MethodGet, "/raids/1", "2", nil)
	if w.Code != nethttp.StatusNotFound || resp.Code != "WORLD_RAID_NOT_FOUND" {
		t.Fatalf("期望非攻方按不存在处理, got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRecallRaid_返回回程剩余时间(t *testing.T) {
	env := newEnv(t)
	env.do(nethttp.MethodPost, "/raids", "1", gin.H{
		"attacker_city_id": 1,
		"target_city_id":   2,
		"troops":           []gin.H{{"code": "t1_cav", "count": 5}},
	})

	_, resp := env.do(nethttp.MethodPost, "/raids/1/recall", "1", nil)
	data, _ := resp.Data.(map[string]any)
	if data["status"] != "returning" || data["time_remaining_seconds"] != data["return_seconds"] {
		t.Fatalf("期望剩余时间等于回程时间, got=%v", data)
	}
}
