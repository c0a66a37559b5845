package middleware

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mgmcelwee/evony/modules/kit/logx"
	"github.com/mgmcelwee/evony/modules/kit/tracex"
)

// HeaderTraceID 请求可以自带 trace_id，响应里总会回写。
const HeaderTraceID = "X-Trace-ID"

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCaptureWriter) Write(data []byte) (int, error) {
	_, _ = w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	_, _ = w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// AccessLog 注入 trace_id，请求结束后写一条访问日志，并尽量从响应体的 `code` 字段提取错误码。
func AccessLog(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		action := c.Request.Method + " " + route

		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = tracex.NewTraceID()
		}
		ctx := tracex.WithTraceID(c.Request.Context(), traceID)
		ctx = tracex.WithSpanID(ctx, "http")
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderTraceID, traceID)

		bw := &bodyCaptureWriter{ResponseWriter: c.Writer}
		c.Writer = bw

		c.Next()

		fields := []zap.Field{zap.Duration("latency", time.Since(start))}
		if code, ok := parseCode(bw.body.Bytes()); ok {
			fields = append(fields, zap.String("code", code))
		}
		logx.ReportAccess(ctx, log, action, c.Writer.Status(), fields...)
	}
}

func parseCode(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	// {"code":"WORLD_RAID_LIMIT", ...}
	var payload struct {
		Code *string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	if payload.Code == nil {
		return "", false
	}
	return *payload.Code, true
}
