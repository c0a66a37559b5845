package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mgmcelwee/evony/modules/kit/logx"
)

// TickGate 读时推进入口，由 app.Gate 实现。
type TickGate interface {
	MaybeTick(ctx context.Context) (time.Time, error)
	LastTickAt() time.Time
}

// TickOnRead 在处理请求前把世界推进到当前时刻，推进失败直接返回 503。
func TickOnRead(gate TickGate, log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, err := gate.MaybeTick(ctx); err != nil {
			fail(ctx, c, log, "tick on read", err)
			return
		}
		c.Next()
	}
}
