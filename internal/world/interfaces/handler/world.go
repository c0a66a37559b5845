package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mgmcelwee/evony/internal/world/app"
	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/modules/kit/errx"
	"github.com/mgmcelwee/evony/modules/kit/logx"
)

// HeaderUserID 鉴权在网关完成，这里只读取已认证的玩家 id。
const HeaderUserID = "X-User-ID"

// World 世界命令入口，由 actor runtime 实现。
type World interface {
	LaunchRaid(ctx context.Context, now time.Time, cmd app.LaunchRaidCmd) (app.LaunchResult, error)
	RecallRaid(ctx context.Context, now time.Time, cmd app.RecallRaidCmd) (domain.Raid, error)
	PreviewRaid(ctx context.Context, now time.Time, cmd app.PreviewRaidCmd) (app.RaidPreview, error)
	RaidReport(ctx context.Context, userID domain.UserID, raidID domain.RaidID) (app.RaidReport, error)
	ListRaids(ctx context.Context, userID domain.UserID, status domain.RaidStatus, limit int) ([]domain.Raid, error)
	GetRaid(ctx context.Context, userID domain.UserID, raidID domain.RaidID) (domain.Raid, error)
}

type WorldHandler struct {
	world World
	gate  TickGate
	log   logx.Logger
	now   func() time.Time
}

type Option func(*WorldHandler)

// WithClock 替换时钟，测试用。
func WithClock(now func() time.Time) Option {
	return func(h *WorldHandler) { h.now = now }
}

func NewWorldHandler(world World, gate TickGate, log logx.Logger, opts ...Option) *WorldHandler {
	if log == nil {
		log = logx.Nop()
	}
	h := &WorldHandler{
		world: world,
		gate:  gate,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *WorldHandler) RegisterRoutes(group *gin.RouterGroup) {
	g := group.Group("", TickOnRead(h.gate, h.log))
	g.GET("/world/tick", h.Tick)

	raids := g.Group("/raids")
	raids.GET("", h.ListRaids)
	raids.POST("", h.LaunchRaid)
	raids.GET("/preview", h.PreviewRaid)
	raids.GET("/:id", h.GetRaid)
	raids.POST("/:id/recall", h.RecallRaid)
	raids.GET("/:id/report", h.RaidReport)
}

type tickResp struct {
	LastTickAt time.Time `json:"last_tick_at"`
}

// Tick 推进由中间件完成，这里只返回最近一次成功推进的时刻。
func (h *WorldHandler) Tick(c *gin.Context) {
	success(c, tickResp{LastTickAt: h.gate.LastTickAt()})
}

type launchRaidReq struct {
	AttackerCityID int64            `json:"attacker_city_id" binding:"required"`
	TargetCityID   int64            `json:"target_city_id" binding:"required"`
	Troops         []app.TroopOrder `json:"troops"`
}

func (h *WorldHandler) LaunchRaid(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	var req launchRaidReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(ctx, c, h.log, "launch raid", errx.ErrReqParamERR.WithData("reason", "invalid_body").WithCause(err))
		return
	}
	now := h.now()
	res, err := h.world.LaunchRaid(ctx, now, app.LaunchRaidCmd{
		UserID:         uid,
		AttackerCityID: domain.CityID(req.AttackerCityID),
		TargetCityID:   domain.CityID(req.TargetCityID),
		Troops:         req.Troops,
	})
	if err != nil {
		fail(ctx, c, h.log, "launch raid", err)
		return
	}
	success(c, launchRaidResp(res, now))
}

func (h *WorldHandler) RecallRaid(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	raidID, ok := h.pathID(c, "recall raid")
	if !ok {
		return
	}
	now := h.now()
	r, err := h.world.RecallRaid(ctx, now, app.RecallRaidCmd{UserID: uid, RaidID: domain.RaidID(raidID)})
	if err != nil {
		fail(ctx, c, h.log, "recall raid", err)
		return
	}
	success(c, raidView(r, now))
}

type listRaidsReq struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
}

func (h *WorldHandler) ListRaids(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	var req listRaidsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(ctx, c, h.log, "list raids", errx.ErrReqParamERR.WithData("reason", "invalid_query").WithCause(err))
		return
	}
	raids, err := h.world.ListRaids(ctx, uid, domain.RaidStatus(req.Status), req.Limit)
	if err != nil {
		fail(ctx, c, h.log, "list raids", err)
		return
	}
	success(c, raidListResp(raids, h.now()))
}

func (h *WorldHandler) GetRaid(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	raidID, ok := h.pathID(c, "get raid")
	if !ok {
		return
	}
	r, err := h.world.GetRaid(ctx, uid, domain.RaidID(raidID))
	if err != nil {
		fail(ctx, c, h.log, "get raid", err)
		return
	}
	success(c, raidView(r, h.now()))
}

type previewReq struct {
	AttackerCityID int64 `form:"attacker_city_id" binding:"required"`
	TargetCityID   int64 `form:"target_city_id" binding:"required"`
}

func (h *WorldHandler) PreviewRaid(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	var req previewReq
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(ctx, c, h.log, "preview raid", errx.ErrReqParamERR.WithData("reason", "invalid_query").WithCause(err))
		return
	}
	pv, err := h.world.PreviewRaid(ctx, h.now(), app.PreviewRaidCmd{
		UserID:         uid,
		AttackerCityID: domain.CityID(req.AttackerCityID),
		TargetCityID:   domain.CityID(req.TargetCityID),
	})
	if err != nil {
		fail(ctx, c, h.log, "preview raid", err)
		return
	}
	success(c, pv)
}

func (h *WorldHandler) RaidReport(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	raidID, ok := h.pathID(c, "raid report")
	if !ok {
		return
	}
	rep, err := h.world.RaidReport(ctx, uid, domain.RaidID(raidID))
	if err != nil {
		fail(ctx, c, h.log, "raid report", err)
		return
	}
	success(c, rep)
}

func (h *WorldHandler) userID(c *gin.Context) (domain.UserID, bool) {
	raw := c.GetHeader(HeaderUserID)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		fail(c.Request.Context(), c, h.log, "auth", errx.ErrReqParamERR.WithData("reason", "missing_user_id"))
		return 0, false
	}
	return domain.UserID(id), true
}

func (h *WorldHandler) pathID(c *gin.Context, action string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c.Request.Context(), c, h.log, action, errx.ErrReqParamERR.WithData("reason", "invalid_id"))
		return 0, false
	}
	return id, true
}
