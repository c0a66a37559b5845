package actors

import (
	"github.com/asynkron/protoactor-go/actor"

	"github.com/mgmcelwee/evony/internal/shared/actor/messages"
	"github.com/mgmcelwee/evony/internal/world/app"
	"github.com/mgmcelwee/evony/internal/world/domain"
)

type WorldHandler struct{}

var WH = &WorldHandler{}

// HandleTick 不继承调用方的截止时间，开始的推进一定跑完或整体回滚。
func (h *WorldHandler) HandleTick(ctx actor.Context, p *WorldActor, req *messages.HWTick) {
	rctx, cancel := tickContext(req)
	defer cancel()
	sum, err := p.svc.Tick(rctx, req.Now)
	ctx.Respond(reply(sum, err))
}

func (h *WorldHandler) HandleLaunchRaid(ctx actor.Context, p *WorldActor, req *messages.HWLaunchRaid) {
	rctx, cancel := requestContext(req)
	defer cancel()
	orders := make([]app.TroopOrder, 0, len(req.Troops))
	for _, l := range req.Troops {
		orders = append(orders, app.TroopOrder{Code: l.Code, Count: l.Count})
	}
	res, err := p.svc.LaunchRaid(rctx, req.Now, app.LaunchRaidCmd{
		UserID:         domain.UserID(req.PlayerId),
		AttackerCityID: domain.CityID(req.AttackerCityId),
		TargetCityID:   domain.CityID(req.TargetCityId),
		Troops:         orders,
	})
	ctx.Respond(reply(res, err))
}

func (h *WorldHandler) HandleRecallRaid(ctx actor.Context, p *WorldActor, req *messages.HWRecallRaid) {
	rctx, cancel := requestContext(req)
	defer cancel()
	r, err := p.svc.RecallRaid(rctx, req.Now, app.RecallRaidCmd{
		UserID: domain.UserID(req.PlayerId),
		RaidID: domain.RaidID(req.RaidId),
	})
	ctx.Respond(reply(r, err))
}

func (h *WorldHandler) HandlePreviewRaid(ctx actor.Context, p *WorldActor, req *messages.HWPreviewRaid) {
	rctx, cancel := requestContext(req)
	defer cancel()
	pv, err := p.svc.PreviewRaid(rctx, req.Now, app.PreviewRaidCmd{
		UserID:         domain.UserID(req.PlayerId),
		AttackerCityID: domain.CityID(req.AttackerCityId),
		TargetCityID:   domain.CityID(req.TargetCityId),
	})
	ctx.Respond(reply(pv, err))
}

func (h *WorldHandler) HandleRaidReport(ctx actor.Context, p *WorldActor, req *messages.HWRaidReport) {
	rctx, cancel := requestContext(req)
	defer cancel()
	rep, err := p.svc.RaidReport(rctx, domain.UserID(req.PlayerId), domain.RaidID(req.RaidId))
	ctx.Respond(reply(rep, err))
}

func (h *WorldHandler) HandleListRaids(ctx actor.Context, p *WorldActor, req *messages.HWListRaids) {
	rctx, cancel := requestContext(req)
	defer cancel()
	raids, err := p.svc.ListRaids(rctx, domain.UserID(req.PlayerId), domain.RaidStatus(req.Status), req.Limit)
	ctx.Respond(reply(raids, err))
}

func (h *WorldHandler) HandleGetRaid(ctx actor.Context, p *WorldActor, req *messages.HWGetRaid) {
	rctx, cancel := requestContext(req)
	defer cancel()
	r, err := p.svc.GetRaid(rctx, domain.UserID(req.PlayerId), domain.RaidID(req.RaidId))
	ctx.Respond(reply(r, err))
}

func reply(v any, err error) *messages.Reply {
	if err != nil {
		return fail(err)
	}
	return &messages.Reply{Value: v}
}

func fail(err error) *messages.Reply {
	return &messages.Reply{Err: err}
}
