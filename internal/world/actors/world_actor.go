package actors

import (
	"context"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/mgmcelwee/evony/internal/shared/actor/messages"
	"github.com/mgmcelwee/evony/internal/world/app"
	"github.com/mgmcelwee/evony/modules/kit/errx"
	"github.com/mgmcelwee/evony/modules/kit/logx"
	"github.com/mgmcelwee/evony/modules/kit/tracex"
)

type State int

const (
	None State = iota
	Init
	Online
	Offline
	Stopping
)

// WorldActor 串行处理世界推进和玩家命令，同一进程内不会有两个事务争抢世界锁。
type WorldActor struct {
	state      State
	svc        *app.WorldService
	log        logx.Logger
	dispatcher *Dispatcher
}

func NewWorldActor(svc *app.WorldService, log logx.Logger) *WorldActor {
	if log == nil {
		log = logx.Nop()
	}
	return &WorldActor{
		state:      None,
		svc:        svc,
		log:        log,
		dispatcher: NewDispatcher(),
	}
}

func (p *WorldActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		p.state = Init
		p.init(ctx)
		return
	case *actor.Stopping:
		p.state = Stopping
		return
	case *actor.Stopped:
		p.state = Offline
		return
	case *actor.Restarting:
		p.log.Warn("world actor restarting")
		p.state = Init
		return
	case messages.WorldMessage:
		if p.state != Online {
			ctx.Respond(fail(errx.ErrUnavailable.WithData("reason", "world_not_online")))
			return
		}
		p.dispatcher.Dispatch(ctx, p, msg)
	default:
		return
	}
}

func (p *WorldActor) init(ctx actor.Context) {
	if p.svc == nil {
		p.log.Error("world actor started without service")
		p.state = Stopping
		ctx.Stop(ctx.Self())
		return
	}
	p.state = Online
	p.log.Info("world actor online", zap.String("pid", ctx.Self().String()))
}

func (p *WorldActor) State() State {
	return p.state
}

// requestContext 还原调用方的 trace_id 和截止时间。
func requestContext(req messages.WorldMessage) (context.Context, context.CancelFunc) {
	ctx := traceContext(req)
	if dl := req.DeadlineAt(); !dl.IsZero() {
		return context.WithDeadline(ctx, dl)
	}
	return context.WithCancel(ctx)
}

// tickContext 只带 trace_id。调用方超时后推进仍在 actor 里继续，下次读到的是已提交的结果。
func tickContext(req messages.WorldMessage) (context.Context, context.CancelFunc) {
	return context.WithCancel(traceContext(req))
}

func traceContext(req messages.WorldMessage) context.Context {
	ctx := context.Background()
	if id := req.TraceID(); id != "" {
		ctx = tracex.WithTraceID(ctx, id)
	}
	return ctx
}
