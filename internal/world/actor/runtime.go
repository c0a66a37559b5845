package actor

import (
	"context"
	"errors"
	"time"

	protoactor "github.com/asynkron/protoactor-go/actor"

	"github.com/mgmcelwee/evony/internal/shared/actor/messages"
	"github.com/mgmcelwee/evony/internal/world/actors"
	"github.com/mgmcelwee/evony/internal/world/app"
	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/modules/kit/errx"
	"github.com/mgmcelwee/evony/modules/kit/logx"
	"github.com/mgmcelwee/evony/modules/kit/tracex"
)

const defaultAskTimeout = 30 * time.Second

// Runtime 把世界服务包进单个 actor，对外提供同步调用。
type Runtime struct {
	system  *protoactor.ActorSystem
	root    *protoactor.RootContext
	world   *protoactor.PID
	timeout time.Duration
}

var _ app.Ticker = (*Runtime)(nil)

func NewRuntime(svc *app.WorldService, askTimeout time.Duration, log logx.Logger) *Runtime {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}

	system := protoactor.NewActorSystem()
	root := system.Root
	props := protoactor.PropsFromProducer(func() protoactor.Actor {
		return actors.NewWorldActor(svc, log)
	})
	world := root.Spawn(props)

	return &Runtime{
		system:  system,
		root:    root,
		world:   world,
		timeout: askTimeout,
	}
}

func (r *Runtime) Shutdown() {
	if r == nil {
		return
	}
	if r.root != nil && r.world != nil {
		r.root.Stop(r.world)
	}
	if r.system != nil {
		r.system.Shutdown()
	}
}

func (r *Runtime) Tick(ctx context.Context, now time.Time) (domain.TickSummary, error) {
	return ask[domain.TickSummary](ctx, r, &messages.HWTick{WorldBaseMessage: r.base(ctx, 0), Now: now})
}

func (r *Runtime) LaunchRaid(ctx context.Context, now time.Time, cmd app.LaunchRaidCmd) (app.LaunchResult, error) {
	lines := make([]messages.TroopLine, 0, len(cmd.Troops))
	for _, o := range cmd.Troops {
		lines = append(lines, messages.TroopLine{Code: o.Code, Count: o.Count})
	}
	return ask[app.LaunchResult](ctx, r, &messages.HWLaunchRaid{
		WorldBaseMessage: r.base(ctx, cmd.UserID),
		Now:              now,
		AttackerCityId:   int64(cmd.AttackerCityID),
		TargetCityId:     int64(cmd.TargetCityID),
		Troops:           lines,
	})
}

func (r *Runtime) RecallRaid(ctx context.Context, now time.Time, cmd app.RecallRaidCmd) (domain.Raid, error) {
	return ask[domain.Raid](ctx, r, &messages.HWRecallRaid{
		WorldBaseMessage: r.base(ctx, cmd.UserID),
		Now:              now,
		RaidId:           int64(cmd.RaidID),
	})
}

func (r *Runtime) PreviewRaid(ctx context.Context, now time.Time, cmd app.PreviewRaidCmd) (app.RaidPreview, error) {
	return ask[app.RaidPreview](ctx, r, &messages.HWPreviewRaid{
		WorldBaseMessage: r.base(ctx, cmd.UserID),
		Now:              now,
		AttackerCityId:   int64(cmd.AttackerCityID),
		TargetCityId:     int64(cmd.TargetCityID),
	})
}

func (r *Runtime) RaidReport(ctx context.Context, userID domain.UserID, raidID domain.RaidID) (app.RaidReport, error) {
	return ask[app.RaidReport](ctx, r, &messages.HWRaidReport{
		WorldBaseMessage: r.base(ctx, userID),
		RaidId:           int64(raidID),
	})
}

func (r *Runtime) ListRaids(ctx context.Context, userID domain.UserID, status domain.RaidStatus, limit int) ([]domain.Raid, error) {
	return ask[[]domain.Raid](ctx, r, &messages.HWListRaids{
		WorldBaseMessage: r.base(ctx, userID),
		Status:           string(status),
		Limit:            limit,
	})
}

func (r *Runtime) GetRaid(ctx context.Context, userID domain.UserID, raidID domain.RaidID) (domain.Raid, error) {
	return ask[domain.Raid](ctx, r, &messages.HWGetRaid{
		WorldBaseMessage: r.base(ctx, userID),
		RaidId:           int64(raidID),
	})
}

func (r *Runtime) base(ctx context.Context, userID domain.UserID) messages.WorldBaseMessage {
	b := messages.WorldBaseMessage{PlayerId: messages.PlayerId(userID)}
	if id, ok := tracex.TraceIDFrom(ctx); ok {
		b.Trace = id
	}
	if dl, ok := ctx.Deadline(); ok {
		b.Deadline = dl
	}
	return b
}

func ask[T any](ctx context.Context, r *Runtime, msg messages.WorldMessage) (T, error) {
	var zero T
	res, err := r.request(r.world, msg, r.timeoutFromContext(ctx))
	if err != nil {
		return zero, err
	}
	rep, ok := res.(*messages.Reply)
	if !ok || rep == nil {
		return zero, errx.ErrInternal.WithData("reason", "unexpected_reply")
	}
	if rep.Err != nil {
		return zero, rep.Err
	}
	v, ok := rep.Value.(T)
	if !ok {
		return zero, errx.ErrInternal.WithData("reason", "unexpected_reply")
	}
	return v, nil
}

func (r *Runtime) request(pid *protoactor.PID, msg any, timeout time.Duration) (any, error) {
	if r == nil || r.root == nil {
		return nil, errx.ErrUnavailable.WithData("reason", "actor_runtime_not_ready")
	}
	if pid == nil {
		return nil, errx.ErrUnavailable.WithData("reason", "actor_pid_nil")
	}

	future := r.root.RequestFuture(pid, msg, timeout)
	res, err := future.Result()
	if err != nil {
		if errors.Is(err, protoactor.ErrTimeout) {
			return nil, errx.ErrTimeout.WithData("timeout", timeout.String()).WithCause(err)
		}
		return nil, errx.ErrUnavailable.WithData("reason", "actor_request_failed").WithCause(err)
	}
	return res, nil
}

func (r *Runtime) timeoutFromContext(ctx context.Context) time.Duration {
	if r == nil || r.timeout <= 0 {
		return defaultAskTimeout
	}
	if ctx == nil {
		return r.timeout
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		return time.Millisecond
	}
	if remain < r.timeout {
		return remain
	}
	return r.timeout
}
