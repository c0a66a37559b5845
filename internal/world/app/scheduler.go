package app

import (
	"context"
	"time"

	"github.com/mgmcelwee/evony/internal/world/app/port"
	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/modules/kit/logx"
	"github.com/mgmcelwee/evony/modules/kit/tracex"

	"go.uber.org/zap"
)

// DefaultMaxSteps 单次 tick 最多处理的事件步数。
const DefaultMaxSteps = 100000

type SchedulerOptions struct {
	// MaxSteps <= 0 时使用 DefaultMaxSteps。
	MaxSteps int
}

// Scheduler 按事件时间推进世界到 now。
//
// 每一步：所有城池产出推进到事件时刻 -> 升级完成 -> 抵达结算 -> 回城结算。
// 整个循环在一个事务里执行，任何一步失败都整体回滚。
type Scheduler struct {
	store    port.Store
	mailer   port.Mailer
	log      logx.Logger
	maxSteps int
}

func NewScheduler(store port.Store, mailer port.Mailer, log logx.Logger, opts SchedulerOptions) *Scheduler {
	if log == nil {
		log = logx.Nop()
	}
	steps := opts.MaxSteps
	if steps <= 0 {
		steps = DefaultMaxSteps
	}
	return &Scheduler{store: store, mailer: mailer, log: log, maxSteps: steps}
}

// Tick 推进世界。失败时返回 ErrTickFailed，存储状态不变。
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (domain.TickSummary, error) {
	if _, ok := tracex.TraceIDFrom(ctx); !ok {
		ctx = tracex.WithTraceID(ctx, tracex.NewTraceID())
	}
	ctx = tracex.WithTickID(ctx, tracex.NewTickID())
	log := s.log.WithContext(ctx)

	var (
		sum    domain.TickSummary
		outbox []port.Message
	)
	err := s.store.InTx(ctx, func(tx port.Tx) error {
		if err := tx.LockWorld(ctx); err != nil {
			return err
		}
		w := newWorldTx(tx, log)
		res, err := w.run(ctx, now, s.maxSteps)
		if err != nil {
			return err
		}
		if err := w.flush(ctx); err != nil {
			return err
		}
		sum, outbox = res, w.outbox
		return nil
	})
	if err != nil {
		return domain.TickSummary{At: now, ReachedAt: now}, ErrTickFailed.WithData("at", now).WithCause(err)
	}

	s.deliver(ctx, log, outbox)

	log.Info("world tick done",
		zap.Int("cities_total", sum.CitiesTotal),
		zap.Int("cities_ticked", sum.CitiesTicked),
		zap.Int64("minutes_applied_total", sum.MinutesAppliedTotal),
		zap.Int("upgrades_completed", sum.UpgradesCompleted),
		zap.Int("raids_arrived", sum.RaidsArrived),
		zap.Int("raids_returned", sum.RaidsReturned),
		zap.Int("steps", sum.Steps),
		zap.Time("reached_at", sum.ReachedAt),
		zap.Bool("truncated", sum.Truncated))
	return sum, nil
}

// deliver 事务提交后投递邮件，失败只告警。
func (s *Scheduler) deliver(ctx context.Context, log logx.Logger, outbox []port.Message) {
	if s.mailer == nil {
		return
	}
	for _, msg := range outbox {
		if err := s.mailer.Deliver(ctx, msg); err != nil {
			log.Warn("mail delivery failed",
				zap.Int64("user_id", int64(msg.UserID)),
				zap.String("kind", msg.Kind),
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
	}
}

func (w *worldTx) run(ctx context.Context, now time.Time, maxSteps int) (domain.TickSummary, error) {
	sum := domain.TickSummary{At: now}
	cities, err := w.loadCities(ctx)
	if err != nil {
		return sum, err
	}
	sum.CitiesTotal = len(cities)

	clock := startClock(cities, now)
	ticked := make(map[domain.CityID]struct{}, len(cities))
	for {
		if sum.Steps >= maxSteps {
			sum.Truncated = true
			w.log.Warn("world tick truncated", zap.Int("max_steps", maxSteps), zap.Time("reached_at", clock))
			break
		}
		eventAt, err := w.nextEventAt(ctx, clock, now)
		if err != nil {
			return sum, err
		}
		sum.Steps++

		for _, c := range cities {
			m, err := w.advance(ctx, c, eventAt)
			if err != nil {
				return sum, err
			}
			if m > 0 {
				sum.MinutesAppliedTotal += m
				ticked[c.ID] = struct{}{}
			}
		}

		ups, err := w.completeDueUpgrades(ctx, eventAt)
		if err != nil {
			return sum, err
		}
		arrived, err := w.resolveArrivals(ctx, eventAt)
		if err != nil {
			return sum, err
		}
		returned, err := w.resolveReturns(ctx, eventAt)
		if err != nil {
			return sum, err
		}
		sum.UpgradesCompleted += ups
		sum.RaidsArrived += arrived
		sum.RaidsReturned += returned

		w.log.Debug("world tick step",
			zap.Int("step", sum.Steps),
			zap.Time("event_at", eventAt),
			zap.Int("upgrades", ups),
			zap.Int("arrived", arrived),
			zap.Int("returned", returned))

		clock = eventAt
		if !clock.Before(now) {
			break
		}
	}
	sum.CitiesTicked = len(ticked)
	sum.ReachedAt = clock
	return sum, nil
}

// startClock 最早的非零 last_tick_at（早于 now），没有则为 now。
func startClock(cities []*domain.City, now time.Time) time.Time {
	clock := now
	for _, c := range cities {
		if !c.LastTickAt.IsZero() && c.LastTickAt.Before(clock) {
			clock = c.LastTickAt
		}
	}
	return clock
}

// nextEventAt (clock, now] 内最早的升级完成、抵达、回城时间，没有则为 now。
func (w *worldTx) nextEventAt(ctx context.Context, clock, now time.Time) (time.Time, error) {
	next := now
	queries := []func(context.Context, time.Time, time.Time) (time.Time, bool, error){
		w.tx.NextUpgradeAt,
		w.tx.NextArrivalAt,
		w.tx.NextReturnAt,
	}
	for _, query := range queries {
		at, ok, err := query(ctx, clock, now)
		if err != nil {
			return time.Time{}, err
		}
		if ok && at.Before(next) {
			next = at
		}
	}
	return next, nil
}
