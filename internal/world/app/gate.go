package app

import (
	"context"
	"sync"
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/modules/kit/logx"
)

// Ticker 推进世界到 now。
type Ticker interface {
	Tick(ctx context.Context, now time.Time) (domain.TickSummary, error)
}

type GateOptions struct {
	Enabled  bool
	Throttle time.Duration
}

// DefaultGateOptions 读时推进开启，节流 1 秒。
func DefaultGateOptions() GateOptions {
	return GateOptions{Enabled: true, Throttle: time.Second}
}

// Gate 读时推进：请求进来时按节流间隔触发一次 tick。
// 互斥锁覆盖整个 tick，同一进程内不会并发推进。
type Gate struct {
	mu       sync.Mutex
	ticker   Ticker
	opts     GateOptions
	lastTick time.Time
	now      func() time.Time
	log      logx.Logger
}

type GateOption func(*Gate)

// WithGateClock 替换时钟，测试用。
func WithGateClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

func NewGate(ticker Ticker, opts GateOptions, log logx.Logger, options ...GateOption) *Gate {
	if log == nil {
		log = logx.Nop()
	}
	g := &Gate{ticker: ticker, opts: opts, now: time.Now, log: log}
	for _, o := range options {
		o(g)
	}
	return g
}

// MaybeTick 用当前时钟调用 MaybeTickAt。
func (g *Gate) MaybeTick(ctx context.Context) (time.Time, error) {
	return g.MaybeTickAt(ctx, g.now())
}

// MaybeTickAt 返回本次请求使用的 now。
//
// - 关闭时什么都不做
// - 距上次成功推进不足节流间隔时跳过
// - 推进失败不记录时间，下一次请求会重试
func (g *Gate) MaybeTickAt(ctx context.Context, now time.Time) (time.Time, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.opts.Enabled {
		return now, nil
	}
	if !g.lastTick.IsZero() && now.Sub(g.lastTick) < g.opts.Throttle {
		return now, nil
	}
	if _, err := g.ticker.Tick(ctx, now); err != nil {
		logx.ReportSysError(ctx, g.log, logx.NewSysLog("world tick failed", err))
		return now, err
	}
	g.lastTick = now
	return now, nil
}

// SetOptions 配置热更新时调用。
func (g *Gate) SetOptions(opts GateOptions) {
	g.mu.Lock()
	g.opts = opts
	g.mu.Unlock()
}

func (g *Gate) Options() GateOptions {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.opts
}

// Reset 清空节流状态。
func (g *Gate) Reset() {
	g.mu.Lock()
	g.lastTick = time.Time{}
	g.mu.Unlock()
}

func (g *Gate) LastTickAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastTick
}
