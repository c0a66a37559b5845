package app

import (
	"context"
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/internal/world/rules"

	"go.uber.org/zap"
)

// resolveArrivals 处理 arrives_at <= at 的 enroute 行军。
func (w *worldTx) resolveArrivals(ctx context.Context, at time.Time) (int, error) {
	due, err := w.tx.DueArrivals(ctx, at)
	if err != nil {
		return 0, err
	}
	for _, r := range due {
		if err := w.arrive(ctx, r, at); err != nil {
			return 0, err
		}
	}
	return len(due), nil
}

// arrive 抵达结算：掠夺、战斗、进入回程。
// 任一方城池已不存在时行军直接结束，资源与部队作废。
func (w *worldTx) arrive(ctx context.Context, r *domain.Raid, at time.Time) error {
	attacker, aok, err := w.city(ctx, r.AttackerCityID)
	if err != nil {
		return err
	}
	target, tok, err := w.city(ctx, r.TargetCityID)
	if err != nil {
		return err
	}
	if !aok || !tok {
		w.log.Warn("raid city missing on arrival, raid forfeited",
			zap.Int64("raid_id", int64(r.ID)),
			zap.Bool("attacker_exists", aok),
			zap.Bool("target_exists", tok))
		r.MarkResolved(at)
		return w.tx.SaveRaid(ctx, r)
	}

	if err := w.refreshStorage(ctx, attacker); err != nil {
		return err
	}
	if err := w.refreshStorage(ctx, target); err != nil {
		return err
	}

	taken := rules.ProportionalTake(rules.Lootable(target.Stock, target.Protected), r.CarryCapacity)
	target.Stock = rules.SubtractLoot(target.Stock, taken, target.Protected)
	r.Stolen = taken

	if err := w.resolveCombat(ctx, r); err != nil {
		return err
	}

	repairTiming(r)
	base := r.ArrivesAt
	if base.IsZero() {
		base = at
	}
	r.MarkReturning(base)
	return w.tx.SaveRaid(ctx, r)
}

// repairTiming 兼容缺少时长的旧数据。
func repairTiming(r *domain.Raid) {
	if r.OutboundSeconds <= 0 {
		r.OutboundSeconds = 1
		if !r.CreatedAt.IsZero() && !r.ArrivesAt.IsZero() {
			r.OutboundSeconds = max(1, int64(r.ArrivesAt.Sub(r.CreatedAt)/time.Second))
		}
	}
	if r.ReturnSeconds <= 0 {
		r.ReturnSeconds = max(1, r.OutboundSeconds)
	}
}

// resolveReturns 处理 returns_at <= at 的 returning 行军。
func (w *worldTx) resolveReturns(ctx context.Context, at time.Time) (int, error) {
	due, err := w.tx.DueReturns(ctx, at)
	if err != nil {
		return 0, err
	}
	for _, r := range due {
		if err := w.returnHome(ctx, r, at); err != nil {
			return 0, err
		}
	}
	return len(due), nil
}

// returnHome 回城结算：终态、战报、部队回营、资源入库。
func (w *worldTx) returnHome(ctx context.Context, r *domain.Raid, at time.Time) error {
	r.MarkResolved(at)

	attacker, aok, err := w.city(ctx, r.AttackerCityID)
	if err != nil {
		return err
	}
	target, tok, err := w.city(ctx, r.TargetCityID)
	if err != nil {
		return err
	}

	// 战报要在兵线被围栏之前生成
	if aok && tok {
		report, err := w.buildReport(ctx, r, attacker, target)
		if err != nil {
			return err
		}
		w.outbox = append(w.outbox, reportMessages(report, at, attacker.OwnerID, target.OwnerID)...)
	} else if aok {
		w.log.Warn("raid target missing on return, report skipped", zap.Int64("raid_id", int64(r.ID)))
	}

	if err := w.returnTroops(ctx, r, aok); err != nil {
		return err
	}

	if aok {
		if err := w.refreshStorage(ctx, attacker); err != nil {
			return err
		}
		attacker.Stock = rules.CreditLoot(attacker.Stock, r.Stolen, attacker.Cap)
	} else {
		w.log.Warn("raid attacker missing on return, loot forfeited", zap.Int64("raid_id", int64(r.ID)))
	}
	return w.tx.SaveRaid(ctx, r)
}
