package app

import (
	"context"

	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/internal/world/rules"

	"go.uber.org/zap"
)

// resolveCombat 单回合确定性战斗。
//
// 同一次行军只结算一次：CombatResolved 或守军快照已存在时直接返回。
// 攻方伤亡写在 raid_troops.count_lost 上，守方伤亡直接从驻军扣除，
// 快照记录抵达瞬间的守军数量与损失。
func (w *worldTx) resolveCombat(ctx context.Context, r *domain.Raid) error {
	if r.CombatResolved {
		return nil
	}
	has, err := w.tx.HasDefenderSnapshot(ctx, r.ID)
	if err != nil {
		return err
	}
	if has {
		r.CombatResolved = true
		return nil
	}

	lines, err := w.tx.RaidTroops(ctx, r.ID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	garrison, err := w.tx.CityTroops(ctx, r.TargetCityID)
	if err != nil {
		return err
	}

	ids := make([]domain.TroopTypeID, 0, len(lines)+len(garrison))
	for _, rt := range lines {
		ids = append(ids, rt.TroopTypeID)
	}
	for _, ct := range garrison {
		if ct.Count > 0 {
			ids = append(ids, ct.TroopTypeID)
		}
	}
	types, err := w.tx.TroopTypes(ctx, ids)
	if err != nil {
		return err
	}

	var atk, def float64
	for _, rt := range lines {
		if tt, ok := types[rt.TroopTypeID]; ok {
			atk += float64(rt.CountSent) * rules.AttackUnitPower(tt)
		}
	}
	for _, ct := range garrison {
		if tt, ok := types[ct.TroopTypeID]; ok && ct.Count > 0 {
			def += float64(ct.Count) * rules.DefenseUnitPower(tt)
		}
	}

	rates := rules.ComputeLossRates(atk, def)
	if rates.Verdict == rules.VerdictNoAttack {
		w.log.Debug("combat skipped, no attack power", zap.Int64("raid_id", int64(r.ID)))
		return nil
	}

	for _, rt := range lines {
		lost := rules.Casualties(rt.CountSent, rates.Attacker)
		if lost == rt.CountLost {
			continue
		}
		rt.CountLost = lost
		if err := w.tx.SaveRaidTroop(ctx, rt); err != nil {
			return err
		}
	}

	rows := make([]*domain.RaidDefenderTroop, 0, len(garrison))
	for _, ct := range garrison {
		if ct.Count <= 0 {
			continue
		}
		lost := rules.Casualties(ct.Count, rates.Defender)
		rows = append(rows, &domain.RaidDefenderTroop{
			RaidID:      r.ID,
			TroopTypeID: ct.TroopTypeID,
			CountStart:  ct.Count,
			CountLost:   lost,
		})
		if lost == 0 {
			continue
		}
		ct.Count -= lost
		if err := w.tx.SaveCityTroop(ctx, ct); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		if err := w.tx.InsertDefenderSnapshot(ctx, rows); err != nil {
			return err
		}
	}
	r.CombatResolved = true

	w.log.Debug("combat resolved",
		zap.Int64("raid_id", int64(r.ID)),
		zap.Float64("attack_power", rules.Round2(atk)),
		zap.Float64("defense_power", rules.Round2(def)),
		zap.Float64("attacker_loss_rate", rates.Attacker),
		zap.Float64("defender_loss_rate", rates.Defender))
	return nil
}
