package app

import (
	"context"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

// returnTroops 把幸存部队加回攻方驻军，可重复执行。
//
// 每条兵线回营后置 CountSent = CountLost、Returned = true，
// 再次执行时 returning = 0，不会重复加兵。
// credit=false（攻方城池已不存在）时只做围栏，部队作废。
func (w *worldTx) returnTroops(ctx context.Context, r *domain.Raid, credit bool) error {
	lines, err := w.tx.RaidTroops(ctx, r.ID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	garrison := map[domain.TroopTypeID]*domain.CityTroop{}
	if credit {
		current, err := w.tx.CityTroops(ctx, r.AttackerCityID)
		if err != nil {
			return err
		}
		for _, ct := range current {
			garrison[ct.TroopTypeID] = ct
		}
	}

	for _, rt := range lines {
		if rt.Returned {
			continue
		}
		returning := max(0, rt.CountSent-rt.CountLost)
		if credit && returning > 0 {
			ct, ok := garrison[rt.TroopTypeID]
			if !ok {
				ct = &domain.CityTroop{CityID: r.AttackerCityID, TroopTypeID: rt.TroopTypeID}
				garrison[rt.TroopTypeID] = ct
			}
			ct.Count += returning
			if err := w.tx.SaveCityTroop(ctx, ct); err != nil {
				return err
			}
		}
		if credit {
			rt.CountReturned = returning
		}
		rt.CountSent = rt.CountLost
		rt.Returned = true
		if err := w.tx.SaveRaidTroop(ctx, rt); err != nil {
			return err
		}
	}
	return nil
}
