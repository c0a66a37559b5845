package app

import (
	"context"
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"

	"go.uber.org/zap"
)

// completeDueUpgrades 完成所有 completes_at <= at 的升级，返回完成条数。
// 受影响的城池在同一时刻重算产出与仓储，并把库存压回新上限。
func (w *worldTx) completeDueUpgrades(ctx context.Context, at time.Time) (int, error) {
	due, err := w.tx.DueUpgrades(ctx, at)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	touched := make([]domain.CityID, 0, len(due))
	seen := make(map[domain.CityID]struct{}, len(due))
	for _, up := range due {
		applied, err := w.setBuildingLevel(ctx, up.CityID, up.BuildingType, up.ToLevel)
		if err != nil {
			return 0, err
		}
		if !applied {
			w.log.Warn("upgrade building missing",
				zap.Int64("upgrade_id", int64(up.ID)),
				zap.Int64("city_id", int64(up.CityID)),
				zap.String("building", string(up.BuildingType)))
		} else if _, ok := seen[up.CityID]; !ok {
			seen[up.CityID] = struct{}{}
			touched = append(touched, up.CityID)
		}
		if err := w.tx.DeleteUpgrade(ctx, up.ID); err != nil {
			return 0, err
		}
	}

	for _, id := range touched {
		c, ok, err := w.city(ctx, id)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		levels, err := w.cityLevels(ctx, id)
		if err != nil {
			return 0, err
		}
		if levels.Has(domain.BuildingTownhall) {
			c.KeepLevel = levels[domain.BuildingTownhall]
		}
		RefreshEconomy(c, levels)
		c.ClampToCap()
		w.markDirty(c)
	}
	return len(due), nil
}
