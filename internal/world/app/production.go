package app

import (
	"context"
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/internal/world/rules"
)

// AdvanceCity 把城池产出推进到 target，返回本次结算的整分钟数。
//
// - 不足一分钟不做任何事，同一分钟内重复调用是幂等的
// - LastTickAt 只前进整分钟，零头秒数留给下一次
// - LastTickAt 为零值时以 target 为起点，本次结算 0 分钟
func AdvanceCity(c *domain.City, levels domain.Levels, target time.Time) int64 {
	if c.LastTickAt.IsZero() {
		c.LastTickAt = target
		return 0
	}
	minutes := int64(target.Sub(c.LastTickAt) / time.Minute)
	if minutes <= 0 {
		return 0
	}
	RefreshEconomy(c, levels)
	c.Stock = c.Stock.Add(c.Rate.Scale(minutes)).Min(c.Cap)
	c.LastTickAt = c.LastTickAt.Add(time.Duration(minutes) * time.Minute)
	return minutes
}

// RefreshEconomy 按建筑等级重算产出率、上限和保护量。
func RefreshEconomy(c *domain.City, levels domain.Levels) {
	c.Rate = rules.Rates(levels)
	RefreshStorage(c, levels)
}

// RefreshStorage 只重算上限和保护量，不动库存。
func RefreshStorage(c *domain.City, levels domain.Levels) {
	s := rules.StorageFor(levels)
	c.ApplyStorage(s.Max, s.Protected)
}

// advance 推进单座城并维护脏标记。
func (w *worldTx) advance(ctx context.Context, c *domain.City, target time.Time) (int64, error) {
	before := c.LastTickAt
	levels, err := w.cityLevels(ctx, c.ID)
	if err != nil {
		return 0, err
	}
	m := AdvanceCity(c, levels, target)
	if m > 0 || !before.Equal(c.LastTickAt) {
		w.markDirty(c)
	}
	return m, nil
}

// refreshStorage 从 identity map 拿等级刷新仓储。
func (w *worldTx) refreshStorage(ctx context.Context, c *domain.City) error {
	levels, err := w.cityLevels(ctx, c.ID)
	if err != nil {
		return err
	}
	RefreshStorage(c, levels)
	w.markDirty(c)
	return nil
}
