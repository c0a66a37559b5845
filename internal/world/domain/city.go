package domain

import "time"

type (
	CityID int64
	UserID int64
)

// City 是可产出、可被掠夺的城池。
//
// 不变式：
// - 0 <= Stock.X <= Cap.X（保护量 Protected.X <= Cap.X；库存可以低于保护量）
// - LastTickAt 单调不减，且只按整分钟前进
type City struct {
	ID      CityID
	OwnerID UserID
	Name    string
	X, Y    int

	// KeepLevel 是 townhall 建筑等级的镜像，升级完成时刷新。
	KeepLevel int

	Stock     Resources
	Cap       Resources
	Protected Resources
	// Rate 每分钟产出。
	Rate Resources

	MarchSpeedPct  int
	ReturnSpeedPct int

	LastTickAt time.Time
	CreatedAt  time.Time
}

// ApplyStorage 写入新的上限和保护量。
func (c *City) ApplyStorage(maxes, protected Resources) {
	c.Cap = maxes
	c.Protected = protected
}

// ClampToCap 把库存压回上限以内。
func (c *City) ClampToCap() {
	c.Stock = c.Stock.Min(c.Cap).ClampNonNegative()
}

// Validate 在实体进入存储前检查字段合法性。
func (c *City) Validate() error {
	if c == nil {
		return ErrInvalidEntity.WithData("entity", "city")
	}
	for _, k := range ResourceKinds {
		if c.Stock.Get(k) < 0 || c.Cap.Get(k) < 0 || c.Protected.Get(k) < 0 {
			return ErrInvalidEntity.WithDataMap(map[string]any{"entity": "city", "city_id": c.ID, "resource": k.String()})
		}
		if c.Protected.Get(k) > c.Cap.Get(k) {
			return ErrInvalidEntity.WithDataMap(map[string]any{"entity": "city", "city_id": c.ID, "field": "protected_" + k.String()})
		}
	}
	return nil
}
