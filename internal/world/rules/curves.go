package rules

import "github.com/mgmcelwee/evony/internal/world/domain"

// Curve 二次成长曲线 base + linear*x + quad*x²，x = max(0, level-1)。
type Curve struct {
	Base   int64
	Linear int64
	Quad   int64
}

func (c Curve) At(level int) int64 {
	x := int64(max(0, level-1))
	return max(0, c.Base+c.Linear*x+c.Quad*x*x)
}

// 产出曲线（每分钟）。
var (
	FoodCurve  = Curve{Base: 30, Linear: 8, Quad: 2}
	WoodCurve  = Curve{Base: 30, Linear: 8, Quad: 2}
	StoneCurve = Curve{Base: 20, Linear: 3, Quad: 1}
	IronCurve  = Curve{Base: 10, Linear: 2, Quad: 1}
)

// 仓库容量：base + per*warehouseLevel。
type capLine struct {
	base, per int64
}

var (
	foodCap  = capLine{base: 5000, per: 2000}
	woodCap  = capLine{base: 5000, per: 2000}
	stoneCap = capLine{base: 3000, per: 1200}
	ironCap  = capLine{base: 2000, per: 800}
)

// 保护比例：25% 起，每级仓库 +2%，上限 40%。以百分比整数表示避免浮点截断误差。
const (
	protectedPctBase     = 25
	protectedPctPerLevel = 2
	protectedPctMin      = 25
	protectedPctMax      = 40
)

// Rates 根据建筑等级计算四种资源的每分钟产出。
func Rates(levels domain.Levels) domain.Resources {
	return domain.Resources{
		Food:  FoodCurve.At(levels.Level(domain.BuildingFarm)),
		Wood:  WoodCurve.At(levels.Level(domain.BuildingSawmill)),
		Stone: StoneCurve.At(levels.Level(domain.BuildingQuarry)),
		Iron:  IronCurve.At(levels.Level(domain.BuildingIronMine)),
	}
}

// Storage 是仓库决定的上限与保护量。
type Storage struct {
	Max       domain.Resources
	Protected domain.Resources
}

// StorageFor 根据仓库等级计算上限与保护量，保证 Protected <= Max。
func StorageFor(levels domain.Levels) Storage {
	wh := int64(levels.Level(domain.BuildingWarehouse))
	maxes := domain.Resources{
		Food:  foodCap.base + wh*foodCap.per,
		Wood:  woodCap.base + wh*woodCap.per,
		Stone: stoneCap.base + wh*stoneCap.per,
		Iron:  ironCap.base + wh*ironCap.per,
	}
	pct := ProtectedPercent(int(wh))
	// 截断取整
	protected := domain.Resources{
		Food:  maxes.Food * pct / 100,
		Wood:  maxes.Wood * pct / 100,
		Stone: maxes.Stone * pct / 100,
		Iron:  maxes.Iron * pct / 100,
	}
	return Storage{Max: maxes.ClampNonNegative(), Protected: protected.ClampNonNegative().Min(maxes)}
}

// ProtectedPercent 返回仓库等级对应的保护百分比，范围 [25, 40]。
func ProtectedPercent(warehouseLevel int) int64 {
	p := int64(protectedPctBase + (warehouseLevel-1)*protectedPctPerLevel)
	return min(protectedPctMax, max(protectedPctMin, p))
}
