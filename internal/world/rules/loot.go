package rules

import (
	"sort"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

// Lootable 返回可掠夺量 max(0, stock - protected)。
func Lootable(stock, protected domain.Resources) domain.Resources {
	return domain.Resources{
		Food:  max(0, stock.Food-protected.Food),
		Wood:  max(0, stock.Wood-protected.Wood),
		Stone: max(0, stock.Stone-protected.Stone),
		Iron:  max(0, stock.Iron-protected.Iron),
	}
}

// ProportionalTake 在负重上限内按比例拿走资源（最大余数法）。
//
// 结果满足：
// - 总和 == min(capacity, loot.Total())
// - 每项不超过对应的 loot
// 余数相同时按资源名倒序优先，即 wood, stone, iron, food。
// 全程整数运算，loot*capacity 需落在 int64 范围内。
func ProportionalTake(loot domain.Resources, capacity int64) domain.Resources {
	loot = loot.ClampNonNegative()
	total := loot.Total()
	if total <= 0 || capacity <= 0 {
		return domain.Resources{}
	}
	takeTotal := min(capacity, total)

	type share struct {
		kind domain.ResourceKind
		rem  int64
	}
	var (
		taken  domain.Resources
		shares = make([]share, 0, len(domain.ResourceKinds))
		used   int64
	)
	for _, k := range domain.ResourceKinds {
		num := loot.Get(k) * takeTotal
		base := min(num/total, loot.Get(k))
		taken.Set(k, base)
		used += base
		shares = append(shares, share{kind: k, rem: num % total})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].rem != shares[j].rem {
			return shares[i].rem > shares[j].rem
		}
		return shares[i].kind.String() > shares[j].kind.String()
	})

	left := takeTotal - used
	for left > 0 {
		progressed := false
		for _, s := range shares {
			if left <= 0 {
				break
			}
			if taken.Get(s.kind) < loot.Get(s.kind) {
				taken.Set(s.kind, taken.Get(s.kind)+1)
				left--
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return taken
}

// SubtractLoot 从库存扣除掠夺量，结果不低于保护量；原本就低于保护量的库存保持不变。
func SubtractLoot(stock, taken, protected domain.Resources) domain.Resources {
	var out domain.Resources
	for _, k := range domain.ResourceKinds {
		cur := stock.Get(k)
		next := cur - taken.Get(k)
		floor := min(cur, protected.Get(k))
		out.Set(k, max(next, floor))
	}
	return out
}

// CreditLoot 把掠夺量加到库存上，按上限截断。
func CreditLoot(stock, stolen, maxes domain.Resources) domain.Resources {
	return stock.Add(stolen.ClampNonNegative()).Min(maxes)
}
