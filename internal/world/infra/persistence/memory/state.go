package memory

import (
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

// state 是整个世界的值类型快照。事务开始时整体复制一份，成功后替换。
type state struct {
	cities     map[domain.CityID]domain.City
	buildings  map[domain.CityID]map[domain.BuildingType]int
	upgrades   map[domain.UpgradeID]domain.Upgrade
	raids      map[domain.RaidID]domain.Raid
	raidTroops map[domain.RaidID]map[domain.TroopTypeID]domain.RaidTroop
	defenders  map[domain.RaidID][]domain.RaidDefenderTroop
	garrison   map[domain.CityID]map[domain.TroopTypeID]int64
	troopTypes map[domain.TroopTypeID]domain.TroopType

	nextCityID      domain.CityID
	nextUpgradeID   domain.UpgradeID
	nextRaidID      domain.RaidID
	nextTroopTypeID domain.TroopTypeID
}

func newState() *state {
	return &state{
		cities:     make(map[domain.CityID]domain.City),
		buildings:  make(map[domain.CityID]map[domain.BuildingType]int),
		upgrades:   make(map[domain.UpgradeID]domain.Upgrade),
		raids:      make(map[domain.RaidID]domain.Raid),
		raidTroops: make(map[domain.RaidID]map[domain.TroopTypeID]domain.RaidTroop),
		defenders:  make(map[domain.RaidID][]domain.RaidDefenderTroop),
		garrison:   make(map[domain.CityID]map[domain.TroopTypeID]int64),
		troopTypes: make(map[domain.TroopTypeID]domain.TroopType),
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.cities {
		out.cities[k] = v
	}
	for k, v := range s.buildings {
		out.buildings[k] = cloneMap(v)
	}
	for k, v := range s.upgrades {
		out.upgrades[k] = v
	}
	for k, v := range s.raids {
		out.raids[k] = cloneRaid(v)
	}
	for k, v := range s.raidTroops {
		out.raidTroops[k] = cloneMap(v)
	}
	for k, v := range s.defenders {
		out.defenders[k] = append([]domain.RaidDefenderTroop(nil), v...)
	}
	for k, v := range s.garrison {
		out.garrison[k] = cloneMap(v)
	}
	for k, v := range s.troopTypes {
		out.troopTypes[k] = v
	}
	out.nextCityID = s.nextCityID
	out.nextUpgradeID = s.nextUpgradeID
	out.nextRaidID = s.nextRaidID
	out.nextTroopTypeID = s.nextTroopTypeID
	return out
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// cloneRaid 复制可空时间字段，避免两个快照共享同一个指针。
func cloneRaid(r domain.Raid) domain.Raid {
	r.ReturnsAt = cloneTime(r.ReturnsAt)
	r.ResolvedAt = cloneTime(r.ResolvedAt)
	return r
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
