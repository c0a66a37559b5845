package memory

import (
	"github.com/mgmcelwee/evony/internal/world/domain"
)

// 以下方法直接读写当前状态，用于开发环境初始化和测试断言，不能在 InTx 回调里调用。

func (s *Store) AddCity(c domain.City) domain.CityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.state.nextCityID++
		c.ID = s.state.nextCityID
	} else if c.ID > s.state.nextCityID {
		s.state.nextCityID = c.ID
	}
	s.state.cities[c.ID] = c
	return c.ID
}

// RemoveCity 删除城池，模拟行军途中目标或出发城消失。
func (s *Store) RemoveCity(id domain.CityID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.cities, id)
}

func (s *Store) SetBuilding(cityID domain.CityID, t domain.BuildingType, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	levels, ok := s.state.buildings[cityID]
	if !ok {
		levels = make(map[domain.BuildingType]int)
		s.state.buildings[cityID] = levels
	}
	levels[t] = level
}

// AddUpgrade 写入一条进行中的升级，同一座城已有升级时拒绝。
func (s *Store) AddUpgrade(u domain.Upgrade) (domain.UpgradeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.state.upgrades {
		if cur.CityID == u.CityID {
			return 0, domain.ErrInvalidEntity.WithDataMap(map[string]any{
				"entity":     "upgrade",
				"city_id":    int64(u.CityID),
				"upgrade_id": int64(cur.ID),
			})
		}
	}
	s.state.nextUpgradeID++
	u.ID = s.state.nextUpgradeID
	s.state.upgrades[u.ID] = u
	return u.ID, nil
}

func (s *Store) AddTroopType(tt domain.TroopType) domain.TroopTypeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tt.ID == 0 {
		s.state.nextTroopTypeID++
		tt.ID = s.state.nextTroopTypeID
	} else if tt.ID > s.state.nextTroopTypeID {
		s.state.nextTroopTypeID = tt.ID
	}
	s.state.troopTypes[tt.ID] = tt
	return tt.ID
}

func (s *Store) RemoveTroopType(id domain.TroopTypeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.troopTypes, id)
}

func (s *Store) SetGarrison(cityID domain.CityID, typeID domain.TroopTypeID, count int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.state.garrison[cityID]
	if !ok {
		g = make(map[domain.TroopTypeID]int64)
		s.state.garrison[cityID] = g
	}
	g[typeID] = count
}

// AddRaid 直接写入一条行军及其兵线，不做校验，可用来构造历史遗留数据。
func (s *Store) AddRaid(r domain.Raid, lines ...domain.RaidTroop) domain.RaidID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.nextRaidID++
	r.ID = s.state.nextRaidID
	s.state.raids[r.ID] = cloneRaid(r)
	m := make(map[domain.TroopTypeID]domain.RaidTroop, len(lines))
	for _, rt := range lines {
		rt.RaidID = r.ID
		m[rt.TroopTypeID] = rt
	}
	s.state.raidTroops[r.ID] = m
	return r.ID
}

func (s *Store) City(id domain.CityID) (domain.City, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.cities[id]
	return c, ok
}

func (s *Store) Raid(id domain.RaidID) (domain.Raid, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.raids[id]
	return cloneRaid(r), ok
}

func (s *Store) RaidTroop(raidID domain.RaidID, typeID domain.TroopTypeID) (domain.RaidTroop, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.state.raidTroops[raidID][typeID]
	return rt, ok
}

func (s *Store) Garrison(cityID domain.CityID, typeID domain.TroopTypeID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.garrison[cityID][typeID]
}

func (s *Store) DefenderRows(raidID domain.RaidID) []domain.RaidDefenderTroop {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.RaidDefenderTroop(nil), s.state.defenders[raidID]...)
}

func (s *Store) BuildingLevel(cityID domain.CityID, t domain.BuildingType) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lvl, ok := s.state.buildings[cityID][t]
	return lvl, ok
}

func (s *Store) PendingUpgrades() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.upgrades)
}
