package memory

import (
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/internal/world/rules"
)

// SeedDemo 初始化一个最小可玩的世界：两名玩家各一座城、两个兵种。
func SeedDemo(s *Store, now time.Time) {
	inf := s.AddTroopType(domain.TroopType{Code: "t1_inf", Name: "Infantry", Tier: 1, Attack: 10, Defense: 12, HP: 50, Speed: 100, Carry: 10})
	cav := s.AddTroopType(domain.TroopType{Code: "t1_cav", Name: "Cavalry", Tier: 1, Attack: 14, Defense: 8, HP: 60, Speed: 150, Carry: 20})

	for i, owner := range []domain.UserID{1, 2} {
		storage := rules.StorageFor(domain.Levels{})
		id := s.AddCity(domain.City{
			OwnerID:    owner,
			Name:       "City " + string(rune('A'+i)),
			X:          i * 12,
			Y:          i * 5,
			KeepLevel:  1,
			Stock:      domain.Resources{Food: 500, Wood: 500, Stone: 500, Iron: 500},
			Cap:        storage.Max,
			Protected:  storage.Protected,
			Rate:       rules.Rates(domain.Levels{}),
			LastTickAt: now,
			CreatedAt:  now,
		})
		for _, bt := range []domain.BuildingType{
			domain.BuildingFarm, domain.BuildingSawmill, domain.BuildingQuarry, domain.BuildingIronMine,
			domain.BuildingWarehouse, domain.BuildingTownhall, domain.BuildingBarracks,
		} {
			s.SetBuilding(id, bt, domain.DefaultBuildingLevel)
		}
		s.SetGarrison(id, inf, 100)
		s.SetGarrison(id, cav, 40)
	}
}
