package domain

// BuildingType 建筑类型标识。
type BuildingType string

const (
	BuildingFarm      BuildingType = "farm"
	BuildingSawmill   BuildingType = "sawmill"
	BuildingQuarry    BuildingType = "quarry"
	BuildingIronMine  BuildingType = "ironmine"
	BuildingWarehouse BuildingType = "warehouse"
	BuildingTownhall  BuildingType = "townhall" // 主城（keep）
	BuildingBarracks  BuildingType = "barracks"
)

// DefaultBuildingLevel 是缺少建筑记录时使用的等级。
const DefaultBuildingLevel = 1

type Building struct {
	CityID CityID
	Type   BuildingType
	Level  int
}

// Levels 是一座城的建筑等级表。
type Levels map[BuildingType]int

// Level 返回建筑等级，没有记录时按 1 级处理。
func (l Levels) Level(t BuildingType) int {
	if v, ok := l[t]; ok {
		return v
	}
	return DefaultBuildingLevel
}

func (l Levels) Has(t BuildingType) bool {
	_, ok := l[t]
	return ok
}
