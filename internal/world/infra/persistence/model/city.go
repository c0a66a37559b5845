package model

import (
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

type City struct {
	ID             int64        `gorm:"column:id;type:bigint;comment:城池id;primaryKey;autoIncrement;" json:"id"`
	OwnerID        int64        `gorm:"column:owner_id;type:bigint;comment:玩家id;not null;index:idx_cities_owner;" json:"owner_id"`
	Name           string       `gorm:"column:name;type:varchar(100);comment:城池名称;not null;default:'';" json:"name"`
	X              int          `gorm:"column:x;type:int;comment:x坐标;not null;" json:"x"`
	Y              int          `gorm:"column:y;type:int;comment:y坐标;not null;" json:"y"`
	KeepLevel      int          `gorm:"column:keep_level;type:int;comment:主城等级;not null;default:1;" json:"keep_level"`
	Stock          ResourceCols `gorm:"embedded;embeddedPrefix:stock_;" json:"stock"`
	Cap            ResourceCols `gorm:"embedded;embeddedPrefix:max_;" json:"cap"`
	Protected      ResourceCols `gorm:"embedded;embeddedPrefix:protected_;" json:"protected"`
	Rate           ResourceCols `gorm:"embedded;embeddedPrefix:rate_;" json:"rate"`
	MarchSpeedPct  int          `gorm:"column:march_speed_pct;type:int;comment:出征加速百分比;not null;default:0;" json:"march_speed_pct"`
	ReturnSpeedPct int          `gorm:"column:return_speed_pct;type:int;comment:回城加速百分比;not null;default:0;" json:"return_speed_pct"`
	LastTickAt     *time.Time   `gorm:"column:last_tick_at;type:datetime(6);comment:产出结算时间;" json:"last_tick_at"`
	CreatedAt      time.Time    `gorm:"column:created_at;type:datetime(6);not null;" json:"created_at"`
}

func (m *City) TableName() string {
	return "cities"
}

func CityFromDomain(c *domain.City) City {
	return City{
		ID:             int64(c.ID),
		OwnerID:        int64(c.OwnerID),
		Name:           c.Name,
		X:              c.X,
		Y:              c.Y,
		KeepLevel:      c.KeepLevel,
		Stock:          resourceCols(c.Stock),
		Cap:            resourceCols(c.Cap),
		Protected:      resourceCols(c.Protected),
		Rate:           resourceCols(c.Rate),
		MarchSpeedPct:  c.MarchSpeedPct,
		ReturnSpeedPct: c.ReturnSpeedPct,
		LastTickAt:     nullTime(c.LastTickAt),
		CreatedAt:      c.CreatedAt.UTC(),
	}
}

func (m *City) ToDomain() *domain.City {
	return &domain.City{
		ID:             domain.CityID(m.ID),
		OwnerID:        domain.UserID(m.OwnerID),
		Name:           m.Name,
		X:              m.X,
		Y:              m.Y,
		KeepLevel:      m.KeepLevel,
		Stock:          m.Stock.toDomain(),
		Cap:            m.Cap.toDomain(),
		Protected:      m.Protected.toDomain(),
		Rate:           m.Rate.toDomain(),
		MarchSpeedPct:  m.MarchSpeedPct,
		ReturnSpeedPct: m.ReturnSpeedPct,
		LastTickAt:     fromNull(m.LastTickAt),
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

// Building 建筑等级，(city_id, type) 唯一。
type Building struct {
	CityID int64  `gorm:"column:city_id;type:bigint;primaryKey;" json:"city_id"`
	Type   string `gorm:"column:type;type:varchar(32);comment:建筑类型;primaryKey;" json:"type"`
	Level  int    `gorm:"column:level;type:int;comment:等级;not null;default:1;" json:"level"`
}

func (m *Building) TableName() string {
	return "buildings"
}

// Upgrade 进行中的建筑升级，完成后删除。city_id 唯一，每座城同时只有一条。
type Upgrade struct {
	ID           int64     `gorm:"column:id;type:bigint;primaryKey;autoIncrement;" json:"id"`
	CityID       int64     `gorm:"column:city_id;type:bigint;not null;uniqueIndex:uk_building_upgrades_city;" json:"city_id"`
	BuildingType string    `gorm:"column:building_type;type:varchar(32);not null;" json:"building_type"`
	FromLevel    int       `gorm:"column:from_level;type:int;not null;" json:"from_level"`
	ToLevel      int       `gorm:"column:to_level;type:int;not null;" json:"to_level"`
	StartedAt    time.Time `gorm:"column:started_at;type:datetime(6);not null;" json:"started_at"`
	CompletesAt  time.Time `gorm:"column:completes_at;type:datetime(6);comment:完成时间;not null;index:idx_upgrades_completes_at;" json:"completes_at"`
}

func (m *Upgrade) TableName() string {
	return "building_upgrades"
}

func (m *Upgrade) ToDomain() *domain.Upgrade {
	return &domain.Upgrade{
		ID:           domain.UpgradeID(m.ID),
		CityID:       domain.CityID(m.CityID),
		BuildingType: domain.BuildingType(m.BuildingType),
		FromLevel:    m.FromLevel,
		ToLevel:      m.ToLevel,
		StartedAt:    m.StartedAt.UTC(),
		CompletesAt:  m.CompletesAt.UTC(),
	}
}

// WorldLock 单行表，tick 开始时 SELECT ... FOR UPDATE 实现跨进程互斥。
type WorldLock struct {
	ID        int64     `gorm:"column:id;type:bigint;primaryKey;" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(32);not null;default:'world';" json:"name"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(6);" json:"updated_at"`
}

// WorldLockID 唯一的锁行。
const WorldLockID = 1

func (m *WorldLock) TableName() string {
	return "world_locks"
}
