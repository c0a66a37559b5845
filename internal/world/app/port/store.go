package port

import (
	"context"
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

// Store 提供事务。fn 返回错误时整个事务回滚，任何修改都不可见。
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// RaidFilter 按攻方城主查询行军。Status 为空表示不限，Limit 由调用方保证为正。
type RaidFilter struct {
	OwnerID domain.UserID
	Status  domain.RaidStatus
	Limit   int
}

// Tx 是一次事务内可用的读写操作。
//
// 约定：
// - Get* 在记录不存在时返回 domain.Err*NotFound
// - Due* 结果按时间升序、同一时间按 ID 升序
// - Next*At 查询 (after, until] 区间内最早的时间
// - ListRaids 按 enroute, returning, resolved 分组，组内 ID 倒序
type Tx interface {
	// LockWorld 获取世界级互斥锁，直到事务结束。
	LockWorld(ctx context.Context) error

	ListCities(ctx context.Context) ([]*domain.City, error)
	GetCity(ctx context.Context, id domain.CityID) (*domain.City, error)
	SaveCity(ctx context.Context, c *domain.City) error

	BuildingLevels(ctx context.Context, cityID domain.CityID) (domain.Levels, error)
	// SetBuildingLevel 建筑记录不存在时返回 domain.ErrBuildingNotFound，不会新建。
	SetBuildingLevel(ctx context.Context, cityID domain.CityID, t domain.BuildingType, level int) error

	DueUpgrades(ctx context.Context, at time.Time) ([]*domain.Upgrade, error)
	DeleteUpgrade(ctx context.Context, id domain.UpgradeID) error
	NextUpgradeAt(ctx context.Context, after, until time.Time) (time.Time, bool, error)

	DueArrivals(ctx context.Context, at time.Time) ([]*domain.Raid, error)
	DueReturns(ctx context.Context, at time.Time) ([]*domain.Raid, error)
	NextArrivalAt(ctx context.Context, after, until time.Time) (time.Time, bool, error)
	NextReturnAt(ctx context.Context, after, until time.Time) (time.Time, bool, error)

	GetRaid(ctx context.Context, id domain.RaidID) (*domain.Raid, error)
	InsertRaid(ctx context.Context, r *domain.Raid) error
	SaveRaid(ctx context.Context, r *domain.Raid) error
	ActiveRaidCount(ctx context.Context, attacker domain.CityID) (int, error)
	ListRaids(ctx context.Context, f RaidFilter) ([]*domain.Raid, error)

	RaidTroops(ctx context.Context, raidID domain.RaidID) ([]*domain.RaidTroop, error)
	InsertRaidTroops(ctx context.Context, lines []*domain.RaidTroop) error
	SaveRaidTroop(ctx context.Context, rt *domain.RaidTroop) error

	HasDefenderSnapshot(ctx context.Context, raidID domain.RaidID) (bool, error)
	InsertDefenderSnapshot(ctx context.Context, rows []*domain.RaidDefenderTroop) error
	DefenderSnapshot(ctx context.Context, raidID domain.RaidID) ([]*domain.RaidDefenderTroop, error)

	CityTroops(ctx context.Context, cityID domain.CityID) ([]*domain.CityTroop, error)
	// SaveCityTroop 按 (city_id, troop_type_id) upsert。
	SaveCityTroop(ctx context.Context, ct *domain.CityTroop) error

	TroopTypes(ctx context.Context, ids []domain.TroopTypeID) (map[domain.TroopTypeID]*domain.TroopType, error)
	TroopTypesByCode(ctx context.Context, codes []string) (map[string]*domain.TroopType, error)
}
