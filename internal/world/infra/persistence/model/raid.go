package model

import (
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

type Raid struct {
	ID              int64        `gorm:"column:id;type:bigint;primaryKey;autoIncrement;" json:"id"`
	AttackerCityID  int64        `gorm:"column:attacker_city_id;type:bigint;not null;index:idx_raids_attacker_status,priority:1;" json:"attacker_city_id"`
	TargetCityID    int64        `gorm:"column:target_city_id;type:bigint;not null;" json:"target_city_id"`
	Status          string       `gorm:"column:status;type:varchar(16);comment:enroute/returning/resolved;not null;index:idx_raids_attacker_status,priority:2;index:idx_raids_status_arrives,priority:1;index:idx_raids_status_returns,priority:1;" json:"status"`
	CarryCapacity   int64        `gorm:"column:carry_capacity;type:bigint;not null;default:0;" json:"carry_capacity"`
	Stolen          ResourceCols `gorm:"embedded;embeddedPrefix:stolen_;" json:"stolen"`
	CreatedAt       time.Time    `gorm:"column:created_at;type:datetime(6);not null;" json:"created_at"`
	OutboundSeconds int64        `gorm:"column:outbound_seconds;type:bigint;not null;default:0;" json:"outbound_seconds"`
	ReturnSeconds   int64        `gorm:"column:return_seconds;type:bigint;not null;default:0;" json:"return_seconds"`
	ArrivesAt       *time.Time   `gorm:"column:arrives_at;type:datetime(6);index:idx_raids_status_arrives,priority:2;" json:"arrives_at"`
	ReturnsAt       *time.Time   `gorm:"column:returns_at;type:datetime(6);index:idx_raids_status_returns,priority:2;" json:"returns_at"`
	ResolvedAt      *time.Time   `gorm:"column:resolved_at;type:datetime(6);" json:"resolved_at"`
	CombatResolved  bool         `gorm:"column:combat_resolved;type:tinyint(1);comment:战斗已结算;not null;default:0;" json:"combat_resolved"`
}

func (m *Raid) TableName() string {
	return "raids"
}

func RaidFromDomain(r *domain.Raid) Raid {
	return Raid{
		ID:              int64(r.ID),
		AttackerCityID:  int64(r.AttackerCityID),
		TargetCityID:    int64(r.TargetCityID),
		Status:          string(r.Status),
		CarryCapacity:   r.CarryCapacity,
		Stolen:          resourceCols(r.Stolen),
		CreatedAt:       r.CreatedAt.UTC(),
		OutboundSeconds: r.OutboundSeconds,
		ReturnSeconds:   r.ReturnSeconds,
		ArrivesAt:       nullTime(r.ArrivesAt),
		ReturnsAt:       cloneTime(r.ReturnsAt),
		ResolvedAt:      cloneTime(r.ResolvedAt),
		CombatResolved:  r.CombatResolved,
	}
}

func (m *Raid) ToDomain() *domain.Raid {
	return &domain.Raid{
		ID:              domain.RaidID(m.ID),
		AttackerCityID:  domain.CityID(m.AttackerCityID),
		TargetCityID:    domain.CityID(m.TargetCityID),
		Status:          domain.RaidStatus(m.Status),
		CarryCapacity:   m.CarryCapacity,
		Stolen:          m.Stolen.toDomain(),
		CreatedAt:       m.CreatedAt.UTC(),
		OutboundSeconds: m.OutboundSeconds,
		ReturnSeconds:   m.ReturnSeconds,
		ArrivesAt:       fromNull(m.ArrivesAt),
		ReturnsAt:       cloneTime(m.ReturnsAt),
		ResolvedAt:      cloneTime(m.ResolvedAt),
		CombatResolved:  m.CombatResolved,
	}
}

// RaidTroop 出征兵线，(raid_id, troop_type_id) 唯一。
type RaidTroop struct {
	RaidID        int64 `gorm:"column:raid_id;type:bigint;primaryKey;" json:"raid_id"`
	TroopTypeID   int64 `gorm:"column:troop_type_id;type:bigint;primaryKey;" json:"troop_type_id"`
	CountSent     int64 `gorm:"column:count_sent;type:bigint;not null;default:0;" json:"count_sent"`
	CountLost     int64 `gorm:"column:count_lost;type:bigint;not null;default:0;" json:"count_lost"`
	CountReturned int64 `gorm:"column:count_returned;type:bigint;not null;default:0;" json:"count_returned"`
	Returned      bool  `gorm:"column:returned;type:tinyint(1);comment:已回营;not null;default:0;" json:"returned"`
}

func (m *RaidTroop) TableName() string {
	return "raid_troops"
}

func RaidTroopFromDomain(rt *domain.RaidTroop) RaidTroop {
	return RaidTroop{
		RaidID:        int64(rt.RaidID),
		TroopTypeID:   int64(rt.TroopTypeID),
		CountSent:     rt.CountSent,
		CountLost:     rt.CountLost,
		CountReturned: rt.CountReturned,
		Returned:      rt.Returned,
	}
}

func (m *RaidTroop) ToDomain() *domain.RaidTroop {
	return &domain.RaidTroop{
		RaidID:        domain.RaidID(m.RaidID),
		TroopTypeID:   domain.TroopTypeID(m.TroopTypeID),
		CountSent:     m.CountSent,
		CountLost:     m.CountLost,
		CountReturned: m.CountReturned,
		Returned:      m.Returned,
	}
}

// RaidDefenderTroop 抵达瞬间的守军快照。
type RaidDefenderTroop struct {
	RaidID      int64 `gorm:"column:raid_id;type:bigint;primaryKey;" json:"raid_id"`
	TroopTypeID int64 `gorm:"column:troop_type_id;type:bigint;primaryKey;" json:"troop_type_id"`
	CountStart  int64 `gorm:"column:count_start;type:bigint;not null;default:0;" json:"count_start"`
	CountLost   int64 `gorm:"column:count_lost;type:bigint;not null;default:0;" json:"count_lost"`
}

func (m *RaidDefenderTroop) TableName() string {
	return "raid_defender_troops"
}

func RaidDefenderTroopFromDomain(d *domain.RaidDefenderTroop) RaidDefenderTroop {
	return RaidDefenderTroop{
		RaidID:      int64(d.RaidID),
		TroopTypeID: int64(d.TroopTypeID),
		CountStart:  d.CountStart,
		CountLost:   d.CountLost,
	}
}

func (m *RaidDefenderTroop) ToDomain() *domain.RaidDefenderTroop {
	return &domain.RaidDefenderTroop{
		RaidID:      domain.RaidID(m.RaidID),
		TroopTypeID: domain.TroopTypeID(m.TroopTypeID),
		CountStart:  m.CountStart,
		CountLost:   m.CountLost,
	}
}

// All 供 AutoMigrate 使用。
func All() []any {
	return []any{
		&City{}, &Building{}, &Upgrade{}, &TroopType{}, &CityTroop{},
		&Raid{}, &RaidTroop{}, &RaidDefenderTroop{}, &WorldLock{},
	}
}
