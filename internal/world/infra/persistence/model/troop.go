package model

import (
	"github.com/mgmcelwee/evony/internal/world/domain"
)

type TroopType struct {
	ID      int64  `gorm:"column:id;type:bigint;primaryKey;autoIncrement;" json:"id"`
	Code    string `gorm:"column:code;type:varchar(32);comment:兵种编码;not null;uniqueIndex:uk_troop_types_code;" json:"code"`
	Name    string `gorm:"column:name;type:varchar(64);not null;default:'';" json:"name"`
	Tier    int    `gorm:"column:tier;type:int;not null;default:1;" json:"tier"`
	Attack  int64  `gorm:"column:attack;type:bigint;not null;default:0;" json:"attack"`
	Defense int64  `gorm:"column:defense;type:bigint;not null;default:0;" json:"defense"`
	HP      int64  `gorm:"column:hp;type:bigint;not null;default:0;" json:"hp"`
	Speed   int64  `gorm:"column:speed;type:bigint;comment:100为基准;not null;default:100;" json:"speed"`
	Carry   int64  `gorm:"column:carry;type:bigint;comment:单兵负重;not null;default:0;" json:"carry"`
}

func (m *TroopType) TableName() string {
	return "troop_types"
}

func (m *TroopType) ToDomain() *domain.TroopType {
	return &domain.TroopType{
		ID:      domain.TroopTypeID(m.ID),
		Code:    m.Code,
		Name:    m.Name,
		Tier:    m.Tier,
		Attack:  m.Attack,
		Defense: m.Defense,
		HP:      m.HP,
		Speed:   m.Speed,
		Carry:   m.Carry,
	}
}

// CityTroop 城内驻军，(city_id, troop_type_id) 唯一。
type CityTroop struct {
	CityID      int64 `gorm:"column:city_id;type:bigint;primaryKey;" json:"city_id"`
	TroopTypeID int64 `gorm:"column:troop_type_id;type:bigint;primaryKey;" json:"troop_type_id"`
	Count       int64 `gorm:"column:count;type:bigint;not null;default:0;" json:"count"`
}

func (m *CityTroop) TableName() string {
	return "city_troops"
}

func CityTroopFromDomain(ct *domain.CityTroop) CityTroop {
	return CityTroop{CityID: int64(ct.CityID), TroopTypeID: int64(ct.TroopTypeID), Count: ct.Count}
}

func (m *CityTroop) ToDomain() *domain.CityTroop {
	return &domain.CityTroop{
		CityID:      domain.CityID(m.CityID),
		TroopTypeID: domain.TroopTypeID(m.TroopTypeID),
		Count:       m.Count,
	}
}
