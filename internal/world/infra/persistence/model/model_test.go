package model

import (
	"sync"
	"testing"
	"time"

	"gorm.io/gorm/schema"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

func TestCity_零值时间存为NULL(t *testing.T) {
	m := CityFromDomain(&domain.City{ID: 1, Stock: domain.Resources{Food: 5}})
	if m.LastTickAt != nil {
		t.Fatalf("期望零值 last_tick_at 存 NULL")
	}
	if got := m.ToDomain(); !got.LastTickAt.IsZero() || got.Stock.Food != 5 {
		t.Fatalf("期望读回零值, got=%+v", got)
	}
}

func TestRaid_时间统一为UTC(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	arr := time.Date(2026, 3, 1, 20, 0, 0, 0, loc)
	m := RaidFromDomain(&domain.Raid{ID: 3, Status: domain.RaidEnroute, ArrivesAt: arr})
	if m.ArrivesAt == nil || m.ArrivesAt.Location() != time.UTC || !m.ArrivesAt.Equal(arr) {
		t.Fatalf("期望转成 UTC 且时刻不变, got=%v", m.ArrivesAt)
	}
	if m.ReturnsAt != nil {
		t.Fatalf("期望 returns_at 保持 NULL")
	}
}

func TestUpgrade_每城唯一索引(t *testing.T) {
	sch, err := schema.Parse(&Upgrade{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("期望可解析 schema, err=%v", err)
	}
	idx := sch.LookIndex("uk_building_upgrades_city")
	if idx == nil {
		t.Fatalf("期望存在 uk_building_upgrades_city 索引")
	}
	if idx.Class != "UNIQUE" || len(idx.Fields) != 1 || idx.Fields[0].DBName != "city_id" {
		t.Fatalf("期望 city_id 上的唯一索引, got class=%s fields=%d", idx.Class, len(idx.Fields))
	}
}
