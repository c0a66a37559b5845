package app

import (
	"testing"
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

func newCity(stock domain.Resources) *domain.City {
	c := &domain.City{ID: 1, Stock: stock, LastTickAt: t0}
	RefreshEconomy(c, domain.Levels{})
	return c
}

func TestAdvanceCity_十分钟按1级产出(t *testing.T) {
	c := newCity(domain.Resources{})
	if m := AdvanceCity(c, domain.Levels{}, at(10*time.Minute)); m != 10 {
		t.Fatalf("期望结算 10 分钟, got=%d", m)
	}
	want := domain.Resources{Food: 300, Wood: 300, Stone: 200, Iron: 100}
	if c.Stock != want {
		t.Fatalf("期望库存=%+v, got=%+v", want, c.Stock)
	}
	if !c.LastTickAt.Equal(at(10 * time.Minute)) {
		t.Fatalf("期望 last_tick_at 前进 10 分钟, got=%v", c.LastTickAt)
	}
}

func TestAdvanceCity_只按整分钟前进且幂等(t *testing.T) {
	c := newCity(domain.Resources{})
	if m := AdvanceCity(c, domain.Levels{}, at(59*time.Second)); m != 0 || !c.Stock.IsZero() {
		t.Fatalf("期望不足一分钟不产出, m=%d stock=%+v", m, c.Stock)
	}
	if m := AdvanceCity(c, domain.Levels{}, at(2*time.Minute+30*time.Second)); m != 2 {
		t.Fatalf("期望结算 2 分钟, got=%d", m)
	}
	if !c.LastTickAt.Equal(at(2 * time.Minute)) {
		t.Fatalf("期望零头秒数保留, last_tick_at=%v", c.LastTickAt)
	}
	before := c.Stock
	if m := AdvanceCity(c, domain.Levels{}, at(2*time.Minute+30*time.Second)); m != 0 || c.Stock != before {
		t.Fatalf("期望同一时刻重复推进无变化, m=%d", m)
	}
}

func TestAdvanceCity_按上限截断(t *testing.T) {
	c := newCity(domain.Resources{Food: 6990})
	AdvanceCity(c, domain.Levels{}, at(10*time.Minute))
	if c.Stock.Food != c.Cap.Food || c.Cap.Food != 7000 {
		t.Fatalf("期望粮食截断到 7000, got=%d cap=%d", c.Stock.Food, c.Cap.Food)
	}
}

func TestAdvanceCity_零值时间只锚定(t *testing.T) {
	c := newCity(domain.Resources{})
	c.LastTickAt = time.Time{}
	if m := AdvanceCity(c, domain.Levels{}, at(time.Hour)); m != 0 {
		t.Fatalf("期望首次推进结算 0 分钟, got=%d", m)
	}
	if !c.LastTickAt.Equal(at(time.Hour)) || !c.Stock.IsZero() {
		t.Fatalf("期望锚定到目标时刻且不产出, last=%v stock=%+v", c.LastTickAt, c.Stock)
	}
}

func TestAdvanceCity_使用当前建筑等级(t *testing.T) {
	c := newCity(domain.Resources{})
	levels := domain.Levels{domain.BuildingFarm: 3}
	AdvanceCity(c, levels, at(time.Minute))
	if c.Rate.Food != 54 || c.Stock.Food != 54 {
		t.Fatalf("期望 3 级农场每分钟 54, rate=%d stock=%d", c.Rate.Food, c.Stock.Food)
	}
}
