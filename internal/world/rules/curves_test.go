package rules

import (
	"testing"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

func TestRates_缺省建筑按1级(t *testing.T) {
	got := Rates(domain.Levels{})
	want := domain.Resources{Food: 30, Wood: 30, Stone: 20, Iron: 10}
	if got != want {
		t.Fatalf("期望 %+v, got=%+v", want, got)
	}
}

func TestRates_二次曲线(t *testing.T) {
	levels := domain.Levels{
		domain.BuildingFarm:     3, // 30 + 8*2 + 2*4
		domain.BuildingSawmill:  1,
		domain.BuildingQuarry:   4, // 20 + 3*3 + 1*9
		domain.BuildingIronMine: 2, // 10 + 2 + 1
	}
	got := Rates(levels)
	want := domain.Resources{Food: 54, Wood: 30, Stone: 38, Iron: 13}
	if got != want {
		t.Fatalf("期望 %+v, got=%+v", want, got)
	}
}

func TestCurve_等级为0不低于base(t *testing.T) {
	if got := FoodCurve.At(0); got != 30 {
		t.Fatalf("期望 0 级按 x=0 计算得 30, got=%d", got)
	}
	if got := (Curve{Base: -5}).At(1); got != 0 {
		t.Fatalf("期望产出下限为 0, got=%d", got)
	}
}

func TestStorageFor_仓库等级(t *testing.T) {
	cases := []struct {
		wh            int
		wantMax       domain.Resources
		wantProtected domain.Resources
	}{
		{
			wh:            1,
			wantMax:       domain.Resources{Food: 7000, Wood: 7000, Stone: 4200, Iron: 2800},
			wantProtected: domain.Resources{Food: 1750, Wood: 1750, Stone: 1050, Iron: 700},
		},
		{
			wh:            2,
			wantMax:       domain.Resources{Food: 9000, Wood: 9000, Stone: 5400, Iron: 3600},
			wantProtected: domain.Resources{Food: 2430, Wood: 2430, Stone: 1458, Iron: 972},
		},
		{
			wh:            20, // 比例封顶 40%
			wantMax:       domain.Resources{Food: 45000, Wood: 45000, Stone: 27000, Iron: 18000},
			wantProtected: domain.Resources{Food: 18000, Wood: 18000, Stone: 10800, Iron: 7200},
		},
	}
	for _, tc := range cases {
		s := StorageFor(domain.Levels{domain.BuildingWarehouse: tc.wh})
		if s.Max != tc.wantMax {
			t.Fatalf("wh=%d 期望 max=%+v, got=%+v", tc.wh, tc.wantMax, s.Max)
		}
		if s.Protected != tc.wantProtected {
			t.Fatalf("wh=%d 期望 protected=%+v, got=%+v", tc.wh, tc.wantProtected, s.Protected)
		}
	}
}

func TestStorageFor_幂等且保护量不超过上限(t *testing.T) {
	for wh := 0; wh <= 30; wh++ {
		levels := domain.Levels{domain.BuildingWarehouse: wh}
		a, b := StorageFor(levels), StorageFor(levels)
		if a != b {
			t.Fatalf("wh=%d 期望两次计算一致", wh)
		}
		for _, k := range domain.ResourceKinds {
			if a.Protected.Get(k) > a.Max.Get(k) {
				t.Fatalf("wh=%d 期望 protected<=max, %s: %d > %d", wh, k, a.Protected.Get(k), a.Max.Get(k))
			}
		}
	}
}

func TestProtectedPercent_区间(t *testing.T) {
	if got := ProtectedPercent(0); got != 25 {
		t.Fatalf("期望下限 25, got=%d", got)
	}
	if got := ProtectedPercent(5); got != 33 {
		t.Fatalf("期望 33, got=%d", got)
	}
	if got := ProtectedPercent(99); got != 40 {
		t.Fatalf("期望上限 40, got=%d", got)
	}
}
