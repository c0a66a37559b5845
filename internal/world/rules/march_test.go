package rules

import "testing"

func TestBarracksCarryCap(t *testing.T) {
	want := map[int]int64{1: 500, 2: 700, 3: 1100, 4: 1550, 5: 2100, 0: 500}
	for lvl, w := range want {
		if got := BarracksCarryCap(lvl); got != w {
			t.Fatalf("L=%d 期望 %d, got=%d", lvl, w, got)
		}
	}
}

func TestMaxSimultaneousRaids(t *testing.T) {
	want := map[int]int{1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 6: 3, 7: 4, 30: 4}
	for keep, w := range want {
		if got := MaxSimultaneousRaids(keep); got != w {
			t.Fatalf("keep=%d 期望 %d, got=%d", keep, w, got)
		}
	}
}

func TestTravelSeconds(t *testing.T) {
	d := DistanceTiles(0, 0, 3, 4)
	if d != 5 {
		t.Fatalf("期望距离 5, got=%v", d)
	}
	if got := TravelSeconds(d, SecondsPerTile); got != 25 {
		t.Fatalf("期望 25 秒, got=%d", got)
	}
	if got := TravelSeconds(0, SecondsPerTile); got != 1 {
		t.Fatalf("期望同点最少 1 秒, got=%d", got)
	}
}

func TestScaleBySlowest(t *testing.T) {
	if got := ScaleBySlowest(25, 100); got != 25 {
		t.Fatalf("期望速度 100 不缩放, got=%d", got)
	}
	if got := ScaleBySlowest(25, 200); got != 13 {
		t.Fatalf("期望 ceil(12.5)=13, got=%d", got)
	}
	if got := ScaleBySlowest(25, 50); got != 50 {
		t.Fatalf("期望速度 50 时间翻倍, got=%d", got)
	}
	if got := ScaleBySlowest(25, 0); got != 25 {
		t.Fatalf("期望速度缺省按 100, got=%d", got)
	}
}

func TestApplySpeedPct(t *testing.T) {
	cases := []struct {
		base int64
		pct  int
		want int64
	}{
		{base: 100, pct: 0, want: 100},
		{base: 100, pct: 25, want: 75},
		{base: 10, pct: 33, want: 7}, // ceil(6.7)
		{base: 100, pct: 100, want: 5},
		{base: 100, pct: -10, want: 100},
		{base: 1, pct: 99, want: 1},
	}
	for _, tc := range cases {
		if got := ApplySpeedPct(tc.base, tc.pct); got != tc.want {
			t.Fatalf("base=%d pct=%d 期望 %d, got=%d", tc.base, tc.pct, tc.want, got)
		}
	}
}

func TestRecallReturnSeconds(t *testing.T) {
	if got := RecallReturnSeconds(101, 0); got != 51 {
		t.Fatalf("期望 ceil(101*0.5)=51, got=%d", got)
	}
	if got := RecallReturnSeconds(0, 0); got != 1 {
		t.Fatalf("期望最少 1 秒, got=%d", got)
	}
	if got := RecallReturnSeconds(100, 50); got != 25 {
		t.Fatalf("期望 50 再加成 50%% 得 25, got=%d", got)
	}
}
