package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

type raidWorld struct {
	*fixture
	a, b domain.CityID
}

// newRaidWorld 玩家 1 的 A(0,0) 与玩家 2 的 B(3,4)，距离 5 格。
func newRaidWorld(t *testing.T) *raidWorld {
	f := newFixture(t)
	w := &raidWorld{fixture: f}
	w.a = f.addCity(1, 0, 0, domain.Resources{})
	w.b = f.addCity(2, 3, 4, domain.Resources{})
	f.store.SetGarrison(w.a, f.inf, 100)
	f.store.SetGarrison(w.a, f.cav, 40)
	return w
}

func (w *raidWorld) launch(t *testing.T, now time.Time, troops ...TroopOrder) LaunchResult {
	t.Helper()
	res, err := w.svc.LaunchRaid(context.Background(), now, LaunchRaidCmd{
		UserID: 1, AttackerCityID: w.a, TargetCityID: w.b, Troops: troops,
	})
	if err != nil {
		t.Fatalf("期望出征成功, err=%v", err)
	}
	return res
}

func TestLaunchRaid_创建行军并扣兵(t *testing.T) {
	w := newRaidWorld(t)
	res := w.launch(t, t0, TroopOrder{Code: "t1_inf", Count: 10}, TroopOrder{Code: "t1_cav", Count: 5})

	if res.Plan.BaseSeconds != 25 || res.Plan.OutboundSeconds != 25 || res.Plan.SlowestSpeed != 100 {
		t.Fatalf("期望 5 格按最慢兵种 25 秒, got=%+v", res.Plan)
	}
	if res.Plan.CarryCapacity != 200 || res.Plan.BarracksCap != 500 {
		t.Fatalf("期望负重取部队负重 200, got=%+v", res.Plan)
	}
	r := w.raid(t, res.Raid.ID)
	if r.Status != domain.RaidEnroute || r.ReturnsAt != nil || !r.ArrivesAt.Equal(at(25*time.Second)) {
		t.Fatalf("期望 enroute 且 returns_at 为空, got=%+v", r)
	}
	if w.store.Garrison(w.a, w.inf) != 90 || w.store.Garrison(w.a, w.cav) != 35 {
		t.Fatalf("期望出征部队从驻军扣除")
	}
	if rt, ok := w.store.RaidTroop(r.ID, w.cav); !ok || rt.CountSent != 5 {
		t.Fatalf("期望写入兵线, got=%+v", rt)
	}
}

func TestLaunchRaid_合并同兵种且负重受兵营限制(t *testing.T) {
	w := newRaidWorld(t)
	res := w.launch(t, t0, TroopOrder{Code: "t1_cav", Count: 20}, TroopOrder{Code: "t1_cav", Count: 20})
	if len(res.Troops) != 1 || res.Troops[0].CountSent != 40 {
		t.Fatalf("期望合并成一条兵线, got=%+v", res.Troops)
	}
	// 40*20=800 > 兵营 1 级 500
	if res.Raid.CarryCapacity != 500 {
		t.Fatalf("期望负重被兵营上限截断, got=%d", res.Raid.CarryCapacity)
	}
	// 骑兵速度 150：ceil(25*100/150)=17
	if res.Raid.OutboundSeconds != 17 {
		t.Fatalf("期望骑兵行军 17 秒, got=%d", res.Raid.OutboundSeconds)
	}
}

func TestLaunchRaid_校验(t *testing.T) {
	w := newRaidWorld(t)
	own := w.addCity(1, 9, 9, domain.Resources{})
	inf := []TroopOrder{{Code: "t1_inf", Count: 1}}

	cases := []struct {
		name string
		cmd  LaunchRaidCmd
		want error
	}{
		{"同城", LaunchRaidCmd{UserID: 1, AttackerCityID: w.a, TargetCityID: w.a, Troops: inf}, domain.ErrInvalidRaid},
		{"不是自己的城", LaunchRaidCmd{UserID: 2, AttackerCityID: w.a, TargetCityID: w.b, Troops: inf}, domain.ErrCityNotFound},
		{"目标不存在", LaunchRaidCmd{UserID: 1, AttackerCityID: w.a, TargetCityID: 999, Troops: inf}, domain.ErrCityNotFound},
		{"打自己", LaunchRaidCmd{UserID: 1, AttackerCityID: w.a, TargetCityID: own, Troops: inf}, domain.ErrInvalidRaid},
		{"没带兵", LaunchRaidCmd{UserID: 1, AttackerCityID: w.a, TargetCityID: w.b}, domain.ErrInvalidRaid},
		{"数量非法", LaunchRaidCmd{UserID: 1, AttackerCityID: w.a, TargetCityID: w.b, Troops: []TroopOrder{{Code: "t1_inf", Count: 0}}}, domain.ErrInvalidRaid},
		{"未知兵种", LaunchRaidCmd{UserID: 1, AttackerCityID: w.a, TargetCityID: w.b, Troops: []TroopOrder{{Code: "dragon", Count: 1}}}, domain.ErrTroopTypeNotFound},
		{"兵力不足", LaunchRaidCmd{UserID: 1, AttackerCityID: w.a, TargetCityID: w.b, Troops: []TroopOrder{{Code: "t1_inf", Count: 101}}}, domain.ErrNotEnoughTroops},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := w.svc.LaunchRaid(context.Background(), t0, tc.cmd)
			if !errors.Is(err, tc.want) {
				t.Fatalf("期望 %v, got=%v", tc.want, err)
			}
		})
	}
	if w.store.Garrison(w.a, w.inf) != 100 {
		t.Fatalf("期望失败的出征不扣兵")
	}
}

func TestLaunchRaid_同时出征上限(t *testing.T) {
	w := newRaidWorld(t)
	w.launch(t, t0, TroopOrder{Code: "t1_inf", Count: 1})
	_, err := w.svc.LaunchRaid(context.Background(), t0, LaunchRaidCmd{
		UserID: 1, AttackerCityID: w.a, TargetCityID: w.b, Troops: []TroopOrder{{Code: "t1_inf", Count: 1}},
	})
	if !errors.Is(err, domain.ErrRaidLimit) {
		t.Fatalf("期望 1 级主城只能同时出征 1 支, got=%v", err)
	}
}

func TestRecallRaid_未抵达原路返回(t *testing.T) {
	w := newRaidWorld(t)
	res := w.launch(t, t0, TroopOrder{Code: "t1_inf", Count: 10})

	r, err := w.svc.RecallRaid(context.Background(), at(10*time.Second), RecallRaidCmd{UserID: 1, RaidID: res.Raid.ID})
	if err != nil {
		t.Fatalf("期望召回成功, err=%v", err)
	}
	if r.Status != domain.RaidReturning || r.OutboundSeconds != 10 || r.ReturnSeconds != 10 || !r.ReturnsAt.Equal(at(20*time.Second)) {
		t.Fatalf("期望按已走时间返回, got=%+v", r)
	}
	if !r.Stolen.IsZero() || r.CombatResolved {
		t.Fatalf("期望不掠夺不战斗, got=%+v", r)
	}

	w.tick(t, at(30*time.Second))
	if w.raid(t, r.ID).Status != domain.RaidResolved || w.store.Garrison(w.a, w.inf) != 100 {
		t.Fatalf("期望回城后部队归还")
	}
	inbox := w.mailer.Inbox(1)
	if len(inbox) != 1 {
		t.Fatalf("期望攻方收到战报, got=%d", len(inbox))
	}
	if rep := inbox[0].Payload.(RaidReport); rep.Defender.Source != DefenderSourceNone {
		t.Fatalf("期望召回的行军没有守方数据, got=%s", rep.Defender.Source)
	}
}

func TestRecallRaid_已过抵达时刻立即结算(t *testing.T) {
	w := newRaidWorld(t)
	res := w.launch(t, t0, TroopOrder{Code: "t1_inf", Count: 10})

	r, err := w.svc.RecallRaid(context.Background(), at(30*time.Second), RecallRaidCmd{UserID: 1, RaidID: res.Raid.ID})
	if err != nil {
		t.Fatalf("期望召回成功, err=%v", err)
	}
	if r.Status != domain.RaidReturning || !r.CombatResolved {
		t.Fatalf("期望先完成抵达结算, got=%+v", r)
	}
	if !r.ReturnsAt.Equal(at(50 * time.Second)) {
		t.Fatalf("期望回程从抵达时刻起算, got=%v", r.ReturnsAt)
	}
}

func TestRecallRaid_回程中剩余时间减半(t *testing.T) {
	w := newRaidWorld(t)
	returnsAt := at(100 * time.Second)
	id := w.store.AddRaid(domain.Raid{
		AttackerCityID: w.a, TargetCityID: w.b, Status: domain.RaidReturning,
		CreatedAt: t0, OutboundSeconds: 100, ReturnSeconds: 100, ArrivesAt: t0, ReturnsAt: &returnsAt,
	})

	r, err := w.svc.RecallRaid(context.Background(), t0, RecallRaidCmd{UserID: 1, RaidID: id})
	if err != nil {
		t.Fatalf("期望召回成功, err=%v", err)
	}
	if r.ReturnSeconds != 50 || !r.ReturnsAt.Equal(at(50*time.Second)) {
		t.Fatalf("期望剩余 100 秒减半为 50, got=%+v", r)
	}
}

func TestRecallRaid_已结束与他人行军(t *testing.T) {
	w := newRaidWorld(t)
	resolvedAt := t0
	done := w.store.AddRaid(domain.Raid{
		AttackerCityID: w.a, TargetCityID: w.b, Status: domain.RaidResolved, ResolvedAt: &resolvedAt,
	})
	if _, err := w.svc.RecallRaid(context.Background(), t0, RecallRaidCmd{UserID: 1, RaidID: done}); !errors.Is(err, domain.ErrRaidResolved) {
		t.Fatalf("期望 ErrRaidResolved, got=%v", err)
	}
	if _, err := w.svc.RecallRaid(context.Background(), t0, RecallRaidCmd{UserID: 2, RaidID: done}); !errors.Is(err, domain.ErrRaidNotFound) {
		t.Fatalf("期望他人行军按不存在处理, got=%v", err)
	}
	if _, err := w.svc.RecallRaid(context.Background(), t0, RecallRaidCmd{UserID: 1, RaidID: 999}); !errors.Is(err, domain.ErrRaidNotFound) {
		t.Fatalf("期望 ErrRaidNotFound, got=%v", err)
	}
}

func TestPreviewRaid_只读预估(t *testing.T) {
	w := newRaidWorld(t)
	p, err := w.svc.PreviewRaid(context.Background(), t0, PreviewRaidCmd{UserID: 1, AttackerCityID: w.a, TargetCityID: w.b})
	if err != nil {
		t.Fatalf("期望预估成功, err=%v", err)
	}
	if p.Plan.DistanceTiles != 5 || p.Plan.BaseSeconds != 25 || p.Plan.CarryCapacity != 500 {
		t.Fatalf("期望距离 5 格、25 秒、负重 500, got=%+v", p.Plan)
	}
	if p.MaxActiveRaids != 1 || p.ActiveRaids != 0 || p.LimitReached || !p.ArrivesAt.Equal(at(25*time.Second)) {
		t.Fatalf("期望出征上限信息, got=%+v", p)
	}
}

func TestRaidReport_行军中按当前驻军展示守方(t *testing.T) {
	w := newRaidWorld(t)
	w.store.SetGarrison(w.b, w.inf, 50)
	res := w.launch(t, t0, TroopOrder{Code: "t1_cav", Count: 10})

	rep, err := w.svc.RaidReport(context.Background(), 1, res.Raid.ID)
	if err != nil {
		t.Fatalf("期望查看战报成功, err=%v", err)
	}
	if rep.Defender.Source != DefenderSourceGarrison || rep.Defender.Start != 50 || rep.Attacker.Sent != 10 {
		t.Fatalf("期望守方来自驻军, got=%+v", rep)
	}
	if rep.OutcomeHint != "defender_advantage" {
		t.Fatalf("期望 10 骑兵对 50 步兵守方占优, got=%s", rep.OutcomeHint)
	}
	if _, err := w.svc.RaidReport(context.Background(), 2, res.Raid.ID); !errors.Is(err, domain.ErrRaidNotFound) {
		t.Fatalf("期望只有攻方能查看, got=%v", err)
	}
}

func TestListRaids_只列自己的行军并校验状态(t *testing.T) {
	w := newRaidWorld(t)
	resolvedAt := t0
	done := w.store.AddRaid(domain.Raid{
		AttackerCityID: w.a, TargetCityID: w.b, Status: domain.RaidResolved, ResolvedAt: &resolvedAt,
	})
	live := w.launch(t, t0, TroopOrder{Code: "t1_inf", Count: 10}).Raid.ID
	w.store.AddRaid(domain.Raid{AttackerCityID: w.b, TargetCityID: w.a, Status: domain.RaidEnroute, ArrivesAt: t0})

	got, err := w.svc.ListRaids(context.Background(), 1, "", 0)
	if err != nil {
		t.Fatalf("期望列表成功, err=%v", err)
	}
	if len(got) != 2 || got[0].ID != live || got[1].ID != done {
		t.Fatalf("期望进行中的排前面且不含他人行军, got=%+v", got)
	}

	got, _ = w.svc.ListRaids(context.Background(), 1, domain.RaidResolved, 10)
	if len(got) != 1 || got[0].ID != done {
		t.Fatalf("期望按状态过滤, got=%+v", got)
	}

	if _, err := w.svc.ListRaids(context.Background(), 1, "lost", 10); !errors.Is(err, domain.ErrInvalidRaid) {
		t.Fatalf("期望未知状态返回 ErrInvalidRaid, got=%v", err)
	}
}

func TestGetRaid_只有攻方可见(t *testing.T) {
	w := newRaidWorld(t)
	res := w.launch(t, t0, TroopOrder{Code: "t1_cav", Count: 5})

	r, err := w.svc.GetRaid(context.Background(), 1, res.Raid.ID)
	if err != nil || r.ID != res.Raid.ID || r.Status != domain.RaidEnroute {
		t.Fatalf("期望查到自己的行军, got=%+v err=%v", r, err)
	}
	if _, err := w.svc.GetRaid(context.Background(), 2, res.Raid.ID); !errors.Is(err, domain.ErrRaidNotFound) {
		t.Fatalf("期望他人行军按不存在处理, got=%v", err)
	}
}
