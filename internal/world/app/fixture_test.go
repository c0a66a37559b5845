package app

import (
	"context"
	"testing"
	"time"

	"github.com/mgmcelwee/evony/internal/world/app/port"
	"github.com/mgmcelwee/evony/internal/world/domain"
	mailmem "github.com/mgmcelwee/evony/internal/world/infra/mail/memory"
	"github.com/mgmcelwee/evony/internal/world/infra/persistence/memory"
	"github.com/mgmcelwee/evony/internal/world/rules"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store  *memory.Store
	mailer *mailmem.Mailer
	svc    *WorldService
	inf    domain.TroopTypeID
	cav    domain.TroopTypeID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	mailer := mailmem.NewMailer()
	f := &fixture{
		store:  store,
		mailer: mailer,
		svc:    NewWorldService(store, mailer, nil, SchedulerOptions{}),
	}
	f.inf = store.AddTroopType(domain.TroopType{Code: "t1_inf", Name: "Infantry", Attack: 10, Defense: 12, HP: 50, Speed: 100, Carry: 10})
	f.cav = store.AddTroopType(domain.TroopType{Code: "t1_cav", Name: "Cavalry", Attack: 14, Defense: 8, HP: 60, Speed: 150, Carry: 20})
	return f
}

var allBuildings = []domain.BuildingType{
	domain.BuildingFarm, domain.BuildingSawmill, domain.BuildingQuarry, domain.BuildingIronMine,
	domain.BuildingWarehouse, domain.BuildingTownhall, domain.BuildingBarracks,
}

// addCity 建一座全部建筑 1 级、last_tick_at=t0 的城。
func (f *fixture) addCity(owner domain.UserID, x, y int, stock domain.Resources) domain.CityID {
	storage := rules.StorageFor(domain.Levels{})
	id := f.store.AddCity(domain.City{
		OwnerID:    owner,
		Name:       "city",
		X:          x,
		Y:          y,
		KeepLevel:  1,
		Stock:      stock,
		Cap:        storage.Max,
		Protected:  storage.Protected,
		Rate:       rules.Rates(domain.Levels{}),
		LastTickAt: t0,
		CreatedAt:  t0,
	})
	for _, bt := range allBuildings {
		f.store.SetBuilding(id, bt, domain.DefaultBuildingLevel)
	}
	return id
}

func (f *fixture) city(t *testing.T, id domain.CityID) domain.City {
	t.Helper()
	c, ok := f.store.City(id)
	if !ok {
		t.Fatalf("期望城池 %d 存在", id)
	}
	return c
}

func (f *fixture) raid(t *testing.T, id domain.RaidID) domain.Raid {
	t.Helper()
	r, ok := f.store.Raid(id)
	if !ok {
		t.Fatalf("期望行军 %d 存在", id)
	}
	return r
}

func (f *fixture) tick(t *testing.T, now time.Time) domain.TickSummary {
	t.Helper()
	sum, err := f.svc.Tick(context.Background(), now)
	if err != nil {
		t.Fatalf("期望 tick 成功, err=%v", err)
	}
	return sum
}

// inTx 在事务里直接操作 worldTx，用于验证单个阶段的幂等性。
func (f *fixture) inTx(t *testing.T, fn func(ctx context.Context, w *worldTx) error) {
	t.Helper()
	ctx := context.Background()
	err := f.store.InTx(ctx, func(tx port.Tx) error {
		w := newWorldTx(tx, nil)
		if err := fn(ctx, w); err != nil {
			return err
		}
		return w.flush(ctx)
	})
	if err != nil {
		t.Fatalf("期望事务成功, err=%v", err)
	}
}

func at(d time.Duration) time.Time {
	return t0.Add(d)
}
