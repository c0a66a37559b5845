package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mgmcelwee/evony/internal/world/app/port"
	"github.com/mgmcelwee/evony/internal/world/domain"
)

// Store 是进程内的事务型世界存储：一把互斥锁串行化所有事务，
// 事务在副本上执行，fn 成功后才替换当前状态。
type Store struct {
	mu    sync.Mutex
	state *state
}

var _ port.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) InTx(ctx context.Context, fn func(tx port.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&tx{st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type tx struct {
	st *state
}

// LockWorld 在内存实现里由 Store.mu 保证互斥。
func (t *tx) LockWorld(ctx context.Context) error {
	return ctx.Err()
}

func (t *tx) ListCities(_ context.Context) ([]*domain.City, error) {
	out := make([]*domain.City, 0, len(t.st.cities))
	for _, c := range t.st.cities {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) GetCity(_ context.Context, id domain.CityID) (*domain.City, error) {
	c, ok := t.st.cities[id]
	if !ok {
		return nil, domain.ErrCityNotFound.WithData("city_id", id)
	}
	return &c, nil
}

func (t *tx) SaveCity(_ context.Context, c *domain.City) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, ok := t.st.cities[c.ID]; !ok {
		return domain.ErrCityNotFound.WithData("city_id", c.ID)
	}
	t.st.cities[c.ID] = *c
	return nil
}

func (t *tx) BuildingLevels(_ context.Context, cityID domain.CityID) (domain.Levels, error) {
	return domain.Levels(cloneMap(t.st.buildings[cityID])), nil
}

func (t *tx) SetBuildingLevel(_ context.Context, cityID domain.CityID, bt domain.BuildingType, level int) error {
	levels, ok := t.st.buildings[cityID]
	if !ok {
		return domain.ErrBuildingNotFound.WithDataMap(map[string]any{"city_id": cityID, "type": bt})
	}
	if _, ok := levels[bt]; !ok {
		return domain.ErrBuildingNotFound.WithDataMap(map[string]any{"city_id": cityID, "type": bt})
	}
	levels[bt] = level
	return nil
}

func (t *tx) DueUpgrades(_ context.Context, at time.Time) ([]*domain.Upgrade, error) {
	out := make([]*domain.Upgrade, 0)
	for _, u := range t.st.upgrades {
		if !u.CompletesAt.After(at) {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CompletesAt.Equal(out[j].CompletesAt) {
			return out[i].CompletesAt.Before(out[j].CompletesAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *tx) DeleteUpgrade(_ context.Context, id domain.UpgradeID) error {
	delete(t.st.upgrades, id)
	return nil
}

func (t *tx) NextUpgradeAt(_ context.Context, after, until time.Time) (time.Time, bool, error) {
	var next nextTime
	for _, u := range t.st.upgrades {
		next.offer(u.CompletesAt, after, until)
	}
	return next.at, next.ok, nil
}

func (t *tx) DueArrivals(_ context.Context, at time.Time) ([]*domain.Raid, error) {
	out := t.raidsWhere(func(r *domain.Raid) bool {
		return r.Status == domain.RaidEnroute && !r.ArrivesAt.After(at)
	})
	sortRaids(out, func(r *domain.Raid) time.Time { return r.ArrivesAt })
	return out, nil
}

func (t *tx) DueReturns(_ context.Context, at time.Time) ([]*domain.Raid, error) {
	out := t.raidsWhere(func(r *domain.Raid) bool {
		return r.Status == domain.RaidReturning && r.ReturnsAt != nil && !r.ReturnsAt.After(at)
	})
	sortRaids(out, func(r *domain.Raid) time.Time { return *r.ReturnsAt })
	return out, nil
}

func (t *tx) NextArrivalAt(_ context.Context, after, until time.Time) (time.Time, bool, error) {
	var next nextTime
	for _, r := range t.st.raids {
		if r.Status == domain.RaidEnroute {
			next.offer(r.ArrivesAt, after, until)
		}
	}
	return next.at, next.ok, nil
}

func (t *tx) NextReturnAt(_ context.Context, after, until time.Time) (time.Time, bool, error) {
	var next nextTime
	for _, r := range t.st.raids {
		if r.Status == domain.RaidReturning && r.ReturnsAt != nil {
			next.offer(*r.ReturnsAt, after, until)
		}
	}
	return next.at, next.ok, nil
}

func (t *tx) GetRaid(_ context.Context, id domain.RaidID) (*domain.Raid, error) {
	r, ok := t.st.raids[id]
	if !ok {
		return nil, domain.ErrRaidNotFound.WithData("raid_id", id)
	}
	r = cloneRaid(r)
	return &r, nil
}

func (t *tx) InsertRaid(_ context.Context, r *domain.Raid) error {
	if err := r.Validate(); err != nil {
		return err
	}
	t.st.nextRaidID++
	r.ID = t.st.nextRaidID
	t.st.raids[r.ID] = cloneRaid(*r)
	return nil
}

func (t *tx) SaveRaid(_ context.Context, r *domain.Raid) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if _, ok := t.st.raids[r.ID]; !ok {
		return domain.ErrRaidNotFound.WithData("raid_id", r.ID)
	}
	t.st.raids[r.ID] = cloneRaid(*r)
	return nil
}

func (t *tx) ActiveRaidCount(_ context.Context, attacker domain.CityID) (int, error) {
	n := 0
	for _, r := range t.st.raids {
		if r.AttackerCityID == attacker && r.Active() {
			n++
		}
	}
	return n, nil
}

func (t *tx) ListRaids(_ context.Context, f port.RaidFilter) ([]*domain.Raid, error) {
	out := t.raidsWhere(func(r *domain.Raid) bool {
		if f.Status != "" && r.Status != f.Status {
			return false
		}
		c, ok := t.st.cities[r.AttackerCityID]
		return ok && c.OwnerID == f.OwnerID
	})
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Status.Rank(), out[j].Status.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (t *tx) RaidTroops(_ context.Context, raidID domain.RaidID) ([]*domain.RaidTroop, error) {
	lines := t.st.raidTroops[raidID]
	out := make([]*domain.RaidTroop, 0, len(lines))
	for _, rt := range lines {
		rt := rt
		out = append(out, &rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TroopTypeID < out[j].TroopTypeID })
	return out, nil
}

func (t *tx) InsertRaidTroops(ctx context.Context, lines []*domain.RaidTroop) error {
	for _, rt := range lines {
		if _, ok := t.st.raids[rt.RaidID]; !ok {
			return domain.ErrRaidNotFound.WithData("raid_id", rt.RaidID)
		}
		if err := t.SaveRaidTroop(ctx, rt); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) SaveRaidTroop(_ context.Context, rt *domain.RaidTroop) error {
	if rt.CountSent < 0 || rt.CountLost < 0 || rt.CountLost > rt.CountSent {
		return domain.ErrInvalidEntity.WithDataMap(map[string]any{"entity": "raid_troop", "raid_id": rt.RaidID})
	}
	lines, ok := t.st.raidTroops[rt.RaidID]
	if !ok {
		lines = make(map[domain.TroopTypeID]domain.RaidTroop)
		t.st.raidTroops[rt.RaidID] = lines
	}
	lines[rt.TroopTypeID] = *rt
	return nil
}

func (t *tx) HasDefenderSnapshot(_ context.Context, raidID domain.RaidID) (bool, error) {
	return len(t.st.defenders[raidID]) > 0, nil
}

func (t *tx) InsertDefenderSnapshot(_ context.Context, rows []*domain.RaidDefenderTroop) error {
	for _, row := range rows {
		for _, existing := range t.st.defenders[row.RaidID] {
			if existing.TroopTypeID == row.TroopTypeID {
				return domain.ErrInvalidEntity.WithDataMap(map[string]any{"entity": "raid_defender_troop", "raid_id": row.RaidID})
			}
		}
		t.st.defenders[row.RaidID] = append(t.st.defenders[row.RaidID], *row)
	}
	return nil
}

func (t *tx) DefenderSnapshot(_ context.Context, raidID domain.RaidID) ([]*domain.RaidDefenderTroop, error) {
	rows := t.st.defenders[raidID]
	out := make([]*domain.RaidDefenderTroop, 0, len(rows))
	for _, row := range rows {
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TroopTypeID < out[j].TroopTypeID })
	return out, nil
}

func (t *tx) CityTroops(_ context.Context, cityID domain.CityID) ([]*domain.CityTroop, error) {
	g := t.st.garrison[cityID]
	out := make([]*domain.CityTroop, 0, len(g))
	for typeID, count := range g {
		out = append(out, &domain.CityTroop{CityID: cityID, TroopTypeID: typeID, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TroopTypeID < out[j].TroopTypeID })
	return out, nil
}

func (t *tx) SaveCityTroop(_ context.Context, ct *domain.CityTroop) error {
	if ct.Count < 0 {
		return domain.ErrInvalidEntity.WithDataMap(map[string]any{"entity": "city_troop", "city_id": ct.CityID})
	}
	g, ok := t.st.garrison[ct.CityID]
	if !ok {
		g = make(map[domain.TroopTypeID]int64)
		t.st.garrison[ct.CityID] = g
	}
	g[ct.TroopTypeID] = ct.Count
	return nil
}

func (t *tx) TroopTypes(_ context.Context, ids []domain.TroopTypeID) (map[domain.TroopTypeID]*domain.TroopType, error) {
	out := make(map[domain.TroopTypeID]*domain.TroopType, len(ids))
	for _, id := range ids {
		if tt, ok := t.st.troopTypes[id]; ok {
			tt := tt
			out[id] = &tt
		}
	}
	return out, nil
}

func (t *tx) TroopTypesByCode(_ context.Context, codes []string) (map[string]*domain.TroopType, error) {
	want := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		want[c] = struct{}{}
	}
	out := make(map[string]*domain.TroopType, len(codes))
	for _, tt := range t.st.troopTypes {
		if _, ok := want[tt.Code]; ok {
			tt := tt
			out[tt.Code] = &tt
		}
	}
	return out, nil
}

func (t *tx) raidsWhere(pred func(r *domain.Raid) bool) []*domain.Raid {
	out := make([]*domain.Raid, 0)
	for _, r := range t.st.raids {
		r := cloneRaid(r)
		if pred(&r) {
			out = append(out, &r)
		}
	}
	return out
}

func sortRaids(rs []*domain.Raid, key func(r *domain.Raid) time.Time) {
	sort.Slice(rs, func(i, j int) bool {
		ki, kj := key(rs[i]), key(rs[j])
		if !ki.Equal(kj) {
			return ki.Before(kj)
		}
		return rs[i].ID < rs[j].ID
	})
}

// nextTime 记录 (after, until] 内的最小时间。
type nextTime struct {
	at time.Time
	ok bool
}

func (n *nextTime) offer(t, after, until time.Time) {
	if !t.After(after) || t.After(until) {
		return
	}
	if !n.ok || t.Before(n.at) {
		n.at, n.ok = t, true
	}
}
