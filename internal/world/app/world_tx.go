package app

import (
	"context"
	"errors"
	"sort"

	"github.com/mgmcelwee/evony/internal/world/app/port"
	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/modules/kit/logx"
)

// worldTx 包装一次事务：城池和建筑等级在事务内只加载一次（identity map），
// 产出、升级、行军三个阶段修改的是同一份 City，事务结束前统一写回。
// 其他行（行军、兵线、驻军、快照）修改后立即写入 Tx。
type worldTx struct {
	tx  port.Tx
	log logx.Logger

	cities  map[domain.CityID]*domain.City
	missing map[domain.CityID]struct{}
	dirty   map[domain.CityID]struct{}
	levels  map[domain.CityID]domain.Levels

	// outbox 事务提交后才投递
	outbox []port.Message
}

func newWorldTx(tx port.Tx, log logx.Logger) *worldTx {
	if log == nil {
		log = logx.Nop()
	}
	return &worldTx{
		tx:      tx,
		log:     log,
		cities:  make(map[domain.CityID]*domain.City),
		missing: make(map[domain.CityID]struct{}),
		dirty:   make(map[domain.CityID]struct{}),
		levels:  make(map[domain.CityID]domain.Levels),
	}
}

// loadCities 加载全部城池并放入 identity map，按 ID 升序。
func (w *worldTx) loadCities(ctx context.Context) ([]*domain.City, error) {
	list, err := w.tx.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.City, 0, len(list))
	for _, c := range list {
		if cached, ok := w.cities[c.ID]; ok {
			out = append(out, cached)
			continue
		}
		w.cities[c.ID] = c
		out = append(out, c)
	}
	return out, nil
}

// city 返回 identity map 中的城池；不存在时 ok=false，err 只表示存储故障。
func (w *worldTx) city(ctx context.Context, id domain.CityID) (*domain.City, bool, error) {
	if c, ok := w.cities[id]; ok {
		return c, true, nil
	}
	if _, ok := w.missing[id]; ok {
		return nil, false, nil
	}
	c, err := w.tx.GetCity(ctx, id)
	switch {
	case err == nil:
		w.cities[id] = c
		return c, true, nil
	case errors.Is(err, domain.ErrCityNotFound):
		w.missing[id] = struct{}{}
		return nil, false, nil
	default:
		return nil, false, err
	}
}

func (w *worldTx) markDirty(c *domain.City) {
	if c != nil {
		w.dirty[c.ID] = struct{}{}
	}
}

func (w *worldTx) cityLevels(ctx context.Context, id domain.CityID) (domain.Levels, error) {
	if l, ok := w.levels[id]; ok {
		return l, nil
	}
	l, err := w.tx.BuildingLevels(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = domain.Levels{}
	}
	w.levels[id] = l
	return l, nil
}

// setBuildingLevel 返回 false 表示建筑记录不存在（升级照常删除，但不生效）。
func (w *worldTx) setBuildingLevel(ctx context.Context, id domain.CityID, t domain.BuildingType, level int) (bool, error) {
	err := w.tx.SetBuildingLevel(ctx, id, t, level)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrBuildingNotFound):
		return false, nil
	default:
		return false, err
	}
	if l, ok := w.levels[id]; ok {
		l[t] = level
	}
	return true, nil
}

// flush 把修改过的城池按 ID 顺序写回。
func (w *worldTx) flush(ctx context.Context) error {
	ids := make([]domain.CityID, 0, len(w.dirty))
	for id := range w.dirty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if err := w.tx.SaveCity(ctx, w.cities[id]); err != nil {
			return err
		}
	}
	w.dirty = make(map[domain.CityID]struct{})
	return nil
}
