package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/mgmcelwee/evony/internal/world/app/port"
	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/internal/world/rules"
	"github.com/mgmcelwee/evony/modules/kit/logx"

	"go.uber.org/zap"
)

// 非法行军的原因码，放在 error data.reason。
const (
	ReasonSameCity         = "same_city"
	ReasonOwnCity          = "own_city"
	ReasonTroopsRequired   = "troops_required"
	ReasonInvalidTroopLine = "invalid_troop_line"
	ReasonInvalidStatus    = "invalid_status"
)

// 行军列表的条数限制。
const (
	DefaultRaidListLimit = 50
	MaxRaidListLimit     = 500
)

// TroopOrder 出征请求里的一条兵种。
type TroopOrder struct {
	Code  string `json:"code"`
	Count int64  `json:"count"`
}

type LaunchRaidCmd struct {
	UserID         domain.UserID
	AttackerCityID domain.CityID
	TargetCityID   domain.CityID
	Troops         []TroopOrder
}

type RecallRaidCmd struct {
	UserID domain.UserID
	RaidID domain.RaidID
}

type PreviewRaidCmd struct {
	UserID         domain.UserID
	AttackerCityID domain.CityID
	TargetCityID   domain.CityID
}

// MarchPlan 行军时间与负重的计算结果。
type MarchPlan struct {
	DistanceTiles   float64 `json:"distance_tiles"`
	BaseSeconds     int64   `json:"base_seconds"`
	SlowestSpeed    int64   `json:"slowest_speed,omitempty"`
	OutboundSeconds int64   `json:"outbound_seconds"`
	ReturnSeconds   int64   `json:"return_seconds"`
	BarracksCap     int64   `json:"barracks_cap"`
	ArmyCarry       int64   `json:"army_carry,omitempty"`
	CarryCapacity   int64   `json:"carry_capacity"`
}

type LaunchResult struct {
	Raid   domain.Raid        `json:"raid"`
	Troops []domain.RaidTroop `json:"troops"`
	Plan   MarchPlan          `json:"plan"`
}

// RaidPreview 出征前的预估，不修改任何状态。
type RaidPreview struct {
	AttackerCityID domain.CityID `json:"attacker_city_id"`
	TargetCityID   domain.CityID `json:"target_city_id"`
	KeepLevel      int           `json:"keep_level"`
	ActiveRaids    int           `json:"active_raids"`
	MaxActiveRaids int           `json:"max_active_raids"`
	LimitReached   bool          `json:"limit_reached"`
	Plan           MarchPlan     `json:"plan"`
	ArrivesAt      time.Time     `json:"arrives_at"`
}

// Commands 玩家发起的行军命令。每个命令一个事务，并持有世界锁。
type Commands struct {
	store port.Store
	log   logx.Logger
}

func NewCommands(store port.Store, log logx.Logger) *Commands {
	if log == nil {
		log = logx.Nop()
	}
	return &Commands{store: store, log: log}
}

// LaunchRaid 校验、扣除驻军并创建 enroute 行军。
func (c *Commands) LaunchRaid(ctx context.Context, now time.Time, cmd LaunchRaidCmd) (LaunchResult, error) {
	var res LaunchResult
	if cmd.AttackerCityID == cmd.TargetCityID {
		return res, domain.ErrInvalidRaid.WithData("reason", ReasonSameCity)
	}
	err := c.store.InTx(ctx, func(tx port.Tx) error {
		if err := tx.LockWorld(ctx); err != nil {
			return err
		}
		attacker, err := ownedCity(ctx, tx, cmd.UserID, cmd.AttackerCityID)
		if err != nil {
			return err
		}
		levels, err := tx.BuildingLevels(ctx, attacker.ID)
		if err != nil {
			return err
		}
		if err := checkRaidLimit(ctx, tx, attacker.ID, levels); err != nil {
			return err
		}
		target, err := tx.GetCity(ctx, cmd.TargetCityID)
		if err != nil {
			return err
		}
		if target.OwnerID == cmd.UserID {
			return domain.ErrInvalidRaid.WithData("reason", ReasonOwnCity)
		}

		orders, err := normalizeOrders(cmd.Troops)
		if err != nil {
			return err
		}
		codes := make([]string, 0, len(orders))
		for code := range orders {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		types, err := tx.TroopTypesByCode(ctx, codes)
		if err != nil {
			return err
		}
		var missing []string
		for _, code := range codes {
			if _, ok := types[code]; !ok {
				missing = append(missing, code)
			}
		}
		if len(missing) > 0 {
			return domain.ErrTroopTypeNotFound.WithData("codes", missing)
		}

		current, err := tx.CityTroops(ctx, attacker.ID)
		if err != nil {
			return err
		}
		garrison := make(map[domain.TroopTypeID]*domain.CityTroop, len(current))
		for _, ct := range current {
			garrison[ct.TroopTypeID] = ct
		}
		for _, code := range codes {
			tt := types[code]
			var have int64
			if ct, ok := garrison[tt.ID]; ok {
				have = ct.Count
			}
			if have < orders[code] {
				return domain.ErrNotEnoughTroops.WithDataMap(map[string]any{
					"code":      code,
					"requested": orders[code],
					"available": have,
				})
			}
		}

		plan := planMarch(attacker, target, levels)
		var slowest, armyCarry int64
		lines := make([]*domain.RaidTroop, 0, len(codes))
		for _, code := range codes {
			tt, n := types[code], orders[code]
			ct := garrison[tt.ID]
			ct.Count -= n
			if err := tx.SaveCityTroop(ctx, ct); err != nil {
				return err
			}
			speed := tt.Speed
			if speed <= 0 {
				speed = rules.BaseTroopSpeed
			}
			if slowest == 0 || speed < slowest {
				slowest = speed
			}
			armyCarry += n * max(0, tt.Carry)
			lines = append(lines, &domain.RaidTroop{TroopTypeID: tt.ID, CountSent: n})
		}
		plan.SlowestSpeed = slowest
		plan.ArmyCarry = armyCarry
		plan.CarryCapacity = min(plan.BarracksCap, armyCarry)
		scaled := rules.ScaleBySlowest(plan.BaseSeconds, slowest)
		plan.OutboundSeconds = rules.ApplySpeedPct(scaled, attacker.MarchSpeedPct)
		plan.ReturnSeconds = rules.ApplySpeedPct(scaled, attacker.ReturnSpeedPct)

		raid := &domain.Raid{
			AttackerCityID:  attacker.ID,
			TargetCityID:    target.ID,
			Status:          domain.RaidEnroute,
			CarryCapacity:   plan.CarryCapacity,
			CreatedAt:       now,
			OutboundSeconds: plan.OutboundSeconds,
			ReturnSeconds:   plan.ReturnSeconds,
			ArrivesAt:       now.Add(time.Duration(plan.OutboundSeconds) * time.Second),
		}
		if err := tx.InsertRaid(ctx, raid); err != nil {
			return err
		}
		for _, rt := range lines {
			rt.RaidID = raid.ID
		}
		if err := tx.InsertRaidTroops(ctx, lines); err != nil {
			return err
		}

		res = LaunchResult{Raid: *raid, Plan: plan, Troops: make([]domain.RaidTroop, 0, len(lines))}
		for _, rt := range lines {
			res.Troops = append(res.Troops, *rt)
		}
		return nil
	})
	if err != nil {
		return LaunchResult{}, err
	}
	c.log.WithContext(ctx).Info("raid launched",
		zap.Int64("raid_id", int64(res.Raid.ID)),
		zap.Int64("attacker_city_id", int64(res.Raid.AttackerCityID)),
		zap.Int64("target_city_id", int64(res.Raid.TargetCityID)),
		zap.Int64("outbound_seconds", res.Raid.OutboundSeconds),
		zap.Int64("carry_capacity", res.Raid.CarryCapacity))
	return res, nil
}

// RecallRaid 召回行军。
//
// - enroute 且已过抵达时刻：立即按抵达结算（掠夺与战斗），再进入回程
// - enroute 未抵达：原路返回，不掠夺不战斗
// - returning：剩余时间减半
// - resolved：ErrRaidResolved
func (c *Commands) RecallRaid(ctx context.Context, now time.Time, cmd RecallRaidCmd) (domain.Raid, error) {
	var out domain.Raid
	err := c.store.InTx(ctx, func(tx port.Tx) error {
		if err := tx.LockWorld(ctx); err != nil {
			return err
		}
		r, attacker, err := ownedRaid(ctx, tx, cmd.UserID, cmd.RaidID)
		if err != nil {
			return err
		}

		switch r.Status {
		case domain.RaidResolved:
			return domain.ErrRaidResolved.WithData("raid_id", r.ID)

		case domain.RaidEnroute:
			if !now.Before(r.ArrivesAt) {
				w := newWorldTx(tx, c.log.WithContext(ctx))
				if err := w.arrive(ctx, r, now); err != nil {
					return err
				}
				if err := w.flush(ctx); err != nil {
					return err
				}
				out = *r
				return nil
			}
			elapsed := int64(1)
			if !r.CreatedAt.IsZero() {
				elapsed = max(1, int64(now.Sub(r.CreatedAt)/time.Second))
			}
			r.OutboundSeconds = elapsed
			r.ReturnSeconds = rules.ApplySpeedPct(elapsed, attacker.ReturnSpeedPct)
			r.Stolen = domain.Resources{}
			r.MarkReturning(now)

		case domain.RaidReturning:
			returnsAt := now.Add(time.Second)
			if r.ReturnsAt != nil {
				returnsAt = *r.ReturnsAt
			}
			remaining := max(1, int64(returnsAt.Sub(now)/time.Second))
			r.ReturnSeconds = rules.RecallReturnSeconds(remaining, attacker.ReturnSpeedPct)
			r.MarkReturning(now)
		}

		if err := tx.SaveRaid(ctx, r); err != nil {
			return err
		}
		out = *r
		return nil
	})
	if err != nil {
		return domain.Raid{}, err
	}
	c.log.WithContext(ctx).Info("raid recalled",
		zap.Int64("raid_id", int64(out.ID)),
		zap.String("status", string(out.Status)))
	return out, nil
}

// PreviewRaid 只读预估：负重上限、出征上限、无兵种时的行军时间。
func (c *Commands) PreviewRaid(ctx context.Context, now time.Time, cmd PreviewRaidCmd) (RaidPreview, error) {
	var out RaidPreview
	if cmd.AttackerCityID == cmd.TargetCityID {
		return out, domain.ErrInvalidRaid.WithData("reason", ReasonSameCity)
	}
	err := c.store.InTx(ctx, func(tx port.Tx) error {
		attacker, err := ownedCity(ctx, tx, cmd.UserID, cmd.AttackerCityID)
		if err != nil {
			return err
		}
		target, err := tx.GetCity(ctx, cmd.TargetCityID)
		if err != nil {
			return err
		}
		levels, err := tx.BuildingLevels(ctx, attacker.ID)
		if err != nil {
			return err
		}
		active, err := tx.ActiveRaidCount(ctx, attacker.ID)
		if err != nil {
			return err
		}
		keep := levels.Level(domain.BuildingTownhall)
		plan := planMarch(attacker, target, levels)
		plan.CarryCapacity = plan.BarracksCap
		plan.OutboundSeconds = rules.ApplySpeedPct(plan.BaseSeconds, attacker.MarchSpeedPct)
		plan.ReturnSeconds = rules.ApplySpeedPct(plan.BaseSeconds, attacker.ReturnSpeedPct)
		out = RaidPreview{
			AttackerCityID: attacker.ID,
			TargetCityID:   target.ID,
			KeepLevel:      keep,
			ActiveRaids:    active,
			MaxActiveRaids: rules.MaxSimultaneousRaids(keep),
			Plan:           plan,
			ArrivesAt:      now.Add(time.Duration(plan.OutboundSeconds) * time.Second),
		}
		out.LimitReached = out.ActiveRaids >= out.MaxActiveRaids
		return nil
	})
	if err != nil {
		return RaidPreview{}, err
	}
	return out, nil
}

// RaidReport 攻方玩家查看战报。enroute 时守方按当前驻军展示。
func (c *Commands) RaidReport(ctx context.Context, userID domain.UserID, raidID domain.RaidID) (RaidReport, error) {
	var out RaidReport
	err := c.store.InTx(ctx, func(tx port.Tx) error {
		r, attacker, err := ownedRaid(ctx, tx, userID, raidID)
		if err != nil {
			return err
		}
		target, err := tx.GetCity(ctx, r.TargetCityID)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrCityNotFound):
			target = nil
		default:
			return err
		}
		out, err = collectReport(ctx, tx, r, attacker, target)
		return err
	})
	if err != nil {
		return RaidReport{}, err
	}
	return out, nil
}

// ListRaids 列出玩家城池发起的行军。limit <= 0 取默认值，超过上限按上限截断。
func (c *Commands) ListRaids(ctx context.Context, userID domain.UserID, status domain.RaidStatus, limit int) ([]domain.Raid, error) {
	switch status {
	case "", domain.RaidEnroute, domain.RaidReturning, domain.RaidResolved:
	default:
		return nil, domain.ErrInvalidRaid.WithDataMap(map[string]any{"reason": ReasonInvalidStatus, "status": status})
	}
	if limit <= 0 {
		limit = DefaultRaidListLimit
	}
	limit = min(limit, MaxRaidListLimit)

	var out []domain.Raid
	err := c.store.InTx(ctx, func(tx port.Tx) error {
		rows, err := tx.ListRaids(ctx, port.RaidFilter{OwnerID: userID, Status: status, Limit: limit})
		if err != nil {
			return err
		}
		out = make([]domain.Raid, 0, len(rows))
		for _, r := range rows {
			out = append(out, *r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetRaid 攻方玩家查看单条行军。
func (c *Commands) GetRaid(ctx context.Context, userID domain.UserID, raidID domain.RaidID) (domain.Raid, error) {
	var out domain.Raid
	err := c.store.InTx(ctx, func(tx port.Tx) error {
		r, _, err := ownedRaid(ctx, tx, userID, raidID)
		if err != nil {
			return err
		}
		out = *r
		return nil
	})
	if err != nil {
		return domain.Raid{}, err
	}
	return out, nil
}

// ownedCity 不属于该玩家的城池一律按不存在处理。
func ownedCity(ctx context.Context, tx port.Tx, userID domain.UserID, id domain.CityID) (*domain.City, error) {
	city, err := tx.GetCity(ctx, id)
	if err != nil {
		return nil, err
	}
	if city.OwnerID != userID {
		return nil, domain.ErrCityNotFound.WithData("city_id", id)
	}
	return city, nil
}

// ownedRaid 攻方城池不存在或不属于该玩家时返回 ErrRaidNotFound。
func ownedRaid(ctx context.Context, tx port.Tx, userID domain.UserID, id domain.RaidID) (*domain.Raid, *domain.City, error) {
	r, err := tx.GetRaid(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	attacker, err := tx.GetCity(ctx, r.AttackerCityID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrCityNotFound):
		return nil, nil, domain.ErrRaidNotFound.WithData("raid_id", id)
	default:
		return nil, nil, err
	}
	if attacker.OwnerID != userID {
		return nil, nil, domain.ErrRaidNotFound.WithData("raid_id", id)
	}
	return r, attacker, nil
}

func checkRaidLimit(ctx context.Context, tx port.Tx, cityID domain.CityID, levels domain.Levels) error {
	keep := levels.Level(domain.BuildingTownhall)
	limit := rules.MaxSimultaneousRaids(keep)
	active, err := tx.ActiveRaidCount(ctx, cityID)
	if err != nil {
		return err
	}
	if active >= limit {
		return domain.ErrRaidLimit.WithDataMap(map[string]any{
			"keep_level": keep,
			"active":     active,
			"max":        limit,
		})
	}
	return nil
}

// normalizeOrders 合并同一兵种，拒绝空请求与非正数量。
func normalizeOrders(orders []TroopOrder) (map[string]int64, error) {
	if len(orders) == 0 {
		return nil, domain.ErrInvalidRaid.WithData("reason", ReasonTroopsRequired)
	}
	out := make(map[string]int64, len(orders))
	for _, o := range orders {
		if o.Code == "" || o.Count <= 0 {
			return nil, domain.ErrInvalidRaid.WithDataMap(map[string]any{
				"reason": ReasonInvalidTroopLine,
				"code":   o.Code,
				"count":  o.Count,
			})
		}
		out[o.Code] += o.Count
	}
	return out, nil
}

// planMarch 距离、基础时间、兵营负重上限；兵种相关的字段由调用方补齐。
func planMarch(attacker, target *domain.City, levels domain.Levels) MarchPlan {
	dist := rules.DistanceTiles(attacker.X, attacker.Y, target.X, target.Y)
	return MarchPlan{
		DistanceTiles: rules.Round2(dist),
		BaseSeconds:   rules.TravelSeconds(dist, rules.SecondsPerTile),
		BarracksCap:   rules.BarracksCarryCap(levels.Level(domain.BuildingBarracks)),
	}
}
