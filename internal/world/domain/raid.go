package domain

import "time"

type RaidID int64

// RaidStatus enroute -> returning -> resolved。
type RaidStatus string

const (
	RaidEnroute   RaidStatus = "enroute"
	RaidReturning RaidStatus = "returning"
	RaidResolved  RaidStatus = "resolved"
)

// Rank 列表排序用：进行中的排前面。
func (s RaidStatus) Rank() int {
	switch s {
	case RaidEnroute:
		return 0
	case RaidReturning:
		return 1
	default:
		return 2
	}
}

// Raid 一次掠夺行军。
//
// 不变式：
// - Stolen 只在抵达时写一次，回城时入账一次，永不为负
// - ReturnsAt 在抵达被处理（或召回）之前为 nil
// - CombatResolved 为 true 表示战斗已经结算过，不再重复计算伤亡
type Raid struct {
	ID             RaidID
	AttackerCityID CityID
	TargetCityID   CityID
	Status         RaidStatus
	CarryCapacity  int64
	Stolen         Resources

	CreatedAt       time.Time
	OutboundSeconds int64
	ReturnSeconds   int64
	ArrivesAt       time.Time
	ReturnsAt       *time.Time
	ResolvedAt      *time.Time

	CombatResolved bool
}

func (r *Raid) Active() bool {
	return r.Status == RaidEnroute || r.Status == RaidReturning
}

// MarkResolved 进入终态。
func (r *Raid) MarkResolved(at time.Time) {
	r.Status = RaidResolved
	r.ResolvedAt = timePtr(at)
}

// MarkReturning 进入回程，ReturnsAt = base + ReturnSeconds。
func (r *Raid) MarkReturning(base time.Time) {
	r.Status = RaidReturning
	r.ReturnsAt = timePtr(base.Add(time.Duration(r.ReturnSeconds) * time.Second))
	r.ResolvedAt = nil
}

// RemainingSeconds 返回当前阶段剩余秒数，终态返回 false。
func (r *Raid) RemainingSeconds(now time.Time) (int64, bool) {
	switch {
	case r.Status == RaidEnroute && !r.ArrivesAt.IsZero():
		return max(0, int64(r.ArrivesAt.Sub(now)/time.Second)), true
	case r.Status == RaidReturning && r.ReturnsAt != nil:
		return max(0, int64(r.ReturnsAt.Sub(now)/time.Second)), true
	default:
		return 0, false
	}
}

func (r *Raid) Validate() error {
	if r == nil {
		return ErrInvalidEntity.WithData("entity", "raid")
	}
	bad := func(field string) error {
		return ErrInvalidEntity.WithDataMap(map[string]any{"entity": "raid", "raid_id": r.ID, "field": field})
	}
	switch r.Status {
	case RaidEnroute, RaidReturning, RaidResolved:
	default:
		return bad("status")
	}
	if r.AttackerCityID == 0 || r.TargetCityID == 0 {
		return bad("city_id")
	}
	if r.CarryCapacity < 0 {
		return bad("carry_capacity")
	}
	if r.Stolen.ClampNonNegative() != r.Stolen {
		return bad("stolen")
	}
	if r.Status == RaidEnroute && r.ArrivesAt.IsZero() {
		return bad("arrives_at")
	}
	if r.Status == RaidEnroute && r.ReturnsAt != nil {
		return bad("returns_at")
	}
	if r.OutboundSeconds < 0 || r.ReturnSeconds < 0 {
		return bad("seconds")
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
