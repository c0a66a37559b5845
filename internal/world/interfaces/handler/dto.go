package handler

import (
	"time"

	"github.com/mgmcelwee/evony/internal/world/app"
	"github.com/mgmcelwee/evony/internal/world/domain"
)

type RaidView struct {
	ID              int64            `json:"id"`
	AttackerCityID  int64            `json:"attacker_city_id"`
	TargetCityID    int64            `json:"target_city_id"`
	Status          string           `json:"status"`
	CarryCapacity   int64            `json:"carry_capacity"`
	Stolen          domain.Resources `json:"stolen"`
	CreatedAt       time.Time        `json:"created_at"`
	OutboundSeconds int64            `json:"outbound_seconds"`
	ReturnSeconds   int64            `json:"return_seconds"`
	ArrivesAt       time.Time        `json:"arrives_at"`
	ReturnsAt       *time.Time       `json:"returns_at,omitempty"`
	ResolvedAt      *time.Time       `json:"resolved_at,omitempty"`
	// TimeRemainingSeconds 当前阶段剩余秒数，终态不返回。
	TimeRemainingSeconds *int64 `json:"time_remaining_seconds,omitempty"`
}

type RaidTroopView struct {
	TroopTypeID int64 `json:"troop_type_id"`
	Count       int64 `json:"count"`
}

type LaunchRaidResp struct {
	Raid   RaidView        `json:"raid"`
	Troops []RaidTroopView `json:"troops"`
	Plan   app.MarchPlan   `json:"plan"`
}

func raidView(r domain.Raid, now time.Time) RaidView {
	v := RaidView{
		ID:              int64(r.ID),
		AttackerCityID:  int64(r.AttackerCityID),
		TargetCityID:    int64(r.TargetCityID),
		Status:          string(r.Status),
		CarryCapacity:   r.CarryCapacity,
		Stolen:          r.Stolen,
		CreatedAt:       r.CreatedAt,
		OutboundSeconds: r.OutboundSeconds,
		ReturnSeconds:   r.ReturnSeconds,
		ArrivesAt:       r.ArrivesAt,
		ReturnsAt:       r.ReturnsAt,
		ResolvedAt:      r.ResolvedAt,
	}
	if left, ok := r.RemainingSeconds(now); ok {
		v.TimeRemainingSeconds = &left
	}
	return v
}

type RaidListResp struct {
	Raids []RaidView `json:"raids"`
}

func raidListResp(raids []domain.Raid, now time.Time) RaidListResp {
	out := RaidListResp{Raids: make([]RaidView, 0, len(raids))}
	for _, r := range raids {
		out.Raids = append(out.Raids, raidView(r, now))
	}
	return out
}

func launchRaidResp(res app.LaunchResult, now time.Time) LaunchRaidResp {
	out := LaunchRaidResp{
		Raid:   raidView(res.Raid, now),
		Troops: make([]RaidTroopView, 0, len(res.Troops)),
		Plan:   res.Plan,
	}
	for _, rt := range res.Troops {
		out.Troops = append(out.Troops, RaidTroopView{TroopTypeID: int64(rt.TroopTypeID), Count: rt.SentOriginal()})
	}
	return out
}
