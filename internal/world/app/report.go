package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mgmcelwee/evony/internal/world/app/port"
	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/internal/world/rules"
)

// MailKindRaidReport 战报邮件类型。
const MailKindRaidReport = "raid_report"

// 守方数据来源
const (
	DefenderSourceSnapshot = "raid_defender_troops"
	DefenderSourceGarrison = "city_troops"
	DefenderSourceNone     = "none"
)

// ReportCity 战报里的城池摘要。
type ReportCity struct {
	CityID  domain.CityID `json:"city_id" bson:"city_id"`
	OwnerID domain.UserID `json:"owner_id" bson:"owner_id"`
	Name    string        `json:"name" bson:"name"`
}

// AttackerLine 攻方兵线：出征、损失、回城。
type AttackerLine struct {
	TroopTypeID domain.TroopTypeID `json:"troop_type_id" bson:"troop_type_id"`
	Code        string             `json:"code" bson:"code"`
	Name        string             `json:"name" bson:"name"`
	Sent        int64              `json:"sent" bson:"sent"`
	Lost        int64              `json:"lost" bson:"lost"`
	Returning   int64              `json:"returning" bson:"returning"`
}

// DefenderLine 守方兵线：开战、损失、剩余。
type DefenderLine struct {
	TroopTypeID domain.TroopTypeID `json:"troop_type_id" bson:"troop_type_id"`
	Code        string             `json:"code" bson:"code"`
	Name        string             `json:"name" bson:"name"`
	Start       int64              `json:"start" bson:"start"`
	Lost        int64              `json:"lost" bson:"lost"`
	Remaining   int64              `json:"remaining" bson:"remaining"`
}

type AttackerSide struct {
	City       ReportCity     `json:"city" bson:"city"`
	Lines      []AttackerLine `json:"lines" bson:"lines"`
	Sent       int64          `json:"sent" bson:"sent"`
	Lost       int64          `json:"lost" bson:"lost"`
	Returning  int64          `json:"returning" bson:"returning"`
	PowerStart float64        `json:"power_start" bson:"power_start"`
	PowerLost  float64        `json:"power_lost" bson:"power_lost"`
}

type DefenderSide struct {
	City       ReportCity     `json:"city" bson:"city"`
	Source     string         `json:"source" bson:"source"`
	Lines      []DefenderLine `json:"lines" bson:"lines"`
	Start      int64          `json:"start" bson:"start"`
	Lost       int64          `json:"lost" bson:"lost"`
	Remaining  int64          `json:"remaining" bson:"remaining"`
	PowerStart float64        `json:"power_start" bson:"power_start"`
	PowerLost  float64        `json:"power_lost" bson:"power_lost"`
}

// RaidReport 一次行军的战报。
type RaidReport struct {
	RaidID      domain.RaidID     `json:"raid_id" bson:"raid_id"`
	Status      domain.RaidStatus `json:"status" bson:"status"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
	ArrivesAt   time.Time         `json:"arrives_at" bson:"arrives_at"`
	ReturnsAt   *time.Time        `json:"returns_at,omitempty" bson:"returns_at,omitempty"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	Loot        domain.Resources  `json:"loot" bson:"loot"`
	OutcomeHint string            `json:"outcome_hint,omitempty" bson:"outcome_hint,omitempty"`
	Attacker    AttackerSide      `json:"attacker" bson:"attacker"`
	Defender    DefenderSide      `json:"defender" bson:"defender"`
}

// ReportInput 生成战报需要的全部数据。
// Snapshot 为空且行军仍在 enroute 时，用 Garrison（当前驻军）预估守方。
type ReportInput struct {
	Raid     *domain.Raid
	Attacker *domain.City
	Target   *domain.City
	Lines    []*domain.RaidTroop
	Snapshot []*domain.RaidDefenderTroop
	Garrison []*domain.CityTroop
	Types    map[domain.TroopTypeID]*domain.TroopType
}

// BuildRaidReport 纯函数，不读写存储。
func BuildRaidReport(in ReportInput) RaidReport {
	r := in.Raid
	rep := RaidReport{
		RaidID:     r.ID,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		ArrivesAt:  r.ArrivesAt,
		ReturnsAt:  r.ReturnsAt,
		ResolvedAt: r.ResolvedAt,
		Loot:       r.Stolen,
	}
	rep.Attacker.City = reportCity(in.Attacker, r.AttackerCityID)
	rep.Defender.City = reportCity(in.Target, r.TargetCityID)

	rep.Attacker.Lines = make([]AttackerLine, 0, len(in.Lines))
	for _, rt := range in.Lines {
		tt := in.Types[rt.TroopTypeID]
		sent := rt.SentOriginal()
		line := AttackerLine{
			TroopTypeID: rt.TroopTypeID,
			Sent:        sent,
			Lost:        rt.CountLost,
			Returning:   max(0, sent-rt.CountLost),
		}
		if tt != nil {
			line.Code, line.Name = tt.Code, tt.Name
			rep.Attacker.PowerStart += float64(sent) * rules.AttackUnitPower(tt)
			rep.Attacker.PowerLost += float64(rt.CountLost) * rules.AttackUnitPower(tt)
		}
		rep.Attacker.Sent += line.Sent
		rep.Attacker.Lost += line.Lost
		rep.Attacker.Returning += line.Returning
		rep.Attacker.Lines = append(rep.Attacker.Lines, line)
	}

	rep.Defender.Lines = make([]DefenderLine, 0, len(in.Snapshot)+len(in.Garrison))
	switch {
	case len(in.Snapshot) > 0:
		rep.Defender.Source = DefenderSourceSnapshot
		for _, row := range in.Snapshot {
			rep.addDefender(row.TroopTypeID, row.CountStart, row.CountLost, in.Types[row.TroopTypeID])
		}
	case r.Status == domain.RaidEnroute:
		rep.Defender.Source = DefenderSourceGarrison
		for _, ct := range in.Garrison {
			if ct.Count > 0 {
				rep.addDefender(ct.TroopTypeID, ct.Count, 0, in.Types[ct.TroopTypeID])
			}
		}
	default:
		// 已过抵达但没有快照：无守军或中途召回
		rep.Defender.Source = DefenderSourceNone
	}
	sort.Slice(rep.Attacker.Lines, func(i, j int) bool {
		return rep.Attacker.Lines[i].TroopTypeID < rep.Attacker.Lines[j].TroopTypeID
	})
	sort.Slice(rep.Defender.Lines, func(i, j int) bool {
		return rep.Defender.Lines[i].TroopTypeID < rep.Defender.Lines[j].TroopTypeID
	})

	rep.OutcomeHint = rules.OutcomeHint(rep.Attacker.PowerStart, rep.Defender.PowerStart)
	rep.Attacker.PowerStart = rules.Round2(rep.Attacker.PowerStart)
	rep.Attacker.PowerLost = rules.Round2(rep.Attacker.PowerLost)
	rep.Defender.PowerStart = rules.Round2(rep.Defender.PowerStart)
	rep.Defender.PowerLost = rules.Round2(rep.Defender.PowerLost)
	return rep
}

func (rep *RaidReport) addDefender(id domain.TroopTypeID, start, lost int64, tt *domain.TroopType) {
	line := DefenderLine{
		TroopTypeID: id,
		Start:       start,
		Lost:        lost,
		Remaining:   max(0, start-lost),
	}
	if tt != nil {
		line.Code, line.Name = tt.Code, tt.Name
		rep.Defender.PowerStart += float64(start) * rules.DefenseUnitPower(tt)
		rep.Defender.PowerLost += float64(lost) * rules.DefenseUnitPower(tt)
	}
	rep.Defender.Start += line.Start
	rep.Defender.Lost += line.Lost
	rep.Defender.Remaining += line.Remaining
	rep.Defender.Lines = append(rep.Defender.Lines, line)
}

func reportCity(c *domain.City, id domain.CityID) ReportCity {
	if c == nil {
		return ReportCity{CityID: id}
	}
	return ReportCity{CityID: c.ID, OwnerID: c.OwnerID, Name: c.Name}
}

// buildReport 在事务内收集数据并生成战报。
func (w *worldTx) buildReport(ctx context.Context, r *domain.Raid, attacker, target *domain.City) (RaidReport, error) {
	return collectReport(ctx, w.tx, r, attacker, target)
}

func collectReport(ctx context.Context, tx port.Tx, r *domain.Raid, attacker, target *domain.City) (RaidReport, error) {
	in := ReportInput{Raid: r, Attacker: attacker, Target: target}
	var err error
	if in.Lines, err = tx.RaidTroops(ctx, r.ID); err != nil {
		return RaidReport{}, err
	}
	if in.Snapshot, err = tx.DefenderSnapshot(ctx, r.ID); err != nil {
		return RaidReport{}, err
	}
	if len(in.Snapshot) == 0 && r.Status == domain.RaidEnroute {
		if in.Garrison, err = tx.CityTroops(ctx, r.TargetCityID); err != nil {
			return RaidReport{}, err
		}
	}

	ids := make([]domain.TroopTypeID, 0, len(in.Lines)+len(in.Snapshot)+len(in.Garrison))
	for _, rt := range in.Lines {
		ids = append(ids, rt.TroopTypeID)
	}
	for _, row := range in.Snapshot {
		ids = append(ids, row.TroopTypeID)
	}
	for _, ct := range in.Garrison {
		ids = append(ids, ct.TroopTypeID)
	}
	if in.Types, err = tx.TroopTypes(ctx, ids); err != nil {
		return RaidReport{}, err
	}
	return BuildRaidReport(in), nil
}

// ReportSubject 形如 "Raid #12 resolved — attacker_advantage"。
func ReportSubject(rep RaidReport) string {
	hint := rep.OutcomeHint
	if hint == "" {
		hint = "combat_report"
	}
	return fmt.Sprintf("Raid #%d resolved — %s", rep.RaidID, hint)
}

// ReportBody 邮件正文，纯文本。
func ReportBody(rep RaidReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Raid #%d resolved.\n", rep.RaidID)
	fmt.Fprintf(&b, "Attacker: %s (city %d)\n", rep.Attacker.City.Name, rep.Attacker.City.CityID)
	fmt.Fprintf(&b, "Defender: %s (city %d)\n", rep.Defender.City.Name, rep.Defender.City.CityID)
	if rep.OutcomeHint != "" {
		fmt.Fprintf(&b, "Outcome: %s\n", rep.OutcomeHint)
	}
	fmt.Fprintf(&b, "Loot: food=%d wood=%d stone=%d iron=%d\n",
		rep.Loot.Food, rep.Loot.Wood, rep.Loot.Stone, rep.Loot.Iron)
	fmt.Fprintf(&b, "Attacker troops: sent=%d lost=%d returning=%d\n",
		rep.Attacker.Sent, rep.Attacker.Lost, rep.Attacker.Returning)
	fmt.Fprintf(&b, "Defender troops: start=%d lost=%d remaining=%d\n",
		rep.Defender.Start, rep.Defender.Lost, rep.Defender.Remaining)
	fmt.Fprintf(&b, "Power: attacker %.2f (lost %.2f), defender %.2f (lost %.2f)\n",
		rep.Attacker.PowerStart, rep.Attacker.PowerLost, rep.Defender.PowerStart, rep.Defender.PowerLost)
	return b.String()
}

// reportMessages 每个参战玩家一封，同一玩家只发一次。
func reportMessages(rep RaidReport, at time.Time, owners ...domain.UserID) []port.Message {
	subject, body := ReportSubject(rep), ReportBody(rep)
	out := make([]port.Message, 0, len(owners))
	seen := make(map[domain.UserID]struct{}, len(owners))
	for _, uid := range owners {
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		out = append(out, port.Message{
			UserID:  uid,
			Kind:    MailKindRaidReport,
			Subject: subject,
			Body:    body,
			Payload: rep,
			SentAt:  at,
		})
	}
	return out
}
