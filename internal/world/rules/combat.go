package rules

import (
	"math"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

// 战力权重：attack/defense + 0.10*hp。
const hpWeight = 0.10

// 伤亡率区间。
const (
	attackerLossFactor = 0.80
	attackerLossMin    = 0.05
	attackerLossMax    = 0.60
	defenderLossFactor = 1.00
	defenderLossMin    = 0.10
	defenderLossMax    = 0.75
)

func AttackUnitPower(tt *domain.TroopType) float64 {
	if tt == nil {
		return 0
	}
	return float64(tt.Attack) + hpWeight*float64(tt.HP)
}

func DefenseUnitPower(tt *domain.TroopType) float64 {
	if tt == nil {
		return 0
	}
	return float64(tt.Defense) + hpWeight*float64(tt.HP)
}

// Verdict 战斗判定。
type Verdict int

const (
	// VerdictEngaged 双方都有战力，按伤亡率结算。
	VerdictEngaged Verdict = iota
	// VerdictUndefended 守方战力为 0，双方都无损失。
	VerdictUndefended
	// VerdictNoAttack 攻方战力为 0，不做任何修改。
	VerdictNoAttack
)

// LossRates 单回合确定性战斗的伤亡率。
type LossRates struct {
	Verdict  Verdict
	Ratio    float64
	Attacker float64
	Defender float64
}

// ComputeLossRates ratio = def/(atk+def)；
// 攻方伤亡率 clamp(ratio*0.8, 0.05, 0.60)，守方 clamp((1-ratio)*1.0, 0.10, 0.75)。
func ComputeLossRates(attackPower, defensePower float64) LossRates {
	switch {
	case defensePower <= 0:
		return LossRates{Verdict: VerdictUndefended}
	case attackPower <= 0:
		return LossRates{Verdict: VerdictNoAttack}
	}
	ratio := defensePower / (attackPower + defensePower)
	return LossRates{
		Verdict:  VerdictEngaged,
		Ratio:    ratio,
		Attacker: clamp(ratio*attackerLossFactor, attackerLossMin, attackerLossMax),
		Defender: clamp((1-ratio)*defenderLossFactor, defenderLossMin, defenderLossMax),
	}
}

// Casualties 某条兵线的损失 round(count*rate)，四舍六入五成双，并截断到 [0, count]。
func Casualties(count int64, rate float64) int64 {
	if count <= 0 || rate <= 0 {
		return 0
	}
	lost := int64(math.RoundToEven(float64(count) * rate))
	return min(count, max(0, lost))
}

// OutcomeHint 战报里的优势提示，任一方战力为 0 时返回空串。
func OutcomeHint(attackPower, defensePower float64) string {
	if attackPower <= 0 || defensePower <= 0 {
		return ""
	}
	if defensePower/(attackPower+defensePower) < 0.5 {
		return "attacker_advantage"
	}
	return "defender_advantage"
}

// Round2 保留两位小数，用于战报里重建的战力数值。
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
