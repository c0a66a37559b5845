package rules

import "math"

const (
	// SecondsPerTile 每格基础行军秒数。
	SecondsPerTile = 5
	// BaseTroopSpeed 速度为 100 时不缩放行军时间。
	BaseTroopSpeed = 100
	// RecallReturnFactor 召回回程中的部队时，剩余时间乘以该系数。
	RecallReturnFactor = 0.5
	// minSpeedMultiplier 速度加成之后的时间系数下限。
	minSpeedMultiplier = 0.05
)

// BarracksCarryCap 兵营决定的单次出征负重上限：500 + (L-1)*200 + (L-1)²*50。
func BarracksCarryCap(barracksLevel int) int64 {
	x := int64(max(0, barracksLevel-1))
	return 500 + x*200 + x*x*50
}

// MaxSimultaneousRaids 主城等级决定的同时出征数量。
func MaxSimultaneousRaids(keepLevel int) int {
	switch {
	case keepLevel <= 2:
		return 1
	case keepLevel <= 4:
		return 2
	case keepLevel <= 6:
		return 3
	default:
		return 4
	}
}

// DistanceTiles 两座城之间的欧式距离（格）。
func DistanceTiles(ax, ay, bx, by int) float64 {
	dx := float64(bx - ax)
	dy := float64(by - ay)
	return math.Sqrt(dx*dx + dy*dy)
}

// TravelSeconds 距离换算为基础行军秒数，最少 1 秒。
func TravelSeconds(distanceTiles float64, secondsPerTile int64) int64 {
	return max(1, int64(math.RoundToEven(distanceTiles*float64(secondsPerTile))))
}

// ScaleBySlowest 按最慢兵种速度缩放：ceil(base * 100 / slowest)。
func ScaleBySlowest(baseSeconds, slowestSpeed int64) int64 {
	if slowestSpeed <= 0 {
		slowestSpeed = BaseTroopSpeed
	}
	baseSeconds = max(1, baseSeconds)
	return max(1, int64(math.Ceil(float64(baseSeconds)*float64(BaseTroopSpeed)/float64(slowestSpeed))))
}

// ApplySpeedPct 城池速度加成：ceil(base * max(0.05, 1 - pct/100))，最少 1 秒。
func ApplySpeedPct(baseSeconds int64, speedPct int) int64 {
	pct := max(0, speedPct)
	multiplier := math.Max(minSpeedMultiplier, 1.0-float64(pct)/100.0)
	return max(1, int64(math.Ceil(float64(baseSeconds)*multiplier)))
}

// RecallReturnSeconds 召回回程中的部队：剩余时间减半（向上取整）后再叠加回程加成。
func RecallReturnSeconds(remainingSeconds int64, returnSpeedPct int) int64 {
	remaining := max(1, remainingSeconds)
	sped := max(1, int64(math.Ceil(float64(remaining)*RecallReturnFactor)))
	return ApplySpeedPct(sped, returnSpeedPct)
}
