package domain

import "time"

// TickSummary 一次世界推进的统计，只用于观测。
type TickSummary struct {
	CitiesTotal         int       `json:"cities_total"`
	CitiesTicked        int       `json:"cities_ticked"`
	MinutesAppliedTotal int64     `json:"minutes_applied_total"`
	UpgradesCompleted   int       `json:"upgrades_completed"`
	RaidsArrived        int       `json:"raids_arrived"`
	RaidsReturned       int       `json:"raids_returned"`
	Steps               int       `json:"steps"`
	At                  time.Time `json:"at"`
	// ReachedAt 是模拟时钟实际到达的时刻；Truncated 时小于 At。
	ReachedAt time.Time `json:"reached_at"`
	Truncated bool      `json:"truncated"`
}
