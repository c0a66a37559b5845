package domain

import "time"

type UpgradeID int64

// Upgrade 是进行中的建筑升级，每座城同时最多一条。
type Upgrade struct {
	ID           UpgradeID
	CityID       CityID
	BuildingType BuildingType
	FromLevel    int
	ToLevel      int
	StartedAt    time.Time
	CompletesAt  time.Time
}

func (u *Upgrade) Validate() error {
	if u == nil || u.CityID == 0 || u.BuildingType == "" || u.ToLevel < 1 || u.CompletesAt.IsZero() {
		return ErrInvalidEntity.WithData("entity", "upgrade")
	}
	return nil
}
