package domain

type TroopTypeID int64

// TroopType 兵种静态配置，只读。
type TroopType struct {
	ID      TroopTypeID
	Code    string
	Name    string
	Tier    int
	Attack  int64
	Defense int64
	HP      int64
	// Speed 越大越快，100 为基准。
	Speed int64
	// Carry 单兵负重。
	Carry int64
}

// CityTroop 城内驻军。
type CityTroop struct {
	CityID      CityID
	TroopTypeID TroopTypeID
	Count       int64
}

// RaidTroop 出征部队的一条兵种记录。
//
// 回城后 CountSent 被置为 CountLost，同时 Returned=true、CountReturned 记录实际回城数量，
// 再次执行回城时 returning 计算为 0。
type RaidTroop struct {
	RaidID        RaidID
	TroopTypeID   TroopTypeID
	CountSent     int64
	CountLost     int64
	CountReturned int64
	Returned      bool
}

// SentOriginal 返回出征时的原始数量（回城围栏之后也能还原）。
func (rt *RaidTroop) SentOriginal() int64 {
	if rt.Returned {
		return rt.CountLost + rt.CountReturned
	}
	return rt.CountSent
}

// RaidDefenderTroop 抵达瞬间守军快照，创建后不再修改。
type RaidDefenderTroop struct {
	RaidID      RaidID
	TroopTypeID TroopTypeID
	CountStart  int64
	CountLost   int64
}
