package messages

import "time"

type WorldMessage interface {
	PlayerID() PlayerId
	TraceID() string
	// DeadlineAt 零值表示调用方没有截止时间。
	DeadlineAt() time.Time
}

type WorldBaseMessage struct {
	PlayerId PlayerId
	Trace    string
	Deadline time.Time
}

func (w WorldBaseMessage) PlayerID() PlayerId {
	return w.PlayerId
}

func (w WorldBaseMessage) TraceID() string {
	return w.Trace
}

func (w WorldBaseMessage) DeadlineAt() time.Time {
	return w.Deadline
}

// HWTick 推进世界到 Now。
type HWTick struct {
	WorldBaseMessage
	Now time.Time
}

type HWLaunchRaid struct {
	WorldBaseMessage
	Now            time.Time
	AttackerCityId int64
	TargetCityId   int64
	Troops         []TroopLine
}

type HWRecallRaid struct {
	WorldBaseMessage
	Now    time.Time
	RaidId int64
}

type HWPreviewRaid struct {
	WorldBaseMessage
	Now            time.Time
	AttackerCityId int64
	TargetCityId   int64
}

type HWRaidReport struct {
	WorldBaseMessage
	RaidId int64
}

// HWListRaids Status 为空表示不限，Limit <= 0 取默认值。
type HWListRaids struct {
	WorldBaseMessage
	Status string
	Limit  int
}

type HWGetRaid struct {
	WorldBaseMessage
	RaidId int64
}
