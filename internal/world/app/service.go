package app

import (
	"github.com/mgmcelwee/evony/internal/world/app/port"
	"github.com/mgmcelwee/evony/modules/kit/logx"
)

// WorldService 聚合世界推进与玩家命令，由世界 actor 串行调用。
type WorldService struct {
	*Scheduler
	*Commands
}

func NewWorldService(store port.Store, mailer port.Mailer, log logx.Logger, opts SchedulerOptions) *WorldService {
	return &WorldService{
		Scheduler: NewScheduler(store, mailer, log, opts),
		Commands:  NewCommands(store, log),
	}
}
