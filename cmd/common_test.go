package cmd

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mgmcelwee/evony/internal/shared/logs"
	"github.com/mgmcelwee/evony/internal/shared/serverconfig"
)

func TestReadConfig_默认配置可加载(t *testing.T) {
	conf, err := serverconfig.Load("")
	if err != nil {
		t.Fatalf("期望找到 configs/conf.yml, err=%v", err)
	}
	if err := logs.Init("TestReadConfig", conf.Log); err != nil {
		t.Fatalf("期望日志初始化成功, err=%v", err)
	}
	logs.Info("conf", zap.Any("conf", conf))

	if conf.World.Store != serverconfig.StoreMemory || conf.World.Mailer != serverconfig.MailerMemory {
		t.Fatalf("期望默认使用内存存储, got=%+v", conf.World)
	}
	if conf.Tick.Throttle != time.Second || conf.Tick.AskTimeout != 30*time.Second || !conf.Tick.TickOnRead() {
		t.Fatalf("期望 tick 配置解析为 duration, got=%+v", conf.Tick)
	}
}
