package main

import (
	"context"
	"errors"
	"flag"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	sharedb "github.com/mgmcelwee/evony/internal/shared/infrastructure/db"
	sharedmongo "github.com/mgmcelwee/evony/internal/shared/infrastructure/mongo"
	"github.com/mgmcelwee/evony/internal/shared/logs"
	"github.com/mgmcelwee/evony/internal/shared/serverconfig"
	transporthttp "github.com/mgmcelwee/evony/internal/shared/transport/http"
	worldactor "github.com/mgmcelwee/evony/internal/world/actor"
	"github.com/mgmcelwee/evony/internal/world/app"
	"github.com/mgmcelwee/evony/internal/world/app/port"
	mailmem "github.com/mgmcelwee/evony/internal/world/infra/mail/memory"
	mailmongo "github.com/mgmcelwee/evony/internal/world/infra/mail/mongodb"
	"github.com/mgmcelwee/evony/internal/world/infra/persistence/memory"
	worldmysql "github.com/mgmcelwee/evony/internal/world/infra/persistence/mysql"
	"github.com/mgmcelwee/evony/internal/world/interfaces"
	"github.com/mgmcelwee/evony/modules/kit/logx"
)

func main() {
	cfgName := flag.String("config", "", "配置文件路径，默认向上查找 configs/conf.yml")
	flag.Parse()

	conf, err := serverconfig.Load(*cfgName)
	if err != nil {
		panic(err)
	}
	if err := logs.Init("world", conf.Log); err != nil {
		panic(err)
	}
	defer func() { _ = logs.Sync() }()
	logs.Info("conf", zap.Any("conf", conf))

	log := logx.NewZapLogger(logs.Logger())
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, conf)
	mailer, closeMailer := openMailer(ctx, conf)
	defer closeMailer()

	svc := app.NewWorldService(store, mailer, log, app.SchedulerOptions{MaxSteps: conf.Tick.MaxSteps})
	runtime := worldactor.NewRuntime(svc, conf.Tick.AskTimeout, log)
	defer runtime.Shutdown()

	gate := app.NewGate(runtime, gateOptions(conf.Tick), log)
	serverconfig.OnChange(func(next *serverconfig.Config) {
		gate.SetOptions(gateOptions(next.Tick))
		logs.SetLevel(next.Log.Level)
		logs.Info("config reloaded",
			zap.Bool("tick_on_read", next.Tick.TickOnRead()),
			zap.Duration("throttle", next.Tick.Throttle),
			zap.String("log_level", next.Log.Level),
		)
	})

	server := transporthttp.NewHttpServer(transporthttp.Addr(conf.HTTPServer.Host, conf.HTTPServer.Port), nil, log)
	server.Register(interfaces.New(runtime, gate, log))

	go func() {
		logs.Info("world http server started",
			zap.String("host", conf.HTTPServer.Host),
			zap.Int("port", conf.HTTPServer.Port),
			zap.String("store", conf.World.Store),
			zap.String("mailer", conf.World.Mailer),
		)
		if err := server.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logs.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logs.Info("收到退出信号，准备优雅退出")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logs.Error("http server shutdown failed", zap.Error(err))
	}
}

func gateOptions(c serverconfig.TickConfig) app.GateOptions {
	return app.GateOptions{Enabled: c.TickOnRead(), Throttle: c.Throttle}
}

func openStore(ctx context.Context, conf *serverconfig.Config) port.Store {
	switch conf.World.Store {
	case serverconfig.StoreMySQL:
		gdb, err := sharedb.Open(conf.MySQL, conf.Log.Level)
		if err != nil {
			logs.Fatal("open mysql failed", zap.Error(err))
		}
		store := worldmysql.NewStore(gdb)
		if conf.MySQL.AutoMigrate {
			if err := store.AutoMigrate(ctx); err != nil {
				logs.Fatal("auto migrate failed", zap.Error(err))
			}
		}
		return store
	case serverconfig.StoreMemory:
		store := memory.NewStore()
		if conf.World.SeedDemo {
			memory.SeedDemo(store, time.Now().UTC())
		}
		return store
	default:
		logs.Fatal("unknown world.store", zap.String("store", conf.World.Store))
		return nil
	}
}

func openMailer(ctx context.Context, conf *serverconfig.Config) (port.Mailer, func()) {
	switch conf.World.Mailer {
	case serverconfig.MailerMongoDB:
		client, err := sharedmongo.Open(ctx, conf.MongoDB, logs.Logger())
		if err != nil {
			logs.Fatal("open mongodb failed", zap.Error(err))
		}
		mailer := mailmongo.NewMailer(client.Database(conf.MongoDB.Database), conf.MongoDB.MailCollection)
		if err := mailer.EnsureIndexes(ctx); err != nil {
			logs.Warn("ensure mail indexes failed", zap.Error(err))
		}
		return mailer, func() { _ = client.Disconnect(context.Background()) }
	case serverconfig.MailerMemory:
		return mailmem.NewMailer(), func() {}
	default:
		logs.Fatal("unknown world.mailer", zap.String("mailer", conf.World.Mailer))
		return nil, func() {}
	}
}
