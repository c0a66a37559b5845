package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/mgmcelwee/evony/internal/shared/logs"
	"github.com/mgmcelwee/evony/internal/shared/serverconfig"
)

// SlowQueryThreshold 超过即按慢查询告警。
const SlowQueryThreshold = 200 * time.Millisecond

// DSN username:password@tcp(host:port)/dbname?charset=...&parseTime=True&loc=UTC
func DSN(cfg serverconfig.MySQLConfig) string {
	charset := cfg.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		charset,
	)
}

func Open(cfg serverconfig.MySQLConfig, logLevel string) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: logs.NewGormLogger(logs.ParseGormLevel(logLevel), SlowQueryThreshold),
		// 世界时间统一用 UTC
		NowFunc: func() time.Time { return time.Now().UTC() },
		// 唯一键冲突翻译成 gorm.ErrDuplicatedKey
		TranslateError: true,
	}
	db, err := gorm.Open(mysql.Open(DSN(cfg)), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}

	logs.Info("open db success",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("db", cfg.DBName),
		zap.String("user", cfg.User),
	)
	return db, nil
}
