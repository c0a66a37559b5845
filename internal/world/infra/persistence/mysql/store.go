package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mgmcelwee/evony/internal/world/app/port"
	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/internal/world/infra/persistence/model"
	"github.com/mgmcelwee/evony/modules/kit/errx"
)

// Store 基于 gorm 的事务型世界存储。
type Store struct {
	db *gorm.DB
}

var _ port.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate 建表并写入世界锁行。
func (s *Store) AutoMigrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(model.All()...); err != nil {
		return unavailable("auto_migrate", err)
	}
	lock := model.WorldLock{ID: model.WorldLockID, Name: "world"}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&lock).Error; err != nil {
		return unavailable("seed_world_lock", err)
	}
	return nil
}

// InTx fn 返回的业务错误原样透传，其他错误（含提交失败）包装成 ErrSystemUnavailable。
func (s *Store) InTx(ctx context.Context, fn func(tx port.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&tx{db: gtx})
	})
	if err == nil {
		return nil
	}
	var xe *errx.Error
	if errors.As(err, &xe) {
		return err
	}
	return unavailable("transaction", err)
}

func unavailable(op string, err error) error {
	return domain.ErrSystemUnavailable.WithData("op", op).WithCause(err)
}
