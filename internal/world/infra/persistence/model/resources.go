package model

import (
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

// ResourceCols 四种资源的一组列，通过 embeddedPrefix 复用。
type ResourceCols struct {
	Food  int64 `gorm:"column:food;type:bigint;not null;default:0;"`
	Wood  int64 `gorm:"column:wood;type:bigint;not null;default:0;"`
	Stone int64 `gorm:"column:stone;type:bigint;not null;default:0;"`
	Iron  int64 `gorm:"column:iron;type:bigint;not null;default:0;"`
}

func resourceCols(r domain.Resources) ResourceCols {
	return ResourceCols{Food: r.Food, Wood: r.Wood, Stone: r.Stone, Iron: r.Iron}
}

func (c ResourceCols) toDomain() domain.Resources {
	return domain.Resources{Food: c.Food, Wood: c.Wood, Stone: c.Stone, Iron: c.Iron}
}

// nullTime 零值时间存 NULL。
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func fromNull(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
