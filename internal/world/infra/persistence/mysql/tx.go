package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mgmcelwee/evony/internal/world/app/port"
	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/internal/world/infra/persistence/model"
)

type tx struct {
	db *gorm.DB
}

var _ port.Tx = (*tx)(nil)

func (t *tx) q(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}

// lockQuery SELECT ... FROM world_locks WHERE id = 1 FOR UPDATE
func lockQuery(db *gorm.DB, dest *model.WorldLock) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", model.WorldLockID).
		Take(dest)
}

func (t *tx) LockWorld(ctx context.Context) error {
	var lock model.WorldLock
	err := lockQuery(t.q(ctx), &lock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 未迁移的库：补一行再锁
		seed := model.WorldLock{ID: model.WorldLockID, Name: "world"}
		if err := t.q(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return unavailable("lock_world", err)
		}
		err = lockQuery(t.q(ctx), &lock).Error
	}
	if err != nil {
		return unavailable("lock_world", err)
	}
	return nil
}

// ---- cities ----

func (t *tx) ListCities(ctx context.Context) ([]*domain.City, error) {
	var rows []model.City
	if err := t.q(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, unavailable("list_cities", err)
	}
	out := make([]*domain.City, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (t *tx) GetCity(ctx context.Context, id domain.CityID) (*domain.City, error) {
	var row model.City
	err := t.q(ctx).Where("id = ?", int64(id)).Take(&row).Error
	if err == nil {
		return row.ToDomain(), nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCityNotFound.WithData("city_id", id)
	}
	return nil, domain.ErrSystemUnavailable.WithData("city_id", id).WithCause(err)
}

func (t *tx) SaveCity(ctx context.Context, c *domain.City) error {
	if err := c.Validate(); err != nil {
		return err
	}
	row := model.CityFromDomain(c)
	if err := t.q(ctx).Save(&row).Error; err != nil {
		return domain.ErrSystemUnavailable.WithData("city_id", c.ID).WithCause(err)
	}
	return nil
}

// ---- buildings / upgrades ----

func (t *tx) BuildingLevels(ctx context.Context, cityID domain.CityID) (domain.Levels, error) {
	var rows []model.Building
	if err := t.q(ctx).Where("city_id = ?", int64(cityID)).Find(&rows).Error; err != nil {
		return nil, domain.ErrSystemUnavailable.WithData("city_id", cityID).WithCause(err)
	}
	out := make(domain.Levels, len(rows))
	for _, b := range rows {
		out[domain.BuildingType(b.Type)] = b.Level
	}
	return out, nil
}

func (t *tx) SetBuildingLevel(ctx context.Context, cityID domain.CityID, bt domain.BuildingType, level int) error {
	res := t.q(ctx).Model(&model.Building{}).
		Where("city_id = ? AND type = ?", int64(cityID), string(bt)).
		Update("level", level)
	if res.Error != nil {
		return domain.ErrSystemUnavailable.WithData("city_id", cityID).WithCause(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// MySQL 值未变化时 RowsAffected 也是 0，需要再确认一次行是否存在
	var n int64
	if err := t.q(ctx).Model(&model.Building{}).
		Where("city_id = ? AND type = ?", int64(cityID), string(bt)).
		Count(&n).Error; err != nil {
		return domain.ErrSystemUnavailable.WithData("city_id", cityID).WithCause(err)
	}
	if n == 0 {
		return domain.ErrBuildingNotFound.WithDataMap(map[string]any{"city_id": cityID, "type": bt})
	}
	return nil
}

func (t *tx) DueUpgrades(ctx context.Context, at time.Time) ([]*domain.Upgrade, error) {
	var rows []model.Upgrade
	err := t.q(ctx).Where("completes_at <= ?", at.UTC()).
		Order("completes_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, unavailable("due_upgrades", err)
	}
	out := make([]*domain.Upgrade, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (t *tx) DeleteUpgrade(ctx context.Context, id domain.UpgradeID) error {
	if err := t.q(ctx).Delete(&model.Upgrade{}, int64(id)).Error; err != nil {
		return domain.ErrSystemUnavailable.WithData("upgrade_id", id).WithCause(err)
	}
	return nil
}

func (t *tx) NextUpgradeAt(ctx context.Context, after, until time.Time) (time.Time, bool, error) {
	return t.minTime(ctx, "next_upgrade", t.q(ctx).Model(&model.Upgrade{}), "completes_at", after, until)
}

// ---- raids ----

func (t *tx) DueArrivals(ctx context.Context, at time.Time) ([]*domain.Raid, error) {
	return t.raidsWhere(ctx, "due_arrivals", "arrives_at",
		"status = ? AND arrives_at IS NOT NULL AND arrives_at <= ?", string(domain.RaidEnroute), at.UTC())
}

func (t *tx) DueReturns(ctx context.Context, at time.Time) ([]*domain.Raid, error) {
	return t.raidsWhere(ctx, "due_returns", "returns_at",
		"status = ? AND returns_at IS NOT NULL AND returns_at <= ?", string(domain.RaidReturning), at.UTC())
}

func (t *tx) NextArrivalAt(ctx context.Context, after, until time.Time) (time.Time, bool, error) {
	q := t.q(ctx).Model(&model.Raid{}).Where("status = ?", string(domain.RaidEnroute))
	return t.minTime(ctx, "next_arrival", q, "arrives_at", after, until)
}

func (t *tx) NextReturnAt(ctx context.Context, after, until time.Time) (time.Time, bool, error) {
	q := t.q(ctx).Model(&model.Raid{}).Where("status = ?", string(domain.RaidReturning))
	return t.minTime(ctx, "next_return", q, "returns_at", after, until)
}

func (t *tx) GetRaid(ctx context.Context, id domain.RaidID) (*domain.Raid, error) {
	var row model.Raid
	err := t.q(ctx).Where("id = ?", int64(id)).Take(&row).Error
	if err == nil {
		return row.ToDomain(), nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRaidNotFound.WithData("raid_id", id)
	}
	return nil, domain.ErrSystemUnavailable.WithData("raid_id", id).WithCause(err)
}

func (t *tx) InsertRaid(ctx context.Context, r *domain.Raid) error {
	if err := r.Validate(); err != nil {
		return err
	}
	row := model.RaidFromDomain(r)
	row.ID = 0
	if err := t.q(ctx).Create(&row).Error; err != nil {
		return unavailable("insert_raid", err)
	}
	r.ID = domain.RaidID(row.ID)
	return nil
}

func (t *tx) SaveRaid(ctx context.Context, r *domain.Raid) error {
	if err := r.Validate(); err != nil {
		return err
	}
	row := model.RaidFromDomain(r)
	if err := t.q(ctx).Save(&row).Error; err != nil {
		return domain.ErrSystemUnavailable.WithData("raid_id", r.ID).WithCause(err)
	}
	return nil
}

func (t *tx) ActiveRaidCount(ctx context.Context, attacker domain.CityID) (int, error) {
	var n int64
	err := t.q(ctx).Model(&model.Raid{}).
		Where("attacker_city_id = ? AND status IN ?", int64(attacker),
			[]string{string(domain.RaidEnroute), string(domain.RaidReturning)}).
		Count(&n).Error
	if err != nil {
		return 0, domain.ErrSystemUnavailable.WithData("city_id", attacker).WithCause(err)
	}
	return int(n), nil
}

// ownedRaidsQuery 通过攻方城池过滤城主，进行中的排在前面。
func ownedRaidsQuery(db *gorm.DB, f port.RaidFilter, dest *[]model.Raid) *gorm.DB {
	q := db.Model(&model.Raid{}).
		Select("raids.*").
		Joins("JOIN cities ON cities.id = raids.attacker_city_id").
		Where("cities.owner_id = ?", int64(f.OwnerID))
	if f.Status != "" {
		q = q.Where("raids.status = ?", string(f.Status))
	}
	q = q.Order(clause.OrderBy{Expression: clause.Expr{
		SQL:  "CASE raids.status WHEN ? THEN 0 WHEN ? THEN 1 ELSE 2 END, raids.id DESC",
		Vars: []any{string(domain.RaidEnroute), string(domain.RaidReturning)},
	}})
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q.Find(dest)
}

func (t *tx) ListRaids(ctx context.Context, f port.RaidFilter) ([]*domain.Raid, error) {
	var rows []model.Raid
	if err := ownedRaidsQuery(t.q(ctx), f, &rows).Error; err != nil {
		return nil, unavailable("list_raids", err)
	}
	out := make([]*domain.Raid, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (t *tx) raidsWhere(ctx context.Context, op, orderCol, cond string, args ...any) ([]*domain.Raid, error) {
	var rows []model.Raid
	if err := t.q(ctx).Where(cond, args...).Order(orderCol + ", id").Find(&rows).Error; err != nil {
		return nil, unavailable(op, err)
	}
	out := make([]*domain.Raid, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// minTime 查询 (after, until] 区间内 col 的最小值。
func (t *tx) minTime(_ context.Context, op string, q *gorm.DB, col string, after, until time.Time) (time.Time, bool, error) {
	var at sql.NullTime
	err := q.Where(col+" > ? AND "+col+" <= ?", after.UTC(), until.UTC()).
		Select("MIN(" + col + ")").
		Scan(&at).Error
	if err != nil {
		return time.Time{}, false, unavailable(op, err)
	}
	if !at.Valid {
		return time.Time{}, false, nil
	}
	return at.Time.UTC(), true, nil
}

// ---- troops ----

func (t *tx) RaidTroops(ctx context.Context, raidID domain.RaidID) ([]*domain.RaidTroop, error) {
	var rows []model.RaidTroop
	if err := t.q(ctx).Where("raid_id = ?", int64(raidID)).Order("troop_type_id").Find(&rows).Error; err != nil {
		return nil, domain.ErrSystemUnavailable.WithData("raid_id", raidID).WithCause(err)
	}
	out := make([]*domain.RaidTroop, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (t *tx) InsertRaidTroops(ctx context.Context, lines []*domain.RaidTroop) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]model.RaidTroop, 0, len(lines))
	for _, rt := range lines {
		rows = append(rows, model.RaidTroopFromDomain(rt))
	}
	if err := t.q(ctx).Create(&rows).Error; err != nil {
		return unavailable("insert_raid_troops", err)
	}
	return nil
}

func (t *tx) SaveRaidTroop(ctx context.Context, rt *domain.RaidTroop) error {
	if rt.CountLost < 0 || rt.CountLost > rt.CountSent {
		return domain.ErrInvalidEntity.WithDataMap(map[string]any{"entity": "raid_troop", "raid_id": rt.RaidID, "field": "count_lost"})
	}
	row := model.RaidTroopFromDomain(rt)
	if err := t.q(ctx).Save(&row).Error; err != nil {
		return domain.ErrSystemUnavailable.WithData("raid_id", rt.RaidID).WithCause(err)
	}
	return nil
}

func (t *tx) HasDefenderSnapshot(ctx context.Context, raidID domain.RaidID) (bool, error) {
	var n int64
	if err := t.q(ctx).Model(&model.RaidDefenderTroop{}).Where("raid_id = ?", int64(raidID)).Count(&n).Error; err != nil {
		return false, domain.ErrSystemUnavailable.WithData("raid_id", raidID).WithCause(err)
	}
	return n > 0, nil
}

func (t *tx) InsertDefenderSnapshot(ctx context.Context, rows []*domain.RaidDefenderTroop) error {
	if len(rows) == 0 {
		return nil
	}
	out := make([]model.RaidDefenderTroop, 0, len(rows))
	for _, d := range rows {
		out = append(out, model.RaidDefenderTroopFromDomain(d))
	}
	if err := t.q(ctx).Create(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrInvalidEntity.WithDataMap(map[string]any{"entity": "raid_defender_troop", "raid_id": rows[0].RaidID})
		}
		return unavailable("insert_defender_snapshot", err)
	}
	return nil
}

func (t *tx) DefenderSnapshot(ctx context.Context, raidID domain.RaidID) ([]*domain.RaidDefenderTroop, error) {
	var rows []model.RaidDefenderTroop
	if err := t.q(ctx).Where("raid_id = ?", int64(raidID)).Order("troop_type_id").Find(&rows).Error; err != nil {
		return nil, domain.ErrSystemUnavailable.WithData("raid_id", raidID).WithCause(err)
	}
	out := make([]*domain.RaidDefenderTroop, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (t *tx) CityTroops(ctx context.Context, cityID domain.CityID) ([]*domain.CityTroop, error) {
	var rows []model.CityTroop
	if err := t.q(ctx).Where("city_id = ?", int64(cityID)).Order("troop_type_id").Find(&rows).Error; err != nil {
		return nil, domain.ErrSystemUnavailable.WithData("city_id", cityID).WithCause(err)
	}
	out := make([]*domain.CityTroop, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// SaveCityTroop INSERT ... ON DUPLICATE KEY UPDATE count = VALUES(count)
func (t *tx) SaveCityTroop(ctx context.Context, ct *domain.CityTroop) error {
	if ct.Count < 0 {
		return domain.ErrInvalidEntity.WithDataMap(map[string]any{"entity": "city_troop", "city_id": ct.CityID, "field": "count"})
	}
	row := model.CityTroopFromDomain(ct)
	err := t.q(ctx).Clauses(upsertCount()).Create(&row).Error
	if err != nil {
		return domain.ErrSystemUnavailable.WithData("city_id", ct.CityID).WithCause(err)
	}
	return nil
}

func upsertCount() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "city_id"}, {Name: "troop_type_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"count"}),
	}
}

func (t *tx) TroopTypes(ctx context.Context, ids []domain.TroopTypeID) (map[domain.TroopTypeID]*domain.TroopType, error) {
	out := make(map[domain.TroopTypeID]*domain.TroopType, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]int64, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, int64(id))
	}
	var rows []model.TroopType
	if err := t.q(ctx).Where("id IN ?", raw).Find(&rows).Error; err != nil {
		return nil, unavailable("troop_types", err)
	}
	for i := range rows {
		tt := rows[i].ToDomain()
		out[tt.ID] = tt
	}
	return out, nil
}

func (t *tx) TroopTypesByCode(ctx context.Context, codes []string) (map[string]*domain.TroopType, error) {
	out := make(map[string]*domain.TroopType, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	var rows []model.TroopType
	if err := t.q(ctx).Where("code IN ?", codes).Find(&rows).Error; err != nil {
		return nil, unavailable("troop_types_by_code", err)
	}
	for i := range rows {
		tt := rows[i].ToDomain()
		out[tt.Code] = tt
	}
	return out, nil
}
