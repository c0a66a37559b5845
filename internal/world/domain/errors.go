package domain

import "github.com/mgmcelwee/evony/modules/kit/errx"

// Code 表示世界域错误码。
type Code = errx.Code

const (
	CodeCityNotFound      Code = "WORLD_CITY_NOT_FOUND"
	CodeRaidNotFound      Code = "WORLD_RAID_NOT_FOUND"
	CodeBuildingNotFound  Code = "WORLD_BUILDING_NOT_FOUND"
	CodeTroopTypeNotFound Code = "WORLD_TROOP_TYPE_NOT_FOUND"
	CodeRaidResolved      Code = "WORLD_RAID_RESOLVED"
	CodeInvalidRaid       Code = "WORLD_INVALID_RAID"
	CodeNotEnoughTroops   Code = "WORLD_NOT_ENOUGH_TROOPS"
	CodeRaidLimit         Code = "WORLD_RAID_LIMIT"
	CodeInvalidEntity     Code = "WORLD_INVALID_ENTITY"
	// CodeSystemUnavailable 复用 kit 的统一系统码。
	CodeSystemUnavailable Code = errx.CodeUnavailable
)

type Error = errx.Error

var (
	ErrCityNotFound      = errx.NewBiz(CodeCityNotFound, "城池不存在")
	ErrRaidNotFound      = errx.NewBiz(CodeRaidNotFound, "行军不存在")
	ErrBuildingNotFound  = errx.NewBiz(CodeBuildingNotFound, "建筑不存在")
	ErrTroopTypeNotFound = errx.NewBiz(CodeTroopTypeNotFound, "兵种不存在")
	ErrRaidResolved      = errx.NewBiz(CodeRaidResolved, "行军已结束")
	ErrInvalidRaid       = errx.NewBiz(CodeInvalidRaid, "非法的行军请求")
	ErrNotEnoughTroops   = errx.NewBiz(CodeNotEnoughTroops, "兵力不足")
	ErrRaidLimit         = errx.NewBiz(CodeRaidLimit, "同时出征数量已达上限")
	ErrInvalidEntity     = errx.NewBiz(CodeInvalidEntity, "实体字段非法")
	ErrSystemUnavailable = errx.ErrUnavailable
)
