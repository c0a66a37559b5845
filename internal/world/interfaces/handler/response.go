package handler

import (
	"context"
	"errors"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/mgmcelwee/evony/internal/world/app"
	"github.com/mgmcelwee/evony/internal/world/domain"
	"github.com/mgmcelwee/evony/modules/kit/errx"
	"github.com/mgmcelwee/evony/modules/kit/logx"
)

// CodeOK 成功响应的 code。
const CodeOK = "OK"

// Response 统一响应体。
type Response struct {
	Code string `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(nethttp.StatusOK, Response{Code: CodeOK, Data: data})
}

// statusOf 错误码到 HTTP 状态码。
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrCityNotFound),
		errors.Is(err, domain.ErrRaidNotFound),
		errors.Is(err, domain.ErrBuildingNotFound),
		errors.Is(err, domain.ErrTroopTypeNotFound):
		return nethttp.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRaid),
		errors.Is(err, domain.ErrInvalidEntity),
		errors.Is(err, errx.ErrReqParamERR):
		return nethttp.StatusBadRequest
	case errors.Is(err, domain.ErrNotEnoughTroops),
		errors.Is(err, domain.ErrRaidLimit),
		errors.Is(err, domain.ErrRaidResolved):
		return nethttp.StatusConflict
	case errors.Is(err, errx.ErrTimeout):
		return nethttp.StatusGatewayTimeout
	case errors.Is(err, app.ErrTickFailed),
		errors.Is(err, errx.ErrUnavailable):
		return nethttp.StatusServiceUnavailable
	default:
		return nethttp.StatusInternalServerError
	}
}

// fail 写错误响应。业务拒绝按 biz 记录，技术错误记录一次 cause 链和栈，且不把内部信息返回给客户端。
func fail(ctx context.Context, c *gin.Context, log logx.Logger, action string, err error) {
	status := statusOf(err)
	var xe *errx.Error
	if !errors.As(err, &xe) {
		logx.ReportSysError(ctx, log, logx.NewSysLog(action, err))
		c.AbortWithStatusJSON(status, Response{Code: string(errx.CodeInternal), Msg: errx.ErrInternal.Msg()})
		return
	}
	if xe.IsSys() {
		// 读时推进失败已在 Gate 里报过
		if !errors.Is(err, app.ErrTickFailed) {
			logx.ReportSysError(ctx, log, logx.NewSysLog(action, err))
		}
		c.AbortWithStatusJSON(status, Response{Code: xe.CodeText(), Msg: "系统繁忙，请稍后重试"})
		return
	}
	logx.ReportBiz(ctx, log, logx.NewBizLog(action, xe.Reason(), xe.Msg()))
	resp := Response{Code: xe.CodeText(), Msg: xe.Msg()}
	if reason := xe.Reason(); reason != "" {
		resp.Data = gin.H{"reason": reason}
	}
	c.AbortWithStatusJSON(status, resp)
}
