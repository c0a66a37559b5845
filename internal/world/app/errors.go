package app

import "github.com/mgmcelwee/evony/modules/kit/errx"

// Code 表示应用层错误码。
type Code = errx.Code

const CodeTickFailed Code = "WORLD_TICK_FAILED"

// ErrTickFailed 世界推进事务失败，状态已回滚。
var ErrTickFailed = errx.NewSys(CodeTickFailed, "世界推进失败")
