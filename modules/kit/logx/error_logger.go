package logx

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// 通过能力接口提取字段，logx 不直接依赖 errx。
type (
	codeTextProvider interface{ CodeText() string }
	msgProvider      interface{ Msg() string }
	dataProvider     interface{ Data() map[string]any }
	stackProvider    interface{ Stack() []uintptr }
	reasonProvider   interface{ Reason() string }
)

type ErrorLog struct {
	Error      string
	Code       string
	Msg        string
	Reason     string
	Data       map[string]any
	CauseChain []string
	Origin     string
	Stack      string
}

const (
	maxStackFrames = 32
	maxCauseDepth  = 20
)

// BuildErrorLog 把错误码、上下文、cause 链和发生处栈提取成便于阅读的结构。
func BuildErrorLog(err error) ErrorLog {
	if err == nil {
		return ErrorLog{}
	}
	out := ErrorLog{Error: err.Error()}

	var cp codeTextProvider
	if errors.As(err, &cp) {
		out.Code = cp.CodeText()
	}
	var mp msgProvider
	if errors.As(err, &mp) {
		out.Msg = mp.Msg()
	}
	var dp dataProvider
	if errors.As(err, &dp) {
		out.Data = dp.Data()
	}
	var rp reasonProvider
	if errors.As(err, &rp) {
		out.Reason = rp.Reason()
	}
	out.Origin, out.Stack = firstStack(err)
	out.CauseChain = buildCauseChain(err, maxCauseDepth)
	return out
}

// firstStack 沿 cause 链找到第一个真正带栈的错误。
func firstStack(err error) (string, string) {
	for cur, i := err, 0; cur != nil && i < maxCauseDepth; cur, i = errors.Unwrap(cur), i+1 {
		if sp, ok := cur.(stackProvider); ok {
			if pcs := sp.Stack(); len(pcs) != 0 {
				return formatStack(pcs, maxStackFrames)
			}
		}
	}
	return "", ""
}

func buildCauseChain(err error, maxDepth int) []string {
	if err == nil || maxDepth <= 0 {
		return nil
	}
	out := make([]string, 0, 4)
	cur := errors.Unwrap(err)
	for i := 0; i < maxDepth && cur != nil; i++ {
		out = append(out, fmt.Sprintf("%T: %v", cur, cur))
		cur = errors.Unwrap(cur)
	}
	return out
}

func formatStack(pcs []uintptr, maxFrames int) (originCaller string, stack string) {
	if len(pcs) == 0 || maxFrames <= 0 {
		return "", ""
	}
	frames := runtime.CallersFrames(pcs)
	lines := make([]string, 0, maxFrames)
	for i := 0; i < maxFrames; i++ {
		f, more := frames.Next()
		if f.Function == "" && f.File == "" && f.Line == 0 {
			break
		}
		line := f.Function + " " + f.File + ":" + strconv.Itoa(f.Line)
		if originCaller == "" {
			originCaller = line
		}
		lines = append(lines, line)
		if !more {
			break
		}
	}
	return originCaller, strings.Join(lines, "\n")
}
