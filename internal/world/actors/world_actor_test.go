package actors

import (
	"reflect"
	"testing"
	"time"

	"github.com/mgmcelwee/evony/internal/shared/actor/messages"
	"github.com/mgmcelwee/evony/modules/kit/tracex"
)

func TestRequestContext_带上调用方截止时间(t *testing.T) {
	dl := time.Now().Add(time.Minute)
	req := &messages.HWRaidReport{WorldBaseMessage: messages.WorldBaseMessage{Trace: "t-1", Deadline: dl}}

	ctx, cancel := requestContext(req)
	defer cancel()
	if got, ok := ctx.Deadline(); !ok || !got.Equal(dl) {
		t.Fatalf("期望截止时间 %v, got=%v ok=%v", dl, got, ok)
	}
	if id, _ := tracex.TraceIDFrom(ctx); id != "t-1" {
		t.Fatalf("期望 trace_id=t-1, got=%s", id)
	}
}

func TestTickContext_忽略调用方截止时间(t *testing.T) {
	req := &messages.HWTick{WorldBaseMessage: messages.WorldBaseMessage{Trace: "t-2", Deadline: time.Now().Add(-time.Second)}}

	ctx, cancel := tickContext(req)
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatalf("期望推进上下文没有截止时间")
	}
	if ctx.Err() != nil {
		t.Fatalf("期望调用方已超时也不影响推进, err=%v", ctx.Err())
	}
	if id, _ := tracex.TraceIDFrom(ctx); id != "t-2" {
		t.Fatalf("期望保留 trace_id, got=%s", id)
	}
}

func TestDispatcher_注册全部世界消息(t *testing.T) {
	d := NewDispatcher()
	for _, req := range []messages.WorldMessage{
		&messages.HWTick{},
		&messages.HWLaunchRaid{},
		&messages.HWRecallRaid{},
		&messages.HWPreviewRaid{},
		&messages.HWRaidReport{},
		&messages.HWListRaids{},
		&messages.HWGetRaid{},
	} {
		if _, ok := d.handlers[reflect.TypeOf(req)]; !ok {
			t.Fatalf("期望已注册 %T", req)
		}
	}
}
