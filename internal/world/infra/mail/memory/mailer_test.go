package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/mgmcelwee/evony/internal/world/app/port"
)

func TestMailer_记录与失败注入(t *testing.T) {
	m := NewMailer()
	ctx := context.Background()
	if err := m.Deliver(ctx, port.Message{UserID: 1, Kind: "raid_report"}); err != nil {
		t.Fatalf("期望投递成功, err=%v", err)
	}
	m.FailWith(errors.New("down"))
	if err := m.Deliver(ctx, port.Message{UserID: 2}); err == nil {
		t.Fatalf("期望注入失败后返回错误")
	}
	m.FailWith(nil)
	_ = m.Deliver(ctx, port.Message{UserID: 1})
	if got := len(m.Sent()); got != 2 {
		t.Fatalf("期望记录 2 封, got=%d", got)
	}
	if got := len(m.Inbox(1)); got != 2 {
		t.Fatalf("期望玩家 1 收到 2 封, got=%d", got)
	}
}
