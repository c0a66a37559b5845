package memory

import (
	"context"
	"sync"

	"github.com/mgmcelwee/evony/internal/world/app/port"
	"github.com/mgmcelwee/evony/internal/world/domain"
)

// Mailer 把邮件记录在内存里，开发环境和测试用。
type Mailer struct {
	mu   sync.Mutex
	sent []port.Message
	fail error
}

var _ port.Mailer = (*Mailer)(nil)

func NewMailer() *Mailer {
	return &Mailer{}
}

func (m *Mailer) Deliver(_ context.Context, msg port.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, msg)
	return nil
}

// FailWith 之后的投递都返回 err，传 nil 恢复。
func (m *Mailer) FailWith(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

func (m *Mailer) Sent() []port.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]port.Message(nil), m.sent...)
}

// Inbox 某个玩家收到的邮件。
func (m *Mailer) Inbox(userID domain.UserID) []port.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []port.Message
	for _, msg := range m.sent {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out
}
