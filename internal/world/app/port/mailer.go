package port

import (
	"context"
	"time"

	"github.com/mgmcelwee/evony/internal/world/domain"
)

// Message 一封投递给玩家的邮件。
type Message struct {
	UserID  domain.UserID
	Kind    string
	Subject string
	Body    string
	Payload any
	SentAt  time.Time
}

// Mailer 外部邮件投递。失败只记录日志，不影响世界推进。
type Mailer interface {
	Deliver(ctx context.Context, msg Message) error
}
