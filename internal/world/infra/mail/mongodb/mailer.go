package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mgmcelwee/evony/internal/world/app/port"
	"github.com/mgmcelwee/evony/internal/world/domain"
)

const defaultCollectionName = "mail_inbox"

// MailDoc 收件箱里的一封邮件。
type MailDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    int64         `bson:"user_id"`
	Kind      string        `bson:"kind"`
	Subject   string        `bson:"subject"`
	Body      string        `bson:"body"`
	Payload   any           `bson:"payload,omitempty"`
	Read      bool          `bson:"read"`
	SentAt    time.Time     `bson:"sent_at"`
	CreatedAt time.Time     `bson:"created_at"`
}

// Mailer 把邮件写进 mongo 收件箱集合，玩家侧的读取由邮件服务负责。
type Mailer struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ port.Mailer = (*Mailer)(nil)

func NewMailer(db *mongo.Database, collection string) *Mailer {
	if collection == "" {
		collection = defaultCollectionName
	}
	return &Mailer{coll: db.Collection(collection), now: time.Now}
}

// EnsureIndexes 按 (user_id, sent_at desc) 建索引。
func (m *Mailer) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "sent_at", Value: -1}},
		Options: options.Index().SetName("user_sent_at"),
	})
	if err != nil {
		return domain.ErrSystemUnavailable.WithData("op", "mail_ensure_indexes").WithCause(err)
	}
	return nil
}

func (m *Mailer) Deliver(ctx context.Context, msg port.Message) error {
	if m == nil || m.coll == nil {
		return domain.ErrSystemUnavailable.WithData("op", "mail_deliver")
	}
	if _, err := m.coll.InsertOne(ctx, toDoc(msg, m.now())); err != nil {
		return domain.ErrSystemUnavailable.WithDataMap(map[string]any{
			"op":      "mail_deliver",
			"user_id": msg.UserID,
			"kind":    msg.Kind,
		}).WithCause(err)
	}
	return nil
}

func toDoc(msg port.Message, now time.Time) MailDoc {
	sentAt := msg.SentAt
	if sentAt.IsZero() {
		sentAt = now
	}
	return MailDoc{
		UserID:    int64(msg.UserID),
		Kind:      msg.Kind,
		Subject:   msg.Subject,
		Body:      msg.Body,
		Payload:   msg.Payload,
		SentAt:    sentAt.UTC(),
		CreatedAt: now.UTC(),
	}
}
