package chat

import (
	"context"
)

// StoredMessage is a chat message after a successful durable append, carrying
// the server-generated id. Immutable once persisted.
type StoredMessage struct {
	ID        string `json:"id" bson:"_id"`
	Sender    string `json:"sender" bson:"sender"`
	Receiver  string `json:"receiver" bson:"receiver"`
	Content   string `json:"content" bson:"content"`
	CreatedAt int64  `json:"created_at" bson:"created_at"` // unix ms
	Read      bool   `json:"read" bson:"read"`
}

// MessageStore is the durable append-only store collaborator. Append is the
// only suspension point of the relay; implementations handle their own
// concurrency for concurrent appends.
type MessageStore interface {
	Append(ctx context.Context, msg *StoredMessage) (*StoredMessage, error)
	History(ctx context.Context, userA, userB string, limit int64) ([]*StoredMessage, error)
}

// PresenceMirror receives presence transitions so they can be observed from
// outside the process (Redis in production). Best-effort: failures are logged
// by callers and never block the relay.
type PresenceMirror interface {
	Online(userID string) error
	Offline(userID string) error
}

// EventBridge fans events out to other gateway nodes. Nil when running
// single-node.
type EventBridge interface {
	PublishPresence(userID string, online bool) error
	PublishDelivery(msg *StoredMessage) error
}
