package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"PairChat/service/chat"
	"PairChat/tools/errs"
)

const messagesCollection = "messages"

// MongoConfig mirrors the mongo section of the app config.
type MongoConfig struct {
	Uri         string
	Database    string
	Username    string
	Password    string
	MaxPoolSize int
	MaxRetry    int
}

// MongoStore is the durable MessageStore. One document per message; writes
// are single inserts, so the driver's own concurrency handling is all the
// serialization the store needs.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(ctx context.Context, cfg *MongoConfig) (*MongoStore, error) {
	if cfg.Uri == "" {
		return nil, errs.New("mongo uri is required")
	}
	opts := options.Client().ApplyURI(cfg.Uri)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	retry := cfg.MaxRetry
	if retry <= 0 {
		retry = 1
	}
	var (
		cli *mongo.Client
		err error
	)
	for i := 0; i < retry; i++ {
		cli, err = connectMongo(ctx, opts)
		if err == nil {
			break
		}
		time.Sleep(time.Second / 2)
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "failed to connect to MongoDB", "uri", cfg.Uri)
	}

	coll := cli.Database(cfg.Database).Collection(messagesCollection)
	if err := ensureMessageIndexes(ctx, coll); err != nil {
		return nil, err
	}
	return &MongoStore{coll: coll}, nil
}

func connectMongo(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return cli, nil
}

func ensureMessageIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "sender", Value: 1},
			{Key: "receiver", Value: 1},
			{Key: "created_at", Value: 1},
		},
	})
	return errs.Wrap(err)
}

func (s *MongoStore) Append(ctx context.Context, msg *chat.StoredMessage) (*chat.StoredMessage, error) {
	if _, err := s.coll.InsertOne(ctx, msg); err != nil {
		return nil, errs.WrapMsg(err, "insert message", "id", msg.ID)
	}
	return msg, nil
}

// History returns the conversation between userA and userB, oldest first.
func (s *MongoStore) History(ctx context.Context, userA, userB string, limit int64) ([]*chat.StoredMessage, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": userA, "receiver": userB},
		bson.M{"sender": userB, "receiver": userA},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.WrapMsg(err, "find messages", "a", userA, "b", userB)
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []*chat.StoredMessage
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}
