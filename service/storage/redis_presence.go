package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisConfig mirrors the redis section of the app config.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisPresence mirrors presence transitions into Redis so other processes
// can answer "is user online" without the gateway's in-memory registry. The
// value is the owning node id; the TTL bounds staleness after a crash.
type RedisPresence struct {
	rdb    *redis.Client
	nodeID string
	ttl    time.Duration
}

func NewRedisPresence(c RedisConfig, nodeID string, ttl time.Duration) (*RedisPresence, error) {
	rdb := redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, errors.WithMessage(err, "redis ping")
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &RedisPresence{rdb: rdb, nodeID: nodeID, ttl: ttl}, nil
}

// presence key: pc:presence:<user>
func presenceKey(user string) string { return "pc:presence:" + user }

func (p *RedisPresence) Online(user string) error {
	return p.rdb.Set(context.Background(), presenceKey(user), p.nodeID, p.ttl).Err()
}

func (p *RedisPresence) Offline(user string) error {
	return p.rdb.Del(context.Background(), presenceKey(user)).Err()
}

// Lookup reports whether user is online anywhere and which node owns them.
func (p *RedisPresence) Lookup(user string) (nodeID string, online bool, err error) {
	val, err := p.rdb.Get(context.Background(), presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (p *RedisPresence) Close() error { return p.rdb.Close() }
