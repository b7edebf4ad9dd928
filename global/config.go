package global

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"PairChat/logger"
	"PairChat/tools/ids"
)

type MongoConfig struct {
	Uri         string `yaml:"uri"`
	Database    string `yaml:"database"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	MaxPoolSize int    `yaml:"max_pool_size"`
	MaxRetry    int    `yaml:"max_retry"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type NatsConfig struct {
	Servers []string `yaml:"servers"` // empty => cluster bridge disabled
	Name    string   `yaml:"name"`
}

type AppConfig struct {
	NodeID        string        `yaml:"node_id"`
	SnowflakeNode int64         `yaml:"snowflake_node"`
	Port          int           `yaml:"port"`
	JwtSecret     string        `yaml:"jwt_secret"`
	SendQueueSize int           `yaml:"send_queue_size"`
	FanoutWorkers int           `yaml:"fanout_workers"`
	FanoutQueue   int           `yaml:"fanout_queue"`
	PresenceTTL   time.Duration `yaml:"presence_ttl"`
	AppendTimeout time.Duration `yaml:"append_timeout"`
	// AllowInsecureRegister accepts a register frame without a token and
	// trusts its user id. Dev only; the default requires a verified JWT.
	AllowInsecureRegister bool `yaml:"allow_insecure_register"`

	Mongo MongoConfig `yaml:"mongo"`
	Redis RedisConfig `yaml:"redis"`
	Nats  NatsConfig  `yaml:"nats"`
}

var Global = AppConfig{
	NodeID:        "gateway_01",
	SnowflakeNode: 1,
	Port:          8080,
	JwtSecret:     "mN9b1f8zPq+W2xjX/45sKcVd0TfyoG+3Hp5Z8q9Rj1o=",
	SendQueueSize: 256,
	// one worker keeps broadcasts ordered per observer; raise only if
	// cross-event ordering stops mattering
	FanoutWorkers: 1,
	FanoutQueue:   4096,
	PresenceTTL:   60 * time.Second,
	AppendTimeout: 5 * time.Second,
	Mongo: MongoConfig{
		Uri:         "mongodb://localhost:27017",
		Database:    "pairchat",
		MaxPoolSize: 20,
		MaxRetry:    3,
	},
	Redis: RedisConfig{Addr: "127.0.0.1:6379"},
}

// Load applies an optional yaml file over the defaults, then env overrides
// for the values that should never sit in a checked-in file.
func Load(path string) error {
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(raw, &Global); err != nil {
			return err
		}
		logger.Infof("[config] loaded %s", path)
	}

	if v := os.Getenv("PAIRCHAT_JWT_SECRET"); v != "" {
		Global.JwtSecret = v
	}
	if v := os.Getenv("PAIRCHAT_MONGO_URI"); v != "" {
		Global.Mongo.Uri = v
	}
	if v := os.Getenv("PAIRCHAT_REDIS_ADDR"); v != "" {
		Global.Redis.Addr = v
	}
	if v := os.Getenv("PAIRCHAT_NODE_ID"); v != "" {
		Global.NodeID = v
	}
	if v := os.Getenv("PAIRCHAT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			Global.Port = p
		}
	}

	ids.SetNodeID(Global.SnowflakeNode)
	return nil
}

func GetJwtSecret() []byte {
	return []byte(Global.JwtSecret)
}

func GetNodeID() string {
	return Global.NodeID
}
