package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"PairChat/global"
	"PairChat/logger"
	"PairChat/middleware/security"
	"PairChat/service/chat"
	"PairChat/service/natsx"
	"PairChat/service/storage"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config (optional)")
	flag.Parse()

	if err := global.Load(*configPath); err != nil {
		logger.Errorf("[main] load config: %v", err)
		os.Exit(1)
	}
	cfg := global.Global

	store := buildStore(&cfg)
	mirror := buildMirror(&cfg)
	bridge, natsClient := buildBridge(&cfg)

	// a nil *NatsBridge must stay a nil interface inside the server
	var bridgeIface chat.EventBridge
	if bridge != nil {
		bridgeIface = bridge
	}

	server := chat.NewServer(chat.ServerConfig{
		NodeID:                cfg.NodeID,
		FanoutWorkers:         cfg.FanoutWorkers,
		FanoutQueue:           cfg.FanoutQueue,
		SendQueueSize:         cfg.SendQueueSize,
		AppendTimeout:         cfg.AppendTimeout,
		JwtSecret:             global.GetJwtSecret(),
		AllowInsecureRegister: cfg.AllowInsecureRegister,
	}, store, mirror, bridgeIface)

	if bridge != nil {
		if err := bridge.Subscribe(server); err != nil {
			logger.Errorf("[main] bridge subscribe: %v", err)
			os.Exit(1)
		}
		logger.Infof("[main] cluster bridge up node=%s", cfg.NodeID)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", server.HandleWS)

	api := r.Group("/api", security.Middleware(server.AuthOpts()))
	api.GET("/messages/:peer", server.HandleHistory)
	api.GET("/presence/:user", func(c *gin.Context) {
		user := c.Param("user")
		c.JSON(http.StatusOK, gin.H{"user_id": user, "online": server.Registry().IsOnline(user)})
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpSrv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Infof("[main] gateway %s listening on %s", cfg.NodeID, addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("[main] listen: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("[main] shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	server.Close()
	if natsClient != nil {
		_ = natsClient.Close()
	}
}

// buildStore connects Mongo; when it is unreachable the gateway still comes
// up on an in-memory store so local development works without infra.
func buildStore(cfg *global.AppConfig) chat.MessageStore {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoStore, err := storage.NewMongoStore(ctx, &storage.MongoConfig{
		Uri:         cfg.Mongo.Uri,
		Database:    cfg.Mongo.Database,
		Username:    cfg.Mongo.Username,
		Password:    cfg.Mongo.Password,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
		MaxRetry:    cfg.Mongo.MaxRetry,
	})
	if err != nil {
		logger.Warnf("[main] mongo unavailable, falling back to memory store: %v", err)
		return storage.NewMemoryStore()
	}
	logger.Infof("[main] message store: mongo %s/%s", cfg.Mongo.Uri, cfg.Mongo.Database)
	return mongoStore
}

func buildMirror(cfg *global.AppConfig) chat.PresenceMirror {
	if cfg.Redis.Addr == "" {
		return nil
	}
	mirror, err := storage.NewRedisPresence(storage.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.NodeID, cfg.PresenceTTL)
	if err != nil {
		logger.Warnf("[main] redis unavailable, presence mirror disabled: %v", err)
		return nil
	}
	return mirror
}

func buildBridge(cfg *global.AppConfig) (*chat.NatsBridge, *natsx.Client) {
	if len(cfg.Nats.Servers) == 0 {
		return nil, nil
	}
	name := cfg.Nats.Name
	if name == "" {
		name = "pairchat-" + cfg.NodeID
	}
	client, err := natsx.NewClient(natsx.Config{Servers: cfg.Nats.Servers, Name: name})
	if err != nil {
		logger.Warnf("[main] nats unavailable, cluster bridge disabled: %v", err)
		return nil, nil
	}
	bridge, err := chat.NewNatsBridge(cfg.NodeID, client)
	if err != nil {
		logger.Warnf("[main] bridge init failed: %v", err)
		_ = client.Close()
		return nil, nil
	}
	return bridge, client
}
