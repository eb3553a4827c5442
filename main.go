package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"roomrelay/internal/chat"
	"roomrelay/internal/config"
	"roomrelay/internal/database/db_client"
	"roomrelay/internal/database/mongo_client"
	"roomrelay/internal/http/http_server"
	"roomrelay/internal/redis/redis_client"
	"roomrelay/internal/roomstats"
	"roomrelay/internal/services/room"
	"roomrelay/internal/store/memstore"
	"roomrelay/internal/store/mongostore"
	"roomrelay/internal/store/pgstore"
	"roomrelay/internal/store/redisstore"
	"roomrelay/internal/syncmsg"
	"roomrelay/internal/ws"
	"syscall"
	"time"

	"go.uber.org/zap"
)

//go:generate go tool swag init --output api_specs --outputTypes json,yaml

// @title       roomrelay
// @version     1.0
// @description Room-based chat relay: REST inspection endpoints. Chat traffic uses the /ws socket.
// @BasePath    /

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.IsProduction() {
		if prod, err := zap.NewProduction(); err == nil {
			Log = prod
			zap.ReplaceGlobals(Log)
		}
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Message store
	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	// 4. Room registry, seeded with the default test room
	registry := chat.NewRegistry()
	registry.Seed(cfg.SeedRoomIDOrEmpty())

	// 5. Coordinator: the single event loop owning registry and groups
	coord := chat.NewCoordinator(registry, store)
	coordDone := make(chan struct{})
	go func() {
		defer close(coordDone)
		coord.Run(ctx)
	}()

	// Background: periodic registry statistics
	if cfg.StatsInterval > 0 {
		roomstats.Run(ctx, coord, cfg.StatsInterval)
	}

	// 6. Initialize the WS server and the read-side service
	wsSrv := ws.NewWsServer(ctx, ws.NewHub(), coord, cfg.WsSendBuffer)
	roomService := room.NewRoomService(coord, store, cfg.MessageStore)

	// 7. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, cfg.PublicDir, wsSrv, roomService)
	serveErr := make(chan error, 1)
	go func() { serveErr <- httpServer.Start() }()

	select {
	case err := <-serveErr:
		if err != nil {
			Log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	case <-ctx.Done():
	}

	// 8. Shutdown: stop accepting, drop sockets, drain pending writes
	Log.Info("shutting_down")
	_ = httpServer.Dispose()
	closed := wsSrv.Hub().CloseAll()
	<-coordDone
	coord.Wait()
	Log.Info("shutdown_complete", zap.Int("closed_connections", closed))
}

// openStore connects the configured message store and returns a function
// releasing it.
func openStore(ctx context.Context, cfg *config.Config) (chat.MessageStore, func()) {
	switch cfg.MessageStore {
	case config.StoreMemory:
		Log.Warn("using in-memory message store; history is lost on exit")
		return memstore.New(), func() {}

	case config.StoreMongo:
		client, err := mongo_client.Connect(ctx, cfg.MongoURI)
		if err != nil {
			Log.Fatal("mongo-connect", zap.Error(err))
		}
		s := mongostore.New(client.Database(cfg.MongoDb).Collection(cfg.MongoCollection))
		if err := s.EnsureIndexes(ctx); err != nil {
			Log.Warn("mongo-indexes", zap.Error(err))
		}
		return s, func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}

	case config.StoreRedis:
		// Redis takes the writes; a tailer moves them into Postgres.
		redisClient, err := redis_client.NewRedisClient(ctx, cfg.RedisHost, int(cfg.RedisPort))
		if err != nil {
			Log.Fatal("Failed to create Redis client", zap.Error(err))
		}
		pgDb := openPostgres(ctx, cfg)
		pg := pgstore.New(pgDb)
		syncmsg.Run(ctx, redisClient, cfg.RedisStream, pg)
		return redisstore.New(redisClient, cfg.RedisStream, cfg.RedisStreamMax).WithHistory(pg), func() {
			_ = redisClient.Close()
			_ = pgDb.Close()
		}

	default:
		pgDb := openPostgres(ctx, cfg)
		return pgstore.New(pgDb), func() { _ = pgDb.Close() }
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) *sql.DB {
	pgDb, err := db_client.Open(ctx, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	if err := pgstore.New(pgDb).Migrate(ctx); err != nil {
		Log.Fatal("pg-migrate", zap.Error(err))
	}
	return pgDb
}
