package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Message store backends.
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development" validate:"oneof=development production"`

	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"3000" validate:"min=1000,max=65535"`
	PublicDir      string `env:"PUBLIC_DIR"       envDefault:"public"`

	MessageStore string `env:"MESSAGE_STORE" envDefault:"postgres" validate:"oneof=postgres mongo redis memory"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"chat_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"chat_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"chat_db"`

	MongoURI        string `env:"MONGO_URI"        envDefault:"mongodb://127.0.0.1:27017" validate:"required"`
	MongoDb         string `env:"MONGO_DB"         envDefault:"chatApp"`
	MongoCollection string `env:"MONGO_COLLECTION" envDefault:"messages"`

	RedisHost      string `env:"REDIS_HOST"       envDefault:"localhost"`
	RedisPort      uint16 `env:"REDIS_PORT"       envDefault:"6379" validate:"min=1000,max=65535"`
	RedisStream    string `env:"REDIS_STREAM"     envDefault:"chat_messages_stream"`
	RedisStreamMax int64  `env:"REDIS_STREAM_MAX" envDefault:"100000" validate:"min=0"`

	SeedRoom     bool   `env:"SEED_ROOM"      envDefault:"true"`
	SeedRoomID   string `env:"SEED_ROOM_ID"   envDefault:"123456" validate:"number,len=6"`
	WsSendBuffer int    `env:"WS_SEND_BUFFER" envDefault:"64"     validate:"min=1,max=4096"`

	// 0 disables the periodic room statistics log.
	StatsInterval time.Duration `env:"STATS_INTERVAL" envDefault:"1m" validate:"min=0"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	// Parse config from environment variables
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// SeedRoomIDOrEmpty returns the id of the room to create at startup, or
// "" when seeding is disabled.
func (c *Config) SeedRoomIDOrEmpty() string {
	if !c.SeedRoom {
		return ""
	}
	return c.SeedRoomID
}
