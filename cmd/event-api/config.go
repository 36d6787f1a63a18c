package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const envPrefix = "EVENT_API"

const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

type EnvCfg struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" required:"true"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
	BaseURL   string `envconfig:"BASE_URL"`
	DocsURL   string `envconfig:"DOCS_URL" default:"/docs/index.html"`
	BodyLimit string `envconfig:"BODY_LIMIT" default:"10M"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	JWTSecret       string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer       string        `envconfig:"JWT_ISSUER" default:"event-api"`
	ClientID        string        `envconfig:"CLIENT_ID" default:"myApp"`
	ClientSecret    string        `envconfig:"CLIENT_SECRET" default:"pass"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"10m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"60m"`
	TokenStore      string        `envconfig:"TOKEN_STORE" default:"memory"`
	RedisURL        string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	TokenRateLimit  int           `envconfig:"TOKEN_RATE_LIMIT" default:"30"`

	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin@email.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin"`
	UserUsername  string `envconfig:"USER_USERNAME" default:"user@email.com"`
	UserPassword  string `envconfig:"USER_PASSWORD" default:"user"`
}

func loadConfig() (EnvCfg, error) {
	var cfg EnvCfg
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return EnvCfg{}, fmt.Errorf("load config: %w", err)
	}

	switch cfg.TokenStore {
	case TokenStoreMemory, TokenStoreRedis:
	default:
		return EnvCfg{}, fmt.Errorf("load config: unknown token store %q", cfg.TokenStore)
	}

	return cfg, nil
}

func (c EnvCfg) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost,
		c.DBPort,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBSSLMode,
	)
}

func newLogger(level, format string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

func openDB(cfg EnvCfg, logger zerolog.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if logger.GetLevel() <= zerolog.DebugLevel {
		level = gormlogger.Info
	}

	db, err := gorm.Open(
		postgres.Open(cfg.DSN()),
		&gorm.Config{
			Logger: gormlogger.New(
				&logger,
				gormlogger.Config{
					SlowThreshold:             200 * time.Millisecond,
					LogLevel:                  level,
					IgnoreRecordNotFoundError: true,
				},
			),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
