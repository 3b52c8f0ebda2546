package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures process-level configuration so main stays lean. Snapshot
// backend selection decides where the domain store persists its collections.
type Config struct {
	Addr      string `env:"MEDICHART_ADDR" envDefault:":8080"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// SnapshotBackend is one of: memory, filesystem, redis, postgres, sqlite.
	SnapshotBackend string `env:"SNAPSHOT_BACKEND" envDefault:"filesystem"`
	SnapshotDir     string `env:"SNAPSHOT_DIR" envDefault:"data"`
	RedisURL        string `env:"REDIS_URL"`
	PostgresDSN     string `env:"POSTGRES_DSN"`
	SQLitePath      string `env:"SQLITE_PATH" envDefault:"medichart.db"`

	JWTSigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	KafkaBrokers   []string `env:"KAFKA_BROKERS" envSeparator:","`
	ChangelogTopic string   `env:"CHANGELOG_TOPIC" envDefault:"medichart.changes"`

	SeedDemoData    bool          `env:"SEED_DEMO_DATA" envDefault:"false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
