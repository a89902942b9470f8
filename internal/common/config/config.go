package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port            int           `env:"PORT" envDefault:"8080"`
		Origin          string        `env:"ORIGIN" envDefault:"http://localhost:3000"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
		// пустой ключ отключает проверку админских маршрутов
		AdminAPIKey string `env:"ADMIN_API_KEY" envDefault:""`
	}

	Storage struct {
		// postgres или memory (локальная разработка и тесты)
		Driver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	}

	Postgres PostgresConfig

	Redis struct {
		Enabled        bool          `env:"REDIS_ENABLED" envDefault:"false"`
		Host           string        `env:"REDIS_HOST" envDefault:"localhost"`
		Port           int           `env:"REDIS_PORT" envDefault:"6379"`
		Password       string        `env:"REDIS_PASSWORD" envDefault:""`
		DB             int           `env:"REDIS_DB" envDefault:"0"`
		LeaderboardTTL time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"30s"`
	}

	Ledger struct {
		Enabled             bool          `env:"LEDGER_ENABLED" envDefault:"false"`
		Network             string        `env:"TON_NETWORK" envDefault:"testnet"`
		LiteConfigURL       string        `env:"TON_LITE_CONFIG_URL" envDefault:"https://ton.org/testnet-global.config.json"`
		Seed                []string      `env:"LEDGER_WALLET_SEED" envSeparator:" "`
		BadgeContract       string        `env:"BADGE_CONTRACT_ADDRESS"`
		LeaderboardContract string        `env:"LEADERBOARD_CONTRACT_ADDRESS"`
		MessageAmount       string        `env:"LEDGER_MESSAGE_AMOUNT" envDefault:"0.05"`
		Timeout             time.Duration `env:"LEDGER_TIMEOUT" envDefault:"20s"`
		// общий бюджет синхронизации одного запроса, меньше WRITE_TIMEOUT
		SyncBudget          time.Duration `env:"LEDGER_SYNC_BUDGET" envDefault:"40s"`
		ConnectTimeout      time.Duration `env:"LEDGER_CONNECT_TIMEOUT" envDefault:"1m"`
	}

	Progression struct {
		// single_step или cascade
		Policy          string `env:"PROGRESSION_POLICY" envDefault:"single_step"`
		SpecialistChain string `env:"SPECIALIST_CHAIN" envDefault:"avalanche"`
	}

	RateLimit struct {
		RPS   float64 `env:"SUBMISSION_RATE_RPS" envDefault:"2"`
		Burst int     `env:"SUBMISSION_RATE_BURST" envDefault:"10"`
	}
}

type PostgresConfig struct {
	Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User            string        `env:"POSTGRES_USER" envDefault:"postgres"`
	Password        string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database        string        `env:"POSTGRES_DB" envDefault:"chainrivals"`
	SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"5m"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// GetDSN собирает строку подключения для lib/pq
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// .env может отсутствовать: в production переменные задаются напрямую
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: want %s or %s", c.Storage.Driver, StoragePostgres, StorageMemory)
	}
	switch c.Progression.Policy {
	case "single_step", "cascade":
	default:
		return fmt.Errorf("invalid PROGRESSION_POLICY %q: want single_step or cascade", c.Progression.Policy)
	}
	if c.Ledger.Enabled {
		if len(c.Ledger.Seed) == 0 {
			return fmt.Errorf("LEDGER_WALLET_SEED is required when LEDGER_ENABLED=true")
		}
		if c.Ledger.BadgeContract == "" || c.Ledger.LeaderboardContract == "" {
			return fmt.Errorf("BADGE_CONTRACT_ADDRESS and LEADERBOARD_CONTRACT_ADDRESS are required when LEDGER_ENABLED=true")
		}
	}
	if c.Ledger.SyncBudget <= 0 || c.Ledger.SyncBudget >= c.Server.WriteTimeout {
		return fmt.Errorf("LEDGER_SYNC_BUDGET (%s) must be positive and below WRITE_TIMEOUT (%s)",
			c.Ledger.SyncBudget, c.Server.WriteTimeout)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("SUBMISSION_RATE_RPS and SUBMISSION_RATE_BURST must be positive")
	}
	return nil
}

// RedisAddr returns host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
