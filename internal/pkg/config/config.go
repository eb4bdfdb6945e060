package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/spendline/expense-approval/internal/core/domain"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,   default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Expenses  ExpenseConfig
	Assistant AssistantConfig
	Stream    StreamConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=expense_approval"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// ExpenseConfig holds the catalog lists as space-separated strings.
// Multi-word entries use underscores: "Office_Supplies" is read as
// "Office Supplies".
type ExpenseConfig struct {
	Currencies      string        `env:"EXPENSE_CURRENCIES, default=USD EUR GBP JPY CAD AUD INR"`
	Categories      string        `env:"EXPENSE_CATEGORIES, default=Travel Food Office_Supplies Software Other"`
	DefaultCurrency string        `env:"DEFAULT_CURRENCY,   default=INR"`
	IdempotencyTTL  time.Duration `env:"IDEMPOTENCY_TTL,    default=24h"`
}

type AssistantConfig struct {
	APIKey   string        `env:"GEMINI_API_KEY"`
	Model    string        `env:"GEMINI_MODEL,        default=gemini-2.5-flash"`
	BaseURL  string        `env:"GEMINI_BASE_URL,     default=https://generativelanguage.googleapis.com"`
	Timeout  time.Duration `env:"ASSISTANT_TIMEOUT,   default=20s"`
	RPS      float64       `env:"ASSISTANT_RPS,       default=2"`
	CacheTTL time.Duration `env:"ASSISTANT_CACHE_TTL, default=6h"`
}

type StreamConfig struct {
	Workers int `env:"STREAM_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	cat := c.Catalog()
	if len(cat.Currencies) == 0 {
		errs = append(errs, errors.New("EXPENSE_CURRENCIES must not be empty"))
	}
	if len(cat.Categories) == 0 {
		errs = append(errs, errors.New("EXPENSE_CATEGORIES must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "test"
}

// Catalog returns the configured currency and category lists.
func (c *Config) Catalog() domain.Catalog {
	currencies := strings.Fields(strings.ToUpper(c.Expenses.Currencies))
	categories := strings.Fields(c.Expenses.Categories)
	for i, cat := range categories {
		categories[i] = strings.ReplaceAll(cat, "_", " ")
	}
	return domain.Catalog{Currencies: currencies, Categories: categories}
}
