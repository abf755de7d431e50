package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0:8080"`
	LogJSON       bool   `env:"LOG_JSON" envDefault:"false"`
	LogDebug      bool   `env:"LOG_DEBUG" envDefault:"false"`
	PostgresConfig
	EngineConfig
}

func NewConfig() (*Config, error) {
	config := &Config{}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewConfig: %w", err)
	}
	return config, err
}

type PostgresConfig struct {
	Conn            string `env:"POSTGRES_CONN" envDefault:"postgres://licitia:licitia@db:5432/licitia?sslmode=disable"`
	Host            string `env:"POSTGRES_HOST" envDefault:"db"`
	Port            string `env:"POSTGRES_PORT" envDefault:"5432"`
	Username        string `env:"POSTGRES_USERNAME" envDefault:"licitia"`
	Password        string `env:"POSTGRES_PASSWORD" envDefault:"licitia"`
	Database        string `env:"POSTGRES_DATABASE" envDefault:"licitia"`
	AutoMigrateUp   string `env:"AUTO_MIGRATE_UP" envDefault:"true"`
	AutoMigrateDown string `env:"AUTO_MIGRATE_DOWN" envDefault:"false"`
	MigrationsURL   string `env:"MIGRATIONS_URL" envDefault:"file://internal/repository/db/migrations"`
}

func NewPostgresConfig() (*PostgresConfig, error) {
	config := &PostgresConfig{}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewPostgresConfig: %w", err)
	}
	return config, err
}

// EngineConfig is the process-wide scoring configuration. It is loaded
// once at startup and shared read-only by all scoring tasks. The
// relevance threshold and the match threshold are independent knobs.
type EngineConfig struct {
	RelevanceThreshold float64 `env:"RELEVANCE_THRESHOLD" envDefault:"0.5"`
	ContractTypePrior  float64 `env:"CONTRACT_TYPE_PRIOR" envDefault:"0.2"`
	NegativePenalty    float64 `env:"NEGATIVE_TERM_PENALTY" envDefault:"0.15"`

	KeywordWeight  float64 `env:"WEIGHT_KEYWORD" envDefault:"0.4"`
	AmountWeight   float64 `env:"WEIGHT_AMOUNT" envDefault:"0.2"`
	EntityWeight   float64 `env:"WEIGHT_ENTITY" envDefault:"0.25"`
	CategoryWeight float64 `env:"WEIGHT_CATEGORY" envDefault:"0.15"`

	// Amount sub-score tapers to 0 when amounts diverge by this many
	// orders of magnitude.
	AmountLogBound float64 `env:"AMOUNT_LOG_BOUND" envDefault:"2.0"`

	DefaultMinMatchScore float64       `env:"MIN_MATCH_SCORE" envDefault:"0.6"`
	MatchWorkers         int           `env:"MATCH_WORKERS" envDefault:"0"`
	MatchDeadline        time.Duration `env:"MATCH_DEADLINE" envDefault:"10s"`
	MaxMatchesPerTender  int           `env:"MAX_MATCHES_PER_TENDER" envDefault:"5"`

	DefaultPageLimit int `env:"DEFAULT_PAGE_LIMIT" envDefault:"50"`
	MaxPageLimit     int `env:"MAX_PAGE_LIMIT" envDefault:"100"`
}
