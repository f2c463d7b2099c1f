package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string         `yaml:"env"`
	Http     HTTPConfig     `yaml:"http"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Wallet   WalletConfig   `yaml:"wallet"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	DBRedis  int      `yaml:"db_redis"`
}

type PostgresConfig struct {
	PostgresURL string `env:"POSTGRES_URL"`
}

type KafkaConfig struct {
	BrokerList                    []string      `yaml:"brokers"`
	Topic                         string        `yaml:"topic"`
	InitialBackoff                time.Duration `yaml:"initial_backoff"`
	MaxRetries                    int           `yaml:"max_retries"`
	TreatUnmarshalErrorAsCritical bool          `yaml:"treatUnmarshalErrorAsCritical"`
	ConsumerGroup                 string        `yaml:"consumer_group"`
}

// WalletConfig carries the two currency domains the wallet serves and the
// caching/quote windows. Scale and display precision are fixed by the wire
// format, not configurable.
type WalletConfig struct {
	BaseCurrency    string        `yaml:"base_currency" env-default:"XUS"`
	FiatCurrency    string        `yaml:"fiat_currency" env-default:"USD"`
	QuoteTTL        time.Duration `yaml:"quote_ttl" env-default:"10m"`
	TransactionsTTL time.Duration `yaml:"transactions_ttl" env-default:"30s"`
}

func LoadConfig() (*Config, error) {
	configPath := fetchConfigPath()

	if configPath == "" {
		return nil, fmt.Errorf("config file is empty")
	}

	return LoadPath(configPath)
}

func LoadPath(configPath string) (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading .env file")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %v", configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read the config: %w", err)
	}

	cfg.Postgres.PostgresURL = os.Getenv("POSTGRES_URL")

	return &cfg, nil
}

func fetchConfigPath() string {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to configPath")
	flag.Parse()

	if configPath == "" {
		configPath = "local.yaml"
	}
	return configPath
}
