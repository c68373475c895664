package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Stellar  StellarConfig  `json:"stellar"`
	Redis    RedisConfig    `json:"redis"`
	Storage  StorageConfig  `json:"storage"`
	Security SecurityConfig `json:"security"`
	Fees     FeesConfig     `json:"fees"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
}

// StellarConfig configures the distributed-ledger gateway.
type StellarConfig struct {
	HorizonURL       string `json:"horizon_url"`
	Network          string `json:"network"` // "testnet" or "public"
	FundingSecretKey string `json:"funding_secret_key"`
	PlatformAccount  string `json:"platform_account"`
}

// RedisConfig configures the chain-history cache.
type RedisConfig struct {
	Addr            string        `json:"addr"`
	Password        string        `json:"password"`
	DB              int           `json:"db"`
	ChainHistoryTTL time.Duration `json:"chain_history_ttl"`
}

// StorageConfig configures the proof store.
type StorageConfig struct {
	Region      string `json:"region"`
	ProofBucket string `json:"proof_bucket"`
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret string        `json:"jwt_secret"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

// FeesConfig holds the platform fee and minimum funding amount, both quoted to
// callers by the fee calculator.
type FeesConfig struct {
	PlatformFeePercent string `json:"platform_fee_percent"`
	MinimumAmount      string `json:"minimum_amount"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "givetrace_portal",
			SSLMode: "disable",
		},
		Stellar: StellarConfig{
			Network: "testnet",
		},
		Redis: RedisConfig{
			Addr:            "localhost:6379",
			ChainHistoryTTL: 2 * time.Minute,
		},
		Storage: StorageConfig{
			Region:      "us-east-1",
			ProofBucket: "givetrace-proofs",
		},
		Security: SecurityConfig{
			TokenTTL: 24 * time.Hour,
		},
		Fees: FeesConfig{
			PlatformFeePercent: "1",
			MinimumAmount:      "10",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if horizon := os.Getenv("STELLAR_HORIZON_URL"); horizon != "" {
		config.Stellar.HorizonURL = horizon
	}
	if secret := os.Getenv("STELLAR_FUNDING_SECRET"); secret != "" {
		config.Stellar.FundingSecretKey = secret
	}
	if account := os.Getenv("STELLAR_PLATFORM_ACCOUNT"); account != "" {
		config.Stellar.PlatformAccount = account
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Redis.Addr = addr
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
	if bucket := os.Getenv("PROOF_BUCKET"); bucket != "" {
		config.Storage.ProofBucket = bucket
	}
}

// GetDatabaseDSN returns the database connection string
func (c *DatabaseConfig) GetDatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
