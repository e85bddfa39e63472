package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/Catmanpooh/oort-hackathon/internal/factory"
)

type Config struct {
	// Client
	FactoryAPIBaseURL string `yaml:"factory_api_base_url"`
	ContractAddress   string `yaml:"contract_address"`
	WalletAddress     string `yaml:"wallet_address"`

	// Supabase
	SupabaseURL            string `yaml:"supabase_url"`
	SupabasePublishableKey string `yaml:"supabase_publishable_key"`
	SupabaseStorageBucket  string `yaml:"supabase_storage_bucket"`

	// Database
	DatabaseURL string `yaml:"database_url"`

	// Events
	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`

	// Server
	AdminJWTSecret     string        `yaml:"admin_jwt_secret"`
	ObjectURLTTL       time.Duration `yaml:"object_url_ttl"`
	CORSAllowedOrigins string        `yaml:"cors_allowed_origins"`
	BaseURL            string        `yaml:"base_url"`
	Port               string        `yaml:"port"`
	Environment        string        `yaml:"environment"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads the YAML file named by CONFIG_FILE (if any) and then applies
// environment variables on top of it.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.FactoryAPIBaseURL = getEnv("FACTORY_API_BASE_URL", cfg.FactoryAPIBaseURL)
	cfg.ContractAddress = getEnv("CONTRACT_ADDRESS", cfg.ContractAddress)
	cfg.WalletAddress = getEnv("WALLET_ADDRESS", cfg.WalletAddress)

	cfg.SupabaseURL = getEnv("SUPABASE_URL", cfg.SupabaseURL)
	cfg.SupabasePublishableKey = getEnv("SUPABASE_PUBLISHABLE_KEY", cfg.SupabasePublishableKey)
	cfg.SupabaseStorageBucket = getEnv("SUPABASE_STORAGE_BUCKET", cfg.SupabaseStorageBucket)

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)

	cfg.NATSURL = getEnv("NATS_URL", cfg.NATSURL)
	cfg.NATSSubject = getEnv("NATS_SUBJECT", cfg.NATSSubject)

	cfg.AdminJWTSecret = getEnv("ADMIN_JWT_SECRET", cfg.AdminJWTSecret)
	cfg.CORSAllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if raw := os.Getenv("OBJECT_URL_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid OBJECT_URL_TTL: %w", err)
		}
		cfg.ObjectURLTTL = ttl
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		FactoryAPIBaseURL:     "http://localhost:3000/api/v1",
		ContractAddress:       factory.DefaultContractAddress,
		SupabaseStorageBucket: "oort-hackathon",
		NATSSubject:           "nft.items",
		ObjectURLTTL:          10 * time.Hour,
		CORSAllowedOrigins:    "*",
		BaseURL:               "http://localhost:3000",
		Port:                  "3000",
		Environment:           "development",
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings shared by the client and the server. The
// contract address is normalized to its checksummed form.
func (c *Config) Validate() error {
	if c.FactoryAPIBaseURL == "" {
		return fmt.Errorf("FACTORY_API_BASE_URL is required")
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("CONTRACT_ADDRESS %q is not a hex address", c.ContractAddress)
	}
	c.ContractAddress = common.HexToAddress(c.ContractAddress).Hex()
	if c.ObjectURLTTL <= 0 {
		return fmt.Errorf("OBJECT_URL_TTL must be positive")
	}
	return nil
}

// ValidateServer checks the settings the backend cannot start without.
func (c *Config) ValidateServer() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseStorageBucket == "" {
		return fmt.Errorf("SUPABASE_STORAGE_BUCKET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
