package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort        string
	AllowedOrigins []string

	DBDriver   string // "postgres" or "memory"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MigrationLockKey string
	MigrationLockTTL time.Duration
	IdempotencyTTL   time.Duration

	IdentityProvider        string // "firebase" or "jwt"
	FirebaseCredentialsFile string
	JWTKey                  []byte
	JWTExp                  time.Duration

	PaymentProvider     string // "stripe" or "stub"
	StripeSecret        string
	StripeWebhookSecret string
	StubWebhookSecret   string
	SiteDomain          string
}

// fileConfig is the optional YAML layer. Environment variables win over it.
type fileConfig struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		SiteDomain     string   `yaml:"site_domain"`
	} `yaml:"server"`
	Database struct {
		Driver  string `yaml:"driver"`
		Host    string `yaml:"host"`
		Port    string `yaml:"port"`
		User    string `yaml:"user"`
		Name    string `yaml:"name"`
		SslMode string `yaml:"sslmode"`
	} `yaml:"database"`
	Redis struct {
		Addr string `yaml:"addr"`
		DB   int    `yaml:"db"`
	} `yaml:"redis"`
	Identity struct {
		Provider        string `yaml:"provider"`
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"identity"`
	Payment struct {
		Provider string `yaml:"provider"`
	} `yaml:"payment"`
}

var AppConfig *Config

// Load reads .env, the optional CONFIG_FILE and the environment, and stores the
// result in AppConfig.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := FromEnv(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	AppConfig = cfg
	return cfg
}

// FromEnv builds a Config from defaults, the YAML file at path (if any) and
// environment variables, in that order of precedence.
func FromEnv(path string) (*Config, error) {
	defaults := fileConfig{}
	defaults.Server.Port = "3000"
	defaults.Server.SiteDomain = "http://localhost:5173"
	defaults.Database.Driver = "postgres"
	defaults.Database.Host = "localhost"
	defaults.Database.Port = "5432"
	defaults.Database.User = "user"
	defaults.Database.Name = "contest_hub_db"
	defaults.Database.SslMode = "disable"
	defaults.Redis.Addr = "localhost:6379"
	defaults.Identity.Provider = "firebase"
	defaults.Payment.Provider = "stripe"

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &defaults); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg := &Config{
		APIPort:                 getEnv("API_PORT", getEnv("PORT", defaults.Server.Port)),
		AllowedOrigins:          getEnvAsList("ALLOWED_ORIGINS", defaults.Server.AllowedOrigins),
		DBDriver:                getEnv("DB_DRIVER", defaults.Database.Driver),
		DBHost:                  getEnv("DB_HOST", defaults.Database.Host),
		DBPort:                  getEnv("DB_PORT", defaults.Database.Port),
		DBUser:                  getEnv("DB_USER", defaults.Database.User),
		DBPassword:              getEnv("DB_PASSWORD", getEnv("DB_PASS", "password")),
		DBName:                  getEnv("DB_NAME", defaults.Database.Name),
		DBSslMode:               getEnv("DB_SSLMODE", defaults.Database.SslMode),
		RedisAddr:               getEnv("REDIS_ADDR", defaults.Redis.Addr),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		RedisDB:                 getEnvAsInt("REDIS_DB", defaults.Redis.DB),
		MigrationLockKey:        getEnv("MIGRATION_LOCK_KEY", "contesthub:migration_lock"),
		MigrationLockTTL:        time.Duration(getEnvAsInt("MIGRATION_LOCK_TTL_SECONDS", 120)) * time.Second,
		IdempotencyTTL:          time.Duration(getEnvAsInt("IDEMPOTENCY_TTL_HOURS", 24)) * time.Hour,
		IdentityProvider:        getEnv("IDENTITY_PROVIDER", defaults.Identity.Provider),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", defaults.Identity.CredentialsFile),
		JWTKey:                  []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:                  time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		PaymentProvider:         getEnv("PAYMENT_PROVIDER", defaults.Payment.Provider),
		StripeSecret:            getEnv("STRIPE_SECRET", getEnv("STRIP_SECRET", "")),
		StripeWebhookSecret:     getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StubWebhookSecret:       getEnv("STUB_WEBHOOK_SECRET", "change-me"),
		SiteDomain:              strings.TrimRight(getEnv("SITE_DOMAIN", defaults.Server.SiteDomain), "/"),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{cfg.SiteDomain}
	}

	if cfg.PaymentProvider == "stripe" && cfg.StripeSecret == "" {
		return nil, fmt.Errorf("STRIPE_SECRET is empty")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
