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
	Port     string `yaml:"port"`
	GinMode  string `yaml:"gin_mode"`
	LogLevel string `yaml:"log_level"`
	DBUrl    string `yaml:"database_url"`
	// Apply embedded migrations on startup
	RunMigrations bool `yaml:"run_migrations"`

	// Session Configuration
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	CookieSecure  bool          `yaml:"cookie_secure"`
	BcryptCost    int           `yaml:"bcrypt_cost"`

	AllowedOrigins []string `yaml:"allowed_origins"`

	// SMTP Configuration (credential delivery for admin-issued identities)
	SMTPHost      string `yaml:"smtp_host"`
	SMTPPort      string `yaml:"smtp_port"`
	SMTPUsername  string `yaml:"smtp_username"`
	SMTPPassword  string `yaml:"smtp_password"`
	SMTPFromEmail string `yaml:"smtp_from_email"`

	// Redis Configuration
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`

	// Rate Limiting Configuration
	RateLimitWindowSeconds   int `yaml:"rate_limit_window_seconds"`
	RateLimitLoginThreshold  int `yaml:"rate_limit_login_threshold"`
	RateLimitGlobalThreshold int `yaml:"rate_limit_global_threshold"`
	FailedLoginBlockMinutes  int `yaml:"failed_login_block_minutes"`
	FailedLoginMaxAttempts   int `yaml:"failed_login_max_attempts"`

	// Certificate Storage
	S3Bucket          string `yaml:"s3_bucket"`
	S3Region          string `yaml:"s3_region"`
	S3Endpoint        string `yaml:"s3_endpoint"` // S3-compatible providers (Wasabi, MinIO)
	S3AccessKeyID     string `yaml:"s3_access_key_id"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key"`
	CertificateDir    string `yaml:"certificate_dir"`
	MaxUploadBytes    int64  `yaml:"max_upload_bytes"`
	ClamAVAddress     string `yaml:"clamav_address"`
}

func LoadConfig() (*Config, error) {
	// Load .env file (only effective locally, ignored in production when missing)
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.DBUrl = getEnv("DATABASE_URL", cfg.DBUrl)
	cfg.RunMigrations = getEnvBool("RUN_MIGRATIONS", cfg.RunMigrations)

	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", cfg.CookieSecure)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", cfg.BcryptCost)

	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnv("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SMTPFromEmail = getEnv("SMTP_FROM_EMAIL", cfg.SMTPFromEmail)

	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)

	cfg.RateLimitWindowSeconds = getEnvInt("RATE_LIMIT_WINDOW_SECONDS", cfg.RateLimitWindowSeconds)
	cfg.RateLimitLoginThreshold = getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", cfg.RateLimitLoginThreshold)
	cfg.RateLimitGlobalThreshold = getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", cfg.RateLimitGlobalThreshold)
	cfg.FailedLoginBlockMinutes = getEnvInt("FAILED_LOGIN_BLOCK_MINUTES", cfg.FailedLoginBlockMinutes)
	cfg.FailedLoginMaxAttempts = getEnvInt("FAILED_LOGIN_MAX_ATTEMPTS", cfg.FailedLoginMaxAttempts)

	cfg.S3Bucket = getEnv("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = getEnv("S3_REGION", cfg.S3Region)
	cfg.S3Endpoint = strings.TrimRight(getEnv("S3_ENDPOINT", cfg.S3Endpoint), "/")
	cfg.S3AccessKeyID = getEnv("S3_ACCESS_KEY_ID", cfg.S3AccessKeyID)
	cfg.S3SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", cfg.S3SecretAccessKey)
	cfg.CertificateDir = getEnv("CERTIFICATE_DIR", cfg.CertificateDir)
	cfg.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.ClamAVAddress = getEnv("CLAMAV_ADDRESS", cfg.ClamAVAddress)

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// SMTPConfigured reports whether credential emails can be sent
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

// S3Configured reports whether certificates go to object storage instead of local disk
func (c *Config) S3Configured() bool {
	return c.S3Bucket != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

func defaults() *Config {
	return &Config{
		Port:                     "8080",
		GinMode:                  "debug",
		LogLevel:                 "info",
		RunMigrations:            true,
		SessionTTL:               12 * time.Hour,
		CookieSecure:             true,
		BcryptCost:               12,
		AllowedOrigins:           []string{"http://localhost:3000"},
		SMTPHost:                 "smtp-relay.brevo.com",
		SMTPPort:                 "587",
		RateLimitWindowSeconds:   60,
		RateLimitLoginThreshold:  10,
		RateLimitGlobalThreshold: 100,
		FailedLoginBlockMinutes:  15,
		FailedLoginMaxAttempts:   5,
		S3Region:                 "ap-southeast-1",
		CertificateDir:           "./uploads/certificates",
		MaxUploadBytes:           5 << 20,
	}
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.TrimRight(p, "/"))
		}
	}
	return out
}
