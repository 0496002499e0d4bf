package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Google    GoogleConfig
	Export    ExportConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port     string
	GinMode  string
	LogLevel string
	// PublicOrigin prefixes share links, e.g. https://feedback.example.com
	PublicOrigin string
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Driver   string // postgres | sqlite
	URL      string // full DSN, overrides the parts below
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
	// Path is the sqlite file (or a file: URI for in-memory databases).
	Path string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// AdminConfig seeds an admin account at startup when Username is set.
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

type GoogleConfig struct {
	ClientID string
}

type ExportConfig struct {
	Dir            string
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
}

type RateLimitConfig struct {
	SubmitPerMinute     int
	SubmitBurst         int
	FormCreatePerMinute int
	FormCreateBurst     int
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			GinMode:      getEnv("GIN_MODE", "debug"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			PublicOrigin: getEnv("PUBLIC_ORIGIN", "http://localhost:5173"),
			CORSOrigins:  getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", DriverPostgres),
			URL:      os.Getenv("DB_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "feedback"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "UTC"),
			Path:     getEnv("DB_PATH", "feedback.sqlite"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			TTL:    time.Duration(getEnvAsInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		},
		Admin: AdminConfig{
			Username: os.Getenv("ADMIN_USERNAME"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		Google: GoogleConfig{
			ClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		},
		Export: ExportConfig{
			Dir:            getEnv("EXPORT_DIR", "./exports"),
			SupabaseURL:    os.Getenv("SUPABASE_URL"),
			SupabaseKey:    os.Getenv("SUPABASE_KEY"),
			SupabaseBucket: getEnv("SUPABASE_BUCKET", "feedback_exports"),
		},
		RateLimit: RateLimitConfig{
			SubmitPerMinute:     getEnvAsInt("RATE_SUBMIT_PER_MIN", 30),
			SubmitBurst:         getEnvAsInt("RATE_SUBMIT_BURST", 10),
			FormCreatePerMinute: getEnvAsInt("RATE_FORM_CREATE_PER_MIN", 10),
			FormCreateBurst:     getEnvAsInt("RATE_FORM_CREATE_BURST", 5),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
