// File: internal/config/config.go
package config

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server side settings.
type Config struct {
	ServerPort   string
	Environment  string
	JWTSecretKey string
	TokenTTL     time.Duration

	// Persistence
	DBDriver    string // sqlite | postgres
	DatabaseURL string
	StoreDriver string // gorm | supabase
	AuthDriver  string // local | supabase

	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseAnonKey        string

	RedisURL string

	// Checkout
	StripeSecretKey       string
	CheckoutDefaultOrigin string
	PlansFile             string

	GoogleAuthorizeURL string

	LogFile  string
	LogLevel slog.Level
}

// ClientConfig holds the terminal client settings.
type ClientConfig struct {
	APIURL       string
	AuthURL      string // session endpoints; defaults to APIURL
	AppURL       string // where OAuth logins return to
	APIKey       string
	SessionMode  string // remote | demo
	SessionFile  string
	DemoFile     string
	AutosaveWait time.Duration
	LogFile      string
	LogLevel     slog.Level
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := loadDotEnv()

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		Environment:  env,
		JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
		TokenTTL:     getEnvAsDuration("TOKEN_TTL", time.Hour),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL: getEnv("DATABASE_URL", "revivar.db"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "gorm")),
		AuthDriver:  strings.ToLower(getEnv("AUTH_DRIVER", "local")),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseAnonKey:        getEnv("SUPABASE_ANON_KEY", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		StripeSecretKey:       getEnv("STRIPE_SECRET_KEY", ""),
		CheckoutDefaultOrigin: getEnv("CHECKOUT_DEFAULT_ORIGIN", "https://revivarimagem.lovable.app"),
		PlansFile:             getEnv("PLANS_FILE", "plans.yaml"),

		GoogleAuthorizeURL: getEnv("GOOGLE_AUTHORIZE_URL", ""),

		LogFile:  getEnv("LOG_FILE", "revivar-server.log"),
		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
	}

	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" && cfg.AuthDriver == "local" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.StripeSecretKey == "" {
			missing = append(missing, "STRIPE_SECRET_KEY")
		}
		if cfg.StoreDriver == "supabase" || cfg.AuthDriver == "supabase" {
			if cfg.SupabaseURL == "" {
				missing = append(missing, "SUPABASE_URL")
			}
			if cfg.SupabaseServiceRoleKey == "" {
				missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
			}
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	if cfg.JWTSecretKey == "" {
		log.Println("JWT_SECRET_KEY not set; using an insecure development secret")
		cfg.JWTSecretKey = "dev-insecure-secret"
	}

	return cfg
}

// LoadClient reads the terminal client configuration.
func LoadClient() *ClientConfig {
	loadDotEnv()

	apiURL := strings.TrimRight(getEnv("REVIVAR_API_URL", "http://localhost:8080"), "/")
	return &ClientConfig{
		APIURL:       apiURL,
		AuthURL:      strings.TrimRight(getEnv("REVIVAR_AUTH_URL", apiURL), "/"),
		AppURL:       strings.TrimRight(getEnv("REVIVAR_APP_URL", "https://revivarimagem.lovable.app"), "/"),
		APIKey:       getEnv("REVIVAR_API_KEY", ""),
		SessionMode:  strings.ToLower(getEnv("REVIVAR_SESSION_MODE", "remote")),
		SessionFile:  getEnv("REVIVAR_SESSION_FILE", "revivar-session.json"),
		DemoFile:     getEnv("REVIVAR_DEMO_FILE", "reviverImagem_user.json"),
		AutosaveWait: getEnvAsDuration("REVIVAR_AUTOSAVE_DELAY", time.Second),
		LogFile:      getEnv("REVIVAR_LOG_FILE", "revivar-client.log"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
	}
}

func loadDotEnv() string {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
		env = os.Getenv("ENV")
	}
	return env
}

// getEnv returns the value of an environment variable, or the default when
// it is unset or empty.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

// getEnvAsDuration accepts Go durations ("1500ms") or plain seconds ("30").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs := getEnvAsInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
	return defaultValue
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
