package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration for the server and the fraudctl client.
type Config struct {
	Env  string
	Port string

	// PostgreSQL
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBMaxIdleConns    int
	DBMaxOpenConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	StatsCacheTTL time.Duration

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string

	// Model
	ModelPath string

	// HTTP
	CORSOrigins      string
	PredictRateLimit int

	// Client
	APIURL              string
	HistoryPollInterval time.Duration
	HistoryLimit        int
	ThemeFile           string
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Env:  GetEnv("ENV", "development"),
		Port: GetEnv("PORT", "8000"),

		DBHost:            GetEnv("DB_HOST", "localhost"),
		DBPort:            GetEnv("DB_PORT", "5432"),
		DBUser:            GetEnv("DB_USER", "postgres"),
		DBPassword:        GetEnv("DB_PASSWORD", "postgres"),
		DBName:            GetEnv("DB_NAME", "fraud_detection"),
		DBMaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		DBConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		DBConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),

		RedisHost:     GetEnv("REDIS_HOST", "localhost"),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),
		StatsCacheTTL: GetDurationEnv("STATS_CACHE_TTL", 30*time.Second),

		KafkaBrokers: GetSliceEnv("KAFKA_BROKERS", nil, ","),
		KafkaTopic:   GetEnv("KAFKA_TOPIC", "fraud.predictions"),

		ModelPath: GetEnv("MODEL_PATH", "model/fraud_model.json"),

		CORSOrigins:      GetEnv("CORS_ORIGINS", "*"),
		PredictRateLimit: GetIntEnv("PREDICT_RATE_LIMIT", 120),

		APIURL:              GetEnv("FRAUD_API_URL", "http://localhost:8000"),
		HistoryPollInterval: GetDurationEnv("HISTORY_POLL_INTERVAL", 30*time.Second),
		HistoryLimit:        GetIntEnv("HISTORY_LIMIT", 50),
		ThemeFile:           GetEnv("THEME_FILE", ".fraudlens-theme"),
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv parses a time.Duration environment variable ("30s", "1h").
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetSliceEnv splits an environment variable on sep, dropping empty items.
func GetSliceEnv(key string, defaultVal []string, sep string) []string {
	val := GetEnv(key, "")
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=disable"
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}
