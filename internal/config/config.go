package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	APIBaseURL     string
	HTTPTimeout    time.Duration
	TypingInterval time.Duration
	TypingChunk    int
	PageLimit      int
	LogLevel       string

	// Stub backend settings, only used by `aviator stub`.
	StubPort    string
	DatabaseURL string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Debug("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		APIBaseURL:     getEnv("AVIATOR_API_URL", "http://localhost:8000"),
		HTTPTimeout:    time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 60)) * time.Second,
		TypingInterval: time.Duration(getEnvAsInt("TYPING_INTERVAL_MS", 30)) * time.Millisecond,
		TypingChunk:    getEnvAsInt("TYPING_CHUNK_CHARS", 3),
		PageLimit:      getEnvAsInt("PAGE_LIMIT", 10),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StubPort:       getEnv("STUB_PORT", "8000"),
		DatabaseURL:    getEnv("DATABASE_URL", "aviator_stub.db"),
	}
}

// SetupLogging applies the configured level and a millisecond-precision
// timestamp format to the global logger.
func SetupLogging() {
	level, err := log.ParseLevel(AppConfig.LogLevel)
	if err != nil {
		log.WithError(err).Warnf("Cannot parse log level %q, using info", AppConfig.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	formatter := new(log.TextFormatter)
	formatter.TimestampFormat = "2006-01-02T15:04:05.999Z07:00"
	formatter.FullTimestamp = true
	log.SetFormatter(formatter)
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
