package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	API     APIConfig
	Teams   TeamsConfig
	Log     LogConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Receipt ReceiptConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	SessionTTL   time.Duration
}

// APIConfig points at the ticketing backend. BaseURL is the only setting the
// purchase and admin flows strictly need.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type TeamsConfig struct {
	DirectoryURL string
	Sport        string
	Country      string
}

type LogConfig struct {
	Level string
	Dir   string
}

// RedisConfig enables the Redis credential store when Addr is set.
type RedisConfig struct {
	Addr string
	DB   int
}

type KafkaConfig struct {
	Enabled     bool
	Brokers     []string
	TopicPrefix string
}

type ReceiptConfig struct {
	Dir      string
	QRSecret string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8085"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			SessionTTL:   time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)) * time.Minute,
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:4000"), "/"),
			Timeout: getEnvDuration("API_TIMEOUT_SECONDS", 0),
		},
		Teams: TeamsConfig{
			DirectoryURL: getEnv("TEAMS_DIRECTORY_URL", "https://www.thesportsdb.com/api/v1/json/3/search_all_teams.php"),
			Sport:        getEnv("TEAMS_SPORT", "Soccer"),
			Country:      getEnv("TEAMS_COUNTRY", "Colombia"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
			Dir:   getEnv("LOG_DIR", ""),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", ""),
			DB:   getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled:     getEnvBool("KAFKA_ENABLED", false),
			Brokers:     getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			TopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "oc.boleteria"),
		},
		Receipt: ReceiptConfig{
			Dir:      getEnv("RECEIPT_DIR", "receipts"),
			QRSecret: getEnv("QR_SECRET", "once-caldas-palogrande"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration reads a whole number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			return time.Duration(parsed) * time.Second
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
