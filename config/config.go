package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Redis    RedisConfig
	Postgres PostgresConfig
	Server   ServerConfig
	Notifier NotifierConfig
	Prize    PrizeConfig
}

type ServerConfig struct {
	Port string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type PostgresConfig struct {
	DSN string
}

// NotifierConfig drives the change-marker pollers and the per-client
// push connections.
type NotifierConfig struct {
	PollIntervalMs   int
	HeartbeatSeconds int
	MaxConnAgeMin    int
	FetchTimeoutSec  int
}

type PrizeConfig struct {
	AdminFeeRate       float64
	GuaranteeThreshold float64
	GuaranteePerWinner float64
	EntryFee           float64
}

var GlobalConfig *Config

func NewConfig() *Config {
	db, err := strconv.Atoi(readEnvVar("REDIS_DB"))
	if err != nil {
		db = 0
	}

	cfg := &Config{
		Redis: RedisConfig{
			Host:     readEnvVar("REDIS_HOST"),
			Port:     readEnvVar("REDIS_PORT"),
			Password: readEnvVar("REDIS_PASSWORD"),
			DB:       db,
		},
		Postgres: PostgresConfig{
			DSN: readEnvVar("POSTGRES_DSN"),
		},
		Server: ServerConfig{
			Port: readEnvVar("SERVER_PORT"),
		},
		Notifier: NotifierConfig{
			PollIntervalMs:   readIntEnvVar("NOTIFIER_POLL_INTERVAL_MS", 250),
			HeartbeatSeconds: readIntEnvVar("NOTIFIER_HEARTBEAT_SECONDS", 10),
			MaxConnAgeMin:    readIntEnvVar("NOTIFIER_MAX_CONN_AGE_MIN", 10),
			FetchTimeoutSec:  readIntEnvVar("NOTIFIER_FETCH_TIMEOUT_SEC", 2),
		},
		Prize: PrizeConfig{
			AdminFeeRate:       readFloatEnvVar("PRIZE_ADMIN_FEE_RATE", 0.30),
			GuaranteeThreshold: readFloatEnvVar("PRIZE_GUARANTEE_THRESHOLD", 72),
			GuaranteePerWinner: readFloatEnvVar("PRIZE_GUARANTEE_PER_WINNER", 1),
			EntryFee:           readFloatEnvVar("TOURNAMENT_ENTRY_FEE", 1),
		},
	}

	GlobalConfig = cfg
	return cfg
}

func readEnvVar(name string) string {
	godotenv.Load(".env")
	return os.Getenv(name)
}

func readIntEnvVar(name string, fallback int) int {
	v, err := strconv.Atoi(readEnvVar(name))
	if err != nil {
		return fallback
	}
	return v
}

func readFloatEnvVar(name string, fallback float64) float64 {
	v, err := strconv.ParseFloat(readEnvVar(name), 64)
	if err != nil {
		return fallback
	}
	return v
}
