package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	Host           string
	Env            string
	AllowedOrigins []string

	JWTSecret string

	RedisURL      string
	RedisPassword string

	// MirrorBackend selects the best-effort remote mirror: "postgres",
	// "mongo" or "none".
	MirrorBackend string
	DBUrl         string
	MongoURL      string
	MongoDB       string

	LedgerPath     string
	LedgerMaxBytes int

	MinDeposit         float64
	MaxDeposit         float64
	DailyDepositCap    float64
	MinWithdrawal      float64
	DailyWithdrawalCap float64

	// TransferFeeRate is the flat fee charged on the outgoing leg of a
	// currency transfer. Recorded on the transaction, never deducted from
	// the transferred amount.
	TransferFeeRate float64

	// ConversionRates maps a currency code to its units per USD.
	ConversionRates map[string]float64
}

func LoadConfig() Config {
	godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT"),
		Host:           getEnv("HOST"),
		Env:            getEnv("ENV"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS"), ","),
		JWTSecret:      getEnv("JWT_SECRET"),
		RedisURL:       getEnv("REDIS_URL"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),

		MirrorBackend: getEnvOr("MIRROR_BACKEND", "none"),
		DBUrl:         getEnv("DATABASE_URL"),
		MongoURL:      os.Getenv("MONGO_URL"),
		MongoDB:       getEnvOr("MONGO_DB", "betwallet"),

		LedgerPath:     getEnvOr("LEDGER_PATH", "data/ledger.json"),
		LedgerMaxBytes: getEnvInt("LEDGER_MAX_BYTES", 1<<20),

		MinDeposit:         getEnvFloat("MIN_DEPOSIT", 10),
		MaxDeposit:         getEnvFloat("MAX_DEPOSIT", 50000),
		DailyDepositCap:    getEnvFloat("DAILY_DEPOSIT_CAP", 100000),
		MinWithdrawal:      getEnvFloat("MIN_WITHDRAWAL", 20),
		DailyWithdrawalCap: getEnvFloat("DAILY_WITHDRAWAL_CAP", 50000),

		TransferFeeRate: getEnvFloat("TRANSFER_FEE_RATE", 0.01),

		ConversionRates: parseRates(getEnvOr("CONVERSION_RATES", "USD:1,EUR:0.92,GBP:0.79,NGN:1550")),
	}

	if cfg.MirrorBackend == "mongo" && cfg.MongoURL == "" {
		panic("MONGO_URL is required when MIRROR_BACKEND=mongo")
	}

	return cfg
}

// parseRates parses "USD:1,EUR:0.92" style pairs.
func parseRates(raw string) map[string]float64 {
	rates := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			panic(fmt.Sprintf("CONVERSION_RATES: invalid pair %q", pair))
		}
		rate, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || rate <= 0 {
			panic(fmt.Sprintf("CONVERSION_RATES: invalid rate for %s", parts[0]))
		}
		rates[strings.ToUpper(parts[0])] = rate
	}
	return rates
}

func getEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	panic(fmt.Sprintf("%s is required", key))
}

func getEnvOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		panic(fmt.Sprintf("%s must be a valid integer", key))
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		panic(fmt.Sprintf("%s must be a valid number", key))
	}
	return f
}
