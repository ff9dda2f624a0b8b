package config

import (
	"os"
	"strconv"
)

const ServiceName = "minimartd"

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPAddr string

	// StockBackend selects the ledger implementation: "memory" or "dynamodb".
	StockBackend string
	DynamoTable  string

	// KafkaBrokers is a comma separated broker list; empty disables the
	// event mirror entirely.
	KafkaBrokers string
	KafkaTopic   string

	// OTLPEndpoint enables the trace exporter when non-empty.
	OTLPEndpoint string

	GatewaySuccessRate float64
	GatewaySeed        int64

	// LoyaltyPointsRate is a decimal string: points credited per currency
	// unit of a settled payment.
	LoyaltyPointsRate string
}

func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		StockBackend: getEnv("STOCK_BACKEND", "memory"),
		DynamoTable:  getEnv("DYNAMO_TABLE", "minimart-stock"),

		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "minimart.events"),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),

		GatewaySuccessRate: getEnvFloat("GATEWAY_SUCCESS_RATE", 1.0),
		GatewaySeed:        getEnvInt64("GATEWAY_SEED", 1),

		LoyaltyPointsRate: getEnv("LOYALTY_POINTS_RATE", "1"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
