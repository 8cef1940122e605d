package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Stripe   StripeConfig
	Observ   ObservabilityConfig
	Business BusinessConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins []string
}

type MongoConfig struct {
	URI          string
	Database     string
	Transactions bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	TopicPayment  string
	ConsumerGroup string
}

type AuthConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
}

type StripeConfig struct {
	SecretKey string
	Currency  string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
	LogLevel       string
}

type BusinessConfig struct {
	CheckoutLockTTL time.Duration
	IdempotencyTTL  time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenHours, _ := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "5"))
	lockSeconds, _ := strconv.Atoi(getEnv("CHECKOUT_LOCK_SECONDS", "30"))
	idempotencyHours, _ := strconv.Atoi(getEnv("IDEMPOTENCY_TTL_HOURS", "24"))
	transactions, _ := strconv.ParseBool(getEnv("MONGO_TRANSACTIONS", "false"))

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "5000"),
			Env:         getEnv("ENV", "development"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		Mongo: MongoConfig{
			URI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:     getEnv("MONGO_DATABASE", "PharmaHub"),
			Transactions: transactions,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			TopicPayment:  getEnv("KAFKA_TOPIC_PAYMENT_EVENTS", "payment-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "cart-cleanup-group"),
		},
		Auth: AuthConfig{
			TokenSecret: getEnv("ACCESS_TOKEN_SECRET", ""),
			TokenTTL:    time.Duration(tokenHours) * time.Hour,
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:  getEnv("PAYMENT_CURRENCY", "usd"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
			LogLevel:       getEnv("LOG_LEVEL", ""),
		},
		Business: BusinessConfig{
			CheckoutLockTTL: time.Duration(lockSeconds) * time.Second,
			IdempotencyTTL:  time.Duration(idempotencyHours) * time.Hour,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, db=%s", cfg.Server.Env, cfg.Server.Port, cfg.Mongo.Database)
	return cfg
}

// Validate reports settings the service cannot start without
func (c *Config) Validate() error {
	if c.Auth.TokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL_HOURS must be positive")
	}
	if c.Business.CheckoutLockTTL <= 0 {
		return errors.New("CHECKOUT_LOCK_SECONDS must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
