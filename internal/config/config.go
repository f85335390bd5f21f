package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server          ServerConfig
	Database        DatabaseConfig
	Redis           RedisConfig
	Kafka           KafkaConfig
	CustomerService ServiceConfig
	LoyaltyService  ServiceConfig
	TariffProvider  ServiceConfig
	Pricing         PricingConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PricingConfig carries the pricing pipeline's tunables. The tax rate
// is injected into the calculator per call, never read as ambient state.
type PricingConfig struct {
	TaxRate  float64
	Currency string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8082),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "koliko"),
			Password:     getEnvString("DB_PASSWORD", "koliko"),
			Name:         getEnvString("DB_NAME", "koliko_orders"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(getEnvString("KAFKA_BROKERS", "localhost:9092"), ","),
			OrdersTopic: getEnvString("KAFKA_ORDERS_TOPIC", "order-events"),
		},
		CustomerService: ServiceConfig{
			BaseURL: getEnvString("CUSTOMER_SERVICE_URL", "http://localhost:8083"),
			Timeout: time.Duration(getEnvInt("CUSTOMER_SERVICE_TIMEOUT", 10)) * time.Second,
		},
		LoyaltyService: ServiceConfig{
			BaseURL: getEnvString("LOYALTY_SERVICE_URL", "http://localhost:8084"),
			Timeout: time.Duration(getEnvInt("LOYALTY_SERVICE_TIMEOUT", 10)) * time.Second,
		},
		TariffProvider: ServiceConfig{
			BaseURL: getEnvString("TARIFF_PROVIDER_URL", "https://api.deliverypartner.example"),
			Timeout: time.Duration(getEnvInt("TARIFF_PROVIDER_TIMEOUT", 3)) * time.Second,
		},
		Pricing: PricingConfig{
			TaxRate:  getEnvFloat("TAX_RATE", 0.05),
			Currency: getEnvString("CURRENCY", "XOF"),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
