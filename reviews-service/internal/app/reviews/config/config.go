package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	JWT     JWTConfig

	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogstashAddr string `envconfig:"LOGSTASH_ADDR"`
}

type ServerConfig struct {
	Host string `default:"0.0.0.0"`
	Port string `default:"8083"`
}

type MongoDBConfig struct {
	URI      string `default:"mongodb://localhost:27017"`
	Database string `default:"reviews_service"`
}

// RedisConfig - хранилище счетчиков отклоненных отзывов
type RedisConfig struct {
	Host     string `default:"localhost"`
	Port     string `default:"6379"`
	Password string
	DB       int `default:"0"`
}

type KafkaConfig struct {
	Brokers []string `default:"localhost:9092"`
	Topic   string   `default:"review_events"`
}

type JWTConfig struct {
	Secret string `default:"your-secret-key-change-this-in-production"` // должен совпадать с сервисом, выпускающим токены
}

// Load читает окружение; .env в рабочем каталоге подхватывается для локального запуска,
// уже выставленные переменные он не перезаписывает
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS must not be empty")
	}

	return &cfg, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}
