package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит все настройки Catalog Service
// Значения читаются из переменных окружения, секции задают префикс (DB_HOST, REDIS_PORT и т.д.)
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig `envconfig:"DB"`
	Redis      RedisConfig
	Kafka      KafkaConfig
	JWT        JWTConfig
	Assignment AssignmentConfig
	Audit      AuditConfig

	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogstashAddr string `envconfig:"LOGSTASH_ADDR"` // пусто - логи только в stdout
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string `default:"0.0.0.0"`
	Port string `default:"8081"`
}

// DatabaseConfig - подключение к PostgreSQL
// Категории пишутся через pgx, товары через gorm, оба поверх одного DSN
type DatabaseConfig struct {
	Host     string `default:"localhost"`
	Port     string `default:"5432"`
	User     string `default:"postgres"`
	Password string `default:"postgres"`
	Name     string `default:"catalog_service"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`
}

// RedisConfig - кеш списка категорий
type RedisConfig struct {
	Host     string        `default:"localhost"`
	Port     string        `default:"6379"`
	Password string
	DB       int           `default:"0"`
	CacheTTL time.Duration `split_words:"true" default:"1h"`
}

// KafkaConfig - топик событий товаров
type KafkaConfig struct {
	Brokers []string `default:"localhost:9092"`
	Topic   string   `default:"product_events"`
}

// JWTConfig - секрет должен совпадать с сервисом, выпускающим токены
type JWTConfig struct {
	Secret string `default:"your-secret-key-change-this-in-production"`
}

// AssignmentConfig - пакетное назначение категории
// Concurrency = 1 означает строго последовательную обработку товаров
type AssignmentConfig struct {
	Concurrency int `default:"1"`
}

// AuditConfig - периодическая проверка цен
type AuditConfig struct {
	Enabled  bool   `default:"true"`
	Schedule string `default:"@every 1h"`
}

// Load загружает конфигурацию из переменных окружения
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

	if cfg.Assignment.Concurrency < 1 {
		return nil, errors.New("ASSIGNMENT_CONCURRENCY must be at least 1")
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS must not be empty")
	}

	return &cfg, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}
