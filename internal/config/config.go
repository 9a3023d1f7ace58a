package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

// Переменные окружения, перекрывающие значения из файла
const (
	EnvConfigPath    = "SPA_CONFIG"
	EnvDBPassword    = "SPA_DB_PASSWORD"
	EnvRedisPassword = "SPA_REDIS_PASSWORD"
	EnvHTTPPort      = "SPA_HTTP_PORT"
	EnvStorageDriver = "SPA_STORAGE_DRIVER"
)

const DefaultPath = "config.toml"

// Драйверы хранилища и блокировок
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	LockLocal = "local"
	LockRedis = "redis"
)

// ErrInvalidConfig возвращается при некорректной конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Storage   StorageConfig   `toml:"storage"`
	Redis     RedisConfig     `toml:"redis"`
	Lock      LockConfig      `toml:"lock"`
	Slots     SlotsConfig     `toml:"slots"`
	Booking   BookingConfig   `toml:"booking"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

// ServerConfig таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	MaxTxRetries    int    `toml:"max_tx_retries"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type StorageConfig struct {
	Driver string `toml:"driver"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type LockConfig struct {
	Driver          string `toml:"driver"`
	TTLMs           int    `toml:"ttl_ms"`
	RetryIntervalMs int    `toml:"retry_interval_ms"`
	AcquireTimeout  int    `toml:"acquire_timeout_ms"`
	KeyPrefix       string `toml:"key_prefix"`
}

func (c LockConfig) TTL() time.Duration {
	return time.Duration(c.TTLMs) * time.Millisecond
}

func (c LockConfig) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMs) * time.Millisecond
}

func (c LockConfig) AcquireTimeoutDuration() time.Duration {
	return time.Duration(c.AcquireTimeout) * time.Millisecond
}

// SlotsConfig сетка слотов рабочего дня
type SlotsConfig struct {
	OpenTime        string `toml:"open_time"`
	CloseTime       string `toml:"close_time"`
	DurationMinutes int    `toml:"duration_minutes"`
}

// Schedule конвертирует секцию в domain.SlotSchedule
func (c SlotsConfig) Schedule() (domain.SlotSchedule, error) {
	open, err := types.NewTimeStringFromString(c.OpenTime)
	if err != nil {
		return domain.SlotSchedule{}, fmt.Errorf("open_time: %w", err)
	}
	closeAt, err := types.NewTimeStringFromString(c.CloseTime)
	if err != nil {
		return domain.SlotSchedule{}, fmt.Errorf("close_time: %w", err)
	}

	schedule := domain.SlotSchedule{
		OpenTime:            open,
		CloseTime:           closeAt,
		SlotDurationMinutes: c.DurationMinutes,
	}
	if err := schedule.Validate(); err != nil {
		return domain.SlotSchedule{}, err
	}
	return schedule, nil
}

type BookingConfig struct {
	RequireKnownCustomer bool `toml:"require_known_customer"`
	BcryptCost           int  `toml:"bcrypt_cost"`
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	// TrustedProxies адреса или подсети прокси, которым доверяем X-Forwarded-For
	TrustedProxies []string `toml:"trusted_proxies"`
}

// TrustedProxyPrefixes разбирает trusted_proxies; одиночный адрес становится подсетью /32 или /128
func (c RateLimitConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("trusted_proxies: %w", err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted_proxies: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// Default конфигурация по умолчанию: in-memory хранилище, локальные блокировки
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "spa_booking",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			MaxTxRetries:    3,
		},
		Storage: StorageConfig{Driver: StorageMemory},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Lock: LockConfig{
			Driver:          LockLocal,
			TTLMs:           10000,
			RetryIntervalMs: 25,
			AcquireTimeout:  5000,
			KeyPrefix:       "spa:slot-lock",
		},
		Slots: SlotsConfig{
			OpenTime:        domain.DefaultOpenTime,
			CloseTime:       domain.DefaultCloseTime,
			DurationMinutes: domain.DefaultSlotDurationMinutes,
		},
		Booking: BookingConfig{
			RequireKnownCustomer: true,
			BcryptCost:           10,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "spa-booking-service",
		},
	}
}

// Load читает TOML-файл поверх значений по умолчанию и применяет переменные окружения
// .env подгружается, если есть; уже заданные переменные окружения не перезаписываются
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		path = envPath
	}

	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv(EnvStorageDriver); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv(EnvHTTPPort); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err != nil {
			return fmt.Errorf("%w: %s=%q is not a port", ErrInvalidConfig, EnvHTTPPort, v)
		}
		c.Server.HTTPPort = port
	}
	return nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.http_port %d out of range", c.Server.HTTPPort))
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			problems = append(problems, "database.host and database.dbname are required for postgres storage")
		}
		if c.Database.MaxTxRetries < 0 {
			problems = append(problems, "database.max_tx_retries must not be negative")
		}
	default:
		problems = append(problems, fmt.Sprintf("storage.driver %q must be %q or %q", c.Storage.Driver, StorageMemory, StoragePostgres))
	}

	switch c.Lock.Driver {
	case LockLocal:
	case LockRedis:
		if c.Redis.Addr == "" {
			problems = append(problems, "redis.addr is required for redis lock")
		}
		if c.Lock.TTLMs <= 0 {
			problems = append(problems, "lock.ttl_ms must be positive")
		}
	default:
		problems = append(problems, fmt.Sprintf("lock.driver %q must be %q or %q", c.Lock.Driver, LockLocal, LockRedis))
	}

	if _, err := c.Slots.Schedule(); err != nil {
		problems = append(problems, fmt.Sprintf("slots: %v", err))
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		problems = append(problems, "rate_limit.requests_per_second and rate_limit.burst must be positive")
	}
	if _, err := c.RateLimit.TrustedProxyPrefixes(); err != nil {
		problems = append(problems, fmt.Sprintf("rate_limit.%v", err))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		problems = append(problems, fmt.Sprintf("metrics.path %q must start with /", c.Metrics.Path))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
