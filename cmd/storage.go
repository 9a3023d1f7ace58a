package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SpaBookingService/internal/config"
	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/catalog"
	customerRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/customer"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
	"github.com/m04kA/SMC-SpaBookingService/pkg/txmanager"
)

type catalogStore interface {
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	List(ctx context.Context) ([]*domain.Service, error)
}

type customerStore interface {
	Create(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Customer, error)
}

type appointmentStore interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	ExistsActive(ctx context.Context, key domain.SlotKey) (bool, error)
	ListByFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	Cancel(ctx context.Context, id string, cancelledAt time.Time) (*domain.Appointment, error)
}

type txManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// stores хранилища каталога, клиентов и записей одного backend
type stores struct {
	catalog      catalogStore
	customers    customerStore
	appointments appointmentStore
	tx           txManager
	ping         func(ctx context.Context) error
	close        func() error
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger, reg prometheus.Registerer) (*stores, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		return openPostgresStores(ctx, cfg.Database, log, reg)
	default:
		return openMemoryStores(log)
	}
}

// openMemoryStores in-memory backend, каталог заполняется услугами по умолчанию
func openMemoryStores(log *logger.Logger) (*stores, error) {
	catalog, err := catalogRepo.NewMemoryRepository(domain.DefaultCatalog())
	if err != nil {
		return nil, fmt.Errorf("seed memory catalog: %w", err)
	}

	log.Info("Using in-memory storage (data is lost on restart)")

	return &stores{
		catalog:      catalog,
		customers:    customerRepo.NewMemoryRepository(),
		appointments: appointmentRepo.NewMemoryRepository(),
		tx:           txmanager.NewPassthrough(),
		ping:         func(context.Context) error { return nil },
		close:        func() error { return nil },
	}, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func openPostgresStores(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger, reg prometheus.Registerer) (*stores, error) {
	db, err := openPostgres(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)", cfg.Host, cfg.Port, cfg.DBName)

	if reg != nil {
		if err := reg.Register(collectors.NewDBStatsCollector(db, cfg.DBName)); err != nil {
			log.Warn("Failed to register database pool metrics: %v", err)
		}
	}

	return &stores{
		catalog:      catalogRepo.NewRepository(db),
		customers:    customerRepo.NewRepository(db),
		appointments: appointmentRepo.NewRepository(db),
		tx:           txmanager.NewTransactionManager(db, cfg.MaxTxRetries),
		ping:         db.PingContext,
		close:        db.Close,
	}, nil
}

// openLocker блокировка слотов; таймаут ожидания из lock.acquire_timeout_ms
func openLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (lock.Locker, func() error, error) {
	if cfg.Lock.Driver != config.LockRedis {
		log.Info("Using in-process slot locks")
		return lock.WithAcquireTimeout(lock.NewLocalLocker(), cfg.Lock.AcquireTimeoutDuration()),
			func() error { return nil }, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}
	log.Info("Using Redis slot locks (addr=%s, ttl=%s)", cfg.Redis.Addr, cfg.Lock.TTL())

	locker := lock.NewRedisLocker(rdb, lock.RedisOptions{
		TTL:           cfg.Lock.TTL(),
		RetryInterval: cfg.Lock.RetryInterval(),
		KeyPrefix:     cfg.Lock.KeyPrefix,
	}, log)

	return lock.WithAcquireTimeout(locker, cfg.Lock.AcquireTimeoutDuration()), rdb.Close, nil
}
