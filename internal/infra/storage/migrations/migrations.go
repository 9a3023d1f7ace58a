package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SpaBookingService/pkg/txmanager"
)

//go:embed *.sql
var files embed.FS

var (
	// ErrApply возвращается, если миграцию не удалось применить
	ErrApply = errors.New("migrations: failed to apply migration")

	// ErrSeed возвращается, если не удалось заполнить каталог
	ErrSeed = errors.New("migrations: failed to seed catalog")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// Versions возвращает имена встроенных миграций по порядку применения
func Versions() ([]string, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}

	versions := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		versions = append(versions, e.Name())
	}
	sort.Strings(versions)

	return versions, nil
}

// Up применяет непримененные миграции, каждая в отдельном запросе
// Примененные версии хранятся в schema_migrations
func Up(ctx context.Context, db txmanager.DBExecutor, log Logger) error {
	versions, err := Versions()
	if err != nil {
		return fmt.Errorf("%w: read embedded files: %v", ErrApply, err)
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("%w: create schema_migrations: %v", ErrApply, err)
	}

	for _, version := range versions {
		var applied bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("%w: check %s: %v", ErrApply, version, err)
		}
		if applied {
			continue
		}

		body, err := files.ReadFile(version)
		if err != nil {
			return fmt.Errorf("%w: read %s: %v", ErrApply, version, err)
		}

		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("%w: apply %s: %v", ErrApply, version, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("%w: record %s: %v", ErrApply, version, err)
		}

		log.Info("Applied migration %s", version)
	}

	return nil
}

// SeedCatalog добавляет услуги каталога, уже существующие ID не трогает
func SeedCatalog(ctx context.Context, db txmanager.DBExecutor, services []domain.Service) error {
	if len(services) == 0 {
		return nil
	}

	query, args, err := seedCatalogQuery(services)
	if err != nil {
		return fmt.Errorf("%w: build insert query: %v", ErrSeed, err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: execute insert: %v", ErrSeed, err)
	}

	return nil
}

func seedCatalogQuery(services []domain.Service) (string, []interface{}, error) {
	builder := psqlbuilder.Insert("services").
		Columns("id", "name", "description", "duration_minutes", "price")

	for i := range services {
		s := services[i]
		if err := s.Validate(); err != nil {
			return "", nil, err
		}
		builder = builder.Values(s.ID, s.Name, s.Description, s.DurationMinutes, s.Price)
	}

	return builder.Suffix("ON CONFLICT (id) DO NOTHING").ToSql()
}
