package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/turnbattle/internal/db/migrations"
)

// PostgresImage — образ по умолчанию; переопределяется через TURNBATTLE_TEST_PG_IMAGE.
const PostgresImage = "postgres:16-alpine"

// SetupTestDB поднимает PostgreSQL в testcontainer, применяет миграции архива
// и возвращает pool. Таблица battle_results пуста на момент возврата.
// В режиме -short тест пропускается: контейнеру нужен Docker.
func SetupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping postgres container in -short mode")
	}
	ctx := context.Background()

	dsn := startPostgres(ctx, tb)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		tb.Fatalf("connecting to test db: %v", err)
	}
	tb.Cleanup(pool.Close)

	applied, err := migrate(ctx, dsn)
	if err != nil {
		tb.Fatalf("migrating test db: %v", err)
	}
	tb.Logf("test db ready: %d migrations applied", applied)

	return pool
}

// TruncateResults очищает архив между подтестами, которые делят один контейнер.
func TruncateResults(tb testing.TB, pool *pgxpool.Pool) {
	tb.Helper()
	if _, err := pool.Exec(context.Background(), "TRUNCATE battle_results"); err != nil {
		tb.Fatalf("truncating battle_results: %v", err)
	}
}

func startPostgres(ctx context.Context, tb testing.TB) string {
	tb.Helper()

	image := PostgresImage
	if v := os.Getenv("TURNBATTLE_TEST_PG_IMAGE"); v != "" {
		image = v
	}

	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase("turnbattle"),
		postgres.WithUsername("turnbattle"),
		postgres.WithPassword("turnbattle"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		tb.Fatalf("starting %s: %v", image, err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tb.Fatalf("getting connection string: %v", err)
	}
	return dsn
}

// migrate применяет postgres-миграции через goose Provider и возвращает их число.
func migrate(ctx context.Context, dsn string) (int, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return 0, fmt.Errorf("opening sql.DB: %w", err)
	}
	defer sqlDB.Close()

	dir, err := fs.Sub(migrations.FS, migrations.PostgresDir)
	if err != nil {
		return 0, fmt.Errorf("opening %s migrations: %w", migrations.PostgresDir, err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, dir)
	if err != nil {
		return 0, fmt.Errorf("creating goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("running goose up: %w", err)
	}
	return len(results), nil
}
