package pglog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/eduportal/internal/config"
	"github.com/bigkaa/eduportal/internal/database"
)

// setupStore запускает PostgreSQL через testcontainers, применяет миграции
// и возвращает хранилище журналов.
func setupStore(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("eduportal_test"),
		postgres.WithUsername("eduportal"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	cfg := &config.Config{
		DBHost: host, DBPort: port.Int(), DBName: "eduportal_test",
		DBUser: "eduportal", DBPassword: "test-password", DBSSLMode: "disable",
	}
	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN())
	if err != nil {
		t.Fatalf("Ошибка создания пула: %v", err)
	}
	t.Cleanup(pool.Close)

	return New(pool, logger)
}

func TestReadLines_AbsentLog(t *testing.T) {
	s := setupStore(t)

	lines, err := s.ReadLines(context.Background(), "users.txt")
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("ожидался пустой журнал, получено %v", lines)
	}
}

// TestAppendLine_OrderAndIsolation проверяет порядок строк и разделение журналов.
func TestAppendLine_OrderAndIsolation(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.AppendLine(ctx, "enrollments.txt", fmt.Sprintf("alice:course %d", i)); err != nil {
			t.Fatalf("AppendLine: %v", err)
		}
	}
	if err := s.AppendLine(ctx, "users.txt", "alice:digest"); err != nil {
		t.Fatalf("AppendLine: %v", err)
	}

	lines, err := s.ReadLines(ctx, "enrollments.txt")
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 5 {
		t.Fatalf("строк = %d, ожидается 5", len(lines))
	}
	for i, line := range lines {
		if want := fmt.Sprintf("alice:course %d", i); line != want {
			t.Errorf("строка %d = %q, ожидается %q", i, line, want)
		}
	}
}

func TestAppendLine_RejectsNewline(t *testing.T) {
	s := setupStore(t)

	err := s.AppendLine(context.Background(), "users.txt", "a:b\nc:d")
	if !errors.Is(err, ErrInvalidLine) {
		t.Errorf("ожидалась ErrInvalidLine, получено %v", err)
	}
}
