// Пакет pglog — реализация recordlog.Log поверх PostgreSQL.
// Все журналы хранятся в одной таблице record_lines (см. database.Migrate);
// порядок строк журнала задаётся первичным ключом id.
package pglog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInvalidLine — строка содержит перевод строки.
var ErrInvalidLine = errors.New("строка журнала содержит перевод строки")

// Store — журналы записей в PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New создаёт хранилище журналов поверх пула подключений.
// Таблица record_lines должна существовать (миграции применены).
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{
		pool:   pool,
		logger: logger.With(slog.String("component", "pglog")),
	}
}

// ReadLines возвращает строки журнала name в порядке добавления.
func (s *Store) ReadLines(ctx context.Context, name string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT line FROM record_lines WHERE log_name = $1 ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала %s: %w", name, err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки журнала %s: %w", name, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации журнала %s: %w", name, err)
	}
	return lines, nil
}

// AppendLine добавляет строку в журнал name одним INSERT.
func (s *Store) AppendLine(ctx context.Context, name, line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return ErrInvalidLine
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO record_lines (log_name, line) VALUES ($1, $2)`, name, line)
	if err != nil {
		return fmt.Errorf("ошибка записи в журнал %s: %w", name, err)
	}

	s.logger.Debug("Строка добавлена в журнал", slog.String("log", name))
	return nil
}
