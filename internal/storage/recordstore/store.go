package recordstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/eduportal/internal/storage/recordlog"
)

// Prometheus-метрики хранилища записей.
var (
	appendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ep_store_appends_total",
		Help: "Общее количество записей, добавленных в журналы.",
	}, []string{"store"})

	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ep_store_loads_total",
		Help: "Общее количество полных чтений журналов.",
	}, []string{"store"})

	malformedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ep_store_malformed_records_total",
		Help: "Количество повреждённых строк, обнаруженных при чтении журналов.",
	}, []string{"store"})
)

// Codec — преобразование записи в поля строки журнала и обратно.
type Codec[T any] struct {
	// Encode возвращает поля записи в порядке схемы.
	Encode func(rec T) []string
	// Decode собирает запись из полей. Ошибка означает повреждённую строку.
	Decode func(fields []string) (T, error)
}

// Store — журнал записей одного типа.
// Дозаписи сериализуются (single writer), чтения выполняются параллельно.
type Store[T any] struct {
	log    recordlog.Log
	schema Schema
	codec  Codec[T]
	policy Policy
	mu     sync.RWMutex
	logger *slog.Logger
}

// New создаёт хранилище записей поверх журнала log.
func New[T any](log recordlog.Log, schema Schema, codec Codec[T], policy Policy, logger *slog.Logger) *Store[T] {
	if policy == "" {
		policy = PolicyLenient
	}
	return &Store[T]{
		log:    log,
		schema: schema,
		codec:  codec,
		policy: policy,
		logger: logger.With(
			slog.String("component", "recordstore"),
			slog.String("store", schema.Name),
		),
	}
}

// Name возвращает имя журнала.
func (s *Store[T]) Name() string {
	return s.schema.Name
}

// Load читает журнал целиком и возвращает записи в порядке добавления.
// Пустой или отсутствующий журнал — пустой результат.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(ctx)
}

// Append добавляет запись в конец журнала.
func (s *Store[T]) Append(ctx context.Context, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.append(ctx, rec)
}

// AppendIf атомарно (в пределах процесса) проверяет текущее состояние
// журнала и добавляет запись, только если check вернул nil.
// Ошибка check возвращается как есть, журнал не изменяется.
func (s *Store[T]) AppendIf(ctx context.Context, rec T, check func(current []T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := check(current); err != nil {
		return err
	}
	return s.append(ctx, rec)
}

func (s *Store[T]) append(ctx context.Context, rec T) error {
	line, err := s.schema.Join(s.codec.Encode(rec))
	if err != nil {
		return err
	}

	if err := s.log.AppendLine(ctx, s.schema.Name, line); err != nil {
		return fmt.Errorf("ошибка записи в журнал %s: %w", s.schema.Name, err)
	}

	appendsTotal.WithLabelValues(s.schema.Name).Inc()
	return nil
}

// load разбирает все строки журнала согласно политике.
// Вызывается под блокировкой.
func (s *Store[T]) load(ctx context.Context) ([]T, error) {
	lines, err := s.log.ReadLines(ctx, s.schema.Name)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала %s: %w", s.schema.Name, err)
	}
	loadsTotal.WithLabelValues(s.schema.Name).Inc()

	records := make([]T, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := s.decode(line)
		if err != nil {
			malformed := &MalformedError{
				Store:  s.schema.Name,
				Line:   i + 1,
				Raw:    line,
				Reason: err.Error(),
			}
			malformedTotal.WithLabelValues(s.schema.Name).Inc()

			if s.policy == PolicyStrict {
				return nil, malformed
			}

			s.logger.Warn("Пропуск повреждённой строки журнала",
				slog.Int("line", malformed.Line),
				slog.String("raw", malformed.Raw),
				slog.String("reason", malformed.Reason),
			)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func (s *Store[T]) decode(line string) (T, error) {
	var zero T

	fields, err := s.schema.Split(line)
	if err != nil {
		return zero, err
	}
	return s.codec.Decode(fields)
}
