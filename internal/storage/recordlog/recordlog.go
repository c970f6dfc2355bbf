// Пакет recordlog — абстракция хранилища журналов записей.
// Журнал — упорядоченная последовательность строк, в которую
// можно только дописывать. Реализации: in-memory (Memory),
// файловая (flatfile) и PostgreSQL (pglog).
package recordlog

import (
	"context"
	"sync"
)

// Log — хранилище именованных журналов строк.
type Log interface {
	// ReadLines возвращает все строки журнала name в порядке добавления.
	// Отсутствующий журнал — пустой результат, не ошибка.
	ReadLines(ctx context.Context, name string) ([]string, error)
	// AppendLine дописывает одну строку в конец журнала name.
	// line не содержит перевода строки.
	AppendLine(ctx context.Context, name, line string) error
}

// Memory — in-memory реализация Log для тестов и режима memory.
// Данные теряются при рестарте.
type Memory struct {
	mu   sync.RWMutex
	logs map[string][]string
}

// NewMemory создаёт пустое in-memory хранилище.
func NewMemory() *Memory {
	return &Memory{logs: make(map[string][]string)}
}

// ReadLines возвращает копию строк журнала.
func (m *Memory) ReadLines(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	lines := m.logs[name]
	if len(lines) == 0 {
		return nil, nil
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out, nil
}

// AppendLine добавляет строку в журнал.
func (m *Memory) AppendLine(ctx context.Context, name, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.logs[name] = append(m.logs[name], line)
	return nil
}

// Seed записывает строки как есть, минуя проверки вызывающего слоя.
// Используется в тестах для подготовки повреждённых журналов.
func (m *Memory) Seed(name string, lines ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logs[name] = append(m.logs[name], lines...)
}
