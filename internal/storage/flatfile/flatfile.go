// Пакет flatfile — файловая реализация recordlog.Log.
// Каждый журнал — отдельный текстовый файл в директории данных,
// одна запись на строку, строки завершаются '\n'.
package flatfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// maxLineSize — максимальная длина строки журнала при чтении (1 МБ).
const maxLineSize = 1 << 20

// Store — журналы в виде плоских файлов в директории dir.
type Store struct {
	// dir — директория с файлами журналов (EP_DATA_DIR)
	dir string
	// mu — сериализует дозапись: строки одного процесса не перемежаются
	mu     sync.Mutex
	logger *slog.Logger
}

// New создаёт файловое хранилище журналов. Создаёт директорию,
// если она не существует, и проверяет доступность на запись.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".flatfile_write_test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o640); err != nil {
		return nil, fmt.Errorf("директория данных %s недоступна для записи: %w", dir, err)
	}
	os.Remove(testFile)

	return &Store{
		dir:    dir,
		logger: logger.With(slog.String("component", "flatfile")),
	}, nil
}

// ReadLines читает файл журнала целиком. Отсутствие файла означает
// «записей ещё нет». Завершающий '\r' отбрасывается.
func (s *Store) ReadLines(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка открытия журнала %s: %w", name, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала %s: %w", name, err)
	}

	return lines, nil
}

// AppendLine дописывает строку в файл журнала (O_APPEND), выполняет
// fsync и закрывает файл. Файл создаётся при первой записи.
func (s *Store) AppendLine(ctx context.Context, name, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("строка журнала %s содержит перевод строки", name)
	}

	path, err := s.path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("ошибка открытия журнала %s на запись: %w", name, err)
	}

	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("ошибка записи в журнал %s: %w", name, err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("ошибка fsync журнала %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия журнала %s: %w", name, err)
	}

	s.logger.Debug("Строка добавлена в журнал", slog.String("log", name))
	return nil
}

// Dir возвращает путь к директории данных.
func (s *Store) Dir() string {
	return s.dir
}

// CheckReady проверяет, что директория данных существует.
func (s *Store) CheckReady() (status string, message string) {
	info, err := os.Stat(s.dir)
	if err != nil {
		return "fail", fmt.Sprintf("директория данных недоступна: %v", err)
	}
	if !info.IsDir() {
		return "fail", "путь к данным не является директорией"
	}
	return "ok", "директория данных доступна"
}

// path возвращает путь к файлу журнала. Имя журнала не может
// выходить за пределы директории данных.
func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("некорректное имя журнала %q", name)
	}
	return filepath.Join(s.dir, name), nil
}
