// Пакет filestore — каталог загруженных ресурсов.
// Файл хранится под именем, с которым его загрузил пользователь;
// запись атомарна (temp → fsync → rename), повторная загрузка
// под тем же именем заменяет содержимое целиком.
package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

var (
	// ErrInvalidName — имя файла нельзя использовать в каталоге ресурсов.
	ErrInvalidName = errors.New("недопустимое имя файла")
	// ErrTooLarge — размер файла превышает лимит.
	ErrTooLarge = errors.New("файл превышает допустимый размер")
	// ErrNotFound — файла нет в каталоге.
	ErrNotFound = errors.New("файл не найден")
)

// tmpPrefix — префикс временных файлов; такие имена нельзя загрузить.
const tmpPrefix = ".upload-"

// FileStore — управление файлами в каталоге ресурсов.
type FileStore struct {
	dir string
}

// SaveResult — результат сохранения файла.
type SaveResult struct {
	// Name — имя файла в каталоге
	Name string
	// FullPath — путь файла на диске
	FullPath string
	// Size — размер записанных данных в байтах
	Size int64
	// Checksum — SHA-256 содержимого
	Checksum string
}

// New создаёт FileStore и при необходимости сам каталог.
func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог ресурсов %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir возвращает путь к каталогу ресурсов.
func (fs *FileStore) Dir() string {
	return fs.dir
}

// ValidateName проверяет, что имя — одиночный безопасный компонент пути
// без разделителя полей журнала ':'.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\:`):
		return fmt.Errorf("%w: %q содержит разделитель", ErrInvalidName, name)
	case strings.HasPrefix(name, tmpPrefix):
		return fmt.Errorf("%w: %q зарезервировано", ErrInvalidName, name)
	case len(name) > 255:
		return fmt.Errorf("%w: длина %d больше 255", ErrInvalidName, len(name))
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %q содержит управляющий символ", ErrInvalidName, name)
		}
	}
	return nil
}

// Save записывает данные из reader в файл name с подсчётом SHA-256 на лету.
// maxSize > 0 ограничивает размер: при превышении возвращается ErrTooLarge,
// а существующий файл с тем же именем не изменяется.
func (fs *FileStore) Save(reader io.Reader, name string, maxSize int64) (*SaveResult, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	fullPath := filepath.Join(fs.dir, name)
	tmpPath := filepath.Join(fs.dir, tmpPrefix+uuid.NewString())

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	src := reader
	if maxSize > 0 {
		// Читаем на байт больше лимита, чтобы обнаружить превышение
		src = io.LimitReader(reader, maxSize+1)
	}

	hasher := sha256.New()
	size, err := io.Copy(f, io.TeeReader(src, hasher))
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}
	if maxSize > 0 && size > maxSize {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: лимит %d байт", ErrTooLarge, maxSize)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return &SaveResult{
		Name:     name,
		FullPath: fullPath,
		Size:     size,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Open открывает файл для чтения. Вызывающий код обязан закрыть файл.
func (fs *FileStore) Open(name string) (*os.File, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(fs.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", name, err)
	}
	return f, nil
}

// Exists проверяет, что в каталоге есть обычный файл name.
func (fs *FileStore) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(fs.dir, name))
	return err == nil && info.Mode().IsRegular()
}

// CheckReady проверяет доступность каталога ресурсов.
func (fs *FileStore) CheckReady() (status string, message string) {
	info, err := os.Stat(fs.dir)
	if err != nil {
		return "fail", fmt.Sprintf("каталог ресурсов недоступен: %v", err)
	}
	if !info.IsDir() {
		return "fail", fmt.Sprintf("%s не является каталогом", fs.dir)
	}
	return "ok", "каталог ресурсов доступен"
}
