// Пакет config — загрузка и валидация конфигурации eduportal
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// ServiceName — имя сервиса в health-ответах и dephealth.
const ServiceName = "eduportal"

// Бэкенды хранения журналов записей.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Политики скачивания ресурсов.
const (
	DownloadShared = "shared"
	DownloadOwner  = "owner"
)

// Config содержит все параметры конфигурации eduportal.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Хранилище ---

	// Бэкенд журналов записей: file, memory, postgres
	StorageBackend string
	// Каталог журналов записей (бэкенд file)
	DataDir string
	// Каталог загруженных ресурсов
	UploadDir string
	// Максимальный размер загружаемого файла в байтах
	MaxUploadSize int64
	// Политика обработки повреждённых строк журналов (lenient, strict)
	ParsePolicy string
	// Политика скачивания ресурсов (shared, owner)
	DownloadPolicy string

	// --- Сессии ---

	// Секрет подписи сессионного токена (пустой — случайный на процесс)
	SessionSecret string
	// Время жизни сессии
	SessionTTL time.Duration
	// Флаг Secure для cookie сессии
	SecureCookie bool

	// --- Markdown ---

	// Размер LRU-кэша отрендеренных описаний
	MarkdownCacheSize int
	// TTL записей кэша описаний
	MarkdownCacheTTL time.Duration

	// --- PostgreSQL (только бэкенд postgres) ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Topologymetrics ---

	// Группа сервиса в topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// значения и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// EP_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("EP_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("EP_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("EP_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// EP_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("EP_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("EP_LOG_LEVEL: %w", err)
	}

	// EP_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("EP_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("EP_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Хранилище ---

	cfg.StorageBackend = getEnvDefault("EP_STORAGE_BACKEND", BackendFile)
	switch cfg.StorageBackend {
	case BackendFile, BackendMemory, BackendPostgres:
	default:
		return nil, fmt.Errorf("EP_STORAGE_BACKEND: недопустимое значение %q, допустимые: file, memory, postgres", cfg.StorageBackend)
	}

	cfg.DataDir = getEnvDefault("EP_DATA_DIR", ".")
	cfg.UploadDir = getEnvDefault("EP_UPLOAD_DIR", "resources")

	// EP_MAX_UPLOAD_SIZE — лимит размера загрузки (по умолчанию 32 MiB)
	maxUpload, err := getEnvInt("EP_MAX_UPLOAD_SIZE", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("EP_MAX_UPLOAD_SIZE: %w", err)
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("EP_MAX_UPLOAD_SIZE: значение %d должно быть положительным", maxUpload)
	}
	cfg.MaxUploadSize = int64(maxUpload)

	cfg.ParsePolicy = getEnvDefault("EP_PARSE_POLICY", "lenient")
	if cfg.ParsePolicy != "lenient" && cfg.ParsePolicy != "strict" {
		return nil, fmt.Errorf("EP_PARSE_POLICY: недопустимое значение %q, допустимые: lenient, strict", cfg.ParsePolicy)
	}

	cfg.DownloadPolicy = getEnvDefault("EP_DOWNLOAD_POLICY", DownloadShared)
	if cfg.DownloadPolicy != DownloadShared && cfg.DownloadPolicy != DownloadOwner {
		return nil, fmt.Errorf("EP_DOWNLOAD_POLICY: недопустимое значение %q, допустимые: shared, owner", cfg.DownloadPolicy)
	}

	// --- Сессии ---

	cfg.SessionSecret = os.Getenv("EP_SESSION_SECRET")

	cfg.SessionTTL, err = getEnvDuration("EP_SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("EP_SESSION_TTL: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("EP_SESSION_TTL: значение должно быть положительным")
	}

	cfg.SecureCookie, err = getEnvBool("EP_SECURE_COOKIE", false)
	if err != nil {
		return nil, fmt.Errorf("EP_SECURE_COOKIE: %w", err)
	}

	// --- Markdown ---

	cfg.MarkdownCacheSize, err = getEnvInt("EP_MARKDOWN_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("EP_MARKDOWN_CACHE_SIZE: %w", err)
	}
	if cfg.MarkdownCacheSize < 1 {
		return nil, fmt.Errorf("EP_MARKDOWN_CACHE_SIZE: значение %d должно быть не меньше 1", cfg.MarkdownCacheSize)
	}

	cfg.MarkdownCacheTTL, err = getEnvDuration("EP_MARKDOWN_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("EP_MARKDOWN_CACHE_TTL: %w", err)
	}

	// --- PostgreSQL ---

	cfg.DBPort, err = getEnvInt("EP_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("EP_DB_PORT: %w", err)
	}

	cfg.DBSSLMode = getEnvDefault("EP_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("EP_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	if cfg.StorageBackend == BackendPostgres {
		// Параметры подключения обязательны только для бэкенда postgres
		required := []struct {
			key string
			dst *string
		}{
			{"EP_DB_HOST", &cfg.DBHost},
			{"EP_DB_NAME", &cfg.DBName},
			{"EP_DB_USER", &cfg.DBUser},
			{"EP_DB_PASSWORD", &cfg.DBPassword},
		}
		for _, r := range required {
			*r.dst, err = getEnvRequired(r.key)
			if err != nil {
				return nil, err
			}
		}
	}

	// --- Topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("EP_DEPHEALTH_GROUP", "eduportal")

	cfg.DephealthCheckInterval, err = getEnvDuration("EP_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("EP_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("EP_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("EP_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения (формат postgres://...),
// используется topologymetrics для меток зависимости.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%d/%s", c.DBHost, c.DBPort, c.DBName)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное логическое значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
