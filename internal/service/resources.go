// resources.go — загрузка, список и скачивание ресурсов.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/bigkaa/eduportal/internal/api/middleware"
	"github.com/bigkaa/eduportal/internal/domain/model"
	"github.com/bigkaa/eduportal/internal/repository"
	"github.com/bigkaa/eduportal/internal/storage/filestore"
)

// DownloadPolicy — кто может скачивать загруженные ресурсы.
type DownloadPolicy string

const (
	// DownloadShared — любой аутентифицированный пользователь.
	DownloadShared DownloadPolicy = "shared"
	// DownloadOwner — только автор последней загрузки файла.
	DownloadOwner DownloadPolicy = "owner"
)

// ResourceItem — запись журнала ресурсов в представлении.
type ResourceItem struct {
	model.ResourceEntry
	// Own — файл загружен текущим пользователем
	Own bool
	// Downloadable — текущему пользователю разрешено скачивание
	Downloadable bool
}

// ResourceService — сервис ресурсов. Файл привязан к пользователю,
// загрузившему его последним; загрузка под чужим именем отклоняется.
type ResourceService struct {
	log     *repository.ResourceLogRepository
	files   *filestore.FileStore
	policy  DownloadPolicy
	maxSize int64
	logger  *slog.Logger

	// mu сериализует загрузки: проверка владельца, запись файла
	// и запись в журнал выполняются как одна операция.
	mu sync.Mutex
}

// NewResourceService создаёт сервис ресурсов.
// maxSize <= 0 — без ограничения размера.
func NewResourceService(
	log *repository.ResourceLogRepository,
	files *filestore.FileStore,
	policy DownloadPolicy,
	maxSize int64,
	logger *slog.Logger,
) *ResourceService {
	if policy == "" {
		policy = DownloadShared
	}
	return &ResourceService{
		log:     log,
		files:   files,
		policy:  policy,
		maxSize: maxSize,
		logger:  logger.With(slog.String("component", "resource_service")),
	}
}

// Policy возвращает действующую политику скачивания.
func (s *ResourceService) Policy() DownloadPolicy {
	return s.policy
}

// Upload сохраняет файл под именем filename и записывает загрузку в журнал.
//
// Ошибки:
//   - ErrValidation — недопустимое имя файла
//   - ErrResourceOwned — имя занято файлом другого пользователя
//   - ErrFileTooLarge — превышен лимит размера
func (s *ResourceService) Upload(ctx context.Context, username, filename string, r io.Reader) (*model.ResourceEntry, error) {
	if err := filestore.ValidateName(filename); err != nil {
		middleware.OperationsTotal.WithLabelValues("upload", "invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.log.Latest(ctx, filename)
	switch {
	case err == nil && latest.Username != username:
		middleware.OperationsTotal.WithLabelValues("upload", "owned").Inc()
		return nil, fmt.Errorf("%w: %s", ErrResourceOwned, filename)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("ошибка чтения журнала ресурсов: %w", err)
	}

	saved, err := s.files.Save(r, filename, s.maxSize)
	if err != nil {
		switch {
		case errors.Is(err, filestore.ErrTooLarge):
			middleware.OperationsTotal.WithLabelValues("upload", "too_large").Inc()
			return nil, fmt.Errorf("%w: лимит %d байт", ErrFileTooLarge, s.maxSize)
		case errors.Is(err, filestore.ErrInvalidName):
			middleware.OperationsTotal.WithLabelValues("upload", "invalid").Inc()
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("ошибка сохранения файла: %w", err)
	}

	entry, err := s.log.Add(ctx, username, filename)
	if err != nil {
		// Файл уже на диске, но без записи в журнале он недоступен для скачивания
		s.logger.Error("Файл сохранён, но не записан в журнал",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("ошибка записи в журнал ресурсов: %w", err)
	}

	middleware.OperationsTotal.WithLabelValues("upload", "success").Inc()
	middleware.UploadedBytesTotal.Add(float64(saved.Size))
	s.logger.Info("Файл загружен",
		slog.String("username", username),
		slog.String("filename", filename),
		slog.Int64("size", saved.Size),
		slog.String("checksum", saved.Checksum),
	)
	return &entry, nil
}

// List возвращает журнал ресурсов с признаками владения и доступа для username.
func (s *ResourceService) List(ctx context.Context, username string) ([]ResourceItem, error) {
	entries, err := s.log.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала ресурсов: %w", err)
	}

	// Актуальный владелец каждого имени — автор последней записи
	owners := make(map[string]string, len(entries))
	for _, e := range entries {
		owners[e.Filename] = e.Username
	}

	items := make([]ResourceItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, ResourceItem{
			ResourceEntry: e,
			Own:           e.Username == username,
			Downloadable:  s.allowed(owners[e.Filename], username),
		})
	}
	return items, nil
}

// CountByUser возвращает число загрузок пользователя.
func (s *ResourceService) CountByUser(ctx context.Context, username string) (int, error) {
	entries, err := s.log.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения журнала ресурсов: %w", err)
	}

	n := 0
	for _, e := range entries {
		if e.Username == username {
			n++
		}
	}
	return n, nil
}

// Open открывает ресурс для скачивания пользователем username.
// Скачать можно только файл, записанный в журнал ресурсов.
// Вызывающий код обязан закрыть файл.
func (s *ResourceService) Open(ctx context.Context, username, filename string) (*os.File, *model.ResourceEntry, error) {
	if err := filestore.ValidateName(filename); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}

	latest, err := s.log.Latest(ctx, filename)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			middleware.OperationsTotal.WithLabelValues("download", "not_found").Inc()
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return nil, nil, fmt.Errorf("ошибка чтения журнала ресурсов: %w", err)
	}

	if !s.allowed(latest.Username, username) {
		middleware.OperationsTotal.WithLabelValues("download", "forbidden").Inc()
		s.logger.Warn("Скачивание запрещено политикой",
			slog.String("username", username),
			slog.String("filename", filename),
			slog.String("policy", string(s.policy)),
		)
		return nil, nil, fmt.Errorf("%w: %s", ErrForbidden, filename)
	}

	f, err := s.files.Open(filename)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			middleware.OperationsTotal.WithLabelValues("download", "not_found").Inc()
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return nil, nil, err
	}

	middleware.OperationsTotal.WithLabelValues("download", "success").Inc()
	return f, latest, nil
}

func (s *ResourceService) allowed(owner, username string) bool {
	if s.policy == DownloadOwner {
		return owner == username
	}
	return true
}
