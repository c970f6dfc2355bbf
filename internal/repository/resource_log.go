package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bigkaa/eduportal/internal/domain/model"
	"github.com/bigkaa/eduportal/internal/storage/recordlog"
	"github.com/bigkaa/eduportal/internal/storage/recordstore"
)

var resourceCodec = recordstore.Codec[model.ResourceEntry]{
	Encode: func(e model.ResourceEntry) []string {
		return []string{e.Username, e.Filename, e.Timestamp()}
	},
	Decode: func(f []string) (model.ResourceEntry, error) {
		if f[0] == "" || f[1] == "" {
			return model.ResourceEntry{}, errors.New("пустое имя пользователя или файла")
		}
		ts, err := time.ParseInLocation(model.ResourceTimeLayout, f[2], time.Local)
		if err != nil {
			return model.ResourceEntry{}, fmt.Errorf("некорректное время загрузки: %w", err)
		}
		return model.ResourceEntry{Username: f[0], Filename: f[1], UploadedAt: ts}, nil
	},
}

// ResourceLogRepository — журнал загрузок ресурсов (resource_log.txt).
type ResourceLogRepository struct {
	store *recordstore.Store[model.ResourceEntry]
	now   func() time.Time
}

// NewResourceLogRepository создаёт репозиторий журнала загрузок.
// now — источник времени для меток загрузки (nil — time.Now).
func NewResourceLogRepository(log recordlog.Log, policy recordstore.Policy, now func() time.Time, logger *slog.Logger) *ResourceLogRepository {
	if now == nil {
		now = time.Now
	}
	// Время "YYYY-MM-DD HH:MM:SS" содержит ':' и занимает свободный хвост строки
	schema := recordstore.Schema{Name: ResourceLog, Fields: 3, FreeTail: true}
	return &ResourceLogRepository{
		store: recordstore.New(log, schema, resourceCodec, policy, logger),
		now:   now,
	}
}

// List возвращает записи журнала в порядке загрузки.
func (r *ResourceLogRepository) List(ctx context.Context) ([]model.ResourceEntry, error) {
	return r.store.Load(ctx)
}

// Add записывает загрузку filename пользователем username
// с текущим локальным временем (точность — секунда).
func (r *ResourceLogRepository) Add(ctx context.Context, username, filename string) (model.ResourceEntry, error) {
	entry := r.newEntry(username, filename)
	if err := r.store.Append(ctx, entry); err != nil {
		return model.ResourceEntry{}, err
	}
	return entry, nil
}

// AddIf записывает загрузку, только если check вернул nil для текущего журнала.
// Проверка и запись выполняются атомарно в пределах процесса.
func (r *ResourceLogRepository) AddIf(ctx context.Context, username, filename string, check func(current []model.ResourceEntry) error) (model.ResourceEntry, error) {
	entry := r.newEntry(username, filename)
	if err := r.store.AppendIf(ctx, entry, check); err != nil {
		return model.ResourceEntry{}, err
	}
	return entry, nil
}

func (r *ResourceLogRepository) newEntry(username, filename string) model.ResourceEntry {
	return model.ResourceEntry{
		Username:   username,
		Filename:   filename,
		UploadedAt: r.now().Local().Truncate(time.Second),
	}
}

// Latest возвращает последнюю запись для filename или ErrNotFound.
func (r *ResourceLogRepository) Latest(ctx context.Context, filename string) (*model.ResourceEntry, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return LatestFor(entries, filename)
}

// LatestFor ищет последнюю запись для filename в уже загруженном журнале.
func LatestFor(entries []model.ResourceEntry, filename string) (*model.ResourceEntry, error) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Filename == filename {
			e := entries[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("ресурс %q: %w", filename, ErrNotFound)
}
