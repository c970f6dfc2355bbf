package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bigkaa/eduportal/internal/domain/model"
	"github.com/bigkaa/eduportal/internal/storage/recordlog"
	"github.com/bigkaa/eduportal/internal/storage/recordstore"
)

var contentCodec = recordstore.Codec[model.AuthoredContent]{
	Encode: func(c model.AuthoredContent) []string {
		return []string{c.Owner, c.Title, c.Description, c.Schedule}
	},
	Decode: func(f []string) (model.AuthoredContent, error) {
		if f[0] == "" || f[1] == "" {
			return model.AuthoredContent{}, errors.New("пустой автор или название")
		}
		return model.AuthoredContent{
			Owner:       f[0],
			Title:       f[1],
			Description: f[2],
			Schedule:    f[3],
		}, nil
	},
}

// ContentRepository — курсы или вебинары, созданные пользователями
// (user_courses.txt, user_webinars.txt).
type ContentRepository struct {
	store *recordstore.Store[model.AuthoredContent]
}

// NewContentRepository создаёт репозиторий пользовательского контента
// поверх журнала name. Дата проведения — последнее поле и может
// содержать время ("2024-10-01 18:00").
func NewContentRepository(log recordlog.Log, name string, policy recordstore.Policy, logger *slog.Logger) *ContentRepository {
	schema := recordstore.Schema{Name: name, Fields: 4, FreeTail: true}
	return &ContentRepository{
		store: recordstore.New(log, schema, contentCodec, policy, logger),
	}
}

// List возвращает весь контент в порядке создания.
func (r *ContentRepository) List(ctx context.Context) ([]model.AuthoredContent, error) {
	return r.store.Load(ctx)
}

// ByOwner возвращает контент, созданный пользователем owner.
func (r *ContentRepository) ByOwner(ctx context.Context, owner string) ([]model.AuthoredContent, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var result []model.AuthoredContent
	for _, c := range all {
		if c.Owner == owner {
			result = append(result, c)
		}
	}
	return result, nil
}

// Add добавляет запись контента.
func (r *ContentRepository) Add(ctx context.Context, c model.AuthoredContent) error {
	return r.store.Append(ctx, c)
}
