package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bigkaa/eduportal/internal/domain/model"
	"github.com/bigkaa/eduportal/internal/storage/recordlog"
	"github.com/bigkaa/eduportal/internal/storage/recordstore"
)

var enrollmentCodec = recordstore.Codec[model.Enrollment]{
	Encode: func(e model.Enrollment) []string {
		return []string{e.Username, e.Title}
	},
	Decode: func(f []string) (model.Enrollment, error) {
		if f[0] == "" || f[1] == "" {
			return model.Enrollment{}, errors.New("пустое имя пользователя или название")
		}
		return model.Enrollment{Username: f[0], Title: f[1]}, nil
	},
}

// EnrollmentRepository — записи на курсы и вебинары (enrollments.txt).
// Курсы и вебинары хранятся в одном журнале и различаются только названием.
type EnrollmentRepository struct {
	store *recordstore.Store[model.Enrollment]
}

// NewEnrollmentRepository создаёт репозиторий записей.
func NewEnrollmentRepository(log recordlog.Log, policy recordstore.Policy, logger *slog.Logger) *EnrollmentRepository {
	schema := recordstore.Schema{Name: EnrollmentsLog, Fields: 2}
	return &EnrollmentRepository{
		store: recordstore.New(log, schema, enrollmentCodec, policy, logger),
	}
}

// All возвращает словарь username → названия в порядке записи.
// Повторная запись на то же название даёт дубликат в списке.
func (r *EnrollmentRepository) All(ctx context.Context) (map[string][]string, error) {
	records, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string)
	for _, e := range records {
		result[e.Username] = append(result[e.Username], e.Title)
	}
	return result, nil
}

// ByUser возвращает названия, на которые записан пользователь.
func (r *EnrollmentRepository) ByUser(ctx context.Context, username string) ([]string, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return all[username], nil
}

// Add добавляет запись пользователя.
func (r *EnrollmentRepository) Add(ctx context.Context, e model.Enrollment) error {
	return r.store.Append(ctx, e)
}
