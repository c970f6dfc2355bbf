package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/eduportal/internal/domain/credential"
	"github.com/bigkaa/eduportal/internal/domain/model"
	"github.com/bigkaa/eduportal/internal/storage/recordlog"
	"github.com/bigkaa/eduportal/internal/storage/recordstore"
)

var userCodec = recordstore.Codec[model.User]{
	Encode: func(u model.User) []string {
		return []string{u.Username, u.PasswordDigest}
	},
	Decode: func(f []string) (model.User, error) {
		if f[0] == "" {
			return model.User{}, errors.New("пустое имя пользователя")
		}
		if !credential.IsDigest(f[1]) {
			return model.User{}, errors.New("некорректный дайджест пароля")
		}
		return model.User{Username: f[0], PasswordDigest: f[1]}, nil
	},
}

// UserRepository — хранилище учётных данных (users.txt).
type UserRepository struct {
	store *recordstore.Store[model.User]
}

// NewUserRepository создаёт репозиторий учётных данных.
func NewUserRepository(log recordlog.Log, policy recordstore.Policy, logger *slog.Logger) *UserRepository {
	schema := recordstore.Schema{Name: UsersLog, Fields: 2}
	return &UserRepository{
		store: recordstore.New(log, schema, userCodec, policy, logger),
	}
}

// All возвращает словарь username → дайджест пароля.
func (r *UserRepository) All(ctx context.Context) (map[string]string, error) {
	users, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(users))
	for _, u := range users {
		result[u.Username] = u.PasswordDigest
	}
	return result, nil
}

// Get возвращает пользователя по имени или ErrNotFound.
func (r *UserRepository) Get(ctx context.Context, username string) (*model.User, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	digest, ok := all[username]
	if !ok {
		return nil, fmt.Errorf("пользователь %q: %w", username, ErrNotFound)
	}
	return &model.User{Username: username, PasswordDigest: digest}, nil
}

// Exists проверяет наличие пользователя.
func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	all, err := r.All(ctx)
	if err != nil {
		return false, err
	}
	_, ok := all[username]
	return ok, nil
}

// Add атомарно проверяет уникальность имени и добавляет пользователя.
// Существующее имя — ErrConflict, журнал при этом не меняется.
func (r *UserRepository) Add(ctx context.Context, user model.User) error {
	return r.store.AppendIf(ctx, user, func(current []model.User) error {
		for _, u := range current {
			if u.Username == user.Username {
				return fmt.Errorf("пользователь %q: %w", user.Username, ErrConflict)
			}
		}
		return nil
	})
}
