// Пакет service — бизнес-логика eduportal.
// account.go — регистрация и аутентификация пользователей.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/eduportal/internal/api/middleware"
	"github.com/bigkaa/eduportal/internal/domain/credential"
	"github.com/bigkaa/eduportal/internal/domain/model"
	"github.com/bigkaa/eduportal/internal/repository"
	"github.com/bigkaa/eduportal/internal/storage/recordstore"
)

// AccountService — сервис учётных записей.
type AccountService struct {
	users  *repository.UserRepository
	logger *slog.Logger
}

// NewAccountService создаёт сервис учётных записей.
func NewAccountService(users *repository.UserRepository, logger *slog.Logger) *AccountService {
	return &AccountService{
		users:  users,
		logger: logger.With(slog.String("component", "account_service")),
	}
}

// Register создаёт учётную запись. Пароль сохраняется только в виде дайджеста.
// Пустые поля или ':' в имени — ErrValidation, занятое имя — ErrConflict.
func (s *AccountService) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		middleware.OperationsTotal.WithLabelValues("register", "invalid").Inc()
		return fmt.Errorf("%w: имя пользователя и пароль обязательны", ErrValidation)
	}
	if err := recordstore.CheckField(username); err != nil {
		middleware.OperationsTotal.WithLabelValues("register", "invalid").Inc()
		return fmt.Errorf("%w: имя пользователя: %v", ErrValidation, err)
	}

	user := model.User{Username: username, PasswordDigest: credential.Digest(password)}
	if err := s.users.Add(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			middleware.OperationsTotal.WithLabelValues("register", "conflict").Inc()
			return fmt.Errorf("%w: пользователь %q", ErrConflict, username)
		}
		return fmt.Errorf("ошибка регистрации: %w", err)
	}

	middleware.OperationsTotal.WithLabelValues("register", "success").Inc()
	s.logger.Info("Пользователь зарегистрирован", slog.String("username", username))
	return nil
}

// Authenticate проверяет имя и пароль. Любое несовпадение — ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) error {
	user, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.loginFailed(username)
			return ErrInvalidCredentials
		}
		return fmt.Errorf("ошибка чтения учётных данных: %w", err)
	}

	if !credential.Matches(password, user.PasswordDigest) {
		s.loginFailed(username)
		return ErrInvalidCredentials
	}

	middleware.OperationsTotal.WithLabelValues("login", "success").Inc()
	s.logger.Info("Успешный вход", slog.String("username", username))
	return nil
}

func (s *AccountService) loginFailed(username string) {
	middleware.OperationsTotal.WithLabelValues("login", "failure").Inc()
	s.logger.Warn("Неудачная попытка входа", slog.String("username", username))
}

// Exists проверяет, что пользователь всё ещё есть в хранилище учётных данных.
func (s *AccountService) Exists(ctx context.Context, username string) (bool, error) {
	return s.users.Exists(ctx, username)
}
