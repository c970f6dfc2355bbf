// auth.go — регистрация, вход и выход.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bigkaa/eduportal/internal/service"
	"github.com/bigkaa/eduportal/internal/ui/auth"
	"github.com/bigkaa/eduportal/internal/ui/flash"
	"github.com/bigkaa/eduportal/internal/ui/pages"
)

// AuthHandler — обработчики учётных записей и главной страницы.
type AuthHandler struct {
	accounts       *service.AccountService
	sessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(
	accounts *service.AccountService,
	sessionManager *auth.SessionManager,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:       accounts,
		sessionManager: sessionManager,
		logger:         logger.With(slog.String("component", "ui_auth")),
	}
}

// HandleIndex — GET /. Доступна без входа.
func (h *AuthHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	l := newLayout(w, r)
	// Главная не защищена UIAuth: имя берём из токена, если он действителен
	if session, err := h.sessionManager.GetSessionFromRequest(r); err == nil && session != nil {
		l.Username = session.Username
	}
	render(w, r, pages.Index(l), h.logger)
}

// HandleRegisterForm — GET /register.
func (h *AuthHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, pages.Register(newLayout(w, r)), h.logger)
}

// HandleRegister — POST /register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	err := h.accounts.Register(r.Context(), username, password)
	switch {
	case err == nil:
		flash.Success(w, "flash.registered")
		redirect(w, r, "/login")
	case errors.Is(err, service.ErrValidation):
		flash.Error(w, "flash.register_invalid")
		redirect(w, r, "/register")
	case errors.Is(err, service.ErrConflict):
		flash.Error(w, "flash.username_taken")
		redirect(w, r, "/register")
	default:
		internalError(w, r, h.logger, "Ошибка регистрации", err)
	}
}

// HandleLoginForm — GET /login.
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, pages.Login(newLayout(w, r)), h.logger)
}

// HandleLogin — POST /login.
// Неизвестный пользователь и неверный пароль дают одно и то же сообщение.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if err := h.accounts.Authenticate(r.Context(), username, password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			flash.Error(w, "flash.invalid_credentials")
			redirect(w, r, "/login")
			return
		}
		internalError(w, r, h.logger, "Ошибка аутентификации", err)
		return
	}

	if _, err := h.sessionManager.SetSessionCookie(w, username); err != nil {
		internalError(w, r, h.logger, "Ошибка создания сессии", err)
		return
	}
	redirect(w, r, "/dashboard")
}

// HandleLogout — GET/POST /logout. Удаляет cookie сессии.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessionManager.ClearSessionCookie(w)
	flash.Set(w, flash.KindInfo, "flash.logged_out")
	redirect(w, r, "/")
}
