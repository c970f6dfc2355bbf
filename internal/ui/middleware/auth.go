// Пакет middleware — HTTP middleware для UI.
// auth.go — проверка сессии (JWT в cookie) и существования пользователя.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bigkaa/eduportal/internal/ui/auth"
)

// contextKey — тип для ключей контекста UI.
type contextKey string

const (
	// ContextKeyUISession — данные сессии в контексте запроса.
	ContextKeyUISession contextKey = "ui_session"
)

// LoginPath — страница входа, куда перенаправляются запросы без сессии.
const LoginPath = "/login"

// UserChecker — проверка существования пользователя в хранилище учётных данных.
type UserChecker interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// UIAuth — middleware для проверки аутентификации пользователей UI.
// Токен проверяется на каждом запросе, затем пользователь перепроверяется
// в журнале учётных данных. Любой отказ — очистка cookie и redirect на /login.
type UIAuth struct {
	sessionManager *auth.SessionManager
	users          UserChecker
	logger         *slog.Logger
}

// NewUIAuth создаёт новый UIAuth middleware.
func NewUIAuth(
	sessionManager *auth.SessionManager,
	users UserChecker,
	logger *slog.Logger,
) *UIAuth {
	return &UIAuth{
		sessionManager: sessionManager,
		users:          users,
		logger:         logger.With(slog.String("component", "ui_auth_middleware")),
	}
}

// Middleware возвращает HTTP middleware для проверки сессии.
func (ua *UIAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Извлекаем и проверяем токен
			session, err := ua.sessionManager.GetSessionFromRequest(r)
			if err != nil {
				ua.logger.Debug("Ошибка проверки сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				ua.reject(w, r)
				return
			}

			// 2. Сессия отсутствует
			if session == nil {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			// 3. Пользователь должен существовать
			exists, err := ua.users.Exists(r.Context(), session.Username)
			if err != nil {
				ua.logger.Error("Ошибка проверки пользователя",
					slog.String("username", session.Username),
					slog.String("error", err.Error()),
				)
				http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
				return
			}
			if !exists {
				ua.logger.Info("Сессия неизвестного пользователя, redirect на login",
					slog.String("username", session.Username),
				)
				ua.reject(w, r)
				return
			}

			// 4. Помещаем сессию в контекст
			ctx := context.WithValue(r.Context(), ContextKeyUISession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (ua *UIAuth) reject(w http.ResponseWriter, r *http.Request) {
	ua.sessionManager.ClearSessionCookie(w)
	http.Redirect(w, r, LoginPath, http.StatusFound)
}

// SessionFromContext извлекает SessionData из контекста запроса.
// Возвращает nil если запрос не прошёл через UIAuth.
func SessionFromContext(ctx context.Context) *auth.SessionData {
	session, ok := ctx.Value(ContextKeyUISession).(*auth.SessionData)
	if !ok {
		return nil
	}
	return session
}

// WithSession помещает сессию в контекст. Используется в тестах обработчиков.
func WithSession(ctx context.Context, session *auth.SessionData) context.Context {
	return context.WithValue(ctx, ContextKeyUISession, session)
}
