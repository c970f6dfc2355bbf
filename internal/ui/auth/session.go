// Пакет auth — сессии пользователей UI.
// Сессия — JWT (HS256) в HttpOnly cookie: sub = имя пользователя,
// exp ограничивает срок жизни. Токен проверяется на каждом запросе.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Имя cookie сессии.
const SessionCookieName = "eduportal_session"

// ErrInvalidSession — токен сессии не прошёл проверку.
var ErrInvalidSession = errors.New("недействительная сессия")

// SessionData — проверенные данные сессии.
type SessionData struct {
	// Username — имя пользователя (claim sub)
	Username string
	// ID — идентификатор сессии (claim jti)
	ID string
	// IssuedAt — время входа
	IssuedAt time.Time
	// ExpiresAt — время истечения сессии
	ExpiresAt time.Time
}

// SessionManager — выпуск и проверка сессионных токенов.
type SessionManager struct {
	key    []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewSessionManager создаёт менеджер сессий.
// Пустой secret — случайный ключ на время жизни процесса:
// после рестарта все сессии становятся недействительными.
func NewSessionManager(secret string, ttl time.Duration, secure bool) (*SessionManager, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("время жизни сессии должно быть положительным: %v", ttl)
	}

	key := []byte(secret)
	if secret == "" {
		key = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа сессии: %w", err)
		}
	}

	return &SessionManager{
		key:    key,
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}, nil
}

// Issue выпускает подписанный токен для username.
func (sm *SessionManager) Issue(username string) (string, *SessionData, error) {
	now := sm.now().Truncate(time.Second)
	data := &SessionData{
		Username:  username,
		ID:        uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(sm.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   data.Username,
		ID:        data.ID,
		IssuedAt:  jwt.NewNumericDate(data.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(data.ExpiresAt),
	})

	signed, err := token.SignedString(sm.key)
	if err != nil {
		return "", nil, fmt.Errorf("ошибка подписи токена сессии: %w", err)
	}
	return signed, data, nil
}

// Parse проверяет подпись, алгоритм и срок действия токена.
func (sm *SessionManager) Parse(tokenString string) (*SessionData, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return sm.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(sm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidSession
	}

	data := &SessionData{
		Username:  claims.Subject,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		data.IssuedAt = claims.IssuedAt.Time
	}
	return data, nil
}

// SetSessionCookie выпускает токен для username и устанавливает cookie сессии.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, username string) (*SessionData, error) {
	signed, data, err := sm.Issue(username)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(sm.ttl.Seconds()),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return data, nil
}

// GetSessionFromRequest извлекает и проверяет сессию из cookie запроса.
// Возвращает nil, nil если cookie отсутствует.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) (*SessionData, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	return sm.Parse(cookie.Value)
}

// ClearSessionCookie удаляет cookie сессии (logout).
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
