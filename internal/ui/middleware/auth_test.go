package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bigkaa/eduportal/internal/ui/auth"
)

type fakeUsers struct {
	known map[string]bool
	err   error
}

func (f *fakeUsers) Exists(_ context.Context, username string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.known[username], nil
}

func newTestAuth(t *testing.T, users UserChecker) (*UIAuth, *auth.SessionManager) {
	t.Helper()
	sm, err := auth.NewSessionManager("secret", time.Hour, false)
	if err != nil {
		t.Fatalf("Ошибка создания SessionManager: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUIAuth(sm, users, logger), sm
}

func sessionCookie(t *testing.T, sm *auth.SessionManager, username string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if _, err := sm.SetSessionCookie(rec, username); err != nil {
		t.Fatalf("Ошибка выпуска cookie: %v", err)
	}
	return rec.Result().Cookies()[0]
}

func protected(t *testing.T) (http.Handler, *string) {
	var seen string
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s := SessionFromContext(r.Context()); s != nil {
			seen = s.Username
		}
		w.WriteHeader(http.StatusOK)
	}), &seen
}

func TestUIAuth_NoSession(t *testing.T) {
	ua, _ := newTestAuth(t, &fakeUsers{})
	next, _ := protected(t)

	rec := httptest.NewRecorder()
	ua.Middleware()(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("Статус: want 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != LoginPath {
		t.Errorf("Location: want %s, got %s", LoginPath, loc)
	}
}

func TestUIAuth_ValidSession(t *testing.T) {
	ua, sm := newTestAuth(t, &fakeUsers{known: map[string]bool{"alice": true}})
	next, seen := protected(t)

	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.AddCookie(sessionCookie(t, sm, "alice"))
	rec := httptest.NewRecorder()
	ua.Middleware()(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Статус: want 200, got %d", rec.Code)
	}
	if *seen != "alice" {
		t.Errorf("Сессия в контексте: want alice, got %q", *seen)
	}
}

// TestUIAuth_Rejected проверяет очистку cookie при недействительной сессии.
func TestUIAuth_Rejected(t *testing.T) {
	ua, sm := newTestAuth(t, &fakeUsers{known: map[string]bool{"alice": true}})

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"подделанный токен", &http.Cookie{Name: auth.SessionCookieName, Value: "alice"}},
		{"удалённый пользователь", sessionCookie(t, sm, "mallory")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, seen := protected(t)
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			req.AddCookie(tt.cookie)
			rec := httptest.NewRecorder()
			ua.Middleware()(next).ServeHTTP(rec, req)

			if rec.Code != http.StatusFound || rec.Header().Get("Location") != LoginPath {
				t.Fatalf("Ожидался redirect на %s, получено %d %s", LoginPath, rec.Code, rec.Header().Get("Location"))
			}
			if *seen != "" {
				t.Error("Обработчик не должен вызываться")
			}
			cleared := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
					cleared = true
				}
			}
			if !cleared {
				t.Error("Cookie сессии должен быть очищен")
			}
		})
	}
}

func TestUIAuth_StoreError(t *testing.T) {
	ua, sm := newTestAuth(t, &fakeUsers{err: errors.New("диск недоступен")})
	next, _ := protected(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t, sm, "alice"))
	rec := httptest.NewRecorder()
	ua.Middleware()(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Статус: want 500, got %d", rec.Code)
	}
}

func TestSessionFromContext_Empty(t *testing.T) {
	if SessionFromContext(context.Background()) != nil {
		t.Error("Ожидался nil для пустого контекста")
	}
}
