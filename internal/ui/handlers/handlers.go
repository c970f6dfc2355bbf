// Пакет handlers — HTTP-обработчики UI.
// Все изменяющие действия работают по схеме POST → redirect → GET:
// результат передаётся flash-сообщением, страница читает его один раз.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/bigkaa/eduportal/internal/ui/flash"
	"github.com/bigkaa/eduportal/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/eduportal/internal/ui/middleware"
	"github.com/bigkaa/eduportal/internal/ui/pages"
)

// newLayout собирает общие данные страницы и забирает flash-сообщение.
// Вызывается до записи тела ответа.
func newLayout(w http.ResponseWriter, r *http.Request) pages.Layout {
	l := pages.Layout{Flash: flash.Pop(w, r)}
	if session := uimiddleware.SessionFromContext(r.Context()); session != nil {
		l.Username = session.Username
	}
	return l
}

func render(w http.ResponseWriter, r *http.Request, c templ.Component, logger *slog.Logger) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := c.Render(r.Context(), w); err != nil {
		logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

func internalError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	logger.Error(msg,
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	http.Error(w, i18n.T(r.Context(), "error.internal"), http.StatusInternalServerError)
}

// redirect — 303 See Other после обработки формы.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// currentUser возвращает имя пользователя из сессии или перенаправляет на вход.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	session := uimiddleware.SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
		return "", false
	}
	return session.Username, true
}
