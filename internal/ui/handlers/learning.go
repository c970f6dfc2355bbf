// learning.go — курсы и вебинары: просмотр, запись, создание.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bigkaa/eduportal/internal/domain/model"
	"github.com/bigkaa/eduportal/internal/service"
	"github.com/bigkaa/eduportal/internal/ui/flash"
	"github.com/bigkaa/eduportal/internal/ui/markdown"
	"github.com/bigkaa/eduportal/internal/ui/pages"
)

// LearningHandler — обработчики страниц курсов и вебинаров.
// Одни и те же методы обслуживают оба типа контента, тип задаётся при монтировании.
type LearningHandler struct {
	learning *service.LearningService
	markdown *markdown.Renderer
	logger   *slog.Logger
}

// NewLearningHandler создаёт новый LearningHandler.
func NewLearningHandler(learning *service.LearningService, md *markdown.Renderer, logger *slog.Logger) *LearningHandler {
	return &LearningHandler{
		learning: learning,
		markdown: md,
		logger:   logger.With(slog.String("component", "ui.learning")),
	}
}

// HandleList — GET /courses и GET /webinars.
func (h *LearningHandler) HandleList(kind model.ContentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := currentUser(w, r)
		if !ok {
			return
		}

		view, err := h.view(r.Context(), kind, username)
		if err != nil {
			internalError(w, r, h.logger, "Ошибка построения страницы каталога", err)
			return
		}

		data := pages.CatalogData{
			Layout:   newLayout(w, r),
			View:     view,
			Markdown: h.markdown,
		}
		if kind == model.KindWebinar {
			render(w, r, pages.Webinars(data), h.logger)
			return
		}
		render(w, r, pages.Courses(data), h.logger)
	}
}

func (h *LearningHandler) view(ctx context.Context, kind model.ContentKind, username string) (*service.CatalogView, error) {
	if kind == model.KindWebinar {
		return h.learning.WebinarsView(ctx, username)
	}
	return h.learning.CoursesView(ctx, username)
}

// HandleEnroll — POST /courses (поле course) и POST /webinars (поле webinar).
func (h *LearningHandler) HandleEnroll(kind model.ContentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := currentUser(w, r)
		if !ok {
			return
		}

		title := strings.TrimSpace(r.PostFormValue(string(kind)))
		listPath := pages.ListPath(kind)

		err := h.learning.Enroll(r.Context(), kind, username, title)
		switch {
		case err == nil:
			flash.Success(w, "flash.enrolled_"+string(kind), title)
			redirect(w, r, listPath)
		case errors.Is(err, service.ErrValidation):
			flash.Error(w, "flash.enroll_invalid")
			redirect(w, r, listPath)
		default:
			internalError(w, r, h.logger, "Ошибка записи", err)
		}
	}
}

// HandleCreateForm — GET /create_course и GET /create_webinar.
func (h *LearningHandler) HandleCreateForm(kind model.ContentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentUser(w, r); !ok {
			return
		}
		render(w, r, pages.Create(pages.CreateData{Layout: newLayout(w, r), Kind: kind}), h.logger)
	}
}

// HandleCreate — POST /create_course и POST /create_webinar.
func (h *LearningHandler) HandleCreate(kind model.ContentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := currentUser(w, r)
		if !ok {
			return
		}

		p := service.CreateParams{
			Title:       r.PostFormValue("title"),
			Description: r.PostFormValue("description"),
			Schedule:    r.PostFormValue("schedule"),
		}

		var err error
		if kind == model.KindWebinar {
			_, err = h.learning.CreateWebinar(r.Context(), username, p)
		} else {
			_, err = h.learning.CreateCourse(r.Context(), username, p)
		}

		switch {
		case err == nil:
			flash.Success(w, "flash."+string(kind)+"_created")
			redirect(w, r, pages.ListPath(kind))
		case errors.Is(err, service.ErrValidation):
			flash.Error(w, "flash.content_invalid")
			redirect(w, r, "/create_"+string(kind))
		default:
			internalError(w, r, h.logger, "Ошибка создания контента", err)
		}
	}
}
