package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bigkaa/eduportal/internal/service"
	"github.com/bigkaa/eduportal/internal/ui/pages"
)

// DashboardHandler — кабинет пользователя.
type DashboardHandler struct {
	learning  *service.LearningService
	resources *service.ResourceService
	logger    *slog.Logger
}

// NewDashboardHandler создаёт новый DashboardHandler.
func NewDashboardHandler(learning *service.LearningService, resources *service.ResourceService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		learning:  learning,
		resources: resources,
		logger:    logger.With(slog.String("component", "ui.dashboard")),
	}
}

// HandleDashboard — GET /dashboard.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}

	enrollments, err := h.learning.Enrollments(r.Context(), username)
	if err != nil {
		internalError(w, r, h.logger, "Ошибка чтения записей", err)
		return
	}
	uploads, err := h.resources.CountByUser(r.Context(), username)
	if err != nil {
		internalError(w, r, h.logger, "Ошибка чтения журнала ресурсов", err)
		return
	}

	data := pages.DashboardData{
		Layout:      newLayout(w, r),
		Enrollments: enrollments,
		Uploads:     uploads,
	}
	render(w, r, pages.Dashboard(data), h.logger)
}
