// Пакет server — HTTP-сервер eduportal с graceful shutdown.
// Без TLS: TLS termination на входном прокси.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	apihandlers "github.com/bigkaa/eduportal/internal/api/handlers"
	"github.com/bigkaa/eduportal/internal/api/middleware"
	"github.com/bigkaa/eduportal/internal/config"
	"github.com/bigkaa/eduportal/internal/domain/model"
	"github.com/bigkaa/eduportal/internal/ui/handlers"
	"github.com/bigkaa/eduportal/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/eduportal/internal/ui/middleware"
	"github.com/bigkaa/eduportal/internal/ui/static"
)

// Handlers — обработчики и middleware, из которых собирается роутер.
type Handlers struct {
	Health    *apihandlers.HealthHandler
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	Learning  *handlers.LearningHandler
	Resources *handlers.ResourceHandler
	UIAuth    *uimiddleware.UIAuth
	I18n      *i18n.Bundle
}

// Server — HTTP-сервер eduportal.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными маршрутами и middleware.
func New(cfg *config.Config, logger *slog.Logger, h Handlers) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, h),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает маршруты приложения.
func NewRouter(logger *slog.Logger, h Handlers) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Служебные endpoints без i18n и сессий
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)
	router.Handle("/static/*", http.StripPrefix("/static/", static.Handler()))

	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware(h.I18n))

		// Публичные страницы
		r.Get("/", h.Auth.HandleIndex)
		r.Get("/register", h.Auth.HandleRegisterForm)
		r.Post("/register", h.Auth.HandleRegister)
		r.Get("/login", h.Auth.HandleLoginForm)
		r.Post("/login", h.Auth.HandleLogin)
		r.Get("/logout", h.Auth.HandleLogout)
		r.Post("/logout", h.Auth.HandleLogout)
		r.Post("/set-language", handlers.HandleSetLanguage)

		// Защищённые страницы
		r.Group(func(r chi.Router) {
			r.Use(h.UIAuth.Middleware())

			r.Get("/dashboard", h.Dashboard.HandleDashboard)

			r.Get("/courses", h.Learning.HandleList(model.KindCourse))
			r.Post("/courses", h.Learning.HandleEnroll(model.KindCourse))
			r.Get("/webinars", h.Learning.HandleList(model.KindWebinar))
			r.Post("/webinars", h.Learning.HandleEnroll(model.KindWebinar))

			r.Get("/create_course", h.Learning.HandleCreateForm(model.KindCourse))
			r.Post("/create_course", h.Learning.HandleCreate(model.KindCourse))
			r.Get("/create_webinar", h.Learning.HandleCreateForm(model.KindWebinar))
			r.Post("/create_webinar", h.Learning.HandleCreate(model.KindWebinar))

			r.Get("/resources", h.Resources.HandleList)
			r.Post("/resources", h.Resources.HandleUpload)
			r.Get("/download/{filename}", h.Resources.HandleDownload)
		})
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
