// Точка входа eduportal — образовательной платформы.
// Загружает конфигурацию, открывает бэкенд журналов записей (file, memory
// или postgres с миграциями и topologymetrics), создаёт репозитории,
// сервисы и UI-обработчики, запускает HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	apihandlers "github.com/bigkaa/eduportal/internal/api/handlers"
	"github.com/bigkaa/eduportal/internal/config"
	"github.com/bigkaa/eduportal/internal/database"
	"github.com/bigkaa/eduportal/internal/repository"
	"github.com/bigkaa/eduportal/internal/server"
	"github.com/bigkaa/eduportal/internal/service"
	"github.com/bigkaa/eduportal/internal/storage/filestore"
	"github.com/bigkaa/eduportal/internal/storage/flatfile"
	"github.com/bigkaa/eduportal/internal/storage/pglog"
	"github.com/bigkaa/eduportal/internal/storage/recordlog"
	"github.com/bigkaa/eduportal/internal/storage/recordstore"
	"github.com/bigkaa/eduportal/internal/ui/auth"
	uihandlers "github.com/bigkaa/eduportal/internal/ui/handlers"
	"github.com/bigkaa/eduportal/internal/ui/i18n"
	"github.com/bigkaa/eduportal/internal/ui/markdown"
	uimiddleware "github.com/bigkaa/eduportal/internal/ui/middleware"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("eduportal запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	ctx := context.Background()

	// 3. Бэкенд журналов записей
	var (
		recordLog recordlog.Log
		checks    []apihandlers.Check
	)

	switch cfg.StorageBackend {
	case config.BackendMemory:
		logger.Warn("Бэкенд memory: данные не сохраняются между перезапусками")
		recordLog = recordlog.NewMemory()

	case config.BackendPostgres:
		logger.Info("Применение миграций БД...")
		if err := database.Migrate(cfg, logger); err != nil {
			logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
			os.Exit(1)
		}

		pool, err := database.Connect(ctx, cfg, logger)
		if err != nil {
			logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		recordLog = pglog.New(pool, logger)
		checks = append(checks, apihandlers.Check{Name: "postgresql", Checker: database.NewReadinessChecker(pool)})

		// topologymetrics проверяет PostgreSQL через тот же пул соединений
		pgDB := stdlib.OpenDBFromPool(pool)
		defer pgDB.Close()

		dephealthSvc, dhErr := service.NewDephealthService(service.DephealthParams{
			ServiceID:     config.ServiceName,
			Group:         cfg.DephealthGroup,
			DB:            pgDB,
			PGConnURL:     cfg.DatabaseURL(),
			CheckInterval: cfg.DephealthCheckInterval,
		}, logger)
		if dhErr != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", dhErr.Error()),
			)
		} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
		} else {
			defer dephealthSvc.Stop()
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}

	default:
		store, err := flatfile.New(cfg.DataDir, logger)
		if err != nil {
			logger.Error("Ошибка инициализации каталога данных", slog.String("error", err.Error()))
			os.Exit(1)
		}
		recordLog = store
		checks = append(checks, apihandlers.Check{Name: "records", Checker: store})
		logger.Info("Журналы записей в каталоге", slog.String("data_dir", store.Dir()))
	}

	// 4. Каталог загруженных ресурсов
	files, err := filestore.New(cfg.UploadDir)
	if err != nil {
		logger.Error("Ошибка инициализации каталога ресурсов", slog.String("error", err.Error()))
		os.Exit(1)
	}
	checks = append(checks, apihandlers.Check{Name: "uploads", Checker: files})

	// 5. Repositories (единая политика разбора журналов)
	parsePolicy, err := recordstore.ParsePolicy(cfg.ParsePolicy)
	if err != nil {
		logger.Error("Некорректная политика разбора журналов", slog.String("error", err.Error()))
		os.Exit(1)
	}
	repos := repository.New(recordLog, parsePolicy, logger)

	// 6. Services
	accountSvc := service.NewAccountService(repos.Users, logger)
	learningSvc := service.NewLearningService(repos.Enrollments, repos.Courses, repos.Webinars, logger)
	resourceSvc := service.NewResourceService(
		repos.Resources, files,
		service.DownloadPolicy(cfg.DownloadPolicy), cfg.MaxUploadSize,
		logger,
	)

	// 7. Сессии
	if cfg.SessionSecret == "" {
		logger.Warn("EP_SESSION_SECRET не задан: используется случайный ключ, сессии не переживут перезапуск")
	}
	sessionMgr, err := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookie)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 8. i18n и Markdown
	bundle, err := i18n.Load(logger)
	if err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}
	mdRenderer := markdown.NewRenderer(cfg.MarkdownCacheSize, cfg.MarkdownCacheTTL, logger)

	// 9. HTTP-сервер
	srv := server.New(cfg, logger, server.Handlers{
		Health:    apihandlers.NewHealthHandler(checks...),
		Auth:      uihandlers.NewAuthHandler(accountSvc, sessionMgr, logger),
		Dashboard: uihandlers.NewDashboardHandler(learningSvc, resourceSvc, logger),
		Learning:  uihandlers.NewLearningHandler(learningSvc, mdRenderer, logger),
		Resources: uihandlers.NewResourceHandler(resourceSvc, cfg.MaxUploadSize, logger),
		UIAuth:    uimiddleware.NewUIAuth(sessionMgr, accountSvc, logger),
		I18n:      bundle,
	})

	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("eduportal остановлен")
}
