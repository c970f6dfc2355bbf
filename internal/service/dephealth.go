// dephealth.go — мониторинг зависимостей через topologymetrics SDK.
//
// Для бэкенда postgres отслеживается одна зависимость — PostgreSQL
// (SQL checker через существующий пул, critical). Для бэкендов file
// и memory внешних зависимостей нет и сервис не создаётся.
//
// Метрики доступны на /metrics вместе с остальными:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// DephealthService — сервис мониторинга зависимостей.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// DephealthParams — параметры мониторинга PostgreSQL.
type DephealthParams struct {
	// ServiceID — имя вершины графа (eduportal)
	ServiceID string
	// Group — группа в метриках (EP_DEPHEALTH_GROUP)
	Group string
	// DB — *sql.DB поверх pgxpool (stdlib.OpenDBFromPool)
	DB *sql.DB
	// PGConnURL — URL PostgreSQL для меток, не для подключения
	PGConnURL string
	// CheckInterval — интервал проверки (EP_DEPHEALTH_CHECK_INTERVAL)
	CheckInterval time.Duration
	// Registerer — Prometheus registry; nil — глобальный
	Registerer prometheus.Registerer
}

// NewDephealthService создаёт сервис мониторинга PostgreSQL.
func NewDephealthService(p DephealthParams, logger *slog.Logger) (*DephealthService, error) {
	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(p.DB)),
			dephealth.FromURL(p.PGConnURL),
			dephealth.CheckInterval(p.CheckInterval),
			dephealth.Critical(true),
		),
	}
	if p.Registerer != nil {
		opts = append(opts, dephealth.WithRegisterer(p.Registerer))
	}

	dh, err := dephealth.New(p.ServiceID, p.Group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен (PostgreSQL)")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}
