// metrics.go — Prometheus-метрики eduportal.
// HTTP: ep_http_requests_total, ep_http_request_duration_seconds.
// Бизнес-метрики экспортируются и обновляются из сервисного слоя.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ep_http_requests_total",
			Help: "Общее количество HTTP-запросов к eduportal",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ep_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к eduportal в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Бизнес-метрики
var (
	// OperationsTotal — пользовательские операции по типу и результату
	// (register, login, enroll, create_course, create_webinar, upload, download).
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ep_operations_total",
			Help: "Общее количество пользовательских операций",
		},
		[]string{"operation", "result"},
	)

	// UploadedBytesTotal — суммарный объём загруженных ресурсов.
	UploadedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ep_uploaded_bytes_total",
			Help: "Суммарный объём загруженных ресурсов в байтах",
		},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			status := strconv.Itoa(wrapped.statusCode)
			httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath сворачивает пути с именами файлов, чтобы имена
// не попадали в лейблы метрик.
// /download/notes.pdf → /download/{filename}, /static/css/style.css → /static/*
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/download/"):
		return "/download/{filename}"
	case strings.HasPrefix(path, "/static/"):
		return "/static/*"
	}
	return path
}
