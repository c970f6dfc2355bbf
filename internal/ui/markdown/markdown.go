// Пакет markdown — безопасный рендеринг описаний курсов и вебинаров.
// Сырой HTML из описаний не выводится, опасные URL отбрасываются.
// Результат кэшируется в LRU с TTL (hashicorp/golang-lru/v2/expirable).
package markdown

import (
	"bytes"
	"html/template"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ep_markdown_cache_hits_total",
		Help: "Общее количество попаданий в кэш Markdown.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ep_markdown_cache_misses_total",
		Help: "Общее количество промахов кэша Markdown.",
	})
)

// Renderer — Markdown → HTML с кэшем.
type Renderer struct {
	md     goldmark.Markdown
	cache  *expirable.LRU[string, template.HTML]
	logger *slog.Logger
}

// NewRenderer создаёт рендерер с кэшем на size записей и временем жизни ttl.
func NewRenderer(size int, ttl time.Duration, logger *slog.Logger) *Renderer {
	if size <= 0 {
		size = 1
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		cache:  expirable.NewLRU[string, template.HTML](size, nil, ttl),
		logger: logger.With(slog.String("component", "markdown")),
	}
}

// Render возвращает HTML для src. При ошибке goldmark — экранированный исходный текст.
func (r *Renderer) Render(src string) template.HTML {
	if out, ok := r.cache.Get(src); ok {
		cacheHitsTotal.Inc()
		return out
	}
	cacheMissesTotal.Inc()

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		r.logger.Warn("Ошибка рендеринга Markdown", slog.String("error", err.Error()))
		return template.HTML(template.HTMLEscapeString(src))
	}

	// Вывод goldmark без WithUnsafe не содержит сырого HTML из источника
	out := template.HTML(buf.String())
	r.cache.Add(src, out)
	return out
}

// Len возвращает число закэшированных описаний.
func (r *Renderer) Len() int {
	return r.cache.Len()
}
