// Пакет i18n — интернационализация UI.
// Каталоги en/ru встроены в бинарник; язык запроса определяет Middleware
// (cookie "lang" → Accept-Language → "en") и кладёт его в контекст вместе с Bundle.
// Шаблоны получают строки через T(ctx, key) и Tf(ctx, key, args...).
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"
)

// DefaultLang — язык по умолчанию и язык fallback.
const DefaultLang = "en"

var (
	// SupportedLanguages — поддерживаемые теги языков, первый — по умолчанию.
	SupportedLanguages = []language.Tag{
		language.English,
		language.Russian,
	}

	matcher = language.NewMatcher(SupportedLanguages)
)

type contextKey string

const (
	contextKeyLang   contextKey = "i18n_lang"
	contextKeyBundle contextKey = "i18n_bundle"
)

// Bundle — каталоги переводов: lang → key → строка.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
	logger   *slog.Logger
}

// NewBundle создаёт пустой Bundle.
func NewBundle(logger *slog.Logger) *Bundle {
	return &Bundle{
		catalogs: make(map[string]map[string]string),
		logger:   logger,
	}
}

// LoadMessages загружает плоский JSON-каталог {"key": "строка"} для lang.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: ошибка парсинга каталога %s: %w", lang, err)
	}

	b.mu.Lock()
	b.catalogs[lang] = messages
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Debug("i18n каталог загружен",
			slog.String("lang", lang),
			slog.Int("keys", len(messages)),
		)
	}
	return nil
}

// Keys возвращает множество ключей каталога lang.
func (b *Bundle) Keys(lang string) map[string]struct{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make(map[string]struct{}, len(b.catalogs[lang]))
	for k := range b.catalogs[lang] {
		keys[k] = struct{}{}
	}
	return keys
}

// Translate возвращает перевод key для lang.
// Нет перевода — английская строка, нет и её — сам ключ.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if msg, ok := b.catalogs[lang][key]; ok {
		return msg
	}
	if msg, ok := b.catalogs[DefaultLang][key]; ok {
		return msg
	}
	return key
}

// Translatef возвращает перевод с подстановкой аргументов.
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	template := b.Translate(lang, key)
	if len(args) == 0 {
		return template
	}
	return formatFunc(template, args...)
}

// Формат-строки приходят из JSON-каталогов, статическая проверка printf к ним неприменима.
var formatFunc = fmt.Sprintf

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, contextKeyLang, lang)
}

// LangFromContext извлекает язык из контекста. Default: "en".
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(contextKeyLang).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}

// WithBundle помещает Bundle в контекст.
func WithBundle(ctx context.Context, b *Bundle) context.Context {
	return context.WithValue(ctx, contextKeyBundle, b)
}

// BundleFromContext извлекает Bundle из контекста (nil если нет).
func BundleFromContext(ctx context.Context) *Bundle {
	b, _ := ctx.Value(contextKeyBundle).(*Bundle)
	return b
}

// T возвращает перевод key на языке запроса.
func T(ctx context.Context, key string) string {
	b := BundleFromContext(ctx)
	if b == nil {
		return key
	}
	return b.Translate(LangFromContext(ctx), key)
}

// Tf — T с подстановкой аргументов.
func Tf(ctx context.Context, key string, args ...any) string {
	b := BundleFromContext(ctx)
	if b == nil {
		if len(args) == 0 {
			return key
		}
		return formatFunc(key, args...)
	}
	return b.Translatef(LangFromContext(ctx), key, args...)
}

// Supported проверяет, что lang — поддерживаемый код языка.
func Supported(lang string) bool {
	for _, tag := range SupportedLanguages {
		if base, _ := tag.Base(); base.String() == lang {
			return true
		}
	}
	return false
}

// MatchLanguage выбирает поддерживаемый язык по заголовку Accept-Language.
func MatchLanguage(acceptLanguage string) string {
	tag, _ := language.MatchStrings(matcher, acceptLanguage)
	base, _ := tag.Base()
	if lang := base.String(); Supported(lang) {
		return lang
	}
	return DefaultLang
}
