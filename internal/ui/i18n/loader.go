// loader.go — загрузка встроенных каталогов переводов.
package i18n

import (
	"embed"
	"fmt"
	"log/slog"
)

//go:embed locales/*.json
var localeFS embed.FS

// Load создаёт Bundle со всеми встроенными каталогами (locales/<lang>.json).
func Load(logger *slog.Logger) (*Bundle, error) {
	bundle := NewBundle(logger)

	for _, tag := range SupportedLanguages {
		base, _ := tag.Base()
		lang := base.String()

		path := fmt.Sprintf("locales/%s.json", lang)
		data, err := localeFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("i18n: не удалось прочитать %s: %w", path, err)
		}
		if err := bundle.LoadMessages(lang, data); err != nil {
			return nil, err
		}
	}

	if logger != nil {
		logger.Info("i18n каталоги загружены", slog.Int("languages", len(SupportedLanguages)))
	}
	return bundle, nil
}
