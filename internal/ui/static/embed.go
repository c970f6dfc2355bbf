// Пакет static — встроенные статические ресурсы UI (CSS).
package static

import (
	"embed"
	"net/http"
)

//go:embed css/*.css
var content embed.FS

// Handler раздаёт встроенные файлы; монтируется на /static/ с http.StripPrefix.
func Handler() http.Handler {
	return http.FileServer(http.FS(content))
}
