// resources.go — загрузка, список и скачивание материалов.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/eduportal/internal/service"
	"github.com/bigkaa/eduportal/internal/ui/flash"
	"github.com/bigkaa/eduportal/internal/ui/i18n"
	"github.com/bigkaa/eduportal/internal/ui/pages"
)

// uploadField — имя поля multipart-формы с файлом.
const uploadField = "file"

// multipartMemory — часть формы, которая держится в памяти; остальное во временных файлах.
const multipartMemory = 8 << 20

// multipartOverhead — запас на заголовки multipart сверх лимита файла.
const multipartOverhead = 1 << 20

// ResourceHandler — обработчики страницы материалов.
type ResourceHandler struct {
	resources *service.ResourceService
	maxSize   int64
	logger    *slog.Logger
}

// NewResourceHandler создаёт новый ResourceHandler.
func NewResourceHandler(resources *service.ResourceService, maxSize int64, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{
		resources: resources,
		maxSize:   maxSize,
		logger:    logger.With(slog.String("component", "ui.resources")),
	}
}

// HandleList — GET /resources.
func (h *ResourceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.resources.List(r.Context(), username)
	if err != nil {
		internalError(w, r, h.logger, "Ошибка чтения журнала ресурсов", err)
		return
	}

	data := pages.ResourcesData{
		Layout:  newLayout(w, r),
		Items:   items,
		Policy:  h.resources.Policy(),
		MaxSize: humanSize(h.maxSize),
	}
	render(w, r, pages.Resources(data), h.logger)
}

// HandleUpload — POST /resources (multipart, поле file).
func (h *ResourceHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}

	if h.maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			flash.Error(w, "flash.file_too_large", humanSize(h.maxSize))
		default:
			h.logger.Debug("Запрос загрузки без multipart-формы",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
			flash.Error(w, "flash.no_file_part")
		}
		redirect(w, r, "/resources")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		// Браузер отправляет пустое имя, если файл не выбран:
		// такая часть попадает в обычные значения формы
		if _, sent := r.MultipartForm.Value[uploadField]; sent {
			flash.Error(w, "flash.no_selected_file")
		} else {
			flash.Error(w, "flash.no_file_part")
		}
		redirect(w, r, "/resources")
		return
	}

	header := headers[0]
	if header.Filename == "" {
		flash.Error(w, "flash.no_selected_file")
		redirect(w, r, "/resources")
		return
	}

	file, err := header.Open()
	if err != nil {
		internalError(w, r, h.logger, "Ошибка чтения загруженного файла", err)
		return
	}
	defer file.Close()

	_, err = h.resources.Upload(r.Context(), username, header.Filename, file)
	switch {
	case err == nil:
		flash.Success(w, "flash.uploaded")
	case errors.Is(err, service.ErrValidation):
		flash.Error(w, "flash.invalid_filename")
	case errors.Is(err, service.ErrResourceOwned):
		flash.Error(w, "flash.resource_owned")
	case errors.Is(err, service.ErrFileTooLarge):
		flash.Error(w, "flash.file_too_large", humanSize(h.maxSize))
	default:
		internalError(w, r, h.logger, "Ошибка загрузки файла", err)
		return
	}
	redirect(w, r, "/resources")
}

// HandleDownload — GET /download/{filename}. Файл отдаётся как вложение.
func (h *ResourceHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}

	filename := chi.URLParam(r, "filename")
	if r.URL.RawPath != "" {
		// chi отдаёт параметр из RawPath без декодирования
		unescaped, err := url.PathUnescape(filename)
		if err != nil {
			http.Error(w, i18n.T(r.Context(), "error.not_found"), http.StatusNotFound)
			return
		}
		filename = unescaped
	}

	f, entry, err := h.resources.Open(r.Context(), username, filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, i18n.T(r.Context(), "error.not_found"), http.StatusNotFound)
		case errors.Is(err, service.ErrForbidden):
			http.Error(w, i18n.T(r.Context(), "error.forbidden"), http.StatusForbidden)
		default:
			internalError(w, r, h.logger, "Ошибка открытия файла", err)
		}
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		internalError(w, r, h.logger, "Ошибка чтения метаданных файла", err)
		return
	}

	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": entry.Filename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	h.logger.Debug("Скачивание файла",
		slog.String("username", username),
		slog.String("filename", entry.Filename),
		slog.Int64("size", info.Size()),
	)
	http.ServeContent(w, r, entry.Filename, info.ModTime(), f)
}

// humanSize форматирует размер в двоичных единицах: 33554432 → "32 MiB".
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	value := float64(n) / float64(div)
	suffix := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}[exp]
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d %s", int64(value), suffix)
	}
	return fmt.Sprintf("%.1f %s", value, suffix)
}
