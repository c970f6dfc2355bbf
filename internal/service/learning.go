// learning.go — курсы и вебинары: представления, запись, создание.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bigkaa/eduportal/internal/api/middleware"
	"github.com/bigkaa/eduportal/internal/domain/catalog"
	"github.com/bigkaa/eduportal/internal/domain/model"
	"github.com/bigkaa/eduportal/internal/repository"
	"github.com/bigkaa/eduportal/internal/storage/recordstore"
)

// AuthoredItem — пользовательский курс или вебинар в представлении.
type AuthoredItem struct {
	model.AuthoredContent
	// Own — создан текущим пользователем
	Own bool
}

// CatalogView — страница курсов или вебинаров. Статический каталог
// и пользовательский контент остаются раздельными списками.
type CatalogView struct {
	Kind model.ContentKind
	// Catalog — позиции каталога платформы
	Catalog []model.Offering
	// Authored — контент, созданный пользователями, в порядке создания
	Authored []AuthoredItem
	// Enrollments — все записи текущего пользователя в порядке записи
	Enrollments []string
}

// Enrolled проверяет, записан ли пользователь на title.
func (v *CatalogView) Enrolled(title string) bool {
	for _, e := range v.Enrollments {
		if e == title {
			return true
		}
	}
	return false
}

// CreateParams — поля формы создания курса или вебинара.
type CreateParams struct {
	Title       string
	Description string
	Schedule    string
}

// LearningService — сервис курсов и вебинаров.
type LearningService struct {
	enrollments *repository.EnrollmentRepository
	courses     *repository.ContentRepository
	webinars    *repository.ContentRepository
	logger      *slog.Logger
}

// NewLearningService создаёт сервис курсов и вебинаров.
func NewLearningService(
	enrollments *repository.EnrollmentRepository,
	courses *repository.ContentRepository,
	webinars *repository.ContentRepository,
	logger *slog.Logger,
) *LearningService {
	return &LearningService{
		enrollments: enrollments,
		courses:     courses,
		webinars:    webinars,
		logger:      logger.With(slog.String("component", "learning_service")),
	}
}

// CoursesView возвращает страницу курсов для пользователя.
func (s *LearningService) CoursesView(ctx context.Context, username string) (*CatalogView, error) {
	return s.view(ctx, model.KindCourse, username)
}

// WebinarsView возвращает страницу вебинаров для пользователя.
func (s *LearningService) WebinarsView(ctx context.Context, username string) (*CatalogView, error) {
	return s.view(ctx, model.KindWebinar, username)
}

func (s *LearningService) view(ctx context.Context, kind model.ContentKind, username string) (*CatalogView, error) {
	authored, err := s.content(kind).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения пользовательского контента (%s): %w", kind, err)
	}

	enrolled, err := s.enrollments.ByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения записей: %w", err)
	}

	items := make([]AuthoredItem, 0, len(authored))
	for _, c := range authored {
		items = append(items, AuthoredItem{AuthoredContent: c, Own: c.Owner == username})
	}

	return &CatalogView{
		Kind:        kind,
		Catalog:     catalog.Of(kind),
		Authored:    items,
		Enrollments: enrolled,
	}, nil
}

// Enrollments возвращает записи пользователя (курсы и вебинары вместе).
func (s *LearningService) Enrollments(ctx context.Context, username string) ([]string, error) {
	return s.enrollments.ByUser(ctx, username)
}

// Enroll записывает пользователя на курс или вебинар с названием title.
// Повторная запись не запрещена и создаёт дубликат.
func (s *LearningService) Enroll(ctx context.Context, kind model.ContentKind, username, title string) error {
	op := "enroll_" + string(kind)

	title = strings.TrimSpace(title)
	if title == "" {
		middleware.OperationsTotal.WithLabelValues(op, "invalid").Inc()
		return fmt.Errorf("%w: название не указано", ErrValidation)
	}
	if err := recordstore.CheckField(title); err != nil {
		middleware.OperationsTotal.WithLabelValues(op, "invalid").Inc()
		return fmt.Errorf("%w: название: %v", ErrValidation, err)
	}

	if err := s.enrollments.Add(ctx, model.Enrollment{Username: username, Title: title}); err != nil {
		return fmt.Errorf("ошибка записи на %s: %w", kind, err)
	}

	middleware.OperationsTotal.WithLabelValues(op, "success").Inc()
	s.logger.Info("Пользователь записан",
		slog.String("username", username),
		slog.String("kind", string(kind)),
		slog.String("title", title),
	)
	return nil
}

// CreateCourse сохраняет курс, созданный пользователем owner.
func (s *LearningService) CreateCourse(ctx context.Context, owner string, p CreateParams) (*model.AuthoredContent, error) {
	return s.create(ctx, model.KindCourse, owner, p)
}

// CreateWebinar сохраняет вебинар, созданный пользователем owner.
func (s *LearningService) CreateWebinar(ctx context.Context, owner string, p CreateParams) (*model.AuthoredContent, error) {
	return s.create(ctx, model.KindWebinar, owner, p)
}

func (s *LearningService) create(ctx context.Context, kind model.ContentKind, owner string, p CreateParams) (*model.AuthoredContent, error) {
	op := "create_" + string(kind)

	c := model.AuthoredContent{
		Owner:       owner,
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		Schedule:    strings.TrimSpace(p.Schedule),
	}
	if err := validateContent(c); err != nil {
		middleware.OperationsTotal.WithLabelValues(op, "invalid").Inc()
		return nil, err
	}

	if err := s.content(kind).Add(ctx, c); err != nil {
		return nil, fmt.Errorf("ошибка сохранения (%s): %w", kind, err)
	}

	middleware.OperationsTotal.WithLabelValues(op, "success").Inc()
	s.logger.Info("Создан пользовательский контент",
		slog.String("owner", owner),
		slog.String("kind", string(kind)),
		slog.String("title", c.Title),
	)
	return &c, nil
}

// validateContent проверяет обязательные поля и их совместимость с форматом журнала.
// Описание — одна строка Markdown без ':'; дата может содержать время.
func validateContent(c model.AuthoredContent) error {
	if c.Title == "" || c.Description == "" || c.Schedule == "" {
		return fmt.Errorf("%w: название, описание и дата обязательны", ErrValidation)
	}
	if err := recordstore.CheckField(c.Title); err != nil {
		return fmt.Errorf("%w: название: %v", ErrValidation, err)
	}
	if err := recordstore.CheckField(c.Description); err != nil {
		return fmt.Errorf("%w: описание: %v", ErrValidation, err)
	}
	if strings.ContainsAny(c.Schedule, "\r\n") {
		return fmt.Errorf("%w: дата содержит перевод строки", ErrValidation)
	}
	return nil
}

func (s *LearningService) content(kind model.ContentKind) *repository.ContentRepository {
	if kind == model.KindWebinar {
		return s.webinars
	}
	return s.courses
}
