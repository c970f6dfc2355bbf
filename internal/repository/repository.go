// Пакет repository — типизированные хранилища платформы поверх журналов записей.
// Каждый репозиторий владеет одним recordstore.Store и формирует
// из его записей нужную форму коллекции (словарь или упорядоченный список).
package repository

import (
	"errors"
	"log/slog"
	"time"

	"github.com/bigkaa/eduportal/internal/storage/recordlog"
	"github.com/bigkaa/eduportal/internal/storage/recordstore"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — конфликт уникальности (запись уже существует).
	ErrConflict = errors.New("конфликт — запись уже существует")
)

// Имена журналов. Совпадают с именами файлов в каталоге данных.
const (
	UsersLog        = "users.txt"
	EnrollmentsLog  = "enrollments.txt"
	UserCoursesLog  = "user_courses.txt"
	UserWebinarsLog = "user_webinars.txt"
	ResourceLog     = "resource_log.txt"
)

// Repositories — набор репозиториев поверх одного бэкенда журналов.
type Repositories struct {
	Users       *UserRepository
	Enrollments *EnrollmentRepository
	Courses     *ContentRepository
	Webinars    *ContentRepository
	Resources   *ResourceLogRepository
}

// New создаёт все репозитории поверх log с единой политикой
// обработки повреждённых строк.
func New(log recordlog.Log, policy recordstore.Policy, logger *slog.Logger) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(log, policy, logger),
		Enrollments: NewEnrollmentRepository(log, policy, logger),
		Courses:     NewContentRepository(log, UserCoursesLog, policy, logger),
		Webinars:    NewContentRepository(log, UserWebinarsLog, policy, logger),
		Resources:   NewResourceLogRepository(log, policy, time.Now, logger),
	}
}
