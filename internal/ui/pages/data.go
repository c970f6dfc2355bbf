package pages

import (
	"html/template"

	"github.com/a-h/templ"

	"github.com/bigkaa/eduportal/internal/domain/model"
	"github.com/bigkaa/eduportal/internal/service"
	"github.com/bigkaa/eduportal/internal/ui/markdown"
)

// DashboardData — данные кабинета пользователя.
type DashboardData struct {
	Layout
	Enrollments []string
	Uploads     int
}

// Dashboard — кабинет пользователя.
func Dashboard(d DashboardData) templ.Component {
	d.Title, d.Active = "nav.dashboard", "dashboard"
	return page("dashboard", d)
}

// CatalogData — данные страницы курсов или вебинаров.
type CatalogData struct {
	Layout
	View     *service.CatalogView
	Markdown *markdown.Renderer
}

// Prefix — префикс ключей перевода для типа контента.
func (d CatalogData) Prefix() string {
	return string(d.View.Kind)
}

// HostKey — ключ подписи ведущего: преподаватель курса или ведущий вебинара.
func (d CatalogData) HostKey() string {
	if d.View.Kind == model.KindWebinar {
		return "host"
	}
	return "instructor"
}

// CreatePath — адрес формы создания.
func (d CatalogData) CreatePath() string {
	return createPath(d.View.Kind)
}

// Describe рендерит Markdown-описание пользовательского контента.
func (d CatalogData) Describe(src string) template.HTML {
	if d.Markdown == nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return d.Markdown.Render(src)
}

// Courses — страница курсов.
func Courses(d CatalogData) templ.Component {
	d.Title, d.Active = "course.heading", "course"
	return page("catalog", d)
}

// Webinars — страница вебинаров.
func Webinars(d CatalogData) templ.Component {
	d.Title, d.Active = "webinar.heading", "webinar"
	return page("catalog", d)
}

// enrollForm — данные кнопки записи на позицию каталога.
type enrollForm struct {
	Enrolled bool
	Action   string
	Field    string
	Title    string
}

func enrollArgs(d CatalogData, title string) enrollForm {
	return enrollForm{
		Enrolled: d.View.Enrolled(title),
		Action:   ListPath(d.View.Kind),
		Field:    string(d.View.Kind),
		Title:    title,
	}
}

// CreateData — данные формы создания курса или вебинара.
type CreateData struct {
	Layout
	Kind model.ContentKind
}

// Prefix — префикс ключей перевода для типа контента.
func (d CreateData) Prefix() string {
	return string(d.Kind)
}

// Action — адрес отправки формы.
func (d CreateData) Action() string {
	return createPath(d.Kind)
}

// Create — форма создания курса или вебинара.
func Create(d CreateData) templ.Component {
	d.Title, d.Active = string(d.Kind)+".create_heading", string(d.Kind)
	return page("create", d)
}

// ResourcesData — данные страницы материалов.
type ResourcesData struct {
	Layout
	Items  []service.ResourceItem
	Policy service.DownloadPolicy
	// MaxSize — лимит загрузки в читаемом виде
	MaxSize string
}

// Resources — страница загрузки и списка материалов.
func Resources(d ResourcesData) templ.Component {
	d.Title, d.Active = "resources.heading", "resources"
	return page("resources", d)
}

// ListPath — адрес страницы списка для типа контента.
func ListPath(kind model.ContentKind) string {
	if kind == model.KindWebinar {
		return "/webinars"
	}
	return "/courses"
}

func createPath(kind model.ContentKind) string {
	if kind == model.KindWebinar {
		return "/create_webinar"
	}
	return "/create_course"
}
