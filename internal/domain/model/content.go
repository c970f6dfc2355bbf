package model

// ContentKind — тип пользовательского контента.
type ContentKind string

const (
	// KindCourse — курс
	KindCourse ContentKind = "course"
	// KindWebinar — вебинар
	KindWebinar ContentKind = "webinar"
)

// AuthoredContent — курс или вебинар, созданный пользователем.
// Редактирование и удаление не предусмотрены.
type AuthoredContent struct {
	// Owner — автор
	Owner string
	// Title — название
	Title string
	// Description — описание (Markdown)
	Description string
	// Schedule — дата проведения в виде строки, как её ввёл автор
	Schedule string
}

// Offering — позиция статического каталога платформы.
type Offering struct {
	Title       string
	Description string
	Schedule    string
	// Host — преподаватель курса или ведущий вебинара
	Host string
}
