// Пакет catalog — статический каталог курсов и вебинаров платформы.
// Отделён от пользовательского контента: объединение происходит
// только на уровне представлений сервисного слоя.
package catalog

import "github.com/bigkaa/eduportal/internal/domain/model"

var courses = []model.Offering{
	{
		Title:       "Advanced Teaching Techniques",
		Description: "Learn advanced methodologies for effective teaching.",
		Schedule:    "2024-09-01",
		Host:        "Dr. John Doe",
	},
	{
		Title:       "Educational Technology",
		Description: "Explore the latest tools and technologies in education.",
		Schedule:    "2024-09-10",
		Host:        "Ms. Jane Smith",
	},
	{
		Title:       "Student Engagement Strategies",
		Description: "Engage students in the classroom with proven strategies.",
		Schedule:    "2024-09-15",
		Host:        "Mr. William Brown",
	},
}

var webinars = []model.Offering{
	{
		Title:       "Innovative Education Approaches",
		Description: "Discuss the future of education with top experts.",
		Schedule:    "2024-08-25",
		Host:        "Prof. Michael Green",
	},
	{
		Title:       "AI in Education",
		Description: "Understand the role of AI in modern education.",
		Schedule:    "2024-08-30",
		Host:        "Dr. Emily White",
	},
}

// Courses возвращает копию списка курсов платформы.
func Courses() []model.Offering {
	return clone(courses)
}

// Webinars возвращает копию списка вебинаров платформы.
func Webinars() []model.Offering {
	return clone(webinars)
}

// Of возвращает каталог для указанного типа контента.
func Of(kind model.ContentKind) []model.Offering {
	if kind == model.KindWebinar {
		return Webinars()
	}
	return Courses()
}

func clone(src []model.Offering) []model.Offering {
	out := make([]model.Offering, len(src))
	copy(out, src)
	return out
}
