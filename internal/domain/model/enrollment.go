package model

// Enrollment — запись пользователя на курс или вебинар.
// Пара (Username, Title) не уникальна: повторная запись создаёт дубликат.
type Enrollment struct {
	Username string
	Title    string
}
