// Пакет model — доменные модели платформы.
package model

// User — учётная запись: имя пользователя и дайджест пароля.
// Открытый пароль никогда не хранится.
type User struct {
	// Username — уникальное имя пользователя
	Username string
	// PasswordDigest — hex SHA-256 пароля
	PasswordDigest string
}
