// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrConflict — конфликт (имя пользователя уже занято).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrInvalidCredentials — неверное имя пользователя или пароль.
	// Не различает отсутствие пользователя и неверный пароль.
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrForbidden — доступ к ресурсу запрещён политикой скачивания.
	ErrForbidden = errors.New("доступ запрещён")
	// ErrResourceOwned — файл с таким именем принадлежит другому пользователю.
	ErrResourceOwned = errors.New("файл с таким именем загружен другим пользователем")
	// ErrFileTooLarge — размер файла превышает лимит.
	ErrFileTooLarge = errors.New("файл превышает допустимый размер")
)
