// Пакет recordstore — типизированное хранилище записей поверх recordlog.Log.
//
// Запись хранится одной строкой: поля, разделённые двоеточием.
// Текущее состояние — всегда полное воспроизведение журнала:
// Load читает и разбирает журнал целиком при каждом вызове,
// ничего не кэшируется. Обновление и удаление записей не поддерживаются.
package recordstore

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiter — разделитель полей в строке журнала.
const Delimiter = ":"

var (
	// ErrMalformedRecord — строка журнала не разбирается в запись.
	ErrMalformedRecord = errors.New("повреждённая запись журнала")
	// ErrInvalidField — значение поля нельзя записать без потери структуры строки.
	ErrInvalidField = errors.New("недопустимое значение поля")
)

// Schema — формат строки журнала.
type Schema struct {
	// Name — имя журнала (имя файла для файлового хранилища)
	Name string
	// Fields — точное количество полей в строке
	Fields int
	// FreeTail — последнее поле может содержать разделитель
	// (например, время "2024-09-01 10:00:00")
	FreeTail bool
}

// Join собирает строку журнала из полей. Поле не может содержать
// перевод строки, а разделитель допустим только в свободном последнем поле.
func (s Schema) Join(fields []string) (string, error) {
	if len(fields) != s.Fields {
		return "", fmt.Errorf("%w: журнал %s ожидает %d полей, передано %d",
			ErrInvalidField, s.Name, s.Fields, len(fields))
	}

	for i, f := range fields {
		if strings.ContainsAny(f, "\r\n") {
			return "", fmt.Errorf("%w: поле %d журнала %s содержит перевод строки",
				ErrInvalidField, i+1, s.Name)
		}
		last := i == len(fields)-1
		if strings.Contains(f, Delimiter) && !(last && s.FreeTail) {
			return "", fmt.Errorf("%w: поле %d журнала %s содержит %q",
				ErrInvalidField, i+1, s.Name, Delimiter)
		}
	}

	return strings.Join(fields, Delimiter), nil
}

// Split разбирает строку журнала на поля. Количество полей
// должно точно совпадать со схемой.
func (s Schema) Split(line string) ([]string, error) {
	var fields []string
	if s.FreeTail {
		fields = strings.SplitN(line, Delimiter, s.Fields)
	} else {
		fields = strings.Split(line, Delimiter)
	}

	if len(fields) != s.Fields {
		return nil, fmt.Errorf("ожидается %d полей, найдено %d", s.Fields, len(fields))
	}
	return fields, nil
}

// CheckField проверяет, что значение можно сохранить в непоследнем поле.
// Используется сервисным слоем для валидации пользовательского ввода.
func CheckField(value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: перевод строки", ErrInvalidField)
	}
	if strings.Contains(value, Delimiter) {
		return fmt.Errorf("%w: символ %q", ErrInvalidField, Delimiter)
	}
	return nil
}

// MalformedError — подробности о повреждённой строке журнала.
type MalformedError struct {
	// Store — имя журнала
	Store string
	// Line — номер строки (с единицы)
	Line int
	// Raw — исходный текст строки
	Raw string
	// Reason — причина отказа
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: строка %d: %s: %q", e.Store, e.Line, e.Reason, e.Raw)
}

// Unwrap позволяет сравнивать через errors.Is(err, ErrMalformedRecord).
func (e *MalformedError) Unwrap() error {
	return ErrMalformedRecord
}
