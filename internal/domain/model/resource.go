package model

import "time"

// ResourceTimeLayout — формат времени загрузки в журнале ресурсов.
const ResourceTimeLayout = "2006-01-02 15:04:05"

// ResourceEntry — запись журнала загрузок ресурсов.
// Несколько записей могут ссылаться на одно имя файла;
// актуальный владелец — автор последней записи.
type ResourceEntry struct {
	// Username — кто загрузил файл
	Username string
	// Filename — имя файла в директории загрузок
	Filename string
	// UploadedAt — локальное время загрузки с точностью до секунды
	UploadedAt time.Time
}

// Timestamp возвращает время загрузки в формате журнала.
func (e ResourceEntry) Timestamp() string {
	return e.UploadedAt.Format(ResourceTimeLayout)
}
