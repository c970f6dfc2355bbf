// Пакет flash — одноразовые сообщения о результате действия.
// Сообщение переживает redirect в cookie и удаляется при первом показе.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
)

// CookieName — имя cookie flash-сообщения.
const CookieName = "eduportal_flash"

// Kind — вид сообщения (CSS-класс в шаблонах).
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Message — flash-сообщение: ключ перевода и аргументы форматирования.
type Message struct {
	Kind Kind     `json:"k"`
	Key  string   `json:"m"`
	Args []string `json:"a,omitempty"`
}

// Set сохраняет сообщение в cookie до следующего запроса.
func Set(w http.ResponseWriter, kind Kind, key string, args ...string) {
	raw, err := json.Marshal(Message{Kind: kind, Key: key, Args: args})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Success — сокращение для Set(w, KindSuccess, ...).
func Success(w http.ResponseWriter, key string, args ...string) {
	Set(w, KindSuccess, key, args...)
}

// Error — сокращение для Set(w, KindError, ...).
func Error(w http.ResponseWriter, key string, args ...string) {
	Set(w, KindError, key, args...)
}

// Pop возвращает сообщение из запроса и удаляет cookie.
// nil — сообщения нет или cookie повреждён.
func Pop(w http.ResponseWriter, r *http.Request) *Message {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	msg, err := decode(cookie.Value)
	if err != nil {
		return nil
	}
	return msg
}

func decode(value string) (*Message, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	if msg.Key == "" {
		return nil, errors.New("пустой ключ сообщения")
	}
	return &msg, nil
}
