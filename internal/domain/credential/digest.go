// Пакет credential — одностороннее хеширование учётных данных.
// Дайджест детерминирован: без соли и без итераций, одинаковые пароли
// дают одинаковый дайджест.
package credential

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestLength — длина дайджеста в hex-символах (SHA-256).
const DigestLength = sha256.Size * 2

// Digest возвращает hex-представление SHA-256 от plaintext.
func Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Matches проверяет, что дайджест plaintext совпадает с сохранённым.
func Matches(plaintext, digest string) bool {
	return Digest(plaintext) == digest
}

// IsDigest проверяет, что строка похожа на сохранённый дайджест:
// ровно DigestLength символов в нижнем регистре hex.
func IsDigest(s string) bool {
	if len(s) != DigestLength {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
