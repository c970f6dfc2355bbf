// middleware.go — определение языка пользователя.
package i18n

import "net/http"

// LangCookieName — имя cookie с выбранным языком.
const LangCookieName = "lang"

// Middleware помещает в контекст запроса Bundle и язык пользователя.
func Middleware(bundle *Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithBundle(r.Context(), bundle)
			ctx = WithLang(ctx, detectLanguage(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// detectLanguage: cookie "lang" → Accept-Language → "en".
func detectLanguage(r *http.Request) string {
	if cookie, err := r.Cookie(LangCookieName); err == nil && Supported(cookie.Value) {
		return cookie.Value
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return MatchLanguage(accept)
	}
	return DefaultLang
}
