package middleware

import (
	"net/http"

	"github.com/magma-studio/atelier/internal/content"
)

const localeCookie = "lang"

// Locale resolves the visitor's language for the request: an explicit
// ?lang= query switches it (and pins a cookie), otherwise the cookie wins,
// otherwise the configured default. The resolved locale rides the request
// context so handlers and templates agree on it.
func Locale(defaultLocale content.Locale) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := defaultLocale

			if c, err := r.Cookie(localeCookie); err == nil {
				if l, err := content.ParseLocale(c.Value); err == nil {
					locale = l
				}
			}

			if raw := r.URL.Query().Get("lang"); raw != "" {
				if l, err := content.ParseLocale(raw); err == nil {
					locale = l
					http.SetCookie(w, &http.Cookie{
						Name:     localeCookie,
						Value:    string(l),
						Path:     "/",
						MaxAge:   int((365 * 24 * 3600)),
						HttpOnly: false,
						SameSite: http.SameSiteLaxMode,
					})
				}
			}

			ctx := SetLocale(r.Context(), locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
