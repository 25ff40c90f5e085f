package middleware

import (
	"net/http"
	"net/url"
)

const (
	AuthCookieName  = "auth"
	AuthCookieValue = "true"
	LoginPath       = "/login"
)

// SessionGate só confere se o cookie de auth existe com o valor esperado.
// É proteção de rota, não autenticação.
func SessionGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(AuthCookieName); err == nil && c.Value == AuthCookieValue {
			next.ServeHTTP(w, r)
			return
		}

		target := LoginPath + "?from=" + url.QueryEscape(r.URL.Path)
		http.Redirect(w, r, target, http.StatusFound)
	})
}
