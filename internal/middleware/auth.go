package middleware

import (
	"net/http"
	"strings"
)

// AuthCookie is set by the login handler once the password is accepted.
const AuthCookie = "authenticated"

// AuthMiddleware checks that the user is logged in (has cookie 'authenticated=true').
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		// The login page, the login endpoint and static assets are public
		if r.URL.Path == "/login" ||
			r.URL.Path == "/auth/login" ||
			strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(AuthCookie)
		if err != nil || cookie.Value != "true" {
			// API and websocket clients get 401, browsers are sent to the login page
			if strings.HasPrefix(r.URL.Path, "/api/") ||
				r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
				r.Header.Get("Content-Type") == "application/json" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
