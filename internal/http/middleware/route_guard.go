package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// SessionChecker reports whether a request carries a valid session
type SessionChecker interface {
	HasSession(r *http.Request) bool
}

var (
	protectedRoutes   = []string{"/swipe", "/profile", "/matches", "/debug"}
	authPages         = []string{"/login", "/register", "/reset-password"}
	guardSkipPrefixes = []string{"/api/", "/_next", "/favicon.ico", "/images/", "/swagger/", "/health", "/metrics"}
)

func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// matchesRoute matches a route itself and anything below it, so /profile
// covers /profile/edit but not /profiles.
func matchesRoute(path string, routes []string) bool {
	for _, r := range routes {
		if path == r || strings.HasPrefix(path, r+"/") {
			return true
		}
	}
	return false
}

// RouteGuard redirects page requests based on the session: protected pages
// send anonymous visitors to the login page, auth pages and the landing page
// send signed-in users to the swipe page.
func RouteGuard(sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if matchesAny(path, guardSkipPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			switch {
			case matchesRoute(path, protectedRoutes):
				if !sessions.HasSession(r) {
					target := "/login?redirectTo=" + url.QueryEscape(path)
					http.Redirect(w, r, target, http.StatusFound)
					return
				}
			case path == "/" || matchesRoute(path, authPages):
				if sessions.HasSession(r) {
					http.Redirect(w, r, "/swipe", http.StatusFound)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
