package security

import (
	"net/http"
	"slices"
	"strings"
)

// CORS lets the listed origins call the API from a browser. "*" allows any
// origin. Only read methods plus the export POST are advertised.
type CORS struct {
	origins   []string
	anyOrigin bool
}

func NewCORS(origins []string) *CORS {
	return &CORS{
		origins:   origins,
		anyOrigin: slices.Contains(origins, "*"),
	}
}

func (c *CORS) allowed(origin string) bool {
	return c.anyOrigin || slices.Contains(c.origins, origin)
}

func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Add("Vary", "Origin")
		if !c.allowed(origin) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if c.anyOrigin {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			if h := r.Header.Get("Access-Control-Request-Headers"); h != "" {
				w.Header().Set("Access-Control-Allow-Headers", strings.TrimSpace(h))
			}
			w.Header().Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
