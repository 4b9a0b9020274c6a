package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"simpleapp/itemsvc/pkg/config"
)

// CORS adds Cross-Origin Resource Sharing headers to responses and answers
// preflight requests.
//
// A "*" entry in AllowedMethods or AllowedHeaders echoes what the preflight
// asked for. With credentials allowed, a wildcard origin echoes the request
// origin, since browsers reject "*" together with credentials.
//
// Example usage:
//
//	handler = CORS(&cfg.Server.CORS)(handler)
func CORS(cfg *config.CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")

			if !isOriginAllowed(origin, cfg.AllowedOrigins) {
				next.ServeHTTP(w, r)
				return
			}

			if contains(cfg.AllowedOrigins, "*") && !cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Methods",
				allowList(cfg.AllowedMethods, r.Header.Get("Access-Control-Request-Method")))
			if hdrs := allowList(cfg.AllowedHeaders, r.Header.Get("Access-Control-Request-Headers")); hdrs != "" {
				h.Set("Access-Control-Allow-Headers", hdrs)
			}
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}

			w.WriteHeader(http.StatusNoContent)
		})
	}
}

// allowList renders the configured list, echoing requested when it holds "*".
func allowList(allowed []string, requested string) string {
	if contains(allowed, "*") {
		return requested
	}
	return strings.Join(allowed, ", ")
}

// isOriginAllowed checks if an origin is in the allowed list.
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
