package server

import (
	"net/http"
	"strings"
)

// requireBearer gates /api routes behind a static bearer credential. An empty
// token disables the gate. Preflight requests and the health check pass
// through so browsers can negotiate CORS before authenticating.
func requireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || r.Method == http.MethodOptions || !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || presented != token {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Unauthorized (invalid demo token)."}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
