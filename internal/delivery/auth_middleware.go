package delivery

import (
	"net/http"

	"github.com/Vovarama1992/videodl/internal/ports"
)

func AuthMiddleware(auth ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			// preflight and disabled auth pass through
			if !auth.Enabled() || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get("X-Auth")
			if token == "" {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ok, _ := auth.ValidateToken(r.Context(), token)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
