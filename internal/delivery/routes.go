package delivery

import (
	"net/http"

	"github.com/Vovarama1992/videodl/internal/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Health   *HealthHandler
	Download *DownloadHandler
	Lookup   *LookupHandler
	History  *HistoryHandler
}

type RouterOptions struct {
	Auth           ports.AuthService
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the HTTP surface: public health routes at the root and the
// token-guarded, rate-limited API under /api.
func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Auth"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	RegisterRoutes(r, h, opts)
	return r
}

func RegisterRoutes(r chi.Router, h Handlers, opts RouterOptions) {

	// public
	r.Get("/", h.Health.Root)
	r.Get("/health", h.Health.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(opts.Auth))
		r.Use(RateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst))

		r.Get("/download", h.Download.Download)
		r.Get("/history", h.History.Recent)

		// metadata proxy
		r.Get("/{platform}/{resource}", h.Lookup.Lookup)
	})
}
