package delivery

import (
	"net/http"

	"github.com/Vovarama1992/videodl/internal/config"
	"github.com/Vovarama1992/videodl/internal/models"
	"github.com/Vovarama1992/videodl/internal/ports"
)

var features = []string{
	"platform-detection",
	"fallback-chains",
	"instagram-private-api",
	"html-scraping",
	"aggregator-api",
	"yt-dlp",
	"metadata-proxy",
}

type HealthHandler struct {
	instagram ports.SessionStatus
	platforms []models.Platform
	history   bool
}

func NewHealthHandler(instagram ports.SessionStatus, platforms []models.Platform, history bool) *HealthHandler {
	return &HealthHandler{
		instagram: instagram,
		platforms: platforms,
		history:   history,
	}
}

// GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	f := features
	if h.history {
		f = append(append([]string(nil), features...), "history")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "OK",
		"message":              "Video downloader API is running",
		"version":              config.Version,
		"instagramConfigured":  h.instagram != nil && h.instagram.Ready(),
		"instagramCredentials": h.instagram != nil && h.instagram.Configured(),
		"features":             f,
		"platforms":            h.platforms,
	})
}

// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
