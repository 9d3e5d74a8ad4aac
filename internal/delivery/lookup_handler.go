package delivery

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/videodl/internal/domain"
	"github.com/Vovarama1992/videodl/internal/models"
	"github.com/Vovarama1992/videodl/internal/ports"
	"github.com/go-chi/chi/v5"
)

type LookupHandler struct {
	lookup ports.MetadataLookup // nil when no aggregator is configured
	log    *logger.ZapLogger
}

func NewLookupHandler(lookup ports.MetadataLookup, log *logger.ZapLogger) *LookupHandler {
	return &LookupHandler{
		lookup: lookup,
		log:    log,
	}
}

// GET /api/{platform}/{resource}?username=|url=
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	platform := chi.URLParam(r, "platform")
	resource := chi.URLParam(r, "resource")

	if !slices.Contains(domain.SupportedPlatforms(), models.Platform(platform)) {
		writeError(w, http.StatusBadRequest, "unsupported platform: "+platform)
		return
	}

	q := r.URL.Query()
	username, postURL := q.Get("username"), q.Get("url")
	if username == "" && postURL == "" {
		writeError(w, http.StatusBadRequest, "username or url parameter is required")
		return
	}

	if h.lookup == nil {
		writeError(w, http.StatusInternalServerError, "aggregator not configured")
		return
	}

	query := url.Values{}
	if username != "" {
		query.Set("username", username)
	}
	if postURL != "" {
		query.Set("url", postURL)
	}

	data, err := h.lookup.Lookup(context.WithoutCancel(r.Context()), platform, resource, query)
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "metadata lookup failed",
			Fields:  map[string]any{"platform": platform, "resource": resource},
			Error:   err,
		})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"platform": platform,
		"resource": resource,
		"data":     data,
	})
}
