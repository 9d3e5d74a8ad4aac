package delivery

import (
	"context"
	"net/http"

	"github.com/Vovarama1992/videodl/internal/domain"
	"github.com/Vovarama1992/videodl/internal/ports"
)

// DownloadHandler does not log: the download service logs every outcome.
type DownloadHandler struct {
	svc ports.DownloadService
}

func NewDownloadHandler(svc ports.DownloadService) *DownloadHandler {
	return &DownloadHandler{svc: svc}
}

// GET /api/download?url=
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")

	// a client disconnect must not abort the upstream call; strategy timeouts bound it
	ctx := context.WithoutCancel(r.Context())

	res, err := h.svc.Resolve(ctx, rawURL)
	if err != nil {
		writeError(w, domain.KindOf(err).HTTPStatus(), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}
