package ports

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/Vovarama1992/videodl/internal/models"
)

type DownloadService interface {
	Resolve(ctx context.Context, rawURL string) (*models.DownloadResult, error)
	Platforms() []models.Platform
}

// MetadataLookup proxies per-platform metadata calls to an aggregator.
type MetadataLookup interface {
	Lookup(ctx context.Context, platform, resource string, query url.Values) (json.RawMessage, error)
}
