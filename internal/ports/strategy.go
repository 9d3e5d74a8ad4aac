package ports

import (
	"context"

	"github.com/Vovarama1992/videodl/internal/models"
)

// Strategy is one way of turning a post URL into a direct video link.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, postURL string) (*models.Extraction, error)
}

// SessionStatus reports the state of an authenticated upstream session:
// Configured when credentials are present, Ready once a login succeeded.
type SessionStatus interface {
	Configured() bool
	Ready() bool
}
