package ports

import (
	"context"

	"github.com/Vovarama1992/videodl/internal/models"
)

type HistoryRepository interface {
	InsertEntry(ctx context.Context, entry *models.HistoryEntry) error
	RecentEntries(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

// HistoryService reads recent download outcomes.
type HistoryService interface {
	History(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}
