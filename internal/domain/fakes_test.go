package domain

import (
	"context"
	"errors"
	"sync"

	"github.com/Vovarama1992/go-utils/logger"
	"go.uber.org/zap"

	"github.com/Vovarama1992/videodl/internal/models"
)

func nopLogger() *logger.ZapLogger {
	return logger.NewZapLogger(zap.NewNop().Sugar())
}

// fakeStrategy returns a fixed result and counts its calls.
type fakeStrategy struct {
	name  string
	res   *models.Extraction
	err   error
	calls int
	urls  []string
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Extract(_ context.Context, postURL string) (*models.Extraction, error) {
	f.calls++
	f.urls = append(f.urls, postURL)
	if f.err != nil {
		return nil, f.err
	}
	if f.res == nil {
		return nil, nil
	}
	out := *f.res
	return &out, nil
}

func ok(name, videoURL string) *fakeStrategy {
	return &fakeStrategy{name: name, res: &models.Extraction{VideoURL: videoURL}}
}

func failing(name, msg string) *fakeStrategy {
	return &fakeStrategy{name: name, err: errors.New(msg)}
}

type fakeHistory struct {
	mu       sync.Mutex
	entries  []models.HistoryEntry
	writeErr error
}

func (f *fakeHistory) InsertEntry(_ context.Context, e *models.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeHistory) RecentEntries(_ context.Context, limit int) ([]models.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.HistoryEntry, 0, limit)
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}
