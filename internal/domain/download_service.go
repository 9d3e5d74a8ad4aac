package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/videodl/internal/models"
	"github.com/Vovarama1992/videodl/internal/ports"
	"github.com/google/uuid"
)

const historyWriteTimeout = 5 * time.Second

type DownloadService struct {
	chains           map[models.Platform]*Chain
	gate             Gate
	history          ports.HistoryRepository // nil when no database is configured
	defaultThumbnail string
	log              *logger.ZapLogger
}

func NewDownloadService(
	chains []*Chain,
	gate Gate,
	history ports.HistoryRepository,
	defaultThumbnail string,
	log *logger.ZapLogger,
) *DownloadService {
	byPlatform := make(map[models.Platform]*Chain, len(chains))
	for _, c := range chains {
		byPlatform[c.platform] = c
	}
	return &DownloadService{
		chains:           byPlatform,
		gate:             gate,
		history:          history,
		defaultThumbnail: defaultThumbnail,
		log:              log,
	}
}

// Platforms returns the platforms that have an extraction chain, in detector order.
func (s *DownloadService) Platforms() []models.Platform {
	var out []models.Platform
	for _, p := range SupportedPlatforms() {
		if _, ok := s.chains[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Resolve detects the platform of rawURL, runs its chain and returns the
// normalized result. Every failure is a *Error. Every outcome, rejections
// included, goes to history when it is enabled.
func (s *DownloadService) Resolve(ctx context.Context, rawURL string) (*models.DownloadResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		err := NewError(KindMissingParameter, MsgURLRequired, nil)
		s.record(rawURL, models.PlatformUnknown, nil, err)
		return nil, err
	}

	platform := DetectPlatform(rawURL)
	if platform == models.PlatformUnknown {
		err := NewError(KindUnsupportedPlatform, MsgUnsupportedPlatform, nil)
		s.record(rawURL, platform, nil, err)
		return nil, err
	}

	if err := s.gate.Check(platform, rawURL); err != nil {
		s.log.Log(logger.LogEntry{
			Level:   "info",
			Message: "download rejected",
			Fields:  map[string]any{"platform": platform, "url": rawURL},
		})
		s.record(rawURL, platform, nil, err)
		return nil, err
	}

	chain, ok := s.chains[platform]
	if !ok {
		err := NewError(KindUnsupportedPlatform, MsgUnsupportedPlatform, nil)
		s.record(rawURL, platform, nil, err)
		return nil, err
	}

	start := time.Now()
	ext, err := chain.Run(ctx, rawURL)
	s.record(rawURL, platform, ext, err)

	if err != nil {
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "download failed",
			Fields: map[string]any{
				"platform": platform,
				"url":      rawURL,
				"dur":      time.Since(start).String(),
			},
			Error: err,
		})
		if IsNoMedia(err) {
			return nil, NewError(KindNoMediaFound, MsgNoVideoFound, err)
		}
		return nil, NewError(
			KindUpstreamFailure,
			"Failed to fetch "+platform.DisplayName()+" video: "+err.Error(),
			err,
		)
	}

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "download resolved",
		Fields: map[string]any{
			"platform": platform,
			"strategy": ext.Strategy,
			"dur":      time.Since(start).String(),
		},
	})

	return Normalize(platform, ext, s.defaultThumbnail), nil
}

func (s *DownloadService) record(rawURL string, platform models.Platform, ext *models.Extraction, err error) {
	if s.history == nil {
		return
	}

	entry := &models.HistoryEntry{
		ID:        uuid.NewString(),
		SourceURL: rawURL,
		Platform:  platform,
		Success:   err == nil,
		CreatedAt: time.Now().UTC(),
	}
	var ce *ChainError
	switch {
	case errors.As(err, &ce):
		entry.Error = ce.All.Error()
	case err != nil:
		entry.Error = err.Error()
	default:
		entry.Strategy = ext.Strategy
		entry.VideoURL = ext.VideoURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
	defer cancel()

	if werr := s.history.InsertEntry(ctx, entry); werr != nil {
		s.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "history write failed",
			Fields:  map[string]any{"url": rawURL},
			Error:   werr,
		})
	}
}

// History returns the most recent download outcomes, or ErrHistoryDisabled.
func (s *DownloadService) History(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.RecentEntries(ctx, limit)
}
