package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/videodl/internal/models"
	"github.com/Vovarama1992/videodl/internal/ports"
	"go.uber.org/multierr"
)

// ChainError is returned when every strategy of a chain failed. Its message is
// the last strategy's error; All keeps every failure for logs. NoMedia is set
// when at least one strategy reached the post and found no video in it.
type ChainError struct {
	Last    error
	All     error
	NoMedia bool
}

func (e *ChainError) Error() string { return e.Last.Error() }

func (e *ChainError) Unwrap() error { return e.Last }

// Errors returns the failure of every strategy that ran, in order.
func (e *ChainError) Errors() []error { return multierr.Errors(e.All) }

// Chain tries its strategies in order and stops at the first one that yields a
// video URL.
type Chain struct {
	platform   models.Platform
	strategies []ports.Strategy
	log        *logger.ZapLogger
}

func NewChain(platform models.Platform, log *logger.ZapLogger, strategies ...ports.Strategy) *Chain {
	return &Chain{
		platform:   platform,
		strategies: strategies,
		log:        log,
	}
}

func (c *Chain) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

func (c *Chain) Run(ctx context.Context, postURL string) (*models.Extraction, error) {
	if len(c.strategies) == 0 {
		return nil, fmt.Errorf("no extraction strategy configured for %s", c.platform)
	}

	var (
		all, last error
		noMedia   bool
	)
	for _, s := range c.strategies {
		res, err := s.Extract(ctx, postURL)
		if err == nil && (res == nil || res.VideoURL == "") {
			err = ErrNoMedia
		}
		if err == nil {
			if res.Strategy == "" {
				res.Strategy = s.Name()
			}
			return res, nil
		}

		c.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "strategy failed",
			Fields: map[string]any{
				"platform": c.platform,
				"strategy": s.Name(),
			},
			Error: err,
		})

		if errors.Is(err, ErrNoMedia) {
			noMedia = true
		}
		last = err
		all = multierr.Append(all, fmt.Errorf("%s: %w", s.Name(), err))
	}

	return nil, &ChainError{Last: last, All: all, NoMedia: noMedia}
}

// IsNoMedia reports whether err means the post was reached but held no video.
// For a chain that is true when any of its strategies said so, even if a later
// fallback failed for another reason.
func IsNoMedia(err error) bool {
	var ce *ChainError
	if errors.As(err, &ce) {
		return ce.NoMedia
	}
	return errors.Is(err, ErrNoMedia)
}
