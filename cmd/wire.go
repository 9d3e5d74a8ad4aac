package main

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vovarama1992/videodl/internal/config"
	"github.com/Vovarama1992/videodl/internal/domain"
	"github.com/Vovarama1992/videodl/internal/infra"
	"github.com/Vovarama1992/videodl/internal/models"
	"github.com/Vovarama1992/videodl/internal/ports"
)

type app struct {
	session *infra.InstagramSession
	svc     *domain.DownloadService
	lookup  ports.MetadataLookup // nil without AGGREGATOR_URL
	pool    *pgxpool.Pool        // nil without DATABASE_URL
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, zl *logger.ZapLogger) (*app, error) {
	client := infra.NewHTTPClient(cfg.HTTPTimeout.Duration)

	session := infra.NewInstagramSession(
		cfg.InstagramUsername,
		cfg.InstagramPassword,
		cfg.InstagramAPIBase,
		cfg.HTTPTimeout.Duration,
		zl,
	)

	aggregator := infra.NewAggregatorClient(infra.AggregatorOptions{
		Name:       "aggregator",
		Endpoint:   cfg.AggregatorURL,
		LookupURL:  cfg.AggregatorURL,
		APIKey:     cfg.AggregatorAPIKey,
		KeyHeader:  cfg.AggregatorKeyHeader,
		RequireKey: true,
	}, client)

	tikwm := infra.NewTikwmClient(cfg.TikwmURL, client)
	ytdlp := infra.NewYtdlpStrategy(cfg.YtdlpPath, cfg.YtdlpCookiesFile, cfg.YtdlpTimeout.Duration, cfg.YtdlpMaxOutput, zl)

	chains := []*domain.Chain{
		domain.NewChain(models.PlatformInstagram, zl, infra.NewInstagramStrategy(session), aggregator, ytdlp),
		domain.NewChain(models.PlatformFacebook, zl, infra.NewFacebookScraper(client), aggregator, ytdlp),
		domain.NewChain(models.PlatformTikTok, zl, tikwm, aggregator, ytdlp),
		domain.NewChain(models.PlatformPinterest, zl, infra.NewPinterestScraper(client), ytdlp),
		domain.NewChain(models.PlatformLinkedIn, zl, infra.NewLinkedInScraper(client), ytdlp),
		domain.NewChain(models.PlatformTwitter, zl, aggregator, ytdlp),
		domain.NewChain(models.PlatformYouTube, zl, ytdlp),
	}

	a := &app{session: session}

	var history ports.HistoryRepository
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := infra.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		a.pool = pool
		history = infra.NewPostgresHistoryRepo(pool)
	}

	if cfg.AggregatorURL != "" {
		a.lookup = aggregator
	}

	a.svc = domain.NewDownloadService(
		chains,
		domain.Gate{BlockYouTube: cfg.BlockYouTube},
		history,
		cfg.DefaultThumbnail,
		zl,
	)
	return a, nil
}
