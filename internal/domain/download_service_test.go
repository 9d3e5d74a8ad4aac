package domain

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/videodl/internal/models"
	"github.com/Vovarama1992/videodl/internal/ports"
)

func newTestService(history *fakeHistory, chains ...*Chain) *DownloadService {
	var repo ports.HistoryRepository
	if history != nil {
		repo = history
	}
	return NewDownloadService(chains, Gate{BlockYouTube: true}, repo, "", nopLogger())
}

func TestResolveInstagram(t *testing.T) {
	ig := &fakeStrategy{name: "instagram-api", res: &models.Extraction{
		VideoURL:  "https://cdn/ig.mp4",
		Thumbnail: "https://cdn/ig.jpg",
		Duration:  12.5,
	}}
	s := newTestService(nil, NewChain(models.PlatformInstagram, nopLogger(), ig))

	res, err := s.Resolve(context.Background(), "  https://www.instagram.com/p/ABC123/ ")
	require.NoError(t, err)
	assert.Equal(t, &models.DownloadResult{
		Success:   true,
		Platform:  models.PlatformInstagram,
		VideoURL:  "https://cdn/ig.mp4",
		Thumbnail: "https://cdn/ig.jpg",
		Duration:  12.5,
	}, res)
	assert.Equal(t, []string{"https://www.instagram.com/p/ABC123/"}, ig.urls)
}

func TestResolveRejections(t *testing.T) {
	tiktok := ok("tikwm", "https://cdn/t.mp4")
	youtube := ok("yt-dlp", "https://cdn/y.mp4")
	s := newTestService(nil,
		NewChain(models.PlatformTikTok, nopLogger(), tiktok),
		NewChain(models.PlatformYouTube, nopLogger(), youtube),
	)

	tests := []struct {
		name    string
		url     string
		kind    ErrorKind
		status  int
		message string
	}{
		{"empty", "   ", KindMissingParameter, http.StatusBadRequest, MsgURLRequired},
		{"unknown platform", "https://example.com/video.mp4", KindUnsupportedPlatform, http.StatusBadRequest, MsgUnsupportedPlatform},
		{"platform without chain", "https://www.linkedin.com/posts/x", KindUnsupportedPlatform, http.StatusBadRequest, MsgUnsupportedPlatform},
		{"blocked youtube", "https://www.youtube.com/watch?v=abc", KindBlockedPlatform, http.StatusForbidden, MsgYouTubeBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Resolve(context.Background(), tt.url)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.status, KindOf(err).HTTPStatus())
			assert.Equal(t, tt.message, err.Error())
		})
	}

	assert.Zero(t, tiktok.calls)
	assert.Zero(t, youtube.calls)

	res, err := s.Resolve(context.Background(), "https://www.youtube.com/shorts/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/y.mp4", res.VideoURL)
	assert.Equal(t, DefaultThumbnail, res.Thumbnail)
}

func TestResolveUpstreamFailure(t *testing.T) {
	s := newTestService(nil, NewChain(models.PlatformFacebook, nopLogger(),
		failing("facebook-scrape", "login wall"),
		failing("aggregator", "quota exceeded"),
	))

	_, err := s.Resolve(context.Background(), "https://www.facebook.com/watch?v=1")
	require.Error(t, err)
	assert.Equal(t, KindUpstreamFailure, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, KindOf(err).HTTPStatus())
	assert.Equal(t, "Failed to fetch Facebook video: quota exceeded", err.Error())
}

func TestResolveNoMedia(t *testing.T) {
	s := newTestService(nil, NewChain(models.PlatformInstagram, nopLogger(),
		&fakeStrategy{name: "instagram-api", err: ErrNoMedia},
	))

	_, err := s.Resolve(context.Background(), "https://www.instagram.com/p/ABC123/")
	require.Error(t, err)
	assert.Equal(t, KindNoMediaFound, KindOf(err))
	assert.Equal(t, MsgNoVideoFound, err.Error())
}

func TestResolveRecordsHistory(t *testing.T) {
	history := &fakeHistory{}
	s := newTestService(history,
		NewChain(models.PlatformTikTok, nopLogger(), ok("tikwm", "https://cdn/t.mp4")),
		NewChain(models.PlatformTwitter, nopLogger(), failing("aggregator", "down"), failing("yt-dlp", "exit 1")),
	)

	_, err := s.Resolve(context.Background(), "https://www.tiktok.com/@u/video/1")
	require.NoError(t, err)
	_, err = s.Resolve(context.Background(), "https://x.com/u/status/1")
	require.Error(t, err)

	entries, err := s.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	failed, succeeded := entries[0], entries[1]
	assert.True(t, succeeded.Success)
	assert.Equal(t, "tikwm", succeeded.Strategy)
	assert.Equal(t, "https://cdn/t.mp4", succeeded.VideoURL)
	assert.NotEmpty(t, succeeded.ID)

	assert.False(t, failed.Success)
	assert.Equal(t, models.PlatformTwitter, failed.Platform)
	assert.Equal(t, "aggregator: down; yt-dlp: exit 1", failed.Error)
}

func TestResolveIgnoresHistoryWriteFailure(t *testing.T) {
	history := &fakeHistory{writeErr: errors.New("db down")}
	s := newTestService(history, NewChain(models.PlatformTikTok, nopLogger(), ok("tikwm", "https://cdn/t.mp4")))

	res, err := s.Resolve(context.Background(), "https://www.tiktok.com/@u/video/1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/t.mp4", res.VideoURL)
}

func TestHistoryDisabled(t *testing.T) {
	s := newTestService(nil)
	_, err := s.History(context.Background(), 10)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
}

func TestPlatforms(t *testing.T) {
	s := newTestService(nil,
		NewChain(models.PlatformYouTube, nopLogger()),
		NewChain(models.PlatformInstagram, nopLogger()),
	)
	assert.Equal(t, []models.Platform{models.PlatformInstagram, models.PlatformYouTube}, s.Platforms())
}

func TestResolveNoMediaBeforeFallbackFailure(t *testing.T) {
	s := newTestService(nil, NewChain(models.PlatformInstagram, nopLogger(),
		&fakeStrategy{name: "instagram-api", err: ErrNoMedia},
		failing("aggregator", "aggregator API key not configured"),
		failing("yt-dlp", "yt-dlp failed: ERROR: There is no video in this post"),
	))

	_, err := s.Resolve(context.Background(), "https://www.instagram.com/p/ABC123/")
	require.Error(t, err)
	assert.Equal(t, KindNoMediaFound, KindOf(err))
	assert.Equal(t, http.StatusNotFound, KindOf(err).HTTPStatus())
	assert.Equal(t, MsgNoVideoFound, err.Error())
}

func TestResolveRecordsRejections(t *testing.T) {
	history := &fakeHistory{}
	s := newTestService(history, NewChain(models.PlatformYouTube, nopLogger(), ok("yt-dlp", "https://cdn/y.mp4")))

	_, _ = s.Resolve(context.Background(), " ")
	_, _ = s.Resolve(context.Background(), "https://example.com/v.mp4")
	_, _ = s.Resolve(context.Background(), "https://www.youtube.com/watch?v=abc")
	_, _ = s.Resolve(context.Background(), "https://www.linkedin.com/posts/x")

	require.Len(t, history.entries, 4)
	for _, e := range history.entries {
		assert.False(t, e.Success)
		assert.NotEmpty(t, e.ID)
	}
	assert.Equal(t, MsgURLRequired, history.entries[0].Error)
	assert.Equal(t, models.PlatformUnknown, history.entries[1].Platform)
	assert.Equal(t, MsgUnsupportedPlatform, history.entries[1].Error)
	assert.Equal(t, models.PlatformYouTube, history.entries[2].Platform)
	assert.Equal(t, MsgYouTubeBlocked, history.entries[2].Error)
	assert.Equal(t, models.PlatformLinkedIn, history.entries[3].Platform)
}
