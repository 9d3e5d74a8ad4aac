package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/videodl/internal/models"
)

func TestChainFirstSuccessWins(t *testing.T) {
	first := ok("first", "https://cdn/1.mp4")
	second := ok("second", "https://cdn/2.mp4")
	c := NewChain(models.PlatformTikTok, nopLogger(), first, second)

	ext, err := c.Run(context.Background(), "https://www.tiktok.com/@u/video/1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/1.mp4", ext.VideoURL)
	assert.Equal(t, "first", ext.Strategy)
	assert.Equal(t, 0, second.calls)
}

func TestChainFallsThrough(t *testing.T) {
	first := failing("first", "boom")
	second := ok("second", "https://cdn/2.mp4")
	c := NewChain(models.PlatformTikTok, nopLogger(), first, second)

	ext, err := c.Run(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, "second", ext.Strategy)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, []string{"first", "second"}, c.Strategies())
}

func TestChainAggregatesErrors(t *testing.T) {
	c := NewChain(models.PlatformFacebook, nopLogger(),
		failing("scrape", "login wall"),
		failing("aggregator", "quota exceeded"),
	)

	_, err := c.Run(context.Background(), "u")
	require.Error(t, err)
	assert.Equal(t, "quota exceeded", err.Error())

	var ce *ChainError
	require.True(t, errors.As(err, &ce))
	errs := ce.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "scrape: login wall", errs[0].Error())
	assert.Equal(t, "aggregator: quota exceeded", errs[1].Error())
}

func TestChainEmptyResultIsNoMedia(t *testing.T) {
	c := NewChain(models.PlatformPinterest, nopLogger(),
		&fakeStrategy{name: "nil-result"},
		&fakeStrategy{name: "empty-url", res: &models.Extraction{Thumbnail: "t.jpg"}},
	)

	_, err := c.Run(context.Background(), "u")
	require.Error(t, err)
	assert.True(t, IsNoMedia(err))
}

func TestChainWithoutStrategies(t *testing.T) {
	_, err := NewChain(models.PlatformLinkedIn, nopLogger()).Run(context.Background(), "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no extraction strategy")
}

func TestChainNoMediaSurvivesLaterFailures(t *testing.T) {
	c := NewChain(models.PlatformInstagram, nopLogger(),
		&fakeStrategy{name: "instagram-api", err: ErrNoMedia},
		failing("aggregator", "aggregator API key not configured"),
		failing("yt-dlp", "yt-dlp failed: ERROR: There is no video in this post"),
	)

	_, err := c.Run(context.Background(), "u")
	require.Error(t, err)
	assert.True(t, IsNoMedia(err))
	assert.Equal(t, "yt-dlp failed: ERROR: There is no video in this post", err.Error())

	c = NewChain(models.PlatformInstagram, nopLogger(), failing("a", "down"), failing("b", "also down"))
	_, err = c.Run(context.Background(), "u")
	assert.False(t, IsNoMedia(err))
}
