package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Vovarama1992/videodl/internal/models"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want models.Platform
	}{
		{"https://www.instagram.com/p/ABC123/", models.PlatformInstagram},
		{"https://instagr.am/p/ABC123/", models.PlatformInstagram},
		{"https://www.facebook.com/watch?v=1", models.PlatformFacebook},
		{"https://fb.watch/abc/", models.PlatformFacebook},
		{"https://m.fb.com/story.php?id=1", models.PlatformFacebook},
		{"https://www.tiktok.com/@user/video/123", models.PlatformTikTok},
		{"https://vm.tiktok.com/ZM123/", models.PlatformTikTok},
		{"https://www.pinterest.com/pin/123/", models.PlatformPinterest},
		{"https://pin.it/abc", models.PlatformPinterest},
		{"https://www.linkedin.com/posts/someone_activity-1", models.PlatformLinkedIn},
		{"https://twitter.com/u/status/1", models.PlatformTwitter},
		{"https://x.com/u/status/1", models.PlatformTwitter},
		{"https://mobile.x.com/u/status/1", models.PlatformTwitter},
		{"https://www.youtube.com/watch?v=abc", models.PlatformYouTube},
		{"https://youtu.be/abc", models.PlatformYouTube},
		{"HTTPS://WWW.INSTAGRAM.COM/P/ABC/", models.PlatformInstagram},
		{"www.tiktok.com/@user/video/1", models.PlatformTikTok},
		{"https://netflix.com/title/1", models.PlatformUnknown},
		{"https://example.com/video.mp4", models.PlatformUnknown},
		{"https://example.com/?next=instagram.com", models.PlatformUnknown},
		{"not a url", models.PlatformUnknown},
		{"", models.PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPlatform(tt.url))
		})
	}
}

func TestSupportedPlatforms(t *testing.T) {
	got := SupportedPlatforms()
	assert.Equal(t, models.PlatformInstagram, got[0])
	assert.Equal(t, models.PlatformYouTube, got[len(got)-1])
	assert.NotContains(t, got, models.PlatformUnknown)
}
