package domain

import (
	"strings"

	"github.com/Vovarama1992/videodl/internal/models"
)

// Gate is the allow/deny rule evaluated before any strategy runs.
type Gate struct {
	BlockYouTube bool
}

// Check returns a BlockedPlatform error when rawURL must not be extracted.
// YouTube Shorts stay allowed while regular YouTube videos are rejected.
func (g Gate) Check(platform models.Platform, rawURL string) error {
	if platform != models.PlatformYouTube || !g.BlockYouTube {
		return nil
	}
	if isYouTubeShort(rawURL) {
		return nil
	}
	return NewError(KindBlockedPlatform, MsgYouTubeBlocked, nil)
}

func isYouTubeShort(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "/shorts/")
}
