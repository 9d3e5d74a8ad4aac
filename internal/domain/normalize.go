package domain

import "github.com/Vovarama1992/videodl/internal/models"

// DefaultThumbnail is used when the source gives no preview image.
const DefaultThumbnail = "https://via.placeholder.com/640x360.png?text=Video"

// Normalize maps a strategy result onto the fixed response shape.
func Normalize(platform models.Platform, ext *models.Extraction, defaultThumbnail string) *models.DownloadResult {
	if defaultThumbnail == "" {
		defaultThumbnail = DefaultThumbnail
	}

	res := &models.DownloadResult{
		Success:   true,
		Platform:  platform,
		VideoURL:  ext.VideoURL,
		Thumbnail: ext.Thumbnail,
		Title:     ext.Title,
		Duration:  ext.Duration,
		FileSize:  ext.FileSize,
	}
	if res.Thumbnail == "" {
		res.Thumbnail = defaultThumbnail
	}
	if res.Duration < 0 {
		res.Duration = 0
	}
	if res.FileSize < 0 {
		res.FileSize = 0
	}
	return res
}
