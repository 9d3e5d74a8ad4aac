package models

// Platform is the tag a source URL is classified into.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
	PlatformPinterest Platform = "pinterest"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
	PlatformUnknown   Platform = "unknown"
)

// DisplayName is used in user-facing error messages.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformInstagram:
		return "Instagram"
	case PlatformFacebook:
		return "Facebook"
	case PlatformTikTok:
		return "TikTok"
	case PlatformPinterest:
		return "Pinterest"
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformTwitter:
		return "Twitter"
	case PlatformYouTube:
		return "YouTube"
	default:
		return "Unknown"
	}
}

// Extraction is what a single strategy produced, before normalization.
type Extraction struct {
	VideoURL  string
	Thumbnail string
	Title     string
	Duration  float64 // seconds
	FileSize  int64   // bytes
	Strategy  string
}

// DownloadResult is the JSON body of a successful /api/download call.
type DownloadResult struct {
	Success   bool     `json:"success"`
	Platform  Platform `json:"platform"`
	VideoURL  string   `json:"videoUrl"`
	Thumbnail string   `json:"thumbnail"`
	Title     string   `json:"title,omitempty"`
	Duration  float64  `json:"duration"`
	FileSize  int64    `json:"fileSize"`
}
