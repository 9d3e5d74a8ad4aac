package infra

import (
	"context"
	"errors"
	"math/big"
	"regexp"
	"strings"

	"github.com/Vovarama1992/videodl/internal/models"
)

const shortcodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

var shortcodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:instagram\.com|instagr\.am)/(?:[A-Za-z0-9_.]+/)?p/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`(?:instagram\.com|instagr\.am)/(?:[A-Za-z0-9_.]+/)?reels?/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`(?:instagram\.com|instagr\.am)/(?:[A-Za-z0-9_.]+/)?tv/([A-Za-z0-9_-]+)`),
}

// ShortcodeFromURL returns the post shortcode of an Instagram URL, or "".
func ShortcodeFromURL(postURL string) string {
	for _, re := range shortcodePatterns {
		if m := re.FindStringSubmatch(postURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// MediaIDFromShortcode decodes a shortcode into the numeric media id used by
// the private API. Only the first 11 characters carry the id; longer codes of
// private posts append an owner suffix.
func MediaIDFromShortcode(code string) (string, error) {
	if len(code) > 11 {
		code = code[:11]
	}
	if code == "" {
		return "", errors.New("empty shortcode")
	}

	id := new(big.Int)
	base := big.NewInt(64)
	for _, r := range code {
		idx := strings.IndexRune(shortcodeAlphabet, r)
		if idx < 0 {
			return "", errors.New("invalid shortcode character")
		}
		id.Mul(id, base)
		id.Add(id, big.NewInt(int64(idx)))
	}
	return id.String(), nil
}

type igVariant struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type igItem struct {
	VideoVersions  []igVariant `json:"video_versions"`
	ImageVersions2 struct {
		Candidates []igVariant `json:"candidates"`
	} `json:"image_versions2"`
	CarouselMedia []igItem `json:"carousel_media"`
	VideoDuration float64  `json:"video_duration"`
	Caption       *struct {
		Text string `json:"text"`
	} `json:"caption"`
}

type igMediaInfo struct {
	Items []igItem `json:"items"`
}

// InstagramStrategy reads posts through the authenticated private API.
type InstagramStrategy struct {
	session *InstagramSession
}

func NewInstagramStrategy(session *InstagramSession) *InstagramStrategy {
	return &InstagramStrategy{session: session}
}

func (s *InstagramStrategy) Name() string { return "instagram-api" }

func (s *InstagramStrategy) Extract(ctx context.Context, postURL string) (*models.Extraction, error) {
	if !s.session.Configured() {
		return nil, ErrInstagramNotConfigured
	}

	code := ShortcodeFromURL(postURL)
	if code == "" {
		return nil, errors.New("Invalid Instagram URL")
	}
	mediaID, err := MediaIDFromShortcode(code)
	if err != nil {
		return nil, err
	}

	var info igMediaInfo
	if err := s.session.get(ctx, "/media/"+mediaID+"/info/", &info); err != nil {
		return nil, err
	}
	if len(info.Items) == 0 {
		return nil, models.ErrNoMedia
	}

	return pickInstagramVideo(&info.Items[0])
}

// pickInstagramVideo takes the best variant of a video post, or of the first
// carousel entry that holds a video.
func pickInstagramVideo(item *igItem) (*models.Extraction, error) {
	src := item
	if len(src.VideoVersions) == 0 {
		src = nil
		for i := range item.CarouselMedia {
			if len(item.CarouselMedia[i].VideoVersions) > 0 {
				src = &item.CarouselMedia[i]
				break
			}
		}
	}
	if src == nil || src.VideoVersions[0].URL == "" {
		return nil, models.ErrNoMedia
	}

	ext := &models.Extraction{
		VideoURL: src.VideoVersions[0].URL,
		Duration: src.VideoDuration,
	}
	if ext.Duration == 0 {
		ext.Duration = item.VideoDuration
	}
	if c := src.ImageVersions2.Candidates; len(c) > 0 {
		ext.Thumbnail = c[0].URL
	}
	if item.Caption != nil {
		ext.Title = captionTitle(item.Caption.Text)
	}
	return ext, nil
}

func captionTitle(caption string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(caption), "\n")
	r := []rune(line)
	if len(r) > 100 {
		return string(r[:100])
	}
	return line
}
