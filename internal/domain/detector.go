package domain

import (
	"net/url"
	"strings"

	"github.com/Vovarama1992/videodl/internal/models"
)

type platformRule struct {
	platform models.Platform
	contains []string // substrings of the host
	hosts    []string // exact host or any subdomain of it
}

// Order matters: the first matching rule wins.
var platformRules = []platformRule{
	{platform: models.PlatformInstagram, contains: []string{"instagram.com", "instagr.am"}},
	{platform: models.PlatformFacebook, contains: []string{"facebook.com", "fb.com", "fb.watch"}},
	{platform: models.PlatformTikTok, contains: []string{"tiktok.com"}},
	{platform: models.PlatformPinterest, contains: []string{"pinterest.com", "pin.it"}},
	{platform: models.PlatformLinkedIn, contains: []string{"linkedin.com"}},
	{platform: models.PlatformTwitter, contains: []string{"twitter.com"}, hosts: []string{"x.com"}},
	{platform: models.PlatformYouTube, contains: []string{"youtube.com", "youtu.be"}},
}

// DetectPlatform classifies rawURL by its host. Reachability and path shape are
// not checked.
func DetectPlatform(rawURL string) models.Platform {
	host := hostOf(rawURL)

	for _, rule := range platformRules {
		for _, s := range rule.contains {
			if strings.Contains(host, s) {
				return rule.platform
			}
		}
		for _, h := range rule.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return rule.platform
			}
		}
	}
	return models.PlatformUnknown
}

// hostOf returns the lower-cased host of rawURL, or the whole lower-cased
// string when no host can be parsed out of it.
func hostOf(rawURL string) string {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	candidate := s
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return s
	}
	return u.Hostname()
}

// SupportedPlatforms lists every platform the detector can return, in rule order.
func SupportedPlatforms() []models.Platform {
	out := make([]models.Platform, 0, len(platformRules))
	for _, r := range platformRules {
		out = append(out, r.platform)
	}
	return out
}
