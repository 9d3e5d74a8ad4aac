package infra

import (
	"context"
	"net/http"

	"github.com/Vovarama1992/videodl/internal/models"
)

// ScrapeStrategy fetches the post page and runs its parsers in order; the
// first parser that matches wins.
type ScrapeStrategy struct {
	name    string
	client  *http.Client
	parsers []PageParser
}

func NewScrapeStrategy(name string, client *http.Client, parsers ...PageParser) *ScrapeStrategy {
	return &ScrapeStrategy{name: name, client: client, parsers: parsers}
}

func NewFacebookScraper(client *http.Client) *ScrapeStrategy {
	return NewScrapeStrategy("facebook-scrape", client, facebookParsers()...)
}

func NewPinterestScraper(client *http.Client) *ScrapeStrategy {
	return NewScrapeStrategy("pinterest-scrape", client, pinterestParsers()...)
}

func NewLinkedInScraper(client *http.Client) *ScrapeStrategy {
	return NewScrapeStrategy("linkedin-scrape", client, linkedinParsers()...)
}

func (s *ScrapeStrategy) Name() string { return s.name }

func (s *ScrapeStrategy) Extract(ctx context.Context, postURL string) (*models.Extraction, error) {
	body, err := fetchPage(ctx, s.client, postURL)
	if err != nil {
		return nil, err
	}

	m, ok := s.parse(body)
	if !ok {
		return nil, models.ErrNoMedia
	}

	og := openGraphMeta(body)
	if m.Thumbnail == "" {
		m.Thumbnail = og.Thumbnail
	}
	if m.Title == "" {
		m.Title = og.Title
	}

	return &models.Extraction{
		VideoURL:  m.VideoURL,
		Thumbnail: m.Thumbnail,
		Title:     m.Title,
	}, nil
}

func (s *ScrapeStrategy) parse(body []byte) (PageMatch, bool) {
	for _, p := range s.parsers {
		if m, ok := p.Parse(body); ok {
			return m, true
		}
	}
	return PageMatch{}, false
}
