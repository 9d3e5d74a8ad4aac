package infra

import (
	"bytes"
	"encoding/json"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageMatch is what a parser found in a page. A parser that finds nothing
// reports ok=false instead of an error: markup drift is expected.
type PageMatch struct {
	VideoURL  string
	Thumbnail string
	Title     string
}

type PageParser interface {
	Name() string
	Parse(body []byte) (PageMatch, bool)
}

// regexParser captures the video URL from group 1 of its pattern.
type regexParser struct {
	name string
	re   *regexp.Regexp
}

func newRegexParser(name, pattern string) *regexParser {
	return &regexParser{name: name, re: regexp.MustCompile(pattern)}
}

func (p *regexParser) Name() string { return p.name }

func (p *regexParser) Parse(body []byte) (PageMatch, bool) {
	m := p.re.FindSubmatch(body)
	if m == nil || len(m[1]) == 0 {
		return PageMatch{}, false
	}
	return PageMatch{VideoURL: unescapeMediaURL(string(m[1]))}, true
}

var jsonEscapes = strings.NewReplacer(
	`\u0025`, "%",
	`\u0026`, "&",
	`\u003d`, "=",
	`\u003c`, "<",
	`\u003e`, ">",
	`\/`, "/",
)

// unescapeMediaURL undoes the JSON-in-HTML escaping around scraped links.
func unescapeMediaURL(s string) string {
	s = jsonEscapes.Replace(s)
	s = strings.ReplaceAll(s, `\`, "")
	return html.UnescapeString(s)
}

// openGraphParser reads og:video and friends.
type openGraphParser struct{}

func (openGraphParser) Name() string { return "opengraph" }

func (openGraphParser) Parse(body []byte) (PageMatch, bool) {
	m := openGraphMeta(body)
	return m, m.VideoURL != ""
}

func openGraphMeta(body []byte) PageMatch {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageMatch{}
	}

	meta := func(keys ...string) string {
		for _, k := range keys {
			sel := doc.Find(`meta[property="` + k + `"], meta[name="` + k + `"]`).First()
			if v := strings.TrimSpace(sel.AttrOr("content", "")); v != "" {
				return v
			}
		}
		return ""
	}

	return PageMatch{
		VideoURL:  meta("og:video:secure_url", "og:video:url", "og:video", "twitter:player:stream"),
		Thumbnail: meta("og:image", "og:image:url", "twitter:image"),
		Title:     meta("og:title", "twitter:title"),
	}
}

// videoSourcesParser reads a <video data-sources="[{src,type}]"> element,
// the shape LinkedIn uses for public posts.
type videoSourcesParser struct{}

func (videoSourcesParser) Name() string { return "video-data-sources" }

func (videoSourcesParser) Parse(body []byte) (PageMatch, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageMatch{}, false
	}

	video := doc.Find("video[data-sources]").First()
	raw, ok := video.Attr("data-sources")
	if !ok {
		return PageMatch{}, false
	}

	var sources []struct {
		Src  string `json:"src"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(raw), &sources); err != nil {
		return PageMatch{}, false
	}

	for _, s := range sources {
		if s.Src != "" {
			return PageMatch{
				VideoURL:  s.Src,
				Thumbnail: video.AttrOr("data-poster-url", ""),
			}, true
		}
	}
	return PageMatch{}, false
}

func facebookParsers() []PageParser {
	return []PageParser{
		newRegexParser("fb-playable-hd", `"playable_url_quality_hd":"([^"]+)"`),
		newRegexParser("fb-native-hd", `"browser_native_hd_url":"([^"]+)"`),
		newRegexParser("fb-hd-src", `hd_src:"([^"]+)"`),
		newRegexParser("fb-playable", `"playable_url":"([^"]+)"`),
		newRegexParser("fb-native-sd", `"browser_native_sd_url":"([^"]+)"`),
		newRegexParser("fb-sd-src", `sd_src:"([^"]+)"`),
		openGraphParser{},
	}
}

func pinterestParsers() []PageParser {
	return []PageParser{
		newRegexParser("pin-720p", `"video_list":\{[^}]*"V_720P":\{"url":"([^"]+)"`),
		newRegexParser("pin-720p-any", `"V_720P":\{"url":"([^"]+)"`),
		newRegexParser("pin-exp7", `"V_EXP7":\{"url":"([^"]+)"`),
		newRegexParser("pin-hls", `"V_HLSV4":\{"url":"([^"]+)"`),
		newRegexParser("pin-mp4", `(https:(?:\\?/){2}v1?\.pinimg\.com(?:\\?/)videos[^"\s]+?\.mp4)`),
		openGraphParser{},
	}
}

func linkedinParsers() []PageParser {
	return []PageParser{
		videoSourcesParser{},
		newRegexParser("li-progressive", `"progressiveUrl":"([^"]+)"`),
		newRegexParser("li-progressive-encoded", `&quot;progressiveUrl&quot;:&quot;(.+?)&quot;`),
		openGraphParser{},
	}
}
