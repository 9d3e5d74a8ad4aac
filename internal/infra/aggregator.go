package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Vovarama1992/videodl/internal/models"
	"github.com/tidwall/gjson"
)

// AggregatorOptions describes one third-party extraction service.
type AggregatorOptions struct {
	Name       string
	Endpoint   string // extraction endpoint, receives the post URL
	LookupURL  string // base of the metadata routes, {LookupURL}/{platform}/{resource}
	APIKey     string
	KeyHeader  string
	RequireKey bool
	Form       bool // post the URL form-encoded instead of as JSON
}

// AggregatorClient posts URLs to an aggregator and reads its normalized
// envelope. It also proxies the aggregator's metadata routes.
type AggregatorClient struct {
	opts   AggregatorOptions
	client *http.Client
}

func NewAggregatorClient(opts AggregatorOptions, client *http.Client) *AggregatorClient {
	if opts.KeyHeader == "" {
		opts.KeyHeader = "X-API-Key"
	}
	return &AggregatorClient{opts: opts, client: client}
}

// NewTikwmClient returns the free TikTok aggregator at base.
func NewTikwmClient(base string, client *http.Client) *AggregatorClient {
	base = strings.TrimRight(base, "/")
	return NewAggregatorClient(AggregatorOptions{
		Name:     "tikwm",
		Endpoint: base + "/api/",
		Form:     true,
	}, client)
}

func (a *AggregatorClient) Name() string { return a.opts.Name }

func (a *AggregatorClient) configured() error {
	if a.opts.Endpoint == "" {
		return fmt.Errorf("%s endpoint not configured", a.opts.Name)
	}
	if a.opts.RequireKey && a.opts.APIKey == "" {
		return fmt.Errorf("%s API key not configured", a.opts.Name)
	}
	return nil
}

func (a *AggregatorClient) Extract(ctx context.Context, postURL string) (*models.Extraction, error) {
	if err := a.configured(); err != nil {
		return nil, err
	}

	var (
		body        io.Reader
		contentType string
	)
	if a.opts.Form {
		body = strings.NewReader(url.Values{"url": {postURL}, "hd": {"1"}}.Encode())
		contentType = "application/x-www-form-urlencoded; charset=UTF-8"
	} else {
		j, err := json.Marshal(map[string]string{"url": postURL})
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(j)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.opts.Endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", browserUserAgent)
	if a.opts.APIKey != "" {
		req.Header.Set(a.opts.KeyHeader, a.opts.APIKey)
	}

	raw, err := a.do(req)
	if err != nil {
		return nil, err
	}
	return parseAggregatorEnvelope(raw, originOf(a.opts.Endpoint))
}

// Lookup forwards a metadata query and returns the aggregator's raw JSON.
func (a *AggregatorClient) Lookup(ctx context.Context, platform, resource string, query url.Values) (json.RawMessage, error) {
	if a.opts.LookupURL == "" {
		return nil, fmt.Errorf("%s lookup endpoint not configured", a.opts.Name)
	}
	if a.opts.RequireKey && a.opts.APIKey == "" {
		return nil, fmt.Errorf("%s API key not configured", a.opts.Name)
	}

	target := strings.TrimRight(a.opts.LookupURL, "/") + "/" +
		url.PathEscape(platform) + "/" + url.PathEscape(resource)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if a.opts.APIKey != "" {
		req.Header.Set(a.opts.KeyHeader, a.opts.APIKey)
	}

	raw, err := a.do(req)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%s returned invalid JSON", a.opts.Name)
	}
	return json.RawMessage(raw), nil
}

func (a *AggregatorClient) do(req *http.Request) ([]byte, error) {
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", a.opts.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s read: %w", a.opts.Name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s http %d: %s", a.opts.Name, resp.StatusCode, trim(string(raw), 180))
	}
	return raw, nil
}

var (
	hdPaths       = []string{"hdplay", "hd", "video_hd", "medias.#(quality==\"hd\").url"}
	sdPaths       = []string{"play", "sd", "video", "url", "medias.#(type==\"video\").url"}
	wmPaths       = []string{"wmplay", "watermark", "video_wm"}
	thumbnailKeys = []string{"cover", "origin_cover", "thumbnail", "thumb"}
)

// parseAggregatorEnvelope reads the common aggregator answer shape: an
// optional code/success status and a data object carrying hd, standard and
// watermarked links. HD wins over standard, standard over watermarked.
func parseAggregatorEnvelope(body []byte, origin string) (*models.Extraction, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid aggregator response")
	}
	root := gjson.ParseBytes(body)

	if code := root.Get("code"); code.Exists() && code.Int() != 0 {
		return nil, errors.New(firstString(root, "aggregator error", "msg", "message"))
	}
	if ok := root.Get("success"); ok.Exists() && ok.Type == gjson.False {
		return nil, errors.New(firstString(root, "aggregator error", "error", "message", "msg"))
	}

	data := root.Get("data")
	if !data.IsObject() {
		data = root
	}

	ext := &models.Extraction{}
	sizeKeys := []string{"size"}
	if v := firstString(data, "", hdPaths...); v != "" {
		ext.VideoURL = v
		sizeKeys = []string{"hd_size", "size"}
	} else if v := firstString(data, "", sdPaths...); v != "" {
		ext.VideoURL = v
	} else if v := firstString(data, "", wmPaths...); v != "" {
		ext.VideoURL = v
		sizeKeys = []string{"wm_size", "size"}
	}
	if ext.VideoURL == "" {
		return nil, models.ErrNoMedia
	}

	ext.VideoURL = absolutize(ext.VideoURL, origin)
	ext.Thumbnail = absolutize(firstString(data, "", thumbnailKeys...), origin)
	ext.Title = data.Get("title").String()
	ext.Duration = data.Get("duration").Float()
	for _, k := range sizeKeys {
		if n := data.Get(k).Int(); n > 0 {
			ext.FileSize = n
			break
		}
	}
	return ext, nil
}

func firstString(r gjson.Result, def string, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return def
}

func originOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func absolutize(link, origin string) string {
	if link == "" || origin == "" || !strings.HasPrefix(link, "/") || strings.HasPrefix(link, "//") {
		return link
	}
	return origin + link
}
