package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/videodl/internal/models"
)

var errOutputTooLarge = errors.New("yt-dlp output exceeds limit")

// YtdlpStrategy shells out to yt-dlp and reads its JSON dump.
type YtdlpStrategy struct {
	bin        string
	cookieFile string
	timeout    time.Duration
	maxOutput  int64
	log        *logger.ZapLogger
}

func NewYtdlpStrategy(bin, cookieFile string, timeout time.Duration, maxOutput int64, log *logger.ZapLogger) *YtdlpStrategy {
	if bin == "" {
		bin = "yt-dlp"
	}
	return &YtdlpStrategy{
		bin:        bin,
		cookieFile: cookieFile,
		timeout:    timeout,
		maxOutput:  maxOutput,
		log:        log,
	}
}

func (s *YtdlpStrategy) Name() string { return "yt-dlp" }

type ytdlpFormat struct {
	URL            string  `json:"url"`
	Ext            string  `json:"ext"`
	Protocol       string  `json:"protocol"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	FileSize       int64   `json:"filesize"`
	FileSizeApprox float64 `json:"filesize_approx"`
}

type ytdlpInfo struct {
	URL            string        `json:"url"`
	Title          string        `json:"title"`
	Thumbnail      string        `json:"thumbnail"`
	Duration       float64       `json:"duration"`
	FileSize       int64         `json:"filesize"`
	FileSizeApprox float64       `json:"filesize_approx"`
	Formats        []ytdlpFormat `json:"formats"`
}

func (s *YtdlpStrategy) args(postURL string) []string {
	args := []string{"-J", "--no-warnings", "--skip-download", "--no-playlist"}
	if s.cookieFile != "" {
		args = append(args, "--cookies", s.cookieFile)
	}
	return append(args, postURL)
}

func (s *YtdlpStrategy) Extract(ctx context.Context, postURL string) (*models.Extraction, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	stdout := &cappedBuffer{limit: s.maxOutput}
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, s.bin, s.args(postURL)...)
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("yt-dlp timed out after %s", s.timeout)
		}
		if stdout.overflow {
			return nil, errOutputTooLarge
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("yt-dlp failed: %s", trim(msg, 300))
	}
	if stdout.overflow {
		return nil, errOutputTooLarge
	}

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "yt-dlp finished",
		Fields: map[string]any{
			"url":   postURL,
			"bytes": stdout.Len(),
			"dur":   time.Since(start).String(),
		},
	})

	return parseYtdlpOutput(stdout.Bytes())
}

func parseYtdlpOutput(out []byte) (*models.Extraction, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(bytes.TrimSpace(out), &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}

	ext := &models.Extraction{
		Title:     info.Title,
		Thumbnail: info.Thumbnail,
		Duration:  info.Duration,
	}

	if f := pickYtdlpFormat(info.Formats); f != nil {
		ext.VideoURL = f.URL
		ext.FileSize = sizeOf(f.FileSize, f.FileSizeApprox)
	} else {
		ext.VideoURL = info.URL
	}
	if ext.FileSize == 0 {
		ext.FileSize = sizeOf(info.FileSize, info.FileSizeApprox)
	}

	if ext.VideoURL == "" {
		return nil, models.ErrNoMedia
	}
	return ext, nil
}

var progressiveExts = map[string]bool{"mp4": true, "mov": true, "webm": true, "m4v": true}

// pickYtdlpFormat prefers a progressive http(s) file with both tracks,
// then anything carrying both tracks.
func pickYtdlpFormat(formats []ytdlpFormat) *ytdlpFormat {
	for i := range formats {
		f := &formats[i]
		if f.URL != "" && hasBothTracks(f) && isHTTPProtocol(f.Protocol) && progressiveExts[f.Ext] {
			return f
		}
	}
	for i := range formats {
		f := &formats[i]
		if f.URL != "" && hasBothTracks(f) {
			return f
		}
	}
	return nil
}

func hasBothTracks(f *ytdlpFormat) bool {
	return f.VCodec != "" && f.VCodec != "none" && f.ACodec != "" && f.ACodec != "none"
}

func isHTTPProtocol(p string) bool {
	return p == "http" || p == "https"
}

func sizeOf(exact int64, approx float64) int64 {
	if exact > 0 {
		return exact
	}
	if approx > 0 {
		return int64(approx)
	}
	return 0
}

// cappedBuffer stops accepting writes after limit bytes; limit <= 0 means
// unbounded. It must not implement io.ReaderFrom or io.Copy would bypass the cap.
type cappedBuffer struct {
	buf      bytes.Buffer
	limit    int64
	overflow bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.limit > 0 && int64(b.buf.Len()+len(p)) > b.limit {
		b.overflow = true
		return 0, errOutputTooLarge
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) Len() int { return b.buf.Len() }

func (b *cappedBuffer) Bytes() []byte { return b.buf.Bytes() }
