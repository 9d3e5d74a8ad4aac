package infra

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/videodl/internal/models"
)

// stubYtdlp writes an executable shell script standing in for yt-dlp.
func stubYtdlp(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

const ytdlpJSON = `{
  "title": "Clip",
  "thumbnail": "https://i.ytimg.com/t.jpg",
  "duration": 42,
  "url": "https://top.example/fallback.mp4",
  "formats": [
    {"url": "https://cdn.example/audio.m4a", "ext": "m4a", "protocol": "https", "vcodec": "none", "acodec": "mp4a"},
    {"url": "https://cdn.example/hls.m3u8", "ext": "mp4", "protocol": "m3u8_native", "vcodec": "avc1", "acodec": "mp4a", "filesize": 1},
    {"url": "https://cdn.example/prog.mp4", "ext": "mp4", "protocol": "https", "vcodec": "avc1", "acodec": "mp4a", "filesize_approx": 2048.7}
  ]
}`

func TestYtdlpStrategyExtract(t *testing.T) {
	bin := stubYtdlp(t, "cat <<'EOF'\n"+ytdlpJSON+"\nEOF")
	s := NewYtdlpStrategy(bin, "", 5*time.Second, 1<<20, nopLogger())
	assert.Equal(t, "yt-dlp", s.Name())

	ext, err := s.Extract(context.Background(), "https://www.youtube.com/shorts/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/prog.mp4", ext.VideoURL)
	assert.Equal(t, int64(2048), ext.FileSize)
	assert.Equal(t, "Clip", ext.Title)
	assert.Equal(t, "https://i.ytimg.com/t.jpg", ext.Thumbnail)
	assert.Equal(t, float64(42), ext.Duration)
}

func TestYtdlpStrategyArgs(t *testing.T) {
	s := NewYtdlpStrategy("", "/tmp/cookies.txt", time.Second, 0, nopLogger())
	assert.Equal(t, []string{
		"-J", "--no-warnings", "--skip-download", "--no-playlist",
		"--cookies", "/tmp/cookies.txt",
		"https://x.com/u/status/1",
	}, s.args("https://x.com/u/status/1"))
	assert.Equal(t, "yt-dlp", s.bin)

	s = NewYtdlpStrategy("yt-dlp", "", time.Second, 0, nopLogger())
	assert.NotContains(t, s.args("u"), "--cookies")
}

func TestYtdlpStrategyFailures(t *testing.T) {
	tests := []struct {
		name      string
		script    string
		timeout   time.Duration
		maxOutput int64
		wantErr   string
	}{
		{
			name:    "non-zero exit reports stderr",
			script:  "echo 'ERROR: Unsupported URL' >&2; exit 1",
			timeout: 5 * time.Second,
			wantErr: "yt-dlp failed: ERROR: Unsupported URL",
		},
		{
			name:    "garbage output",
			script:  "echo 'not json'",
			timeout: 5 * time.Second,
			wantErr: "parse yt-dlp output",
		},
		{
			name:    "timeout",
			script:  "exec sleep 5",
			timeout: 200 * time.Millisecond,
			wantErr: "yt-dlp timed out",
		},
		{
			name:      "output cap",
			script:    "cat <<'EOF'\n" + ytdlpJSON + "\nEOF",
			timeout:   5 * time.Second,
			maxOutput: 16,
			wantErr:   errOutputTooLarge.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin := stubYtdlp(t, tt.script)
			s := NewYtdlpStrategy(bin, "", tt.timeout, tt.maxOutput, nopLogger())

			_, err := s.Extract(context.Background(), "https://example.com/v")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseYtdlpOutput(t *testing.T) {
	t.Run("falls back to any format with both tracks", func(t *testing.T) {
		ext, err := parseYtdlpOutput([]byte(`{"formats":[
			{"url":"https://cdn/v.m3u8","ext":"mp4","protocol":"m3u8_native","vcodec":"avc1","acodec":"mp4a"}
		]}`))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/v.m3u8", ext.VideoURL)
	})

	t.Run("falls back to top-level url", func(t *testing.T) {
		ext, err := parseYtdlpOutput([]byte(`{"url":"https://cdn/direct.mp4","filesize":77,"formats":[
			{"url":"https://cdn/video-only.mp4","ext":"mp4","protocol":"https","vcodec":"avc1","acodec":"none"}
		]}`))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/direct.mp4", ext.VideoURL)
		assert.Equal(t, int64(77), ext.FileSize)
	})

	t.Run("no link at all", func(t *testing.T) {
		_, err := parseYtdlpOutput([]byte(`{"title":"x"}`))
		assert.ErrorIs(t, err, models.ErrNoMedia)
	})
}
