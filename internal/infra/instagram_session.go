package infra

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"golang.org/x/sync/singleflight"
)

const (
	igAppID     = "567067343352427"
	igUserAgent = "Instagram 275.0.0.27.98 Android (33/13; 420dpi; 1080x2400; samsung; SM-G991B; o1s; exynos2100; en_US; 458229237)"

	// a failed login is not retried before this much time has passed
	igLoginBackoff = time.Minute
)

var (
	ErrInstagramNotConfigured = errors.New("instagram credentials not configured")
	errLoginRequired          = errors.New("instagram session expired")
)

// InstagramSession is the process-wide authenticated Instagram client. It logs
// in lazily on first use, collapses concurrent logins into one, and logs in
// again once when the API reports the session as expired.
type InstagramSession struct {
	username string
	password string
	apiBase  string
	client   *http.Client
	log      *logger.ZapLogger

	group singleflight.Group

	mu          sync.Mutex
	loggedIn    bool
	authHeader  string
	lastErr     error
	lastAttempt time.Time
}

func NewInstagramSession(username, password, apiBase string, timeout time.Duration, log *logger.ZapLogger) *InstagramSession {
	jar, _ := cookiejar.New(nil)
	client := NewHTTPClient(timeout)
	client.Jar = jar

	return &InstagramSession{
		username: username,
		password: password,
		apiBase:  strings.TrimRight(apiBase, "/"),
		client:   client,
		log:      log,
	}
}

// Configured reports whether credentials were supplied.
func (s *InstagramSession) Configured() bool {
	return s != nil && s.username != "" && s.password != ""
}

// Ready reports whether the session is currently logged in.
func (s *InstagramSession) Ready() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// Invalidate drops the current login so the next call authenticates again.
func (s *InstagramSession) Invalidate() {
	s.mu.Lock()
	s.loggedIn = false
	s.authHeader = ""
	s.lastErr = nil
	s.mu.Unlock()
}

// Start logs in eagerly. A failure is logged and left for the lazy path to retry.
func (s *InstagramSession) Start(ctx context.Context) {
	if !s.Configured() {
		s.log.Log(logger.LogEntry{Level: "warn", Message: "instagram credentials not configured"})
		return
	}
	if err := s.ensure(ctx); err != nil {
		return
	}
	s.log.Log(logger.LogEntry{Level: "info", Message: "instagram session started"})
}

func (s *InstagramSession) ensure(ctx context.Context) error {
	if !s.Configured() {
		return ErrInstagramNotConfigured
	}

	s.mu.Lock()
	if s.loggedIn {
		s.mu.Unlock()
		return nil
	}
	if s.lastErr != nil && time.Since(s.lastAttempt) < igLoginBackoff {
		err := s.lastErr
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	_, err, _ := s.group.Do("login", func() (any, error) {
		return nil, s.login(context.WithoutCancel(ctx))
	})
	return err
}

type igLoginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	User    *struct {
		PK       json.Number `json:"pk"`
		Username string      `json:"username"`
	} `json:"logged_in_user"`
}

func (s *InstagramSession) login(ctx context.Context) error {
	form := url.Values{
		"username":            {s.username},
		"enc_password":        {fmt.Sprintf("#PWD_INSTAGRAM:0:%d:%s", time.Now().Unix(), s.password)},
		"device_id":           {deviceID(s.username)},
		"login_attempt_count": {"0"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+"/accounts/login/", strings.NewReader(form.Encode()))
	if err != nil {
		return s.loginFailed(err)
	}
	s.setHeaders(req, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return s.loginFailed(fmt.Errorf("instagram login request: %w", err))
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	var out igLoginResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK || out.Status != "ok" || out.User == nil {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("http %d", resp.StatusCode)
		}
		return s.loginFailed(fmt.Errorf("instagram login failed: %s", msg))
	}

	s.mu.Lock()
	s.loggedIn = true
	s.authHeader = resp.Header.Get("Ig-Set-Authorization")
	s.lastErr = nil
	s.lastAttempt = time.Now()
	s.mu.Unlock()

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "instagram login ok",
		Fields:  map[string]any{"user": out.User.Username},
	})
	return nil
}

func (s *InstagramSession) loginFailed(err error) error {
	s.mu.Lock()
	s.loggedIn = false
	s.lastErr = err
	s.lastAttempt = time.Now()
	s.mu.Unlock()

	s.log.Log(logger.LogEntry{Level: "error", Message: "instagram login failed", Error: err})
	return err
}

func (s *InstagramSession) setHeaders(req *http.Request, auth string) {
	req.Header.Set("User-Agent", igUserAgent)
	req.Header.Set("X-IG-App-ID", igAppID)
	req.Header.Set("Accept", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
}

// get performs an authenticated GET against the private API and decodes the
// JSON answer into dest. An expired session is re-established once.
func (s *InstagramSession) get(ctx context.Context, path string, dest any) error {
	err := s.getOnce(ctx, path, dest)
	if !errors.Is(err, errLoginRequired) {
		return err
	}

	s.log.Log(logger.LogEntry{Level: "warn", Message: "instagram session expired, logging in again"})
	s.Invalidate()
	return s.getOnce(ctx, path, dest)
}

func (s *InstagramSession) getOnce(ctx context.Context, path string, dest any) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	auth := s.authHeader
	s.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+path, nil)
	if err != nil {
		return err
	}
	s.setHeaders(req, auth)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("instagram request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("instagram read: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden ||
		strings.Contains(string(raw), `"login_required"`) {
		return errLoginRequired
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("instagram post not found")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("instagram http %d: %s", resp.StatusCode, trim(string(raw), 180))
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("instagram decode: %w", err)
	}
	return nil
}

func deviceID(seed string) string {
	sum := md5.Sum([]byte(seed))
	return "android-" + hex.EncodeToString(sum[:])[:16]
}
