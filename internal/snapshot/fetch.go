package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Settings configures remote fetches.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the first delay of the exponential backoff.
	BackoffBase time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option {
	return func(s *Settings) { s.HTTPTimeout = d }
}

func WithMaxRetries(n int) Option {
	return func(s *Settings) { s.MaxRetries = n }
}

func WithBackoffBase(d time.Duration) Option {
	return func(s *Settings) { s.BackoffBase = d }
}

// errPermanent marks a response that retrying cannot fix.
type errPermanent struct{ err error }

func (e errPermanent) Error() string { return e.err.Error() }
func (e errPermanent) Unwrap() error { return e.err }

func fetchWithRetry(ctx context.Context, client *http.Client, rawURL string, settings Settings, log *zap.Logger) ([]byte, error) {
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		data, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return data, nil
		}
		var perm errPermanent
		if errors.As(err, &perm) {
			return nil, perm.err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		log.Warn("fetch failed, retrying",
			zap.String("url", rawURL),
			zap.Int("attempt", i+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

func fetchOnce(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errPermanent{err}
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errPermanent{ctx.Err()}
		}
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode < 300:
		return io.ReadAll(resp.Body)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("transient http error %d", resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errPermanent{fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}
}
