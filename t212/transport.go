package t212

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// logTransport logs every round trip with the logger found in the request context.
type logTransport struct {
	base http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	log := zerolog.Ctx(req.Context())
	if err != nil {
		log.Debug().Err(err).Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Msg("http request failed")
		return nil, err
	}
	log.Debug().
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("http request")
	return resp, nil
}

// newHTTPClient returns an http.Client that logs its requests.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &logTransport{base: http.DefaultTransport},
		Timeout:   2 * time.Minute,
	}
}

// Sleep pauses for d, or until ctx is done, in which case it returns the context error.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
