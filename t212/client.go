// Package t212 is a client of the Trading 212 public API, limited to what the
// synchronization needs: history exports and account information.
package t212

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
)

const (
	// LiveURL is the base URL of the API for real money accounts.
	LiveURL = "https://live.trading212.com/api/v0"
	// DemoURL is the base URL of the API for practice accounts.
	DemoURL = "https://demo.trading212.com/api/v0"
)

// Cooldowns applied before the single retry of a rate-limited call. They match the
// broker's published limits for each endpoint.
const (
	SubmitCooldown = 30 * time.Second
	ListCooldown   = 60 * time.Second
)

// Client calls the broker API with a fixed token.
type Client struct {
	baseURL  string
	token    string
	api      *http.Client
	download *http.Client
	sleep    func(context.Context, time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL, LiveURL by default.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient sets the http.Client used for all requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.api, c.download = hc, hc }
}

// WithSleep replaces the function used to wait for a rate-limit cooldown.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// New returns a client authenticated with token.
func New(token string, opts ...Option) *Client {
	hc := newHTTPClient()
	c := &Client{
		baseURL:  LiveURL,
		token:    token,
		api:      hc,
		download: hc,
		sleep:    Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitExport asks the broker to generate a CSV report. The returned job has a
// report id but no download link yet.
func (c *Client) SubmitExport(ctx context.Context, r ExportRequest) (ExportJob, error) {
	payload, err := json.Marshal(struct {
		TimeFrom     time.Time `json:"timeFrom"`
		TimeTo       time.Time `json:"timeTo"`
		DataIncluded Include   `json:"dataIncluded"`
	}{
		TimeFrom:     r.From.UTC().Truncate(time.Second),
		TimeTo:       r.To.UTC().Truncate(time.Second),
		DataIncluded: r.Include,
	})
	if err != nil {
		return ExportJob{}, fmt.Errorf("cannot encode export request: %w", err)
	}

	var job ExportJob
	err = c.call(ctx, "submit export", SubmitCooldown, func() (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodPost, "/history/exports", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &job)
	if err != nil {
		return ExportJob{}, err
	}
	if job.TimeFrom.IsZero() {
		job.TimeFrom, job.TimeTo = r.From, r.To
	}
	return job, nil
}

// ListExports returns all the export jobs known by the broker.
func (c *Client) ListExports(ctx context.Context) ([]ExportJob, error) {
	var jobs []ExportJob
	err := c.call(ctx, "list exports", ListCooldown, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, "/history/exports", nil)
	}, &jobs)
	return jobs, err
}

// Download opens the CSV body behind a job download link. The caller must close it.
//
// The link is a presigned URL outside of the API, it is fetched without the token.
func (c *Client) Download(ctx context.Context, link string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create http request %q: %w", link, err)
	}
	resp, err := c.download.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download export: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		return nil, statusError("download export", resp)
	}
	return resp.Body, nil
}

// Account is the subset of the account information used to validate a token.
type Account struct {
	ID       int64
	Currency string
}

// AccountInfo returns the account information, it fails with t212sync.ErrAuth when the
// token is rejected.
func (c *Client) AccountInfo(ctx context.Context) (Account, error) {
	var jobj any
	err := c.call(ctx, "account info", 0, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, "/equity/account/info", nil)
	}, &jobj)
	if err != nil {
		return Account{}, err
	}

	var acc Account
	jval, err := jsonpath.Get("$.id", jobj)
	if err != nil {
		return Account{}, fmt.Errorf("error parsing account info: %q %w", "$.id", err)
	}
	id, ok := jval.(float64)
	if !ok {
		return Account{}, fmt.Errorf("error parsing account info: %q is not a number: %v", "$.id", jval)
	}
	acc.ID = int64(id)

	// the currency is informative, an account info without it is still a valid token.
	if jval, err := jsonpath.Get("$.currencyCode", jobj); err == nil {
		acc.Currency, _ = jval.(string)
	}
	return acc, nil
}

// newRequest creates an authenticated request on the API.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	addr := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, addr, body)
	if err != nil {
		return nil, fmt.Errorf("cannot create http request %q: %w", addr, err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// call executes the request built by newReq and decodes the JSON response into out.
//
// When cooldown is positive, a 429 answer is retried exactly once after waiting for
// cooldown. A second 429 is returned as an error.
func (c *Client) call(ctx context.Context, op string, cooldown time.Duration, newReq func() (*http.Request, error), out any) error {
	for attempt := 0; ; attempt++ {
		req, err := newReq()
		if err != nil {
			return err
		}
		resp, err := c.api.Do(req)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt == 0 && cooldown > 0 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			zerolog.Ctx(ctx).Warn().Str("op", op).Dur("cooldown", cooldown).Msg("rate limit exceeded, retrying once")
			if err := c.sleep(ctx, cooldown); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			continue
		}
		return decode(op, resp, out)
	}
}

// decode closes the response and unmarshals its body into out, or returns a
// *StatusError for non-2xx responses.
func decode(op string, resp *http.Response, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return statusError(op, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: cannot decode response: %w", op, err)
	}
	return nil
}

// statusError builds a *StatusError with an excerpt of the response body.
func statusError(op string, resp *http.Response) error {
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(excerpt)),
	}
}
