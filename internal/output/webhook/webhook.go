package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crimson-sun/vecforest/internal/model"
	"github.com/crimson-sun/vecforest/internal/output"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRetries = 3
	defaultBackoff = time.Second
)

// Option configures a webhook Output.
type Option func(*Output)

// WithHeaders sets custom HTTP headers sent with every POST, e.g. an
// experiment tracker's API token.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) { o.headers = h }
}

// WithTimeout sets the per-request HTTP timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.client.Timeout = d }
}

// WithRetries sets how many times a 5xx response is retried. Default: 3.
func WithRetries(n int) Option {
	return func(o *Output) { o.retries = n }
}

// WithBackoff sets the first retry delay; it doubles on every attempt.
// Default: 1s.
func WithBackoff(d time.Duration) Option {
	return func(o *Output) { o.backoff = d }
}

// WithVerbosity strips result fields before posting. Default: Standard.
func WithVerbosity(v output.Verbosity) Option {
	return func(o *Output) { o.verbosity = v }
}

// Output POSTs each experiment result as a JSON object to an HTTP endpoint.
// Server errors (5xx) are retried with exponential backoff; client errors
// fail immediately.
type Output struct {
	client    *http.Client
	url       string
	headers   map[string]string
	retries   int
	backoff   time.Duration
	verbosity output.Verbosity
}

// New creates a webhook output targeting url.
func New(url string, opts ...Option) *Output {
	o := &Output{
		client:    &http.Client{Timeout: defaultTimeout},
		url:       url,
		retries:   defaultRetries,
		backoff:   defaultBackoff,
		verbosity: output.Standard,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Write posts result and returns once the endpoint accepted it or retries
// are exhausted.
func (o *Output) Write(ctx context.Context, result model.ExperimentResult) error {
	body, err := json.Marshal(output.FormatResult(result, o.verbosity))
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	var lastErr error
	delay := o.backoff
	for attempt := 0; attempt <= o.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("webhook: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		status, err := o.post(ctx, body)
		if err != nil {
			return err
		}
		if status >= 200 && status < 300 {
			return nil
		}
		lastErr = fmt.Errorf("webhook: HTTP %d", status)
		if status < 500 {
			return lastErr
		}
	}
	return lastErr
}

func (o *Output) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// Close is a no-op; every Write completes its own request.
func (o *Output) Close() error {
	return nil
}
