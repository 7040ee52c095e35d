// Package scrape implements the feed clients that pull disaster records
// from the public sources: the RSOE EDIS event list, the ReliefWeb
// disasters API, and the EMSC FDSN event service. Each client speaks the
// feed's own format and emits untouched RawEvents; all sanitization happens
// downstream in the domain layer.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

// userAgent identifies the crawler to the feed operators. Some feeds
// (Nominatim in particular) reject anonymous clients.
const userAgent = "disaster-event-etl/1.0 (+https://github.com/couchcryptid/disaster-event-etl)"

// Client wraps an http.Client with the fetch policy shared by every feed:
// bounded retries with exponential backoff, and a politeness pause between
// consecutive requests to the same feed.
type Client struct {
	httpClient *http.Client
	retries    int
	delay      time.Duration
	logger     *slog.Logger
	clock      clockwork.Clock
}

// NewClient creates a feed client. retries is the total number of attempts
// per request (minimum 1); delay is the inter-request politeness pause.
func NewClient(timeout time.Duration, retries int, delay time.Duration, logger *slog.Logger) *Client {
	if retries < 1 {
		retries = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		retries:    retries,
		delay:      delay,
		logger:     logger,
		clock:      clockwork.NewRealClock(),
	}
}

// SetClock swaps the time source. Tests inject a fake so backoff and the
// politeness pause do not slow the suite down.
func (c *Client) SetClock(clk clockwork.Clock) {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	c.clock = clk
}

// Now returns the current time from the client's clock. Feed clients use it
// to compute query windows ("last 7 days") deterministically in tests.
func (c *Client) Now() time.Time {
	return c.clock.Now()
}

// GetJSON fetches url and decodes the response body into out. Failed
// attempts back off 2^n seconds before the next try; a non-2xx status
// counts as a failure. The last error is returned when all attempts are
// spent.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 2 * time.Second
			c.logger.Warn("retrying feed request",
				"url", url,
				"attempt", attempt+1,
				"backoff", backoff,
				"error", lastErr,
			)
			if err := c.sleep(ctx, backoff); err != nil {
				return err
			}
		}

		lastErr = c.getJSONOnce(ctx, url, out)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("fetch %s after %d attempts: %w", url, c.retries, lastErr)
}

func (c *Client) getJSONOnce(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Pause waits the configured inter-request delay, honoring context
// cancellation. Feed clients call it between paginated requests.
func (c *Client) Pause(ctx context.Context) error {
	return c.sleep(ctx, c.delay)
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(d):
		return nil
	}
}
