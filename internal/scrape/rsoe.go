package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/couchcryptid/disaster-event-etl/internal/domain"
)

// RSOE list fetch limits. The feed publishes far more pages than the
// pipeline needs per run; three pages of recent events is plenty and keeps
// the run inside its schedule slot.
const (
	rsoeDefaultMaxPages = 3
	rsoePageSize        = 50
)

// RSOESource pulls the paginated RSOE EDIS event list.
type RSOESource struct {
	client   *Client
	baseURL  string
	maxPages int
	logger   *slog.Logger
}

// NewRSOESource creates the RSOE feed client. maxPages <= 0 selects the
// default page cap.
func NewRSOESource(client *Client, baseURL string, maxPages int, logger *slog.Logger) *RSOESource {
	if maxPages <= 0 {
		maxPages = rsoeDefaultMaxPages
	}
	return &RSOESource{
		client:   client,
		baseURL:  baseURL,
		maxPages: maxPages,
		logger:   logger,
	}
}

// Name identifies the source in logs, metrics, and error reports.
func (s *RSOESource) Name() string { return "rsoe" }

// rsoeListResponse mirrors one page of the RSOE event list endpoint.
type rsoeListResponse struct {
	Events  []rsoeEvent `json:"events"`
	HasMore bool        `json:"has_more"`
}

// rsoeEvent mirrors a single list entry. Everything is a string on the
// wire, including coordinates, which frequently carry degree decorations.
type rsoeEvent struct {
	EventID       string `json:"event_id"`
	Title         string `json:"event_title"`
	Category      string `json:"event_category"`
	EventDateUTC  string `json:"event_date_utc"`
	LastUpdateUTC string `json:"last_update_utc"`
	Latitude      string `json:"latitude"`
	Longitude     string `json:"longitude"`
	Address       string `json:"address"`
	AreaRange     string `json:"area_range"`
	EventURL      string `json:"event_url"`
}

// Fetch walks the event list page by page, up to the page cap, pausing
// between pages. A page that arrives empty ends the walk early.
func (s *RSOESource) Fetch(ctx context.Context) ([]domain.RawEvent, error) {
	capturedAt := s.client.Now().UTC()

	var raws []domain.RawEvent
	for page := 1; page <= s.maxPages; page++ {
		if page > 1 {
			if err := s.client.Pause(ctx); err != nil {
				return raws, err
			}
		}

		var resp rsoeListResponse
		if err := s.client.GetJSON(ctx, s.pageURL(page), &resp); err != nil {
			// Partial results from earlier pages are still worth keeping.
			if len(raws) > 0 {
				s.logger.Warn("rsoe page fetch failed, keeping earlier pages",
					"page", page, "collected", len(raws), "error", err)
				return raws, nil
			}
			return nil, fmt.Errorf("rsoe event list: %w", err)
		}

		s.logger.Debug("rsoe page fetched", "page", page, "events", len(resp.Events))
		for _, e := range resp.Events {
			raws = append(raws, domain.RawEvent{
				ID:            e.EventID,
				Title:         e.Title,
				Category:      e.Category,
				DateUTC:       e.EventDateUTC,
				LastUpdateUTC: e.LastUpdateUTC,
				Latitude:      e.Latitude,
				Longitude:     e.Longitude,
				Address:       e.Address,
				AreaRange:     e.AreaRange,
				SourceURL:     e.EventURL,
				DataSource:    "rsoe",
				CapturedAt:    capturedAt,
			})
		}

		if len(resp.Events) == 0 || !resp.HasMore {
			break
		}
	}
	return raws, nil
}

func (s *RSOESource) pageURL(page int) string {
	params := url.Values{
		"page":  {fmt.Sprint(page)},
		"limit": {fmt.Sprint(rsoePageSize)},
	}
	return s.baseURL + "?" + params.Encode()
}
