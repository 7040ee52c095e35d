package pipeline

import (
	"context"

	"github.com/couchcryptid/disaster-event-etl/internal/domain"
)

// Discard reasons for the events_discarded metric.
const (
	reasonBlankTitle       = "blank_title"
	reasonDuplicateContent = "duplicate_content"
	reasonOverLimit        = "over_limit"
)

// ingestResult summarizes one ingestion pass.
type ingestResult struct {
	// candidates are the records handed to the merge: genuinely new events
	// plus re-crawls of known identifiers, whose freshest capture must win.
	candidates []domain.Event
	accepted   int
	updated    int
	discarded  int
	// earlyTermination is set when the consecutive-duplicate streak limit
	// fired before the feed was exhausted.
	earlyTermination bool
}

// ingest sanitizes every scraped candidate in encounter order and decides
// its fate. A candidate whose identifier or content is already known counts
// toward the duplicate streak; enough consecutive duplicates mean the feeds
// are only re-serving history and the rest of the batch is not worth
// processing. Identifier re-crawls still flow into the merge so the
// freshest capture replaces the stored record.
func (r *Runner) ingest(ctx context.Context, raws []domain.RawEvent, current, past []domain.Event) ingestResult {
	knownIDs := make(map[string]struct{}, len(current)+len(past))
	seenKeys := make(map[string]struct{}, len(current))
	for _, e := range current {
		knownIDs[e.ID] = struct{}{}
		if key := domain.ContentKey(e); key != "" {
			seenKeys[key] = struct{}{}
		}
	}
	for _, e := range past {
		knownIDs[e.ID] = struct{}{}
	}

	var result ingestResult
	processed := 0
	streak := 0

	for i, raw := range raws {
		if processed >= r.opts.MaxEventsPerRun {
			remaining := len(raws) - i
			r.logger.Warn("per-run event limit reached, dropping remainder",
				"limit", r.opts.MaxEventsPerRun, "dropped", remaining)
			r.metrics.EventsDiscarded.WithLabelValues(reasonOverLimit).Add(float64(remaining))
			result.discarded += remaining
			break
		}

		event, err := domain.BuildEvent(raw, r.logger)
		if err != nil {
			// Blank titles are the only rejection; everything else is
			// coerced to a safe default inside BuildEvent.
			r.metrics.EventsDiscarded.WithLabelValues(reasonBlankTitle).Inc()
			result.discarded++
			continue
		}
		processed++

		event = domain.EnrichWithGeocoding(ctx, event, r.geocoder, r.logger)

		key := domain.ContentKey(event)
		_, idKnown := knownIDs[event.ID]
		_, contentKnown := seenKeys[key]

		switch {
		case idKnown:
			// Re-crawl of a stored event: merge it so the latest capture
			// wins, but it still counts toward the duplicate streak.
			result.candidates = append(result.candidates, event)
			result.updated++
			streak++
		case contentKnown:
			// Same incident under a different identifier. First seen wins.
			r.metrics.EventsDiscarded.WithLabelValues(reasonDuplicateContent).Inc()
			result.discarded++
			streak++
		default:
			result.candidates = append(result.candidates, event)
			result.accepted++
			knownIDs[event.ID] = struct{}{}
			seenKeys[key] = struct{}{}
			streak = 0
		}

		if streak >= r.opts.DuplicateStreakLimit {
			r.logger.Info("duplicate streak limit reached, ending ingestion early",
				"streak", streak, "processed", processed)
			r.metrics.EarlyTerminations.Inc()
			result.earlyTermination = true
			break
		}
	}
	return result
}
