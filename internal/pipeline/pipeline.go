// Package pipeline orchestrates the scrape-transform-persist cycle: pull
// raw records from every feed, sanitize and deduplicate them, merge them
// into the stored dataset, partition by age, and recompute statistics and
// risk alerts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/disaster-event-etl/internal/domain"
	"github.com/couchcryptid/disaster-event-etl/internal/observability"
)

// Source pulls raw disaster records from one feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawEvent, error)
}

// Store persists the event dataset and its derived artifacts.
type Store interface {
	Load() (current, past []domain.Event, err error)
	Save(current, past []domain.Event) error
	SaveStats(stats domain.Stats) error
	WriteLastUpdated(t time.Time) error
	Backup(now time.Time, keep int) error
}

// AlertPublisher forwards a risk report to an external channel.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, report domain.RiskReport) error
}

// Options tunes one runner. The zero value is not usable; use
// DefaultOptions as the base.
type Options struct {
	// MaxEventsPerRun caps how many scraped candidates one run processes.
	MaxEventsPerRun int
	// DuplicateStreakLimit ends ingestion early after this many consecutive
	// already-known candidates.
	DuplicateStreakLimit int
	// CurrentWindow is the age bound separating current events from the
	// archive.
	CurrentWindow time.Duration
	// StatsRadius is the clustering radius (degrees) for the affected-area
	// count.
	StatsRadius float64
	// RiskRadius is the tighter clustering radius (degrees) for risk
	// detection.
	RiskRadius float64
	// BackupKeep is how many backup snapshots to retain per segment.
	BackupKeep int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		MaxEventsPerRun:      500,
		DuplicateStreakLimit: 20,
		CurrentWindow:        30 * 24 * time.Hour,
		StatsRadius:          1.0,
		RiskRadius:           0.5,
		BackupKeep:           5,
	}
}

// Runner executes pipeline runs over a fixed set of feeds.
type Runner struct {
	sources   []Source
	store     Store
	publisher AlertPublisher  // nil when alerting is disabled
	geocoder  domain.Geocoder // nil when geocoding is disabled
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	ready     atomic.Bool
}

// New creates a Runner. publisher and geocoder may be nil; both features
// degrade to no-ops.
func New(sources []Source, store Store, publisher AlertPublisher, geocoder domain.Geocoder,
	opts Options, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		sources:   sources,
		store:     store,
		publisher: publisher,
		geocoder:  geocoder,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
	}
}

// SetClock swaps the time source. Tests inject a fake for deterministic
// windows and schedules.
func (r *Runner) SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	r.clock = c
}

// CheckReadiness returns nil once at least one run has completed, or an
// error describing why the service is not yet ready.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// RunLoop executes a run immediately and then on every interval tick until
// the context is cancelled. Individual run failures are logged and counted;
// they never stop the loop.
func (r *Runner) RunLoop(ctx context.Context, interval time.Duration) error {
	r.logger.Info("pipeline loop started", "interval", interval, "sources", len(r.sources))
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	if err := r.Run(ctx); err != nil {
		r.logger.Error("pipeline run failed", "error", err)
	}

	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("pipeline loop stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if err := r.Run(ctx); err != nil {
				r.logger.Error("pipeline run failed", "error", err)
			}
		}
	}
}

// Run executes one complete scrape-transform-persist cycle.
func (r *Runner) Run(ctx context.Context) error {
	start := r.clock.Now()
	err := r.run(ctx, start)
	r.metrics.RunDuration.Observe(r.clock.Now().Sub(start).Seconds())

	if err != nil {
		r.metrics.RunsTotal.WithLabelValues("error").Inc()
		return err
	}
	r.metrics.RunsTotal.WithLabelValues("success").Inc()
	r.ready.Store(true)
	return nil
}

func (r *Runner) run(ctx context.Context, now time.Time) error {
	current, past, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	r.logger.Info("run started", "current", len(current), "past", len(past))

	raws := r.fetchAll(ctx)
	result := r.ingest(ctx, raws, current, past)
	r.logger.Info("ingestion finished",
		"scraped", len(raws),
		"accepted", result.accepted,
		"updated", result.updated,
		"discarded", result.discarded,
		"early_termination", result.earlyTermination,
	)

	// Everything from here is persistence; a failure leaves the previous
	// dataset intact on disk.
	merged := domain.Deduplicate(append(append([]domain.Event{}, current...), result.candidates...))
	r.metrics.EventsMerged.Add(float64(result.accepted))

	newCurrent, newPast := partitionByAge(merged, past, now.Add(-r.opts.CurrentWindow))

	if err := r.store.Backup(now, r.opts.BackupKeep); err != nil {
		return fmt.Errorf("backup dataset: %w", err)
	}
	if err := r.store.Save(newCurrent, newPast); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	r.metrics.StoreEvents.WithLabelValues("current").Set(float64(len(newCurrent)))
	r.metrics.StoreEvents.WithLabelValues("past").Set(float64(len(newPast)))

	stats, report := r.analyze(newCurrent, newPast, now)
	if err := r.store.SaveStats(stats); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	if err := r.store.WriteLastUpdated(now); err != nil {
		return fmt.Errorf("write last-updated marker: %w", err)
	}

	if r.publisher != nil && report.HasAlerts() {
		if err := r.publisher.PublishAlerts(ctx, report); err != nil {
			// Alerting is best-effort; the dataset is already persisted.
			r.logger.Error("publish risk alerts failed", "error", err)
		}
	}

	r.logger.Info("run finished",
		"current", len(newCurrent),
		"past", len(newPast),
		"affected_areas", stats.AffectedAreas,
		"risk_alerts", report.HasAlerts(),
	)
	return nil
}

// fetchAll pulls every feed, isolating failures: one broken feed never
// blocks the others.
func (r *Runner) fetchAll(ctx context.Context) []domain.RawEvent {
	var raws []domain.RawEvent
	for _, src := range r.sources {
		batch, err := src.Fetch(ctx)
		if err != nil {
			r.logger.Error("feed fetch failed", "source", src.Name(), "error", err)
			r.metrics.ScrapeErrors.WithLabelValues(src.Name()).Inc()
			continue
		}
		r.metrics.EventsScraped.WithLabelValues(src.Name()).Add(float64(len(batch)))
		r.logger.Info("feed fetched", "source", src.Name(), "events", len(batch))
		raws = append(raws, batch...)
	}
	return raws
}

// analyze recomputes the derived artifacts: the descriptive affected-area
// clustering over the current window and the tighter risk pass.
func (r *Runner) analyze(current, past []domain.Event, now time.Time) (domain.Stats, domain.RiskReport) {
	areas := domain.ClusterByRadius(current, r.opts.StatsRadius)
	riskClusters := domain.ClusterByRadius(current, r.opts.RiskRadius)
	report := domain.DetectRisk(riskClusters, now)

	r.metrics.AffectedAreas.Set(float64(len(areas)))
	riskCount := 0
	if report.Primary != nil {
		riskCount = 1 + len(report.Secondary)
	}
	r.metrics.RiskClusters.Set(float64(riskCount))

	return domain.Stats{
		GeneratedAt:    now,
		CurrentEvents:  len(current),
		PastEvents:     len(past),
		AffectedAreas:  len(areas),
		CategoryCounts: domain.CountByCategory(current),
		Risk:           report,
	}, report
}

// partitionByAge splits the merged set at the cutoff: events dated at or
// after it stay current, the rest move into the archive. Archived records
// replace same-identifier entries already in the archive, and any archive
// entry whose identifier reappears in the merged set is dropped so an
// identifier never exists in both segments at once.
func partitionByAge(merged, past []domain.Event, cutoff time.Time) (current, newPast []domain.Event) {
	var expired []domain.Event
	mergedIDs := make(map[string]struct{}, len(merged))
	for _, e := range merged {
		mergedIDs[e.ID] = struct{}{}
		if !e.Date.Before(cutoff) {
			current = append(current, e)
		} else {
			expired = append(expired, e)
		}
	}

	replaced := make(map[string]domain.Event, len(expired))
	for _, e := range expired {
		replaced[e.ID] = e
	}

	for _, e := range past {
		if fresh, ok := replaced[e.ID]; ok {
			newPast = append(newPast, fresh)
			delete(replaced, e.ID)
			continue
		}
		if _, ok := mergedIDs[e.ID]; ok {
			// The merged copy is current again; keep only that one.
			continue
		}
		newPast = append(newPast, e)
	}
	for _, e := range expired {
		if _, ok := replaced[e.ID]; ok {
			newPast = append(newPast, e)
		}
	}
	return current, newPast
}
