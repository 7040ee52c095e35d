// Command genmock generates deterministic mock data fixtures for the ETL
// test suites and local development. It synthesizes raw feed records shaped
// like the RSOE, ReliefWeb, and EMSC outputs, then runs them through the
// actual domain package so the expected dataset matches real pipeline
// behavior: sanitization, dedup, the current/past partition, and stats.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/disaster-event-etl/internal/domain"
)

// genTime is the frozen "now" for the fixture run. Every derived timestamp
// (dates, capture times, the partition cutoff) hangs off it so regenerating
// produces byte-identical output.
var genTime = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

const currentWindow = 30 * 24 * time.Hour

// rawRecord is the on-disk shape of a raw fixture entry, mirroring the text
// fields the feeds actually deliver.
type rawRecord struct {
	EventID       string `json:"event_id"`
	EventTitle    string `json:"event_title"`
	EventCategory string `json:"event_category"`
	EventDateUTC  string `json:"event_date_utc"`
	LastUpdateUTC string `json:"last_update_utc,omitempty"`
	Latitude      string `json:"latitude"`
	Longitude     string `json:"longitude"`
	Address       string `json:"address,omitempty"`
	AreaRange     string `json:"area_range,omitempty"`
	SourceURL     string `json:"source_url,omitempty"`
	DataSource    string `json:"data_source,omitempty"`
	CapturedAt    string `json:"captured_at"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "output directory for fixture files")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}

	// Fix the clock for reproducible fallback timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(genTime))
	defer domain.SetClock(nil)

	raws := buildRawFixture()
	log.Printf("synthesized %d raw records", len(raws))

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var candidates []domain.Event
	for _, raw := range raws {
		event, err := domain.BuildEvent(toRawEvent(raw), logger)
		if err != nil {
			// Blank-title records are part of the fixture on purpose; the
			// pipeline drops them and so does the expected output.
			log.Printf("dropped %s: %v", raw.EventID, err)
			continue
		}
		candidates = append(candidates, event)
	}

	merged := domain.Deduplicate(candidates)
	log.Printf("after dedup: %d of %d candidates", len(merged), len(candidates))

	cutoff := genTime.Add(-currentWindow)
	var current, past []domain.Event
	for _, e := range merged {
		if !e.Date.Before(cutoff) {
			current = append(current, e)
		} else {
			past = append(past, e)
		}
	}

	areas := domain.ClusterByRadius(current, 1.0)
	riskClusters := domain.ClusterByRadius(current, 0.5)
	report := domain.DetectRisk(riskClusters, genTime)

	stats := domain.Stats{
		GeneratedAt:    genTime,
		CurrentEvents:  len(current),
		PastEvents:     len(past),
		AffectedAreas:  len(areas),
		CategoryCounts: domain.CountByCategory(current),
		Risk:           report,
	}

	files := []struct {
		name string
		data any
	}{
		{"raw_events.json", raws},
		{"events.json", current},
		{"past_events.json", past},
		{"stats.json", stats},
	}
	for _, f := range files {
		path := filepath.Join(*outDir, f.name)
		if err := writeJSON(path, f.data); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
		log.Printf("wrote %s", path)
	}

	printStats(current, past, stats)
	return nil
}

// buildRawFixture synthesizes the raw feed records. The set is constructed
// to exercise every pipeline behavior:
//
//   - a dense earthquake swarm that crosses the risk thresholds
//   - the same flood reported independently by RSOE and ReliefWeb
//   - an RSOE record re-scraped with a corrected title
//   - a ReliefWeb record with an address but no coordinates
//   - an out-of-range latitude that coerces to the sentinel
//   - a blank title that gets dropped
//   - records old enough to land in the archive
func buildRawFixture() []rawRecord {
	var raws []rawRecord

	// Earthquake swarm near Crete: 32 members, 6 inside the 7-day window.
	for i := 0; i < 32; i++ {
		var date time.Time
		if i < 6 {
			date = genTime.Add(-time.Duration(i+1) * 6 * time.Hour)
		} else {
			date = genTime.Add(-48*time.Hour - time.Duration(i)*18*time.Hour)
		}
		lat := 35.30 + 0.01*float64(i)
		lon := 25.10 + 0.005*float64(i)
		mag := 4.0 + 0.1*float64(i%8)
		raws = append(raws, rawRecord{
			EventID:       fmt.Sprintf("EMSC_SWARM_%02d", i),
			EventTitle:    fmt.Sprintf("M%.1f earthquake - CRETE, GREECE", mag),
			EventCategory: "Earthquake",
			EventDateUTC:  date.Format(time.RFC3339),
			Latitude:      fmt.Sprintf("%.4f", lat),
			Longitude:     fmt.Sprintf("%.4f", lon),
			SourceURL:     "https://www.seismicportal.eu",
			DataSource:    "emsc",
			CapturedAt:    genTime.Format(time.RFC3339),
		})
	}

	raws = append(raws,
		// Valencia flood, reported twice: RSOE first, then ReliefWeb with a
		// title that normalizes to the same content key. First-seen wins.
		rawRecord{
			EventID:       "RSOE-7001",
			EventTitle:    "Flash flood - Valencia province",
			EventCategory: "Flood - Flash flood",
			EventDateUTC:  genTime.Add(-36 * time.Hour).Format(time.RFC3339),
			Latitude:      "39.4700",
			Longitude:     "-0.3760",
			Address:       "Valencia, Spain",
			SourceURL:     "https://rsoe-edis.org/eventList/details/7001",
			CapturedAt:    genTime.Format(time.RFC3339),
		},
		rawRecord{
			EventID:       "RW_52004",
			EventTitle:    "FLASH FLOOD: Valencia Province!",
			EventCategory: "Flood",
			EventDateUTC:  genTime.Add(-36 * time.Hour).Format(time.RFC3339),
			Latitude:      "39.4700",
			Longitude:     "-0.3760",
			Address:       "Spain",
			SourceURL:     "https://reliefweb.int/disaster/52004",
			CapturedAt:    genTime.Format(time.RFC3339),
		},

		// RSOE wildfire scraped twice; the later capture corrects the title
		// and must win the identity pass.
		rawRecord{
			EventID:       "RSOE-7002",
			EventTitle:    "Forest fire near Athens (preliminary)",
			EventCategory: "Fire - Outdoor fire",
			EventDateUTC:  genTime.Add(-3 * 24 * time.Hour).Format(time.RFC3339),
			Latitude:      "38.0500",
			Longitude:     "23.8000",
			Address:       "Attica, Greece",
			CapturedAt:    genTime.Add(-1 * time.Hour).Format(time.RFC3339),
		},
		rawRecord{
			EventID:       "RSOE-7002",
			EventTitle:    "Forest fire near Athens",
			EventCategory: "Fire - Outdoor fire",
			EventDateUTC:  genTime.Add(-3 * 24 * time.Hour).Format(time.RFC3339),
			Latitude:      "38.0500",
			Longitude:     "23.8000",
			Address:       "Attica, Greece",
			CapturedAt:    genTime.Format(time.RFC3339),
		},

		// ReliefWeb drought: address only, no coordinates. Stays in the
		// dataset but is excluded from clustering.
		rawRecord{
			EventID:       "RW_52010",
			EventTitle:    "Somalia: Drought - 2025",
			EventCategory: "Drought",
			EventDateUTC:  genTime.Add(-10 * 24 * time.Hour).Format(time.RFC3339),
			Address:       "Somalia",
			SourceURL:     "https://reliefweb.int/disaster/52010",
			CapturedAt:    genTime.Format(time.RFC3339),
		},

		// Out-of-range latitude coerces to the 0,0 sentinel.
		rawRecord{
			EventID:       "RSOE-7003",
			EventTitle:    "Industrial explosion at refinery",
			EventCategory: "Industrial explosion",
			EventDateUTC:  genTime.Add(-5 * 24 * time.Hour).Format(time.RFC3339),
			Latitude:      "91.5",
			Longitude:     "4.2000",
			Address:       "Rotterdam, Netherlands",
			CapturedAt:    genTime.Format(time.RFC3339),
		},

		// Blank title: dropped by the pipeline.
		rawRecord{
			EventID:       "RSOE-7099",
			EventTitle:    "   ",
			EventCategory: "Flood",
			EventDateUTC:  genTime.Format(time.RFC3339),
			CapturedAt:    genTime.Format(time.RFC3339),
		},

		// One more category each for display coverage.
		rawRecord{
			EventID:       "RSOE-7004",
			EventTitle:    "Volcanic eruption - Mount Etna",
			EventCategory: "Volcano - Eruption",
			EventDateUTC:  genTime.Add(-7 * 24 * time.Hour).Format(time.RFC3339),
			Latitude:      "37.7510",
			Longitude:     "14.9934",
			Address:       "Sicily, Italy",
			CapturedAt:    genTime.Format(time.RFC3339),
		},
		rawRecord{
			EventID:       "RSOE-7005",
			EventTitle:    "Chemical spill in river",
			EventCategory: "Environment pollution",
			EventDateUTC:  genTime.Add(-12 * 24 * time.Hour).Format(time.RFC3339),
			Latitude:      "51.0500",
			Longitude:     "13.7400",
			Address:       "Dresden, Germany",
			CapturedAt:    genTime.Format(time.RFC3339),
		},

		// Old records that belong in the archive.
		rawRecord{
			EventID:       "RSOE-6001",
			EventTitle:    "Landslide blocks mountain road",
			EventCategory: "Landslide",
			EventDateUTC:  genTime.Add(-45 * 24 * time.Hour).Format(time.RFC3339),
			Latitude:      "46.5000",
			Longitude:     "8.0000",
			Address:       "Valais, Switzerland",
			CapturedAt:    genTime.Format(time.RFC3339),
		},
		rawRecord{
			EventID:       "RW_51000",
			EventTitle:    "Sudan: Complex Emergency",
			EventCategory: "Complex Emergency",
			EventDateUTC:  genTime.Add(-60 * 24 * time.Hour).Format(time.RFC3339),
			Address:       "Sudan",
			SourceURL:     "https://reliefweb.int/disaster/51000",
			CapturedAt:    genTime.Format(time.RFC3339),
		},
	)

	return raws
}

func toRawEvent(r rawRecord) domain.RawEvent {
	capturedAt, _ := time.Parse(time.RFC3339, r.CapturedAt)
	return domain.RawEvent{
		ID:            r.EventID,
		Title:         r.EventTitle,
		Category:      r.EventCategory,
		DateUTC:       r.EventDateUTC,
		LastUpdateUTC: r.LastUpdateUTC,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		Address:       r.Address,
		AreaRange:     r.AreaRange,
		SourceURL:     r.SourceURL,
		DataSource:    r.DataSource,
		CapturedAt:    capturedAt,
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(current, past []domain.Event, stats domain.Stats) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Current: %d, Past: %d\n", len(current), len(past))
	fmt.Printf("Affected areas: %d\n", stats.AffectedAreas)

	fmt.Print("By category: ")
	for _, cat := range domain.Categories {
		if n := stats.CategoryCounts[cat]; n > 0 {
			fmt.Printf("%s=%d ", cat, n)
		}
	}
	if n := stats.CategoryCounts[domain.CategoryUnknown]; n > 0 {
		fmt.Printf("%s=%d", domain.CategoryUnknown, n)
	}
	fmt.Println()

	bySource := map[string]int{}
	var noCoords int
	for _, e := range current {
		bySource[e.DataSource]++
		if !e.HasValidCoords() {
			noCoords++
		}
	}
	fmt.Printf("By source: rsoe=%d, reliefweb=%d, emsc=%d\n",
		bySource["rsoe"], bySource["reliefweb"], bySource["emsc"])
	fmt.Printf("Without coordinates: %d\n", noCoords)

	if stats.Risk.Primary != nil {
		p := stats.Risk.Primary
		fmt.Printf("\nPrimary risk cluster:\n")
		fmt.Printf("  Centroid: %.4f, %.4f\n", p.CentroidLat, p.CentroidLon)
		fmt.Printf("  Members: %d (%d recent)\n", p.MemberCount, p.RecentCount)
		fmt.Printf("  Summary: %s\n", p.Summary)
		fmt.Printf("Secondary risk clusters: %d\n", len(stats.Risk.Secondary))
	} else {
		fmt.Println("\nNo risk clusters.")
	}
}
