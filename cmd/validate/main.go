// Command validate performs integrity checks over a dataset directory
// produced by the ETL pipeline (or by genmock): the current and past event
// arrays, the stats artifact, and the last-updated marker. It verifies
// identifier uniqueness, category closure, coordinate safety, the partition
// boundary, and that the stats artifact matches a recomputation from the
// event arrays.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/disaster-event-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "", "dataset directory containing events.json, past_events.json, stats.json")
	windowDays := flag.Int("window-days", 30, "current window size used when the dataset was written")
	statsRadius := flag.Float64("stats-radius", 1.0, "clustering radius used for the affected-area count")
	riskRadius := flag.Float64("risk-radius", 0.5, "clustering radius used for the risk pass")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataDir, *windowDays, *statsRadius, *riskRadius); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir string, windowDays int, statsRadius, riskRadius float64) int {
	fmt.Println("=== Disaster Dataset Integrity Validation ===")
	fmt.Println()

	current, err := loadJSON[domain.Event](filepath.Join(dataDir, "events.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load events.json: %v\n", err)
		return 1
	}
	past, err := loadJSON[domain.Event](filepath.Join(dataDir, "past_events.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load past_events.json: %v\n", err)
		return 1
	}
	stats, err := loadStats(filepath.Join(dataDir, "stats.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load stats.json: %v\n", err)
		return 1
	}
	lastUpdated, err := loadLastUpdated(filepath.Join(dataDir, "last_updated.txt"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load last_updated.txt: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateIdentifiers(current, past),
		validateCategories(current, past),
		validateCoordinates(current, past),
		validatePartition(current, past, lastUpdated, windowDays),
		validateStats(current, past, stats, statsRadius, riskRadius),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-44s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d current, %d past; last updated %s\n",
		len(current), len(past), lastUpdated.Format(time.RFC3339))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func loadStats(path string) (domain.Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Stats{}, err
	}
	var stats domain.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return domain.Stats{}, err
	}
	return stats, nil
}

// loadLastUpdated parses the human-readable marker file:
// "Last updated: 2025-06-01T12:00:00Z".
func loadLastUpdated(path string) (time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, err
	}
	text := strings.TrimSpace(string(data))
	const prefix = "Last updated: "
	if !strings.HasPrefix(text, prefix) {
		return time.Time{}, fmt.Errorf("unexpected marker format: %q", text)
	}
	return time.Parse(time.RFC3339, strings.TrimPrefix(text, prefix))
}

// ── Phase 1: Identifier Integrity ──
// Every record has a non-blank identifier and title; identifiers are unique
// across both segments; the data-source tag matches the identifier prefix
// convention; no two current records share a content key (the dedup
// guarantee).

func validateIdentifiers(current, past []domain.Event) *phase {
	p := &phase{name: "Phase 1: Identifier Integrity"}

	seen := map[string]string{}
	check := func(segment string, events []domain.Event) {
		for i := range events {
			e := &events[i]
			if e.ID == "" {
				p.errorf("%s record %d: blank identifier", segment, i)
				continue
			}
			if strings.TrimSpace(e.Title) == "" {
				p.errorf("%s %s: blank title", segment, e.ID)
			}
			if where, dup := seen[e.ID]; dup {
				p.errorf("%s %s: identifier already present in %s", segment, e.ID, where)
			} else {
				seen[e.ID] = segment
			}
			if expected := domain.DataSourceFromID(e.ID); e.DataSource != expected {
				p.errorf("%s %s: data_source %q does not match identifier convention (expected %q)",
					segment, e.ID, e.DataSource, expected)
			}
		}
	}
	check("current", current)
	check("past", past)

	keys := map[string]string{}
	for i := range current {
		key := domain.ContentKey(current[i])
		if key == "" {
			p.errorf("current %s: empty content key", current[i].ID)
			continue
		}
		if other, dup := keys[key]; dup {
			p.errorf("current %s and %s: duplicate content key %q", current[i].ID, other, key)
		} else {
			keys[key] = current[i].ID
		}
	}
	return p
}

// ── Phase 2: Category Closure ──
// Every persisted category is one of the nine canonical categories or
// Unknown; nothing else may reach the store.

func validateCategories(current, past []domain.Event) *phase {
	p := &phase{name: "Phase 2: Category Closure"}

	check := func(segment string, events []domain.Event) {
		for i := range events {
			e := &events[i]
			if !e.Category.IsCanonical() && e.Category != domain.CategoryUnknown {
				p.errorf("%s %s: category %q is not canonical", segment, e.ID, e.Category)
			}
		}
	}
	check("current", current)
	check("past", past)
	return p
}

// ── Phase 3: Coordinate Safety ──
// Coordinates are in range or exactly the 0,0 sentinel pair; a record with
// one real coordinate and one zero is a sanitization bug.

func validateCoordinates(current, past []domain.Event) *phase {
	p := &phase{name: "Phase 3: Coordinate Safety"}

	check := func(segment string, events []domain.Event) {
		for i := range events {
			e := &events[i]
			if e.Latitude < -90 || e.Latitude > 90 {
				p.errorf("%s %s: latitude %g out of range", segment, e.ID, e.Latitude)
			}
			if e.Longitude < -180 || e.Longitude > 180 {
				p.errorf("%s %s: longitude %g out of range", segment, e.ID, e.Longitude)
			}
			if e.HasValidCoords() {
				continue
			}
			if e.Latitude != 0 || e.Longitude != 0 {
				p.errorf("%s %s: partial sentinel (%g, %g)", segment, e.ID, e.Latitude, e.Longitude)
			}
		}
	}
	check("current", current)
	check("past", past)
	return p
}

// ── Phase 4: Partition Boundary ──
// Current events are dated at or after the cutoff measured back from the
// last-updated marker; past events are strictly before it.

func validatePartition(current, past []domain.Event, lastUpdated time.Time, windowDays int) *phase {
	p := &phase{name: "Phase 4: Partition Boundary"}

	cutoff := lastUpdated.Add(-time.Duration(windowDays) * 24 * time.Hour)
	for i := range current {
		e := &current[i]
		if e.Date.Before(cutoff) {
			p.errorf("current %s: dated %s, before cutoff %s",
				e.ID, e.Date.Format(time.RFC3339), cutoff.Format(time.RFC3339))
		}
	}
	for i := range past {
		e := &past[i]
		if !e.Date.Before(cutoff) {
			p.errorf("past %s: dated %s, at or after cutoff %s",
				e.ID, e.Date.Format(time.RFC3339), cutoff.Format(time.RFC3339))
		}
	}
	return p
}

// ── Phase 5: Stats Consistency ──
// The stats artifact must match a recomputation from the event arrays,
// including the risk report regenerated at the stats' own timestamp.

func validateStats(current, past []domain.Event, stats domain.Stats, statsRadius, riskRadius float64) *phase {
	p := &phase{name: "Phase 5: Stats Consistency"}

	if stats.CurrentEvents != len(current) {
		p.errorf("current_events: stats say %d, events.json has %d", stats.CurrentEvents, len(current))
	}
	if stats.PastEvents != len(past) {
		p.errorf("past_events: stats say %d, past_events.json has %d", stats.PastEvents, len(past))
	}

	areas := domain.ClusterByRadius(current, statsRadius)
	if stats.AffectedAreas != len(areas) {
		p.errorf("affected_areas: stats say %d, recomputed %d (radius %g)", stats.AffectedAreas, len(areas), statsRadius)
	}

	counts := domain.CountByCategory(current)
	for cat, n := range counts {
		if stats.CategoryCounts[cat] != n {
			p.errorf("category_counts[%s]: stats say %d, recomputed %d", cat, stats.CategoryCounts[cat], n)
		}
	}
	for cat, n := range stats.CategoryCounts {
		if _, ok := counts[cat]; !ok && n != 0 {
			p.errorf("category_counts[%s]: stats say %d, but no such events exist", cat, n)
		}
	}

	report := domain.DetectRisk(domain.ClusterByRadius(current, riskRadius), stats.GeneratedAt)
	compareRisk(p, stats.Risk, report)

	return p
}

func compareRisk(p *phase, stored, recomputed domain.RiskReport) {
	if (stored.Primary == nil) != (recomputed.Primary == nil) {
		p.errorf("risk.primary: stats say present=%t, recomputed present=%t",
			stored.Primary != nil, recomputed.Primary != nil)
		return
	}
	if stored.Primary != nil {
		if stored.Primary.MemberCount != recomputed.Primary.MemberCount {
			p.errorf("risk.primary.member_count: stats say %d, recomputed %d",
				stored.Primary.MemberCount, recomputed.Primary.MemberCount)
		}
		if stored.Primary.Summary != recomputed.Primary.Summary {
			p.errorf("risk.primary.summary: stats say %q, recomputed %q",
				stored.Primary.Summary, recomputed.Primary.Summary)
		}
	}
	if len(stored.Secondary) != len(recomputed.Secondary) {
		p.errorf("risk.secondary: stats say %d clusters, recomputed %d",
			len(stored.Secondary), len(recomputed.Secondary))
	}
}
