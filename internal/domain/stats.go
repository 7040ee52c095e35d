package domain

import "time"

// Stats is the precomputed statistics artifact written next to the event
// arrays for the display layer: the affected-area count from the
// descriptive clustering pass plus per-category totals and the risk report.
type Stats struct {
	GeneratedAt    time.Time        `json:"generated_at"`
	CurrentEvents  int              `json:"current_events"`
	PastEvents     int              `json:"past_events"`
	AffectedAreas  int              `json:"affected_areas"`
	CategoryCounts map[Category]int `json:"category_counts"`
	Risk           RiskReport       `json:"risk"`
}

// CountByCategory tallies events per canonical category.
func CountByCategory(events []Event) map[Category]int {
	counts := make(map[Category]int)
	for _, e := range events {
		counts[e.Category]++
	}
	return counts
}
