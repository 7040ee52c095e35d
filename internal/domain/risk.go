package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Risk thresholds. Deliberately strict so routine clustering noise does not
// page anyone: a cluster must be both dense and recently active.
const (
	RiskMinMembers   = 30
	RiskMinRecent    = 5
	RiskRecentWindow = 7 * 24 * time.Hour
)

// RiskCluster is a cluster whose density and recency crossed the alert
// thresholds, reduced to the fields the display layer and the alert topic
// need.
type RiskCluster struct {
	CentroidLat float64    `json:"centroid_lat"`
	CentroidLon float64    `json:"centroid_lon"`
	MemberCount int        `json:"member_count"`
	RecentCount int        `json:"recent_count"`
	Categories  []Category `json:"categories"`
	Summary     string     `json:"summary"`
}

// RiskReport is the outcome of one risk pass. Primary is nil when no
// cluster qualifies; Secondary keeps encounter order.
type RiskReport struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Primary     *RiskCluster  `json:"primary,omitempty"`
	Secondary   []RiskCluster `json:"secondary,omitempty"`
}

// HasAlerts reports whether any cluster qualified.
func (r RiskReport) HasAlerts() bool {
	return r.Primary != nil
}

// DetectRisk evaluates the clusters from a risk pass against the fixed
// thresholds: total members >= RiskMinMembers AND members dated within
// RiskRecentWindow of now >= RiskMinRecent. The qualifying cluster with the
// most members becomes the primary alert (first encountered wins ties); the
// rest are secondary in encounter order.
func DetectRisk(clusters []Cluster, now time.Time) RiskReport {
	report := RiskReport{GeneratedAt: now}

	var qualifying []RiskCluster
	primaryIdx := -1
	for _, c := range clusters {
		if len(c.Events) < RiskMinMembers {
			continue
		}
		recent := countRecent(c.Events, now)
		if recent < RiskMinRecent {
			continue
		}

		qualifying = append(qualifying, summarizeCluster(c, recent))
		if primaryIdx < 0 || qualifying[len(qualifying)-1].MemberCount > qualifying[primaryIdx].MemberCount {
			primaryIdx = len(qualifying) - 1
		}
	}

	if primaryIdx < 0 {
		return report
	}

	primary := qualifying[primaryIdx]
	report.Primary = &primary
	for i, rc := range qualifying {
		if i != primaryIdx {
			report.Secondary = append(report.Secondary, rc)
		}
	}
	return report
}

func countRecent(events []Event, now time.Time) int {
	cutoff := now.Add(-RiskRecentWindow)
	n := 0
	for _, e := range events {
		if e.Date.After(cutoff) {
			n++
		}
	}
	return n
}

func summarizeCluster(c Cluster, recent int) RiskCluster {
	lat, lon := c.Centroid()
	categories := distinctCategories(c.Events)

	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = string(cat)
	}

	return RiskCluster{
		CentroidLat: lat,
		CentroidLon: lon,
		MemberCount: len(c.Events),
		RecentCount: recent,
		Categories:  categories,
		Summary: fmt.Sprintf("%d events (%d in the last 7 days) near %.4f, %.4f: %s",
			len(c.Events), recent, lat, lon, strings.Join(names, ", ")),
	}
}

// distinctCategories returns the distinct member categories in alphabetical
// order so summaries are deterministic.
func distinctCategories(events []Event) []Category {
	seen := make(map[Category]struct{})
	var out []Category
	for _, e := range events {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
