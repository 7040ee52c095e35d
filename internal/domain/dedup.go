package domain

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Content-key bucket granularity. Fire reports are noisy and heavily
// re-reported, so they get ~20 km / month buckets to over-merge; everything
// else gets ~10 m / day buckets, i.e. effectively exact.
const (
	coarseCoordStep = 0.2
	fineCoordStep   = 0.0001

	coarseDateLayout = "2006-01"
	fineDateLayout   = "2006-01-02"
)

var titlePunctRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// NormalizeTitle lower-cases, strips punctuation, and collapses whitespace
// so that near-identical titles from different sources compare equal.
func NormalizeTitle(title string) string {
	t := toLowerTrimmed(title)
	t = titlePunctRe.ReplaceAllString(t, "")
	return strings.Join(strings.Fields(t), " ")
}

// ContentKey computes the fuzzy composite key used to detect the same
// real-world event reported independently under different identifiers:
// normalizedTitle | dateBucket | latBucket | lonBucket. Returns "" when the
// normalized title is blank; such records must never enter the keyed set.
func ContentKey(e Event) string {
	title := NormalizeTitle(e.Title)
	if title == "" {
		return ""
	}

	step, layout := fineCoordStep, fineDateLayout
	if e.Category == CategoryUrbanFire {
		step, layout = coarseCoordStep, coarseDateLayout
	}

	return fmt.Sprintf("%s|%s|%s|%s",
		title,
		e.Date.UTC().Format(layout),
		bucketCoord(e.Latitude, step),
		bucketCoord(e.Longitude, step),
	)
}

// bucketCoord truncates a coordinate to the grid cell of the given step and
// renders it with just enough precision to keep neighboring cells distinct.
func bucketCoord(v, step float64) string {
	snapped := math.Floor(v/step) * step
	if step >= 0.1 {
		return fmt.Sprintf("%.1f", snapped)
	}
	return fmt.Sprintf("%.4f", snapped)
}

// Deduplicate collapses records referring to the same real-world event.
// Input order matters and is preserved: older store entries should precede
// the new batch so history wins content-key collisions.
//
// Two phases:
//  1. Identity pass — per identifier, keep the record with the latest
//     capture timestamp (re-scrapes of the same source record).
//  2. Content pass — in encounter order, keep the first record per content
//     key and discard later ones. First-seen wins deliberately: the
//     identity pass already resolved freshness, this pass only collapses
//     cross-source reports of the same event.
//
// Records with a blank identifier or a blank normalized title are never
// emitted by either pass.
func Deduplicate(events []Event) []Event {
	byID := make([]Event, 0, len(events))
	idIndex := make(map[string]int, len(events))

	for _, e := range events {
		if e.ID == "" || NormalizeTitle(e.Title) == "" {
			continue
		}
		i, seen := idIndex[e.ID]
		if !seen {
			idIndex[e.ID] = len(byID)
			byID = append(byID, e)
			continue
		}
		if e.CrawledAt.After(byID[i].CrawledAt) {
			byID[i] = e
		}
	}

	out := make([]Event, 0, len(byID))
	seenKeys := make(map[string]struct{}, len(byID))
	for _, e := range byID {
		key := ContentKey(e)
		if key == "" {
			continue
		}
		if _, dup := seenKeys[key]; dup {
			continue
		}
		seenKeys[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
