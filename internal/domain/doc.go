// Package domain models disaster-event records scraped from public feeds
// (the RSOE EDIS event list, the ReliefWeb disasters API, and the EMSC FDSN
// event service) and the pure algorithms the pipeline runs over them.
//
// # Data conventions
//
// Identifiers:
//
//	The source-assigned identifier is kept verbatim. Feed clients prefix
//	non-RSOE identifiers ("RW_..." for ReliefWeb, "EMSC_..." for EMSC);
//	the data-source tag is derived from that prefix when the feed did not
//	set one explicitly. See [DataSourceFromID].
//
// Coordinates:
//
//	Feeds deliver latitude/longitude as free text, often decorated with
//	degree symbols or compass letters ("12.3° N") and often empty. Values
//	that cannot be parsed, or that fall outside ±90/±180, become the 0
//	sentinel meaning "unknown position"; the record is kept either way.
//	An event has valid coordinates only when both values are non-zero
//	finite numbers. See [ParseCoordinate].
//
// Dates:
//
//	ISO 8601 is tried first, then the space-separated and bare-date
//	variants the feeds actually emit. A doubled "UTC UTC" suffix (a known
//	feed rendering bug) is repaired before parsing. Records with
//	unparseable dates fall back to their capture time so the 30-day age
//	partition still works. See [ParseEventDate].
//
// Categories:
//
//	Raw categories are free text, typically "<Main> - <Sub>". An ordered
//	rule table maps them onto the nine canonical categories; the first
//	matching rule wins and anything unmatched is Unknown. The ordering is
//	a policy decision (specific before broad), not an artifact. See
//	[NormalizeCategory].
//
// # Deduplication
//
// Two keys per record: the identity key (the source identifier, verbatim)
// and the content key (normalized title + date bucket + coordinate
// buckets). The identity pass keeps the freshest capture per identifier;
// the content pass keeps the first-seen record per content key. Fire
// reports use coarse buckets (~20 km, calendar month) to deliberately
// over-merge; everything else uses fine buckets. See [Deduplicate].
//
// # Clustering and risk
//
// [ClusterByRadius] is a greedy single-pass grouping in degree-space,
// invoked twice with different radii: ~1.0° over the current set for the
// affected-area count and ~0.5° over the last 30 days for risk detection.
// [DetectRisk] applies the fixed density and recency thresholds and ranks
// the qualifying clusters into one primary and any number of secondary
// alerts.
package domain
