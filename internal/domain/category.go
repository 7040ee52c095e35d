package domain

import "regexp"

// Category is one of the nine canonical disaster categories used throughout
// filtering and display, or Unknown when no rule matches.
type Category string

const (
	CategoryEarthquake            Category = "Earthquake"
	CategoryVolcanicEruption      Category = "Volcanic eruption"
	CategoryFlood                 Category = "Flood"
	CategoryUrbanFire             Category = "Fire in built environment"
	CategoryIndustrialExplosion   Category = "Industrial explosion"
	CategorySurroundingsExplosion Category = "Surroundings explosion"
	CategoryLandslide             Category = "Landslide"
	CategoryWar                   Category = "War"
	CategoryPollution             Category = "Environment pollution"
	CategoryUnknown               Category = "Unknown"
)

// Categories lists every canonical category, excluding Unknown.
var Categories = []Category{
	CategoryEarthquake,
	CategoryVolcanicEruption,
	CategoryFlood,
	CategoryUrbanFire,
	CategoryIndustrialExplosion,
	CategorySurroundingsExplosion,
	CategoryLandslide,
	CategoryWar,
	CategoryPollution,
}

// categoryRule pairs a pattern over the lower-cased raw category string with
// the canonical category it routes to.
type categoryRule struct {
	pattern  *regexp.Regexp
	category Category
}

// categoryRules is evaluated top to bottom; the first match wins. The
// ordering is policy: specific rules (explosion subtypes) come before the
// broad keyword nets, and the bare "war" net comes last among the nets so
// that e.g. a warehouse explosion is not routed to War. Patterns are
// deliberately redundant — the feeds spell the same disaster many ways.
var categoryRules = []categoryRule{
	{regexp.MustCompile(`surroundings?\s*(explosion|blast)`), CategorySurroundingsExplosion},
	{regexp.MustCompile(`industrial\s*(explosion|accident|fire)`), CategoryIndustrialExplosion},
	{regexp.MustCompile(`explos|blast|detonat|technological`), CategoryIndustrialExplosion},
	{regexp.MustCompile(`volcan|erupt|lava`), CategoryVolcanicEruption},
	{regexp.MustCompile(`earthquake|quake|seismic|tremor`), CategoryEarthquake},
	{regexp.MustCompile(`land\s*slide|landslip|mud\s*slide|rock\s*fall`), CategoryLandslide},
	{regexp.MustCompile(`flood|rain|inundation|deluge|tsunami|storm|cyclone|hurricane|typhoon|drought`), CategoryFlood},
	{regexp.MustCompile(`fire|wild\s*fire|blaze|burn`), CategoryUrbanFire},
	{regexp.MustCompile(`pollut|contamin|toxic|chemical|epidemic|disease|heat wave|cold wave`), CategoryPollution},
	{regexp.MustCompile(`war|conflict|violence|complex emergency|crisis`), CategoryWar},
}

// NormalizeCategory maps a raw, free-text category string (typically
// "<MainCategory> - <SubCategory>") to a canonical category. Pure function:
// same input, same output, no state. Returns Unknown when nothing matches.
func NormalizeCategory(raw string) Category {
	lowered := toLowerTrimmed(raw)
	if lowered == "" {
		return CategoryUnknown
	}
	for _, r := range categoryRules {
		if r.pattern.MatchString(lowered) {
			return r.category
		}
	}
	return CategoryUnknown
}

// IsCanonical reports whether c is one of the nine canonical categories.
func (c Category) IsCanonical() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
