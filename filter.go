package postalmap

import (
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// AllRegions is the region-picker value that disables region filtering.
const AllRegions = "All regions"

// FilterCityGroups returns the groups matching a free-text query, in input
// order. A group matches when the normalized query is a substring of its
// city, region, region code or any of its postal codes. An empty query
// returns groups unchanged.
func FilterCityGroups(groups []CityGroup, query string) []CityGroup {
	q := normalize(query)
	if q == "" {
		return groups
	}

	matched := make([]CityGroup, 0, len(groups))
	for _, g := range groups {
		if matchesQuery(g, q) {
			matched = append(matched, g)
		}
	}
	return matched
}

func matchesQuery(g CityGroup, q string) bool {
	if strings.Contains(normalize(g.City), q) ||
		strings.Contains(normalize(g.Region), q) ||
		strings.Contains(normalize(g.RegionCode), q) {
		return true
	}
	for _, code := range g.PostalCodes {
		if strings.Contains(normalize(code), q) {
			return true
		}
	}
	return false
}

// FilterByRegion keeps the groups whose region resolves to the same region
// key as region, so "banadir" selects BANAADIR cities. An empty region or
// AllRegions returns groups unchanged.
func FilterByRegion(groups []CityGroup, region string) []CityGroup {
	region = strings.TrimSpace(region)
	if region == "" || strings.EqualFold(region, AllRegions) {
		return groups
	}

	key := regionKey(region)
	matched := make([]CityGroup, 0, len(groups))
	for _, g := range groups {
		if groupRegionKey(g) == key {
			matched = append(matched, g)
		}
	}
	return matched
}

// AvailableRegions returns the distinct region display names of groups,
// sorted for a region picker.
func AvailableRegions(groups []CityGroup) []string {
	seen := make(map[string]struct{}, len(groups))
	var out []string
	for _, g := range groups {
		if _, ok := seen[g.Region]; ok {
			continue
		}
		seen[g.Region] = struct{}{}
		out = append(out, g.Region)
	}
	col := newCollator()
	slices.SortFunc(out, col.CompareString)
	return out
}

// CountPostalCodes returns the number of distinct postal codes across groups.
func CountPostalCodes(groups []CityGroup) int {
	codes := make(map[string]struct{})
	for _, g := range groups {
		for _, code := range g.PostalCodes {
			codes[code] = struct{}{}
		}
	}
	return len(codes)
}

// maxSuggestDistance caps the edit distance accepted by SuggestCities.
const maxSuggestDistance = 3

// Suggestion is a city whose name is close to a query that matched nothing.
type Suggestion struct {
	City     CityGroup
	Distance int // Levenshtein distance between the folded query and city
}

// SuggestCities ranks cities whose names are within maxDist edits of the
// query, for "did you mean" prompts after an empty search. Accents and case
// are ignored. Results are ordered by distance, then city name. maxDist is
// clamped to [1, maxSuggestDistance].
func SuggestCities(groups []CityGroup, query string, maxDist int) []Suggestion {
	q := foldAccents(normalize(query))
	if len([]rune(q)) < 3 {
		return nil
	}
	maxDist = max(1, min(maxDist, maxSuggestDistance))

	var out []Suggestion
	for _, g := range groups {
		d := levenshtein.ComputeDistance(q, foldAccents(normalize(g.City)))
		if d <= maxDist {
			out = append(out, Suggestion{City: g, Distance: d})
		}
	}

	col := newCollator()
	slices.SortStableFunc(out, func(a, b Suggestion) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return col.CompareString(a.City.City, b.City.City)
	})
	return out
}
