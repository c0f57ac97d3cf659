package postalmap

import (
	"slices"
)

// RegionSummary is the coverage of one region within a set of city groups.
type RegionSummary struct {
	Region          string `json:"region"`
	RegionCode      string `json:"regionCode"`
	CityCount       int    `json:"cityCount"`
	PostalCodeCount int    `json:"postalCodeCount"` // Distinct codes, not a per-city sum
}

type regionAccumulator struct {
	region      string
	regionCode  string
	cities      int
	postalCodes map[string]struct{}
}

// BuildRegionSummaries counts cities and distinct postal codes per region,
// ordered by city count (descending) and then region name.
func BuildRegionSummaries(groups []CityGroup) []RegionSummary {
	var keys []string
	acc := make(map[string]*regionAccumulator)

	for _, g := range groups {
		key := groupRegionKey(g)
		a, ok := acc[key]
		if !ok {
			a = &regionAccumulator{
				region:      g.Region,
				regionCode:  g.RegionCode,
				postalCodes: make(map[string]struct{}),
			}
			acc[key] = a
			keys = append(keys, key)
		}
		a.cities++
		for _, code := range g.PostalCodes {
			a.postalCodes[code] = struct{}{}
		}
	}

	out := make([]RegionSummary, 0, len(keys))
	for _, key := range keys {
		a := acc[key]
		out = append(out, RegionSummary{
			Region:          a.region,
			RegionCode:      a.regionCode,
			CityCount:       a.cities,
			PostalCodeCount: len(a.postalCodes),
		})
	}

	col := newCollator()
	slices.SortStableFunc(out, func(a, b RegionSummary) int {
		if a.CityCount != b.CityCount {
			return b.CityCount - a.CityCount
		}
		return col.CompareString(a.Region, b.Region)
	})
	return out
}
