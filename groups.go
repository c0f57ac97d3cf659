package postalmap

import (
	"math"
	"slices"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
)

// Record is one row of the postal-code dataset: a single postal code and
// the city, region and coordinates it belongs to.
type Record struct {
	City       string  `yaml:"city" json:"city" validate:"required"`
	PostalCode string  `yaml:"postal_code" json:"postalCode" validate:"required"`
	Region     string  `yaml:"region" json:"region" validate:"required"`
	Latitude   float64 `yaml:"latitude" json:"latitude" validate:"gte=-90,lte=90"`
	Longitude  float64 `yaml:"longitude" json:"longitude" validate:"gte=-180,lte=180"`
}

// CityGroup is the aggregated view of every record for one city and region.
//
// ID collapses internal whitespace runs in the city and in unresolved region
// text, so "Mer  ca" and "Mer ca" share one group and one id.
type CityGroup struct {
	ID           string   `json:"id"`         // normalized city + "|" + region key
	City         string   `json:"city"`       // First-seen spelling, trimmed
	Region       string   `json:"region"`     // Canonical name, or trimmed raw text if unresolved
	RegionCode   string   `json:"regionCode"` // Canonical code or UnknownRegionCode
	Latitude     float64  `json:"latitude"`   // Mean of the folded records
	Longitude    float64  `json:"longitude"`  // Mean of the folded records
	PostalCodes  []string `json:"postalCodes"`
	TotalEntries int      `json:"totalEntries"` // Number of records folded in
}

// Geohash returns the geohash cell of the city's centroid at the given
// precision (1-12 characters), or "" when the centroid is not a valid point.
func (g CityGroup) Geohash(precision int) string {
	if !validCoordinate(g.Latitude, g.Longitude) {
		return ""
	}
	precision = max(1, min(precision, maxGeohashPrecision))
	return geohash.EncodeWithPrecision(g.Latitude, g.Longitude, precision)
}

const maxGeohashPrecision = 12

// cityAccumulator collects the records of one city group during a pass.
type cityAccumulator struct {
	city         string
	region       string
	regionCode   string
	latitudeSum  float64
	longitudeSum float64
	totalEntries int
	postalCodes  map[string]struct{}
}

// groupKey returns the id shared by every record of the same city group.
func groupKey(city, region string) string {
	return normalize(city) + "|" + regionKey(region)
}

// BuildCityGroups folds records into one CityGroup per city and region,
// sorted by city name.
//
// Records group together when their normalized city names and region keys
// match. The first record seen for a group fixes its City, Region and
// RegionCode; later spellings do not overwrite them. Coordinates are
// averaged and postal codes deduplicated. Coordinates are not validated:
// a NaN in any record yields a NaN centroid.
func BuildCityGroups(records []Record) []CityGroup {
	// Keys are kept in first-seen order so the stable sort below breaks
	// ties between equal city names deterministically.
	var keys []string
	acc := make(map[string]*cityAccumulator)

	for _, r := range records {
		city := strings.TrimSpace(r.City)
		rawRegion := strings.TrimSpace(r.Region)
		key := groupKey(city, rawRegion)

		a, ok := acc[key]
		if !ok {
			code := ResolveRegionCode(rawRegion)
			region, resolved := ResolveRegionName(code)
			if !resolved {
				region = rawRegion
			}
			a = &cityAccumulator{
				city:        city,
				region:      region,
				regionCode:  code,
				postalCodes: make(map[string]struct{}),
			}
			acc[key] = a
			keys = append(keys, key)
		}

		a.latitudeSum += r.Latitude
		a.longitudeSum += r.Longitude
		a.totalEntries++
		a.postalCodes[strings.TrimSpace(r.PostalCode)] = struct{}{}
	}

	groups := make([]CityGroup, 0, len(keys))
	for _, key := range keys {
		a := acc[key]
		codes := make([]string, 0, len(a.postalCodes))
		for code := range a.postalCodes {
			codes = append(codes, code)
		}
		sortPostalCodes(codes)

		groups = append(groups, CityGroup{
			ID:           key,
			City:         a.city,
			Region:       a.region,
			RegionCode:   a.regionCode,
			Latitude:     a.latitudeSum / float64(a.totalEntries),
			Longitude:    a.longitudeSum / float64(a.totalEntries),
			PostalCodes:  codes,
			TotalEntries: a.totalEntries,
		})
	}

	col := newCollator()
	slices.SortStableFunc(groups, func(a, b CityGroup) int {
		return col.CompareString(a.City, b.City)
	})
	return groups
}

// FindCityGroup returns the group with the given id.
func FindCityGroup(groups []CityGroup, id string) (CityGroup, bool) {
	for _, g := range groups {
		if g.ID == id {
			return g, true
		}
	}
	return CityGroup{}, false
}

// SelectionVisible reports whether the selected city id is among groups.
// An empty id is never visible.
func SelectionVisible(id string, groups []CityGroup) bool {
	if id == "" {
		return false
	}
	_, ok := FindCityGroup(groups, id)
	return ok
}

// validCoordinate rejects NaN, infinities and out-of-range degrees.
func validCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
