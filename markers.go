package postalmap

import (
	"slices"
	"strings"
)

// MarkerCluster is a set of cities whose centroids share a geohash cell.
type MarkerCluster struct {
	Geohash string
	Cities  []CityGroup
}

// ClusterMarkers buckets groups by the geohash of their centroid at the
// given precision, for drawing one marker per cell on zoomed-out maps.
// Clusters are ordered by geohash; cities keep their input order. Groups
// with an invalid centroid are left out.
func ClusterMarkers(groups []CityGroup, precision int) []MarkerCluster {
	idx := make(map[string]int)
	var clusters []MarkerCluster
	for _, g := range groups {
		hash := g.Geohash(precision)
		if hash == "" {
			continue
		}
		i, ok := idx[hash]
		if !ok {
			i = len(clusters)
			idx[hash] = i
			clusters = append(clusters, MarkerCluster{Geohash: hash})
		}
		clusters[i].Cities = append(clusters[i].Cities, g)
	}
	slices.SortFunc(clusters, func(a, b MarkerCluster) int {
		return strings.Compare(a.Geohash, b.Geohash)
	})
	return clusters
}
