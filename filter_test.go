package postalmap

import (
	"reflect"
	"testing"
)

// sampleGroups returns four cities, one of them in an unknown region.
func sampleGroups() []CityGroup {
	return BuildCityGroups([]Record{
		{City: "Mogadishu", PostalCode: "1001", Region: "Banaadir", Latitude: 2.0469, Longitude: 45.3182},
		{City: "Mogadishu", PostalCode: "1002", Region: "Banaadir", Latitude: 2.0469, Longitude: 45.3182},
		{City: "Hargeisa", PostalCode: "2001", Region: "Woqooyi Galbeed", Latitude: 9.561, Longitude: 44.4005},
		{City: "Kismayo", PostalCode: "4001", Region: "Lower Juba", Latitude: -0.4185, Longitude: 42.5431},
		{City: "Port Royal", PostalCode: "X-9", Region: "Atlantis", Latitude: 0, Longitude: 0},
	})
}

func cityNames(groups []CityGroup) []string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.City)
	}
	return names
}

func TestFilterCityGroups(t *testing.T) {
	groups := sampleGroups()

	tests := []struct {
		query string
		want  []string
	}{
		{"mog", []string{"Mogadishu"}},
		{"MOG  ", []string{"Mogadishu"}},
		{"a", []string{"Hargeisa", "Kismayo", "Mogadishu", "Port Royal"}},
		// Region name, region code, postal code
		{"banaadir", []string{"Mogadishu"}},
		{"waqooyi   galbeed", []string{"Hargeisa"}},
		{"hoose", []string{"Kismayo"}},
		{"wg", []string{"Hargeisa"}},
		{"--", []string{"Port Royal"}},
		{"4001", []string{"Kismayo"}},
		{"00", []string{"Hargeisa", "Kismayo", "Mogadishu"}},
		{"x-9", []string{"Port Royal"}},
		// Substring, not fuzzy
		{"mogadisho", []string{}},
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := cityNames(FilterCityGroups(groups, tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterCityGroups(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilterCityGroupsEmptyQueryIsIdentity(t *testing.T) {
	groups := sampleGroups()
	for _, q := range []string{"", "   ", "\t"} {
		got := FilterCityGroups(groups, q)
		if len(got) != len(groups) || &got[0] != &groups[0] {
			t.Errorf("FilterCityGroups(%q) did not return the input slice", q)
		}
	}
	if got := FilterCityGroups(nil, ""); got != nil {
		t.Errorf("FilterCityGroups(nil, \"\") = %v, want nil", got)
	}
}

func TestFilterCityGroupsPreservesOrder(t *testing.T) {
	groups := sampleGroups()
	// Reverse the input; the filter must not re-sort.
	reversed := make([]CityGroup, len(groups))
	for i, g := range groups {
		reversed[len(groups)-1-i] = g
	}
	got := cityNames(FilterCityGroups(reversed, "a"))
	want := []string{"Port Royal", "Mogadishu", "Kismayo", "Hargeisa"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterCityGroups(reversed, a) = %q, want %q", got, want)
	}
}

func TestFilterByRegion(t *testing.T) {
	groups := sampleGroups()

	tests := []struct {
		region string
		want   []string
	}{
		{"banadir", []string{"Mogadishu"}},
		{"BANAADIR", []string{"Mogadishu"}},
		{"JH", []string{"Kismayo"}},
		{"Somaliland", []string{"Hargeisa"}},
		{" atlantis ", []string{"Port Royal"}},
		{"Bari", []string{}},
		{"Lemuria", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			got := cityNames(FilterByRegion(groups, tt.region))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterByRegion(%q) = %q, want %q", tt.region, got, tt.want)
			}
		})
	}

	for _, all := range []string{"", AllRegions, "all regions"} {
		if got := FilterByRegion(groups, all); len(got) != len(groups) {
			t.Errorf("FilterByRegion(%q) = %d groups, want all %d", all, len(got), len(groups))
		}
	}
}

func TestAvailableRegions(t *testing.T) {
	got := AvailableRegions(sampleGroups())
	want := []string{"Atlantis", "BANAADIR", "JUBBADA HOOSE", "WAQOOYI GALBEED"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableRegions() = %q, want %q", got, want)
	}
	if got := AvailableRegions(nil); len(got) != 0 {
		t.Errorf("AvailableRegions(nil) = %q, want empty", got)
	}
}

func TestCountPostalCodes(t *testing.T) {
	groups := []CityGroup{
		{PostalCodes: []string{"1001", "1002"}},
		{PostalCodes: []string{"1002", "1003"}},
		{},
	}
	if got := CountPostalCodes(groups); got != 3 {
		t.Errorf("CountPostalCodes() = %d, want 3", got)
	}
	if got := CountPostalCodes(nil); got != 0 {
		t.Errorf("CountPostalCodes(nil) = %d, want 0", got)
	}
}

func TestSuggestCities(t *testing.T) {
	groups := sampleGroups()

	tests := []struct {
		query    string
		maxDist  int
		wantCity []string
		wantDist []int
	}{
		{"Mogadisho", 1, []string{"Mogadishu"}, []int{1}},
		{"Hargesa", 1, []string{"Hargeisa"}, []int{1}},
		{"kismaayo", 2, []string{"Kismayo"}, []int{1}},
		{"Mogadíshu", 1, []string{"Mogadishu"}, []int{0}},
		{"  MOGADISHU ", 1, []string{"Mogadishu"}, []int{0}},
		// Distance is clamped to maxSuggestDistance.
		{"Mgdsh", 99, nil, nil},
		// Queries shorter than three runes get nothing.
		{"mo", 3, nil, nil},
		{"", 3, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var gotCity []string
			var gotDist []int
			for _, s := range SuggestCities(groups, tt.query, tt.maxDist) {
				gotCity = append(gotCity, s.City.City)
				gotDist = append(gotDist, s.Distance)
			}
			if !reflect.DeepEqual(gotCity, tt.wantCity) || !reflect.DeepEqual(gotDist, tt.wantDist) {
				t.Errorf("SuggestCities(%q, %d) = %q %v, want %q %v",
					tt.query, tt.maxDist, gotCity, gotDist, tt.wantCity, tt.wantDist)
			}
		})
	}
}

func TestSuggestCitiesOrdering(t *testing.T) {
	groups := BuildCityGroups([]Record{
		{City: "Taleex", PostalCode: "16001", Region: "Sanaag"},
		{City: "Taleh", PostalCode: "15003", Region: "Sool"},
	})
	got := SuggestCities(groups, "Tale", 2)
	if len(got) != 2 {
		t.Fatalf("SuggestCities(Tale) returned %d suggestions, want 2", len(got))
	}
	if got[0].City.City != "Taleh" || got[0].Distance != 1 {
		t.Errorf("first suggestion = %s (%d), want Taleh (1)", got[0].City.City, got[0].Distance)
	}
	if got[1].City.City != "Taleex" || got[1].Distance != 2 {
		t.Errorf("second suggestion = %s (%d), want Taleex (2)", got[1].City.City, got[1].Distance)
	}
}

func BenchmarkFilterCityGroups(b *testing.B) {
	records, err := BundledRecords()
	if err != nil {
		b.Fatal(err)
	}
	groups := BuildCityGroups(records)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		FilterCityGroups(groups, "ba")
	}
}
