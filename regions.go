package postalmap

import (
	"sync"
)

// UnknownRegionCode is returned by ResolveRegionCode for region text that
// matches no descriptor. Region codes are never empty.
const UnknownRegionCode = "--"

// RegionDescriptor is one first-level administrative region of Somalia.
type RegionDescriptor struct {
	Code    string   // Two-letter canonical code (e.g., "BN")
	Name    string   // Canonical uppercase name (e.g., "BANAADIR")
	Aliases []string // Lowercase spellings that resolve to Code
}

// regionTable is the fixed region list. Codes, names and aliases appear in
// formatted addresses, so entries must not be renamed.
var regionTable = []RegionDescriptor{
	{Code: "AD", Name: "AWDAL", Aliases: []string{"awdal"}},
	{Code: "BK", Name: "BAKOOL", Aliases: []string{"bakool"}},
	{Code: "BN", Name: "BANAADIR", Aliases: []string{"banaadir", "banadir"}},
	{Code: "BR", Name: "BARI", Aliases: []string{"bari"}},
	{Code: "BY", Name: "BAY", Aliases: []string{"bay"}},
	{Code: "GG", Name: "GALGADUUD", Aliases: []string{"galgaduud", "galmudug"}},
	{Code: "GD", Name: "GEDO", Aliases: []string{"gedo"}},
	{Code: "HR", Name: "HIIRAAN", Aliases: []string{"hiiraan", "hiraan", "hiran"}},
	{Code: "JD", Name: "JUBBADA DHEXE", Aliases: []string{"jubbada dhexe", "jubada dhexe", "middle juba"}},
	{Code: "JH", Name: "JUBBADA HOOSE", Aliases: []string{"jubbada hoose", "jubada hoose", "lower juba"}},
	{Code: "MD", Name: "MUDUG", Aliases: []string{"mudug"}},
	{Code: "NG", Name: "NUGAAL", Aliases: []string{"nugaal", "nugal"}},
	{Code: "SG", Name: "SANAAG", Aliases: []string{"sanaag"}},
	{Code: "SD", Name: "SHABEELLADA DHEXE", Aliases: []string{"shabeellada dhexe", "middle shabelle"}},
	{Code: "SH", Name: "SHABEELLADA HOOSE", Aliases: []string{"shabeellada hoose", "lower shabelle"}},
	{Code: "SL", Name: "SOOL", Aliases: []string{"sool"}},
	{Code: "TG", Name: "TOGDHEER", Aliases: []string{"togdheer"}},
	{Code: "WG", Name: "WAQOOYI GALBEED", Aliases: []string{"waqooyi galbeed", "woqooyi galbeed", "somaliland"}},
}

// regionIndex holds the lookup maps derived from regionTable.
type regionIndex struct {
	aliasToCode map[string]string // normalized alias, name or code -> code
	codeToName  map[string]string // uppercase code -> name
}

// regions builds the lookup maps once. The result is read-only and shared by
// every caller.
var regions = sync.OnceValue(func() *regionIndex {
	idx := &regionIndex{
		aliasToCode: make(map[string]string, len(regionTable)*4),
		codeToName:  make(map[string]string, len(regionTable)),
	}
	for _, r := range regionTable {
		idx.codeToName[r.Code] = r.Name
		idx.aliasToCode[normalize(r.Name)] = r.Code
		idx.aliasToCode[normalize(r.Code)] = r.Code
		for _, alias := range r.Aliases {
			idx.aliasToCode[normalize(alias)] = r.Code
		}
	}
	return idx
})

// Regions returns a copy of the region table in its canonical order.
func Regions() []RegionDescriptor {
	out := make([]RegionDescriptor, len(regionTable))
	for i, r := range regionTable {
		out[i] = RegionDescriptor{
			Code:    r.Code,
			Name:    r.Name,
			Aliases: append([]string(nil), r.Aliases...),
		}
	}
	return out
}

// ResolveRegionCode maps free-text region spellings to a canonical code.
// Matching ignores case and collapses whitespace, so "Lower  Juba",
// "JUBBADA HOOSE" and "jh" all resolve to "JH". Unknown text resolves to
// UnknownRegionCode.
func ResolveRegionCode(region string) string {
	if code, ok := regions().aliasToCode[normalize(region)]; ok {
		return code
	}
	return UnknownRegionCode
}

// ResolveRegionName returns the canonical name for a region code.
// The code is matched case-insensitively; ok is false for unknown codes.
func ResolveRegionName(code string) (name string, ok bool) {
	name, ok = regions().codeToName[toUpper(code)]
	return name, ok
}

// regionKey is the grouping key for a region: its canonical code when the
// text resolves, otherwise the normalized text itself.
func regionKey(region string) string {
	if code := ResolveRegionCode(region); code != UnknownRegionCode {
		return code
	}
	return normalize(region)
}

// groupRegionKey is regionKey for an already-aggregated group, which keeps
// the resolved code alongside the display name.
func groupRegionKey(g CityGroup) string {
	if g.RegionCode != UnknownRegionCode {
		return g.RegionCode
	}
	return normalize(g.Region)
}
