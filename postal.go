package postalmap

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// CountryLine is the last line of every formatted address.
const CountryLine = "SOMALIA"

// postalCodeWidth is the fixed display width of a formatted postal code.
const postalCodeWidth = 5

// FormatPostalCode returns the canonical five-digit display form of a
// postal code. Non-digits are dropped and the result is left-padded with
// zeros. Input with more than five digits keeps only the last five, so
// "123456" formats as "23456"; this truncation is lossy. Input without any
// digits is returned trimmed and uppercased.
func FormatPostalCode(code string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, code)
	if digits == "" {
		return toUpper(strings.TrimSpace(code))
	}
	if len(digits) > postalCodeWidth {
		digits = digits[len(digits)-postalCodeWidth:]
	}
	return strings.Repeat("0", postalCodeWidth-len(digits)) + digits
}

// PostalLabel is the copyable label for one code, e.g. "BN 01001".
func PostalLabel(regionCode, code string) string {
	return regionCode + " " + FormatPostalCode(code)
}

// PostalLabels returns one PostalLabel per postal code of a city, in the
// city's code order.
func PostalLabels(g CityGroup) []string {
	labels := make([]string, len(g.PostalCodes))
	for i, code := range g.PostalCodes {
		labels[i] = PostalLabel(g.RegionCode, code)
	}
	return labels
}

// AddressInput holds the parts of a postal address block.
type AddressInput struct {
	Recipient  string
	POBox      string
	City       string
	Region     string // Free text; resolved with ResolveRegionCode
	PostalCode string
}

// BuildAddressLines formats a four-line postal address:
//
//	Hassan O. Omar
//	P.O. Box 1001
//	MOGADISHU, BN 01001
//	SOMALIA
func BuildAddressLines(in AddressInput) []string {
	return []string{
		strings.TrimSpace(in.Recipient),
		"P.O. Box " + strings.TrimSpace(in.POBox),
		toUpper(strings.TrimSpace(in.City)) + ", " + ResolveRegionCode(in.Region) + " " + FormatPostalCode(in.PostalCode),
		CountryLine,
	}
}

// CityAddressLines builds the address block for a city, using its primary
// (first) postal code as both the P.O. Box and the postal code.
func CityAddressLines(g CityGroup, recipient string) []string {
	var primary string
	if len(g.PostalCodes) > 0 {
		primary = g.PostalCodes[0]
	}
	return BuildAddressLines(AddressInput{
		Recipient:  recipient,
		POBox:      primary,
		City:       g.City,
		Region:     g.Region,
		PostalCode: primary,
	})
}

// postalCodeValue parses a code as a number. Only codes whose whole trimmed
// text is a finite number count as numeric.
func postalCodeValue(code string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(code), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// sortPostalCodes orders codes in place: numeric codes first in ascending
// numeric order, then the rest by collation. Numeric ties ("1" and "01")
// fall back to byte order so the result does not depend on input order.
func sortPostalCodes(codes []string) {
	type key struct {
		code    string
		value   float64
		numeric bool
	}
	keys := make([]key, len(codes))
	for i, c := range codes {
		v, ok := postalCodeValue(c)
		keys[i] = key{code: c, value: v, numeric: ok}
	}

	col := newCollator()
	slices.SortStableFunc(keys, func(a, b key) int {
		switch {
		case a.numeric && b.numeric:
			if a.value != b.value {
				if a.value < b.value {
					return -1
				}
				return 1
			}
			return strings.Compare(a.code, b.code)
		case a.numeric:
			return -1
		case b.numeric:
			return 1
		}
		if c := col.CompareString(a.code, b.code); c != 0 {
			return c
		}
		return strings.Compare(a.code, b.code)
	})

	for i, k := range keys {
		codes[i] = k.code
	}
}
