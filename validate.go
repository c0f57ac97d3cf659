package postalmap

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnresolvedRegion marks a record whose region matches no descriptor.
	ErrUnresolvedRegion = errors.New("unresolved region")

	// ErrInvalidRecord marks a record with a missing field or an
	// out-of-range coordinate.
	ErrInvalidRecord = errors.New("invalid record")
)

// recordValidator checks `validate` struct tags, reporting fields by their
// dataset (yaml) names.
var recordValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
})

// anchorCity is a city the bundled dataset must contain.
type anchorCity struct {
	city       string
	regionCode string
	postalCode string
}

// anchorCities are checked by Validate when the directory was built from the
// bundled dataset. They cover the major population centres of each zone.
var anchorCities = []anchorCity{
	{"Mogadishu", "BN", "1001"},
	{"Hargeisa", "WG", "2001"},
	{"Bosaso", "BR", "3001"},
	{"Kismayo", "JH", "4001"},
	{"Galkayo", "MD", "7001"},
	{"Garowe", "NG", "10001"},
	{"Baidoa", "BY", "11001"},
}

// Validate checks the loaded records: city, postal code and region must be
// non-empty, coordinates in range, and each region must resolve. A directory
// built from the bundled dataset must also contain the anchor cities. All
// problems are reported together.
//
// Records given with WithRecords cannot tell a missing coordinate from 0.
// Dataset files reject rows without coordinates when they are decoded.
func (d *Directory) Validate() error {
	var errs []error
	if len(d.records) == 0 {
		errs = append(errs, ErrEmptyDataset)
	}

	seen := make(map[string]bool)
	for i, r := range d.records {
		errs = append(errs, fieldProblems(i, r.City, r)...)

		region := strings.TrimSpace(r.Region)
		if region == "" || ResolveRegionCode(region) != UnknownRegionCode || seen[normalize(region)] {
			continue
		}
		seen[normalize(region)] = true
		errs = append(errs, fmt.Errorf("record %d (%s): %w %q", i, r.City, ErrUnresolvedRegion, region))
	}

	if d.source == BundledDatasetName {
		for _, a := range anchorCities {
			g, ok := d.City(groupKey(a.city, a.regionCode))
			if !ok {
				errs = append(errs, fmt.Errorf("anchor city %s (%s) missing", a.city, a.regionCode))
				continue
			}
			if !slices.Contains(g.PostalCodes, a.postalCode) {
				errs = append(errs, fmt.Errorf("anchor city %s: postal code %s missing", a.city, a.postalCode))
			}
		}
	}

	return errors.Join(errs...)
}

// fieldProblems validates row i (a Record or datasetRow) and returns one
// ErrInvalidRecord error per failing field.
func fieldProblems(i int, city string, row any) []error {
	err := recordValidator().Struct(row)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []error{fmt.Errorf("record %d: %w", i, err)}
	}

	problems := make([]error, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		problems = append(problems, fmt.Errorf("record %d (%s): %w: %s %s", i, city, ErrInvalidRecord, e.Field(), fieldMessage(e)))
	}
	return problems
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	default:
		return "is invalid"
	}
}
