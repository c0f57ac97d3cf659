// Command postal-map searches the Somali postal-code directory.
//
// Usage:
//
//	go run ./cmd/postal-map -q mog
//	go run ./cmd/postal-map -region "Lower Juba" -summary
//	go run ./cmd/postal-map -city "mogadishu|BN" -recipient "Hassan O. Omar"
//	go run ./cmd/postal-map -near 2.05,45.32
//	go run ./cmd/postal-map -data ./postal-codes.yaml -validate
//
// Flags fall back to POSTALMAP_* environment variables (POSTALMAP_DATA,
// POSTALMAP_LOG_LEVEL, POSTALMAP_ENV).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andreiashu/postalmap"
)

// SampleRecipient is the recipient used for address previews.
const SampleRecipient = "Hassan O. Omar"

type options struct {
	dataFile  string
	query     string
	region    string
	cityID    string
	near      string
	recipient string
	summary   bool
	suggest   bool
	validate  bool
	logLevel  string
	env       string
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command and returns its exit code. Failures always reach
// stderr, whatever the log level.
func execute(args []string, stdout, stderr io.Writer) int {
	opts := parseFlags(flag.NewFlagSet("postal-map", flag.ExitOnError), args)

	logger, err := newLogger(opts.env, opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := run(stdout, logger, opts); err != nil {
		logger.Error("postal-map failed", zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(fs *flag.FlagSet, args []string) options {
	var o options
	fs.StringVar(&o.dataFile, "data", os.Getenv("POSTALMAP_DATA"), "YAML dataset path (default: embedded dataset)")
	fs.StringVar(&o.query, "q", "", "Search by city, region, region code or postal code")
	fs.StringVar(&o.region, "region", postalmap.AllRegions, "Restrict results to one region")
	fs.StringVar(&o.cityID, "city", "", "Show one city by id and print its address block")
	fs.StringVar(&o.near, "near", "", "Show the city nearest to lat,lng")
	fs.StringVar(&o.recipient, "recipient", SampleRecipient, "Recipient for address blocks")
	fs.BoolVar(&o.summary, "summary", false, "Print region coverage instead of cities")
	fs.BoolVar(&o.suggest, "suggest", true, "Suggest close city names when a search finds nothing")
	fs.BoolVar(&o.validate, "validate", false, "Validate the dataset and exit")
	fs.StringVar(&o.logLevel, "log-level", envOr("POSTALMAP_LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")
	fs.StringVar(&o.env, "env", envOr("POSTALMAP_ENV", "development"), "Environment (development, production)")
	_ = fs.Parse(args)
	return o
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger builds a zap logger writing to stderr so that stdout only
// carries results.
func newLogger(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func run(w io.Writer, logger *zap.Logger, o options) error {
	dirOpts := []postalmap.Option{postalmap.WithLogger(logger)}
	if o.dataFile != "" {
		dirOpts = append(dirOpts, postalmap.WithDataFile(o.dataFile))
	}
	d, err := postalmap.NewDirectory(dirOpts...)
	if err != nil {
		return err
	}

	switch {
	case o.validate:
		if err := d.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(w, "%s: %d records, %d cities, %d regions OK\n",
			d.Source(), len(d.Records()), len(d.Groups()), len(d.Regions()))
		return nil

	case o.cityID != "":
		city, ok := d.City(o.cityID)
		if !ok {
			return fmt.Errorf("city %q not found", o.cityID)
		}
		printCityDetail(w, city, o.recipient)
		return nil

	case o.near != "":
		lat, lng, err := parseLatLng(o.near)
		if err != nil {
			return err
		}
		city, ok := d.NearestCity(lat, lng)
		if !ok {
			fmt.Fprintln(w, "No city near that point.")
			return nil
		}
		printCityDetail(w, city, o.recipient)
		return nil
	}

	if o.summary {
		printSummaries(w, d.Summaries(o.query, o.region))
		return nil
	}

	cities := d.Search(o.query, o.region)
	if len(cities) == 0 {
		fmt.Fprintln(w, "No match. Try another city, code, or region.")
		if o.suggest {
			for _, s := range postalmap.SuggestCities(d.Groups(), o.query, 2) {
				fmt.Fprintf(w, "Did you mean %s (%s)?\n", s.City.City, s.City.RegionCode)
			}
		}
		return nil
	}
	printCities(w, cities)
	fmt.Fprintf(w, "%d cities, %d postal codes.\n", len(cities), postalmap.CountPostalCodes(cities))
	return nil
}

func parseLatLng(s string) (float64, float64, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, errors.New("-near wants lat,lng")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing longitude: %w", err)
	}
	return lat, lng, nil
}

func printCities(w io.Writer, cities []postalmap.CityGroup) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCITY\tREGION\tLAT,LNG\tCODES")
	for _, c := range cities {
		fmt.Fprintf(tw, "%s\t%s\t%s (%s)\t%.4f,%.4f\t%s\n",
			c.ID, c.City, c.Region, c.RegionCode, c.Latitude, c.Longitude,
			strings.Join(postalmap.PostalLabels(c), ", "))
	}
	tw.Flush()
}

func printSummaries(w io.Writer, summaries []postalmap.RegionSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REGION\tCODE\tCITIES\tPOSTAL CODES")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", s.Region, s.RegionCode, s.CityCount, s.PostalCodeCount)
	}
	tw.Flush()
}

func printCityDetail(w io.Writer, c postalmap.CityGroup, recipient string) {
	fmt.Fprintf(w, "%s (%s), %s\n", c.City, c.RegionCode, c.Region)
	fmt.Fprintf(w, "Centroid: %.4f,%.4f  geohash %s\n", c.Latitude, c.Longitude, c.Geohash(6))
	fmt.Fprintln(w, "Postal codes:")
	for _, label := range postalmap.PostalLabels(c) {
		fmt.Fprintf(w, "  %s\n", label)
	}
	fmt.Fprintln(w, "Address:")
	for _, line := range postalmap.CityAddressLines(c, recipient) {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
