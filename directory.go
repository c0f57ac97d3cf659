package postalmap

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/golang/geo/s2"
	"go.uber.org/zap"
)

// defaultCellLevel is the S2 cell level of the nearest-city index. Level 6
// cells are at least ~94km across.
const defaultCellLevel = 6

// maxNearestDistance is ~250km in radians on the unit sphere. NearestCity
// reports no match beyond it, whatever the cell level.
const maxNearestDistance = 0.0392

// DirectoryConfig contains configuration options for Directory construction.
type DirectoryConfig struct {
	DataFile  string      // YAML dataset path (default: the embedded dataset)
	Records   []Record    // In-memory records set by WithRecords; take precedence over DataFile, even when nil
	Logger    *zap.Logger // Default: zap.NewNop()
	CellLevel int         // S2 level of the nearest-city index (default: 6)

	recordsSet bool
}

// Option is a functional option for configuring a Directory.
type Option func(*DirectoryConfig)

// WithDataFile loads records from a YAML dataset file instead of the
// embedded one.
func WithDataFile(path string) Option {
	return func(c *DirectoryConfig) {
		c.DataFile = path
	}
}

// WithRecords uses the given records instead of loading a dataset. A nil
// or empty slice yields an empty directory.
func WithRecords(records []Record) Option {
	return func(c *DirectoryConfig) {
		c.Records = records
		c.recordsSet = true
	}
}

// WithLogger sets the logger used while building the directory.
func WithLogger(l *zap.Logger) Option {
	return func(c *DirectoryConfig) {
		c.Logger = l
	}
}

// WithCellLevel sets the S2 cell level of the nearest-city index (1-30).
func WithCellLevel(level int) Option {
	return func(c *DirectoryConfig) {
		c.CellLevel = level
	}
}

func defaultConfig() *DirectoryConfig {
	return &DirectoryConfig{
		Logger:    zap.NewNop(),
		CellLevel: defaultCellLevel,
	}
}

// Directory is an aggregated postal-code dataset ready for searching.
// It is immutable after construction and safe for concurrent use.
type Directory struct {
	records   []Record
	groups    []CityGroup
	regions   []string
	byID      map[string]int
	cellIndex map[s2.CellID][]int
	config    *DirectoryConfig
	source    string
}

// Singleton pattern for the default Directory.
var (
	defaultDirectory     *Directory
	defaultDirectoryOnce sync.Once
	defaultDirectoryErr  error
)

// GetDefaultDirectory returns a shared Directory over the embedded dataset,
// building it on first call.
func GetDefaultDirectory() (*Directory, error) {
	defaultDirectoryOnce.Do(func() {
		defaultDirectory, defaultDirectoryErr = NewDirectory()
	})
	return defaultDirectory, defaultDirectoryErr
}

// NewDirectory loads a dataset and aggregates it into city groups.
//
// Example:
//
//	d, err := NewDirectory(WithDataFile("./postal-codes.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, city := range d.Search("mog", AllRegions) {
//	    fmt.Println(city.City, PostalLabels(city))
//	}
func NewDirectory(opts ...Option) (*Directory, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.CellLevel < 1 || cfg.CellLevel > s2.MaxLevel {
		return nil, fmt.Errorf("cell level %d out of range [1, %d]", cfg.CellLevel, s2.MaxLevel)
	}

	d := &Directory{config: cfg}

	var err error
	switch {
	case cfg.recordsSet:
		d.records, d.source = cfg.Records, "records"
	case cfg.DataFile != "":
		d.records, err = LoadRecordsFile(cfg.DataFile)
		d.source = cfg.DataFile
	default:
		d.records, err = BundledRecords()
		d.source = BundledDatasetName
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	d.groups = BuildCityGroups(d.records)
	d.regions = AvailableRegions(d.groups)
	d.byID = make(map[string]int, len(d.groups))
	for i, g := range d.groups {
		d.byID[g.ID] = i
	}
	d.buildCellIndex()

	log := cfg.Logger.With(zap.String("source", d.source))
	for _, g := range d.groups {
		if g.RegionCode == UnknownRegionCode {
			log.Warn("unresolved region", zap.String("city", g.City), zap.String("region", g.Region))
		}
	}
	log.Info("postal directory loaded",
		zap.Int("records", len(d.records)),
		zap.Int("cities", len(d.groups)),
		zap.Int("regions", len(d.regions)),
	)
	return d, nil
}

// Source describes where the records came from.
func (d *Directory) Source() string { return d.source }

// Records returns the raw records. Callers must not modify the slice.
func (d *Directory) Records() []Record { return d.records }

// Groups returns every city group, sorted by city. Callers must not modify
// the slice.
func (d *Directory) Groups() []CityGroup { return d.groups }

// Regions returns the distinct region names present in the dataset, sorted.
func (d *Directory) Regions() []string { return d.regions }

// City returns the group with the given id, as selected by a marker or
// directory row.
func (d *Directory) City(id string) (CityGroup, bool) {
	i, ok := d.byID[id]
	if !ok {
		return CityGroup{}, false
	}
	return d.groups[i], true
}

// Search filters the city groups by free-text query, then by region.
// Either argument may be empty; region may also be AllRegions.
func (d *Directory) Search(query, region string) []CityGroup {
	return FilterByRegion(FilterCityGroups(d.groups, query), region)
}

// Summaries returns the region coverage of Search(query, region).
func (d *Directory) Summaries(query, region string) []RegionSummary {
	return BuildRegionSummaries(d.Search(query, region))
}

// buildCellIndex creates an S2 cell index of the group centroids.
func (d *Directory) buildCellIndex() {
	d.cellIndex = make(map[s2.CellID][]int)
	for i, g := range d.groups {
		if !validCoordinate(g.Latitude, g.Longitude) {
			continue
		}
		cell := d.cellFor(g.Latitude, g.Longitude)
		d.cellIndex[cell] = append(d.cellIndex[cell], i)
	}
}

func (d *Directory) cellFor(lat, lng float64) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng)).Parent(d.config.CellLevel)
}

// cellAndNeighbors returns the given cell plus its edge and corner
// neighbours.
func cellAndNeighbors(cell s2.CellID) []s2.CellID {
	cells := make([]s2.CellID, 0, 9)
	cells = append(cells, cell)

	edgeNeighbors := cell.EdgeNeighbors()
	cells = append(cells, edgeNeighbors[:]...)

	seen := make(map[s2.CellID]bool, 9)
	for _, c := range cells {
		seen[c] = true
	}
	for _, edge := range edgeNeighbors {
		for _, corner := range edge.EdgeNeighbors() {
			if !seen[corner] {
				cells = append(cells, corner)
				seen[corner] = true
			}
		}
	}
	return cells
}

// nearCandidate pairs a group index with its distance from the query point.
type nearCandidate struct {
	idx  int
	dist float64
}

// ringRadius is the distance, in radians, that a cell plus its neighbours
// is guaranteed to cover around any point inside the cell: no point of the
// ring's outside lies closer than one full cell width.
func ringRadius(level int) float64 {
	return s2.MinWidthMetric.Value(level)
}

// NearestCity returns the city whose centroid is closest to the point, for
// map clicks that land between markers. It reports false for invalid
// coordinates and when no city lies within ~250km.
//
// The cell index answers queries whose nearest city lies within the
// neighbour ring of the query cell. Anything farther is settled by a scan
// of every group, so the result never depends on the cell level.
func (d *Directory) NearestCity(lat, lng float64) (CityGroup, bool) {
	if !validCoordinate(lat, lng) {
		return CityGroup{}, false
	}

	query := s2.LatLngFromDegrees(lat, lng)
	var candidates []nearCandidate
	for _, cell := range cellAndNeighbors(d.cellFor(lat, lng)) {
		for _, idx := range d.cellIndex[cell] {
			candidates = append(candidates, d.candidate(query, idx))
		}
	}

	best, ok := d.closest(candidates)
	if !ok || best.dist > ringRadius(d.config.CellLevel) {
		candidates = candidates[:0]
		for i, g := range d.groups {
			if validCoordinate(g.Latitude, g.Longitude) {
				candidates = append(candidates, d.candidate(query, i))
			}
		}
		best, ok = d.closest(candidates)
	}
	if !ok || best.dist > maxNearestDistance {
		return CityGroup{}, false
	}
	return d.groups[best.idx], true
}

func (d *Directory) candidate(query s2.LatLng, idx int) nearCandidate {
	g := d.groups[idx]
	dist := float64(query.Distance(s2.LatLngFromDegrees(g.Latitude, g.Longitude)))
	return nearCandidate{idx: idx, dist: dist}
}

// closest picks the candidate with the smallest distance, then city and id,
// for full determinism.
func (d *Directory) closest(candidates []nearCandidate) (nearCandidate, bool) {
	if len(candidates) == 0 {
		return nearCandidate{}, false
	}
	return slices.MinFunc(candidates, func(a, b nearCandidate) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		ga, gb := d.groups[a.idx], d.groups[b.idx]
		if c := cmp.Compare(ga.City, gb.City); c != 0 {
			return c
		}
		return cmp.Compare(ga.ID, gb.ID)
	}), true
}
