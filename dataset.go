package postalmap

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/postal-codes.yaml
var bundledDataset []byte

// BundledDatasetName identifies the embedded dataset in logs and errors.
const BundledDatasetName = "embedded:data/postal-codes.yaml"

// ErrEmptyDataset is returned when a dataset decodes to zero records.
var ErrEmptyDataset = errors.New("dataset has no records")

// datasetFile is the on-disk layout of a dataset:
//
//	records:
//	  - {city: Mogadishu, postal_code: "1001", region: Banaadir, latitude: 2.0469, longitude: 45.3182}
type datasetFile struct {
	Records []datasetRow `yaml:"records"`
}

// datasetRow is one decoded record. Coordinates are pointers so that a row
// without a latitude or longitude key is told apart from one at 0,0.
type datasetRow struct {
	City       string   `yaml:"city"`
	PostalCode string   `yaml:"postal_code"`
	Region     string   `yaml:"region"`
	Latitude   *float64 `yaml:"latitude" validate:"required"`
	Longitude  *float64 `yaml:"longitude" validate:"required"`
}

// DecodeRecords reads a YAML dataset. Unknown fields are rejected so that a
// misspelled key (e.g. "postalcode") fails loudly instead of yielding empty
// codes. Rows without coordinates fail with ErrInvalidRecord.
func DecodeRecords(r io.Reader) ([]Record, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f datasetFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataset
		}
		return nil, err
	}
	if len(f.Records) == 0 {
		return nil, ErrEmptyDataset
	}

	var errs []error
	records := make([]Record, 0, len(f.Records))
	for i, row := range f.Records {
		if problems := fieldProblems(i, row.City, row); len(problems) > 0 {
			errs = append(errs, problems...)
			continue
		}
		records = append(records, Record{
			City:       row.City,
			PostalCode: row.PostalCode,
			Region:     row.Region,
			Latitude:   *row.Latitude,
			Longitude:  *row.Longitude,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return records, nil
}

// LoadRecordsFile decodes the dataset stored at path.
func LoadRecordsFile(path string) ([]Record, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer fh.Close()

	records, err := DecodeRecords(fh)
	if err != nil {
		return nil, fmt.Errorf("decoding dataset %s: %w", path, err)
	}
	return records, nil
}

// BundledRecords decodes the dataset embedded in the binary.
func BundledRecords() ([]Record, error) {
	records, err := DecodeRecords(bytes.NewReader(bundledDataset))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", BundledDatasetName, err)
	}
	return records, nil
}
