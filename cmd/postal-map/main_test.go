package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreiashu/postalmap"
)

func runWith(t *testing.T, o options) (string, error) {
	t.Helper()
	if o.region == "" {
		o.region = postalmap.AllRegions
	}
	if o.recipient == "" {
		o.recipient = SampleRecipient
	}
	var buf bytes.Buffer
	err := run(&buf, zap.NewNop(), o)
	return buf.String(), err
}

func TestRunSearch(t *testing.T) {
	out, err := runWith(t, options{query: "mog"})
	require.NoError(t, err)
	assert.Contains(t, out, "mogadishu|BN")
	assert.Contains(t, out, "BN 01001, BN 01002")
	assert.Contains(t, out, "1 cities, 7 postal codes.")
	assert.NotContains(t, out, "Hargeisa")

	out, err = runWith(t, options{region: "Lower Juba"})
	require.NoError(t, err)
	assert.Contains(t, out, "Afmadow")
	assert.Contains(t, out, "Kismayo")
	assert.Contains(t, out, "3 cities, 6 postal codes.")
}

func TestRunNoMatch(t *testing.T) {
	out, err := runWith(t, options{query: "mogadisho", suggest: true})
	require.NoError(t, err)
	assert.Equal(t, "No match. Try another city, code, or region.\nDid you mean Mogadishu (BN)?\n", out)

	out, err = runWith(t, options{query: "mogadisho"})
	require.NoError(t, err)
	assert.Equal(t, "No match. Try another city, code, or region.\n", out)
}

func TestRunSummary(t *testing.T) {
	out, err := runWith(t, options{summary: true, region: "somaliland"})
	require.NoError(t, err)
	assert.Contains(t, out, "REGION")
	assert.Contains(t, out, "WAQOOYI GALBEED")
	assert.NotContains(t, out, "BANAADIR")
}

func TestRunCityDetail(t *testing.T) {
	out, err := runWith(t, options{cityID: "kismayo|JH", recipient: "Amina Ali"})
	require.NoError(t, err)
	assert.Contains(t, out, "Kismayo (JH), JUBBADA HOOSE")
	assert.Contains(t, out, "  JH 04001\n  JH 04002\n  JH 04003\n")
	assert.Contains(t, out, "  Amina Ali\n  P.O. Box 4001\n  KISMAYO, JH 04001\n  SOMALIA\n")

	_, err = runWith(t, options{cityID: "atlantis|--"})
	assert.EqualError(t, err, `city "atlantis|--" not found`)
}

func TestRunNear(t *testing.T) {
	out, err := runWith(t, options{near: "9.56, 44.40"})
	require.NoError(t, err)
	assert.Contains(t, out, "Hargeisa (WG)")

	out, err = runWith(t, options{near: "0,0"})
	require.NoError(t, err)
	assert.Equal(t, "No city near that point.\n", out)

	_, err = runWith(t, options{near: "north"})
	assert.Error(t, err)
}

func TestRunValidate(t *testing.T) {
	out, err := runWith(t, options{validate: true})
	require.NoError(t, err)
	assert.Equal(t, postalmap.BundledDatasetName+": 67 records, 35 cities, 16 regions OK\n", out)

	path := filepath.Join(t.TempDir(), "codes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"records:\n  - {city: Port Royal, postal_code: \"1\", region: Atlantis, latitude: 1, longitude: 1}\n",
	), 0o644))
	_, err = runWith(t, options{dataFile: path, validate: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, postalmap.ErrUnresolvedRegion)
}

func TestRunMissingDataFile(t *testing.T) {
	_, err := runWith(t, options{dataFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLatLng(t *testing.T) {
	tests := []struct {
		input   string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{input: "2.05,45.32", lat: 2.05, lng: 45.32},
		{input: " -0.4 , 42.5 ", lat: -0.4, lng: 42.5},
		{input: "2.05", wantErr: true},
		{input: "x,45", wantErr: true},
		{input: "2,y", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lat, lng, err := parseLatLng(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, lat)
			assert.Equal(t, tt.lng, lng)
		})
	}
}

func TestParseFlags(t *testing.T) {
	t.Setenv("POSTALMAP_DATA", "/srv/codes.yaml")
	t.Setenv("POSTALMAP_LOG_LEVEL", "")
	t.Setenv("POSTALMAP_ENV", "production")

	o := parseFlags(flag.NewFlagSet("postal-map", flag.ContinueOnError), []string{"-q", "mog", "-summary", "-suggest=false"})
	assert.Equal(t, "/srv/codes.yaml", o.dataFile)
	assert.Equal(t, "mog", o.query)
	assert.Equal(t, postalmap.AllRegions, o.region)
	assert.Equal(t, SampleRecipient, o.recipient)
	assert.True(t, o.summary)
	assert.False(t, o.suggest)
	assert.Equal(t, "warn", o.logLevel)
	assert.Equal(t, "production", o.env)

	o = parseFlags(flag.NewFlagSet("postal-map", flag.ContinueOnError), []string{"-data", "local.yaml", "-log-level", "debug"})
	assert.Equal(t, "local.yaml", o.dataFile)
	assert.Equal(t, "debug", o.logLevel)
	assert.True(t, o.suggest)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("production", "info")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = newLogger("development", "loud")
	assert.Error(t, err)
}

func TestExecuteReportsErrorsOnStderr(t *testing.T) {
	t.Setenv("POSTALMAP_DATA", "")
	t.Setenv("POSTALMAP_ENV", "")

	var stdout, stderr bytes.Buffer
	code := execute([]string{"-log-level", "fatal", "-city", "atlantis|--"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Equal(t, "Error: city \"atlantis|--\" not found\n", stderr.String())

	stdout.Reset()
	stderr.Reset()
	code = execute([]string{"-log-level", "loud"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: parsing log level")

	stdout.Reset()
	stderr.Reset()
	code = execute([]string{"-log-level", "fatal", "-q", "mog"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "1 cities, 7 postal codes.")
	assert.Empty(t, stderr.String())
}
