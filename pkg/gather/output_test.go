package gather_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/gather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *gather.Report {
	return &gather.Report{
		Network:   domain.ScopedKey{Qualname: "AlchemicalNetwork", Token: "abc", Scope: domain.Scope{Org: "o", Campaign: "c", Project: "p"}},
		Timestamp: time.Unix(1700000000, 0).UTC(),
		Rows: []gather.Row{
			{
				Name:      "molA",
				Repeats:   3,
				Aggregate: gather.Aggregate{Estimate: &domain.Estimate{DG: kcal(-5.2), StdDev: kcal(0.3)}, Excluded: 1},
			},
			{Name: "molB", Repeats: 0},
		},
	}
}

func TestWriteTSV_ExactOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gather.WriteTSV(&buf, sampleReport().Rows))

	assert.Equal(t, "molecule\tdG (kcal/mol)\tstdev (kcal/mol)\nmolA\t-5.2\t0.3\nmolB\tNone\tNone\n", buf.String())
	assert.Len(t, strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n"), 3)
}

func TestWriteTSV_ConvertsToKcal(t *testing.T) {
	rows := []gather.Row{{
		Name:      "CCO",
		Aggregate: gather.Aggregate{Estimate: &domain.Estimate{DG: kj(-41.84), StdDev: kj(4.184)}},
	}}
	var buf bytes.Buffer
	require.NoError(t, gather.WriteTSV(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	fields := strings.Split(lines[1], "\t")
	require.Len(t, fields, 3)
	assert.Equal(t, "CCO", fields[0])
	assert.True(t, strings.HasPrefix(fields[1], "-10") || strings.HasPrefix(fields[1], "-9.99999"), fields[1])
}

func TestWriteTSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gather.WriteTSV(&buf, nil))
	assert.Equal(t, gather.Header+"\n", buf.String())
}

func TestFormatMagnitude(t *testing.T) {
	assert.Equal(t, "-5.2", gather.FormatMagnitude(-5.2))
	assert.Equal(t, "0.3", gather.FormatMagnitude(0.3))
	assert.Equal(t, "0", gather.FormatMagnitude(0))
	assert.Equal(t, "0.00001", gather.FormatMagnitude(1e-5))
}

func TestWriteResultsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.dat")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	require.NoError(t, gather.WriteResultsFile(path, sampleReport()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), gather.Header))
}

func TestWriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asfe.prom")
	require.NoError(t, gather.WriteMetrics(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `asfe_transformations{network="AlchemicalNetwork-abc-o-c-p",state="complete"} 1`)
	assert.Contains(t, text, `asfe_transformations{network="AlchemicalNetwork-abc-o-c-p",state="absent"} 1`)
	assert.Contains(t, text, `asfe_excluded_units{network="AlchemicalNetwork-abc-o-c-p"} 1`)
	assert.Contains(t, text, `asfe_repeats{network="AlchemicalNetwork-abc-o-c-p"} 3`)
	assert.Contains(t, text, `asfe_gather_timestamp_seconds{network="AlchemicalNetwork-abc-o-c-p"} 1.7e+09`)
}

func TestWritePlot(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"dg.png", "dg.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, gather.WritePlot(path, sampleReport()))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	empty := &gather.Report{Rows: []gather.Row{{Name: "molB"}}}
	assert.ErrorIs(t, gather.WritePlot(filepath.Join(dir, "none.png"), empty), gather.ErrNothingToPlot)
}
