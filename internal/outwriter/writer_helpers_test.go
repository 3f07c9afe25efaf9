package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/internal/parquet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{"precision 1", 1, 38.46, "38.5"},
		{"precision 2", 2, 38.4615, "38.46"},
		{"negative value", 1, -10.26, "-10.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, intFmt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "%d", intFmt)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"reg": 42}))
	assert.Equal(t, "{\n  \"reg\": 42\n}\n", buf.String())

	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{"rows", []string{"product", "reg"}, [][]string{{"TD", "40"}, {"BOA", "30"}}, "product,reg\nTD,40\nBOA,30\n"},
		{"empty rows", []string{"product", "reg"}, nil, "product,reg\n"},
		{"quoted", []string{"title"}, [][]string{{"Behind, badly"}}, "title\n\"Behind, badly\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeCSVWithHeader(&buf, tt.header, func(w *csv.Writer) error {
				for _, row := range tt.rows {
					if err := w.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}

	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"col"}, func(*csv.Writer) error { return assert.AnError })
	assert.Equal(t, assert.AnError, err)
}

func TestWriteWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	err := writeWithFile(path, func(w io.Writer) error {
		return writeJSON(w, map[string]string{"status": "live"})
	}, "Wrote JSON")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, "live", decoded["status"])

	called := false
	require.NoError(t, writeWithFile("", func(io.Writer) error { called = true; return nil }, "Wrote table"))
	assert.True(t, called)

	assert.Equal(t, assert.AnError, writeWithFile(path, func(io.Writer) error { return assert.AnError }, "x"))
	assert.Error(t, writeWithFile("/nonexistent/dir/out.csv", func(io.Writer) error { return nil }, "x"))
}

func TestWriteParquetFile(t *testing.T) {
	err := writeParquetFile("", []parquet.RankingRecord{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output-file")

	path := filepath.Join(t.TempDir(), "ranking.parquet")
	require.NoError(t, writeParquetFile(path, []parquet.RankingRecord{{Rank: 1, Product: "TD"}}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestGetMaxTableTextWidth(t *testing.T) {
	tests := []struct {
		width, fixed, expected int
	}{
		{200, 60, 70},
		{100, 60, 40},
		{60, 60, 15},
	}
	for _, tt := range tests {
		cfg := &contract.Config{Width: tt.width}
		assert.Equal(t, tt.expected, getMaxTableTextWidth(cfg, tt.fixed))
	}
	assert.Positive(t, getTerminalWidth(&contract.Config{}))
}
