package sheetstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct {
	Name     string  `sheet:"name"`
	Count    int     `sheet:"count"`
	Rate     float64 `sheet:"rate"`
	Internal string
}

func TestDecodeRows(t *testing.T) {
	values := [][]interface{}{
		{"name", "count", "rate"},
		{"Alice", "3", "1.5"},
		{"Bob", "0", ""},
	}

	rows, err := DecodeRows[testRow](values)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Alice", rows[0].Name)
	assert.Equal(t, 3, rows[0].Count)
	assert.Equal(t, 1.5, rows[0].Rate)
	assert.Equal(t, "Bob", rows[1].Name)
	assert.Equal(t, 0, rows[1].Count)
}

func TestDecodeRows_HeaderOnly(t *testing.T) {
	values := [][]interface{}{
		{"name", "count", "rate"},
	}

	rows, err := DecodeRows[testRow](values)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeRows_ShortAndUnknownColumns(t *testing.T) {
	// Extra column the struct doesn't know, plus a row shorter than the header
	values := [][]interface{}{
		{"name", "count", "rate", "notes"},
		{"Alice", "2", "0.5", "walk-in regular"},
		{"Bob"},
	}

	rows, err := DecodeRows[testRow](values)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Alice", rows[0].Name)
	assert.Equal(t, "Bob", rows[1].Name)
	assert.Equal(t, 0, rows[1].Count)
}

func TestDecodeRows_BadCell(t *testing.T) {
	values := [][]interface{}{
		{"name", "count"},
		{"Alice", "not-a-number"},
	}

	_, err := DecodeRows[testRow](values)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestEncodeRow(t *testing.T) {
	row := EncodeRow(testRow{Name: "Alice", Count: 3, Rate: 1.5, Internal: "skipped"})

	// Internal carries no sheet tag and must not be emitted
	require.Len(t, row, 3)
	assert.Equal(t, "Alice", row[0])
	assert.Equal(t, 3, row[1])
	assert.Equal(t, 1.5, row[2])
}
