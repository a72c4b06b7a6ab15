package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "2025-06-16", "2025-06-16"},
		{"canonical with whitespace", "  2025-06-16 ", "2025-06-16"},
		{"day first full year", "16/06/2025", "2025-06-16"},
		{"day first short year", "16/06/25", "2025-06-16"},
		{"year first swap", "2025/06/16", "2025-06-16"},
		{"single digit day and month", "5/6/2025", "2025-06-05"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"unrecognized passes through", "June 16th", "June 16th"},
		{"two slashes only", "16/06", "16/06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.input))
		})
	}
}

func TestNormalizeDate_Idempotent(t *testing.T) {
	inputs := []string{"2025-06-16", "16/06/25", "2025/06/16", "5/6/2025", "garbage"}

	for _, input := range inputs {
		once := NormalizeDate(input)
		assert.Equal(t, once, NormalizeDate(once), "input %q", input)
	}
}

func TestIsCanonicalDate(t *testing.T) {
	assert.True(t, IsCanonicalDate("2025-06-16"))
	assert.False(t, IsCanonicalDate("16/06/2025"))
	assert.False(t, IsCanonicalDate(""))
	assert.False(t, IsCanonicalDate("2025-6-16"))
}

func TestCombineDateTime(t *testing.T) {
	loc := bangkokLocation()

	got, err := combineDateTime("2025-06-16", "10:30", loc)
	assert.NoError(t, err)
	assert.Equal(t, "2025-06-16T10:30:00+07:00", got.Format("2006-01-02T15:04:05Z07:00"))

	_, err = combineDateTime("2025-06-16", "25:00", loc)
	assert.Error(t, err)
}
