package transfer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMandateDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"iso", "2023-03-05", time.Date(2023, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"iso without padding", "2023-3-5", time.Date(2023, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"iso timestamp", "2022-11-30T00:00:00Z", time.Date(2022, time.November, 30, 0, 0, 0, 0, time.UTC)},
		{"german dotted", "05.03.2023", time.Date(2023, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"german unpadded", "5.3.2023", time.Date(2023, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"slashes", "31/12/2021", time.Date(2021, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{"surrounding text", "unterschrieben am 01.02.2020", time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{"two digit year", "05.03.23", time.Date(2023, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"leap day", "29.02.2024", time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)},
		{"whitespace", "  2023-03-05 ", time.Date(2023, time.March, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseMandateDate(tt.input)
			require.NoError(t, err)
			assert.True(t, result.Equal(tt.expected), "ParseMandateDate(%q) = %v, expected %v", tt.input, result, tt.expected)
		})
	}
}

func TestParseMandateDateISOMatchesCalendar(t *testing.T) {
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	for d := start; d.Year() < 2022; d = d.AddDate(0, 0, 13) {
		result, err := ParseMandateDate(d.Format("2006-01-02"))
		require.NoError(t, err)
		assert.True(t, result.Equal(d), "expected %v, got %v", d, result)
	}
}

func TestParseMandateDateInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"no digits", "gestern"},
		{"two groups", "05.03"},
		{"one group", "20230305"},
		{"month out of range", "05.13.2023"},
		{"day out of range", "2023-02-30"},
		{"zero day", "00.03.2023"},
		{"huge number", "99999999999999999999.01.2023"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMandateDate(tt.input)
			require.Error(t, err)

			var dateErr *InvalidDateError
			assert.True(t, errors.As(err, &dateErr), "expected InvalidDateError, got %T", err)
		})
	}
}
