package keyed

import (
	"covidwatch/internal/covid"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	table := []struct {
		name     string
		values   map[string]any
		expected covid.Numbers
	}{
		{
			name: "all present",
			values: map[string]any{
				"cases": float64(100), "deaths": float64(5), "hospitalized": float64(7),
				"recovered": float64(60), "active": float64(35),
			},
			expected: covid.Numbers{Cases: 100, Deaths: 5, Hospitalized: 7, Recoveries: 60, Active: 35},
		},
		{
			name:     "active derived",
			values:   map[string]any{"cases": "1,234", "deaths": "56", "recoveries": "78"},
			expected: covid.Numbers{Cases: 1234, Deaths: 56, Recoveries: 78, Active: 1100},
		},
		{
			name:     "derived active with missing operand",
			values:   map[string]any{"cases": float64(10), "deaths": float64(1)},
			expected: covid.Numbers{Cases: 10, Deaths: 1},
		},
		{
			name:     "garbage values",
			values:   map[string]any{"cases": "n/a", "deaths": nil, "active": true},
			expected: covid.Numbers{},
		},
		{
			name:     "overflowing counter",
			values:   map[string]any{"cases": "12,345,678,901,234,567,890", "deaths": float64(1e20), "recovered": float64(3)},
			expected: covid.Numbers{Recoveries: 3},
		},
		{
			name:     "empty",
			values:   map[string]any{},
			expected: covid.Numbers{},
		},
	}

	for _, row := range table {
		require.Equal(t, row.expected, Map(row.values, DefaultKeys), row.name)
	}
}

func TestMapKeyPriority(t *testing.T) {
	values := map[string]any{"recovered": float64(3), "recoveries": float64(9)}
	require.Equal(t, int64(3), Map(values, DefaultKeys).Recoveries)
}
