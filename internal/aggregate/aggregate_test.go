package aggregate

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundCost(t *testing.T) {
	tests := []struct {
		name string
		avg  float64
		want int
	}{
		{"exact multiple stays", 10000, 10000},
		{"rounds up", 12345, 12350},
		{"fractional mean rounds up", 6333.333333, 6340},
		{"small value", 1, 10},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundCost(tt.avg))
		})
	}
}

func TestCostUpdateSkipsEmptyGroup(t *testing.T) {
	// Deleting the last course leaves AVG(tuition) NULL; the stored
	// average must not be touched.
	_, ok := costUpdate(sql.NullFloat64{})
	assert.False(t, ok)

	cost, ok := costUpdate(sql.NullFloat64{Float64: 6333.33, Valid: true})
	assert.True(t, ok)
	assert.Equal(t, 6340, cost)
}

func TestRatingUpdateSkipsEmptyGroup(t *testing.T) {
	_, ok := ratingUpdate(sql.NullFloat64{})
	assert.False(t, ok)

	rating, ok := ratingUpdate(sql.NullFloat64{Float64: 7.5, Valid: true})
	assert.True(t, ok)
	assert.Equal(t, 7.5, rating)
}
