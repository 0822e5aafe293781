package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testThreshold = 10.0

func TestHeatUnits(t *testing.T) {
	assert.Equal(t, 0.0, HeatUnits(5, testThreshold))
	assert.Equal(t, 0.0, HeatUnits(10, testThreshold))
	assert.Equal(t, 10.5, HeatUnits(20.5, testThreshold))
}

func TestComputeHeat_FullWindow(t *testing.T) {
	s := makeSeries(testStation, day(2017, time.June, 1), 5, 20, 20, 20, 20)

	recs := ComputeHeat(s, testThreshold, 5)

	require.Len(t, recs, 5)
	assert.Equal(t, []float64{0, 10, 10, 10, 10}, hduValues(recs))
	for i := range 4 {
		assert.False(t, recs[i].HasWindow, "row %d has no full window", i)
	}
	assert.True(t, recs[4].HasWindow)
	assert.Equal(t, 40.0, recs[4].WindowSum)

	q := Qualifying(recs, 35)
	require.Len(t, q, 1)
	assert.Equal(t, day(2017, time.June, 5), q[0].Date.Time)
}

func TestComputeHeat_ColdDayOverride(t *testing.T) {
	tests := []struct {
		name   string
		temps  []float64
		window int
		want   float64
	}{
		{"four zero days keep the sum", []float64{5, 5, 5, 5, 100}, 5, 90},
		{"five zero days reset", []float64{5, 5, 5, 5, 5, 100}, 6, 0},
		{"two zero days of six", []float64{5, 20, 20, 20, 20, 5}, 6, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := makeSeries(testStation, day(2017, time.June, 1), tt.temps...)
			recs := ComputeHeat(s, testThreshold, tt.window)
			last := recs[len(recs)-1]
			require.True(t, last.HasWindow)
			assert.Equal(t, tt.want, last.WindowSum)
		})
	}
}

func TestComputeHeat_OverrideBeatsRequirement(t *testing.T) {
	s := makeSeries(testStation, day(2017, time.June, 1), 5, 5, 5, 5, 5, 100)
	recs := ComputeHeat(s, testThreshold, 6)
	assert.Empty(t, Qualifying(recs, 35), "raw sum 90 exceeds 35 but the window is reset")
}

func TestComputeHeat_SlidingZeroCount(t *testing.T) {
	s := makeSeries(testStation, day(2017, time.June, 1), 5, 5, 5, 5, 5, 20, 20, 20, 20, 20)
	recs := ComputeHeat(s, testThreshold, 5)

	sums := make([]float64, 0, 6)
	for _, r := range recs[4:] {
		sums = append(sums, r.WindowSum)
	}
	assert.Equal(t, []float64{0, 10, 20, 30, 40, 50}, sums)
}

func TestComputeHeat_WindowLongerThanSeries(t *testing.T) {
	s := makeSeries(testStation, day(2017, time.June, 1), 30, 30, 30)
	recs := ComputeHeat(s, testThreshold, 4)
	for _, r := range recs {
		assert.False(t, r.HasWindow)
	}
	assert.Empty(t, Qualifying(recs, 1))
}

func TestQualifying_StrictlyGreater(t *testing.T) {
	s := makeSeries(testStation, day(2017, time.June, 1), 20, 20)
	recs := ComputeHeat(s, testThreshold, 2)
	assert.Empty(t, Qualifying(recs, 20))
	assert.Len(t, Qualifying(recs, 19.5), 1)
}
