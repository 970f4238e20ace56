package ranks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentileAverageTies(t *testing.T) {
	// Two ties at 20 occupy positions 2 and 3; both get (2+3)/2 / 4.
	got := Percentile([]float64{10, 20, 20, 30})
	assert.InDeltaSlice(t, []float64{0.25, 0.625, 0.625, 1.0}, got, 1e-9)
}

func TestPercentileSingleAndEmpty(t *testing.T) {
	assert.InDeltaSlice(t, []float64{1.0}, Percentile([]float64{7}), 1e-9)
	assert.Empty(t, Percentile(nil))
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 2.0, Median([]float64{3, 1, 2}), 1e-9)
	assert.InDelta(t, 2.5, Median([]float64{4, 1, 2, 3}), 1e-9)
	assert.Zero(t, Median(nil))
}

func TestMinMax(t *testing.T) {
	min, max := MinMax([]float64{5, -1, 3})
	assert.Equal(t, -1.0, min)
	assert.Equal(t, 5.0, max)
}
