package scope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePoints(n int) []Point {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{T: t0.Add(time.Duration(i) * time.Second), V: float64(i)}
	}
	return pts
}

func TestDownsample_CopiesWhenSmall(t *testing.T) {
	src := makePoints(10)

	out := Downsample(nil, src, 100)
	assert.Equal(t, src, out)

	// The result is a copy, not an alias of src.
	out[0].V = -1
	assert.Equal(t, 0.0, src[0].V)
}

func TestDownsample_DecimatesToMax(t *testing.T) {
	src := makePoints(1000)

	out := Downsample(nil, src, 100)
	require.Len(t, out, 100)

	// First point survives and order is preserved.
	assert.Equal(t, src[0], out[0])
	for i := 1; i < len(out); i++ {
		assert.True(t, out[i].T.After(out[i-1].T), "points out of order at %d", i)
	}
}

func TestDownsample_ReusesDestination(t *testing.T) {
	src := makePoints(500)
	dst := make([]Point, 0, 200)

	out := Downsample(dst, src, 200)
	require.Len(t, out, 200)
	assert.Equal(t, 200, cap(out), "destination capacity must be reused")

	// Small input into a big destination also reuses it.
	small := makePoints(5)
	out2 := Downsample(out, small, 200)
	assert.Equal(t, small, out2)
	assert.Equal(t, 200, cap(out2))
}

func TestDownsample_Empty(t *testing.T) {
	out := Downsample(nil, nil, 100)
	assert.Empty(t, out)
}
