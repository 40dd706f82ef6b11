package comments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageEstimateInitialSeed(t *testing.T) {
	e := NewPageEstimate(50)
	e.SetInitial(120, 50)

	assert.Equal(t, 3, e.Pages())
	assert.Equal(t, 120, e.Items())
}

func TestPageEstimateFallsBackToFetchedCount(t *testing.T) {
	e := NewPageEstimate(50)
	e.SetInitial(0, 37)

	assert.Equal(t, 1, e.Pages())
	assert.Equal(t, 37, e.Items())
}

func TestPageEstimateRaisesButNeverLowers(t *testing.T) {
	e := NewPageEstimate(50)
	e.SetInitial(120, 50)
	assert.Equal(t, 3, e.Pages())

	// Accumulation outgrows the reported count
	changed := e.Observe(151)
	assert.True(t, changed)
	assert.Equal(t, 4, e.Pages())

	// Smaller observations never shrink the estimate
	changed = e.Observe(100)
	assert.False(t, changed)
	assert.Equal(t, 4, e.Pages())
	assert.Equal(t, 151, e.Items())
}

func TestPageEstimateGrowthWithinSamePage(t *testing.T) {
	e := NewPageEstimate(50)
	e.SetInitial(120, 50)

	// 130 items still fit in 3 pages; the basis moves, the page count holds
	changed := e.Observe(130)
	assert.False(t, changed)
	assert.Equal(t, 3, e.Pages())
	assert.Equal(t, 130, e.Items())
}

func TestPageEstimateMinimumOnePage(t *testing.T) {
	e := NewPageEstimate(50)
	assert.Equal(t, 1, e.Pages())

	e.SetInitial(0, 0)
	assert.Equal(t, 1, e.Pages())
}

func TestPagesFor(t *testing.T) {
	tests := []struct {
		items    int
		pageSize int
		want     int
	}{
		{0, 50, 1},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{120, 50, 3},
		{150, 50, 3},
		{151, 50, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pagesFor(tt.items, tt.pageSize),
			"pagesFor(%d, %d)", tt.items, tt.pageSize)
	}
}
