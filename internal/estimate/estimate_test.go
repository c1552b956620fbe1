package estimate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/circularity-mcp/internal/mask"
)

// disk returns a frame with a disk of radius r at (ox+r, oy+r), sampled at
// pixel centers, so the disk is inscribed in its bounding box.
func disk(t *testing.T, width, height, ox, oy, r int) *mask.Mask {
	t.Helper()
	m, err := mask.Select(width, height, func(x, y int) bool {
		dx := float64(x-ox) + 0.5 - float64(r)
		dy := float64(y-oy) + 0.5 - float64(r)
		return dx*dx+dy*dy <= float64(r*r)
	})
	require.NoError(t, err)
	return m
}

func TestBatch_InscribedDisk(t *testing.T) {
	m := disk(t, 100, 100, 0, 0, 50)
	rng := NewRand(42)

	var sum float64
	const calls = 1000
	for i := 0; i < calls; i++ {
		est, err := Batch(m, rng)
		require.NoError(t, err)
		require.False(t, est.Converged)
		require.Positive(t, est.Trials)
		sum += est.Value
	}
	assert.InDelta(t, math.Pi, sum/calls, 0.05)
}

func TestBatch_EmptyMask(t *testing.T) {
	m, err := mask.New(20, 20)
	require.NoError(t, err)

	_, err = Batch(m, NewRand(1))
	require.ErrorIs(t, err, ErrDivisionUndefined)
	require.ErrorIs(t, err, mask.ErrEmptyMask)

	_, err = Batch(nil, NewRand(1))
	require.ErrorIs(t, err, ErrDivisionUndefined)
}

func TestBatch_CropDoesNotChangeResult(t *testing.T) {
	m := disk(t, 120, 90, 17, 9, 30)
	cropped, err := m.Crop()
	require.NoError(t, err)

	a, err := Batch(m, NewRand(7))
	require.NoError(t, err)
	b, err := Batch(cropped, NewRand(7))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSimulation_Converges(t *testing.T) {
	m := disk(t, 100, 100, 0, 0, 50)
	sim := &Simulation{Mask: m, MaxHistories: 100000, Criterion: 0.01}

	res, err := sim.Run(NewRand(3))
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Len(t, res.History, res.Trials)
	assert.LessOrEqual(t, res.Trials, 100000)

	last, ok := res.History.Last()
	require.True(t, ok)
	assert.LessOrEqual(t, last.Deviation, 0.01)
	assert.Equal(t, res.Value, last.Estimate)

	// only the final record meets the criterion
	for _, r := range res.History[:len(res.History)-1] {
		require.Greater(t, r.Deviation, 0.01)
	}
}

func TestSimulation_HistoryInvariants(t *testing.T) {
	m := disk(t, 60, 60, 0, 0, 30)
	var seen []Record
	sim := &Simulation{
		Mask:         m,
		MaxHistories: 500,
		Criterion:    1e-12,
		OnTrial:      func(r Record) { seen = append(seen, r) },
	}

	res, err := sim.Run(NewRand(11))
	require.NoError(t, err)
	require.Len(t, res.History, res.Trials)
	require.LessOrEqual(t, res.Trials, 500)
	assert.Equal(t, []Record(res.History), seen)

	for i, r := range res.History {
		assert.Equal(t, i+1, r.Trial)
		assert.InDelta(t, math.Abs(r.Estimate-math.Pi), r.Deviation, 1e-12)
		assert.GreaterOrEqual(t, r.Estimate, 0.0)
		assert.LessOrEqual(t, r.Estimate, 4.0)
	}
	if !res.Converged {
		assert.Equal(t, 500, res.Trials)
	}
	assert.Len(t, res.History.Estimates(), res.Trials)
}

func TestSimulation_LooseCriterionStopsAtFirstTrial(t *testing.T) {
	m := disk(t, 40, 40, 0, 0, 20)
	sim := &Simulation{Mask: m, MaxHistories: 1000, Criterion: 4}

	res, err := sim.Run(NewRand(5))
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Trials)
	assert.Len(t, res.History, 1)
}

func TestSimulation_EmptyMaskRunsToLimit(t *testing.T) {
	m, err := mask.New(30, 30)
	require.NoError(t, err)
	sim := &Simulation{Mask: m, MaxHistories: 50, Criterion: 0.001}

	res, err := sim.Run(NewRand(9))
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 50, res.Trials)
	for _, r := range res.History {
		assert.Zero(t, r.Estimate)
		assert.InDelta(t, math.Pi, r.Deviation, 1e-12)
	}
}

func TestSimulation_Deterministic(t *testing.T) {
	m := disk(t, 50, 50, 0, 0, 25)
	sim := &Simulation{Mask: m, MaxHistories: 300, Criterion: 1e-9}

	a, err := sim.Run(NewRand(21))
	require.NoError(t, err)
	b, err := sim.Run(NewRand(21))
	require.NoError(t, err)
	assert.Equal(t, a.History, b.History)
}

func TestSimulation_Invalid(t *testing.T) {
	_, err := (&Simulation{}).Run(NewRand(1))
	require.ErrorIs(t, err, ErrInvalidSimulation)

	m := disk(t, 10, 10, 0, 0, 5)
	_, err = (&Simulation{Mask: m, MaxHistories: -1}).Run(NewRand(1))
	require.ErrorIs(t, err, ErrInvalidSimulation)

	_, err = (&Simulation{Mask: m, Criterion: -0.5}).Run(NewRand(1))
	require.ErrorIs(t, err, ErrInvalidSimulation)
}

func TestRepeat(t *testing.T) {
	m := disk(t, 100, 100, 0, 0, 50)

	sum, err := Repeat(m, 200, NewRand(8))
	require.NoError(t, err)
	assert.Equal(t, 200, sum.Runs)
	assert.InDelta(t, math.Pi, sum.Mean, 0.05)
	assert.InDelta(t, math.Pi, sum.Median, 0.05)
	assert.LessOrEqual(t, sum.Min, sum.Mean)
	assert.GreaterOrEqual(t, sum.Max, sum.Mean)
	assert.Positive(t, sum.StdDev)
	assert.Less(t, sum.StdDev, 0.1)
}

func TestRepeat_SingleRun(t *testing.T) {
	m := disk(t, 40, 40, 0, 0, 20)

	sum, err := Repeat(m, 1, NewRand(4))
	require.NoError(t, err)
	assert.Zero(t, sum.StdDev)
	assert.Equal(t, sum.Min, sum.Max)
	assert.Equal(t, sum.Mean, sum.Median)
}

func TestRepeat_Errors(t *testing.T) {
	m := disk(t, 40, 40, 0, 0, 20)
	_, err := Repeat(m, 0, NewRand(4))
	require.Error(t, err)

	empty, _ := mask.New(5, 5)
	_, err = Repeat(empty, 3, NewRand(4))
	require.ErrorIs(t, err, ErrDivisionUndefined)
}
