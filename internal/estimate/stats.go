package estimate

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/circularity-mcp/internal/mask"
)

// Summary describes repeated batch estimates of the same mask.
type Summary struct {
	Runs   int     `json:"runs"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Repeat runs Batch runs times and summarizes the estimates. StdDev is
// the sample standard deviation, zero for a single run.
func Repeat(m *mask.Mask, runs int, rng *rand.Rand) (*Summary, error) {
	if runs < 1 {
		return nil, fmt.Errorf("runs must be positive, got %d", runs)
	}

	values := make([]float64, runs)
	for i := range values {
		est, err := Batch(m, rng)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		values[i] = est.Value
	}

	sum := &Summary{
		Runs: runs,
		Min:  floats.Min(values),
		Max:  floats.Max(values),
	}
	if runs == 1 {
		sum.Mean = values[0]
	} else {
		sum.Mean, sum.StdDev = stat.MeanStdDev(values, nil)
	}
	sort.Float64s(values)
	sum.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
	return sum, nil
}
