package estimate

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ironsheep/circularity-mcp/internal/mask"
)

// ErrDivisionUndefined is returned when an estimate would divide by zero:
// the mask is empty or no random sample was drawn.
var ErrDivisionUndefined = errors.New("division undefined")

// Estimate is a single circularity estimate.
type Estimate struct {
	// Value is the estimate of pi.
	Value float64 `json:"value"`

	// Trials is the number of samples in the denominator.
	Trials int `json:"trials"`

	// Converged is set by Simulation when the estimate came within the
	// criterion of pi. Batch estimates never converge.
	Converged bool `json:"converged"`
}

// NewRand returns a PCG-backed generator. A zero seed selects a time
// based seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Batch estimates pi from m in one pass.
//
// Every pixel of the mask's bounding box draws a random byte; bytes of 128
// or more are samples. The estimate is 4 × (samples on the mask) /
// (samples).
//
// # Errors
//
//   - ErrDivisionUndefined if m is empty or no pixel was sampled
func Batch(m *mask.Mask, rng *rand.Rand) (*Estimate, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mask", ErrDivisionUndefined)
	}
	r, err := m.Bounds()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDivisionUndefined, err)
	}

	var samples, inside int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if rng.UintN(256) < 128 {
				continue
			}
			samples++
			if m.At(x, y) {
				inside++
			}
		}
	}
	if samples == 0 {
		return nil, fmt.Errorf("%w: no pixel sampled in %dx%d region", ErrDivisionUndefined, r.Dx(), r.Dy())
	}

	return &Estimate{
		Value:  4 * float64(inside) / float64(samples),
		Trials: samples,
	}, nil
}
