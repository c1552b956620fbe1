package estimate

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/circularity-mcp/internal/mask"
)

// Simulation defaults.
const (
	DefaultMaxHistories = 31415
	DefaultCriterion    = 0.0000314
)

// ErrInvalidSimulation is returned by Run for a nil mask or negative
// limits.
var ErrInvalidSimulation = errors.New("invalid simulation")

// Record is the state of a simulation after one trial.
type Record struct {
	Trial     int     `json:"trial"`
	Estimate  float64 `json:"estimate"`
	Deviation float64 `json:"deviation"`
}

// History is the ordered list of records of one run. Records are only
// ever appended.
type History []Record

// Last returns the most recent record.
func (h History) Last() (Record, bool) {
	if len(h) == 0 {
		return Record{}, false
	}
	return h[len(h)-1], true
}

// Estimates returns the running estimate of every trial.
func (h History) Estimates() []float64 {
	out := make([]float64, len(h))
	for i, r := range h {
		out[i] = r.Estimate
	}
	return out
}

// Simulation estimates pi by throwing darts at a mask one at a time.
type Simulation struct {
	Mask *mask.Mask

	// MaxHistories caps the number of trials. Zero selects
	// DefaultMaxHistories.
	MaxHistories int

	// Criterion is the deviation from pi at which the run stops early.
	// Zero selects DefaultCriterion.
	Criterion float64

	// OnTrial, if set, is called after every trial.
	OnTrial func(Record)

	// Logger receives a summary when the run ends. Nil disables logging.
	Logger *zerolog.Logger
}

// Result holds the final estimate and the full history of a run.
type Result struct {
	Estimate
	History History `json:"-"`
}

// Run executes the simulation.
//
// Each trial picks a pixel uniformly from the mask's bounding box (the
// whole frame when the mask is empty) and counts a hit when it lies on
// the mask. The running estimate is 4 × hits / trials and its deviation
// is |estimate - pi|. The run stops after the first trial whose deviation
// is at most Criterion, marking the result converged, or after
// MaxHistories trials.
func (s *Simulation) Run(rng *rand.Rand) (*Result, error) {
	if s.Mask == nil {
		return nil, fmt.Errorf("%w: nil mask", ErrInvalidSimulation)
	}
	if s.MaxHistories < 0 || s.Criterion < 0 {
		return nil, fmt.Errorf("%w: max histories %d, criterion %g",
			ErrInvalidSimulation, s.MaxHistories, s.Criterion)
	}
	maxTrials := s.MaxHistories
	if maxTrials == 0 {
		maxTrials = DefaultMaxHistories
	}
	criterion := s.Criterion
	if criterion == 0 {
		criterion = DefaultCriterion
	}
	log := zerolog.Nop()
	if s.Logger != nil {
		log = *s.Logger
	}

	region, err := s.Mask.Bounds()
	if errors.Is(err, mask.ErrEmptyMask) {
		region = image.Rect(0, 0, s.Mask.Width(), s.Mask.Height())
	}

	start := time.Now()
	res := &Result{History: make(History, 0, min(maxTrials, 4096))}
	hits := 0
	for trial := 1; trial <= maxTrials; trial++ {
		x := region.Min.X + rng.IntN(region.Dx())
		y := region.Min.Y + rng.IntN(region.Dy())
		if s.Mask.At(x, y) {
			hits++
		}

		est := 4 * float64(hits) / float64(trial)
		rec := Record{Trial: trial, Estimate: est, Deviation: math.Abs(est - math.Pi)}
		res.History = append(res.History, rec)
		if s.OnTrial != nil {
			s.OnTrial(rec)
		}

		res.Value = est
		res.Trials = trial
		if rec.Deviation <= criterion {
			res.Converged = true
			break
		}
	}

	log.Debug().
		Float64("estimate", res.Value).
		Int("trials", res.Trials).
		Bool("converged", res.Converged).
		Dur("elapsed", time.Since(start)).
		Msg("simulation finished")
	return res, nil
}
