package detection

import (
	"errors"
	"fmt"

	"github.com/ironsheep/circularity-mcp/internal/imaging"
	"github.com/ironsheep/circularity-mcp/internal/mask"
)

// DefaultRadiusStep is the spacing between candidate radii in pixels.
const DefaultRadiusStep = 5

// ErrNoCircleFound is returned when the Hough accumulator holds no votes.
var ErrNoCircleFound = errors.New("no circle found")

// CircleCandidate is the best supported circle found by LocateCircle.
type CircleCandidate struct {
	// CenterX is the column of the circle center.
	CenterX int `json:"center_x"`

	// CenterY is the row of the circle center.
	CenterY int `json:"center_y"`

	// Radius is the candidate radius in pixels.
	Radius int `json:"radius"`

	// Score is the fraction of the perimeter supported by edge pixels,
	// votes divided by the number of points on the voting circle.
	Score float64 `json:"score"`
}

// CandidateRadii lists the radii searched for a rough radius estimate:
// radius-radiusWidth up to, but excluding, radius+radiusWidth, every step
// pixels. Non-positive radii are skipped.
func CandidateRadii(radius, radiusWidth, step int) []int {
	if step <= 0 {
		step = DefaultRadiusStep
	}
	radii := make([]int, 0, 2*radiusWidth/step+1)
	for r := radius - radiusWidth; r < radius+radiusWidth; r += step {
		if r > 0 {
			radii = append(radii, r)
		}
	}
	return radii
}

// LocateCircle runs a Hough circle transform restricted to a band of radii
// around a rough estimate and returns the single best candidate.
//
// Parameters:
//   - edges: Edge map from imaging.DetectEdges.
//   - radius: Estimated radius of the object in pixels.
//   - radiusWidth: Tolerance of the estimate in pixels.
//   - step: Spacing between candidate radii; 0 selects DefaultRadiusStep.
//
// # Algorithm
//
// For every candidate radius, each edge pixel votes for all centers lying
// on a midpoint circle of that radius around it. Votes are normalized by
// the number of points on the voting circle so large radii are not
// favored. Candidates are visited by ascending radius, then row, then
// column, and only a strictly better score replaces the current winner.
//
// Restricting the search to a narrow band keeps the (x, y, r) search
// close to linear in image size.
//
// # Errors
//
//   - ErrNoCircleFound when there are no edge pixels, no positive candidate
//     radii, or no vote lands inside the frame
func LocateCircle(edges *imaging.EdgeMap, radius, radiusWidth, step int) (*CircleCandidate, error) {
	radii := CandidateRadii(radius, radiusWidth, step)
	if len(radii) == 0 {
		return nil, fmt.Errorf("%w: no positive radii in [%d, %d)", ErrNoCircleFound,
			radius-radiusWidth, radius+radiusWidth)
	}

	width, height := edges.Width, edges.Height
	points := make([]int, 0, 1024)
	for i, v := range edges.Pix {
		if v {
			points = append(points, i)
		}
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: edge map is empty", ErrNoCircleFound)
	}

	var (
		best      CircleCandidate
		bestVotes int32
	)
	accumulator := make([]int32, width*height)

	for _, r := range radii {
		offsets := mask.CirclePoints(r)
		for i := range accumulator {
			accumulator[i] = 0
		}

		for _, i := range points {
			x, y := i%width, i/width
			for _, o := range offsets {
				cx, cy := x-o.X, y-o.Y
				if cx < 0 || cy < 0 || cx >= width || cy >= height {
					continue
				}
				accumulator[cy*width+cx]++
			}
		}

		norm := float64(len(offsets))
		for i, votes := range accumulator {
			if votes == 0 {
				continue
			}
			score := float64(votes) / norm
			if bestVotes == 0 || score > best.Score {
				best = CircleCandidate{
					CenterX: i % width,
					CenterY: i / width,
					Radius:  r,
					Score:   score,
				}
				bestVotes = votes
			}
		}
	}

	if bestVotes == 0 {
		return nil, fmt.Errorf("%w: accumulator is empty", ErrNoCircleFound)
	}
	return &best, nil
}
