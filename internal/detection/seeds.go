package detection

import (
	"fmt"

	"github.com/ironsheep/circularity-mcp/internal/mask"
)

// Seed labels.
const (
	SeedUnknown uint8 = 0
	SeedInside  uint8 = 1
	SeedOutside uint8 = 2
)

// SeedMap labels every pixel as inside, outside or unknown. The unknown
// annulus is where watershed growth decides membership.
type SeedMap struct {
	Width  int
	Height int

	// Labels holds one of SeedUnknown, SeedInside or SeedOutside per
	// pixel, row-major.
	Labels []uint8
}

// At returns the label at (x, y), or SeedUnknown outside the frame.
func (s *SeedMap) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return SeedUnknown
	}
	return s.Labels[y*s.Width+x]
}

// Count returns the number of pixels carrying label.
func (s *SeedMap) Count(label uint8) int {
	n := 0
	for _, v := range s.Labels {
		if v == label {
			n++
		}
	}
	return n
}

// BuildSeeds derives inside and outside seeds from a located circle.
//
// The inside seed is a circle of radius r - radiusWidth/2 whose interior is
// filled; the outside seed is everything beyond the filled circle of radius
// r + radiusWidth/2. The ring between them, radiusWidth wide, stays unknown.
// Perimeters are clipped to the frame; a clipped perimeter cannot be filled,
// so only the visible perimeter pixels seed that side. Pixels claimed by
// both seeds stay inside.
func BuildSeeds(c CircleCandidate, radiusWidth, width, height int) (*SeedMap, error) {
	half := radiusWidth / 2

	innerPerimeter, err := mask.Circle(width, height, c.CenterX, c.CenterY, c.Radius-half)
	if err != nil {
		return nil, fmt.Errorf("failed to draw inside seed: %w", err)
	}
	outerPerimeter, err := mask.Circle(width, height, c.CenterX, c.CenterY, c.Radius+half)
	if err != nil {
		return nil, fmt.Errorf("failed to draw outside seed: %w", err)
	}

	inside := innerPerimeter.FillHoles()
	outside := outerPerimeter.FillHoles().Invert()

	seeds := &SeedMap{
		Width:  width,
		Height: height,
		Labels: make([]uint8, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			switch {
			case inside.At(x, y):
				seeds.Labels[y*width+x] = SeedInside
			case outside.At(x, y):
				seeds.Labels[y*width+x] = SeedOutside
			}
		}
	}
	return seeds, nil
}
