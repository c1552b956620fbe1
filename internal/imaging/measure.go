package imaging

import (
	"fmt"
	"image"
	"math"
)

// Point represents a 2D point
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RadiusResult contains a radius measured from a clicked center and edge.
type RadiusResult struct {
	Center             Point   `json:"center"`
	Edge               Point   `json:"edge"`
	RadiusPixels       float64 `json:"radius_pixels"`
	DeltaX             int     `json:"delta_x"`
	DeltaY             int     `json:"delta_y"`
	AngleDegrees       float64 `json:"angle_degrees"`
	DiameterPercentMin float64 `json:"diameter_percent_min_side"`
}

// Distance returns the Euclidean distance between two points rounded to
// two decimals.
func Distance(p1, p2 Point) float64 {
	dx := float64(p2.X - p1.X)
	dy := float64(p2.Y - p1.Y)
	return math.Round(math.Sqrt(dx*dx+dy*dy)*100) / 100
}

// MeasureRadius measures the radius of an object from its center to a point
// on its edge. The result is a rough estimate to feed the segmentation, so
// it is rounded like a hand measurement.
//
// Both points must lie inside the image.
func MeasureRadius(img image.Image, center, edge Point) (*RadiusResult, error) {
	if err := ValidateShape(img); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	for _, p := range []Point{center, edge} {
		if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
			return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", p.X, p.Y)
		}
	}

	radius := Distance(center, edge)
	deltaX := edge.X - center.X
	deltaY := edge.Y - center.Y

	// 0 = horizontal right, 90 = down
	angle := math.Atan2(float64(deltaY), float64(deltaX)) * 180 / math.Pi

	minSide := float64(w)
	if h < w {
		minSide = float64(h)
	}

	return &RadiusResult{
		Center:             center,
		Edge:               edge,
		RadiusPixels:       radius,
		DeltaX:             deltaX,
		DeltaY:             deltaY,
		AngleDegrees:       math.Round(angle*10) / 10,
		DiameterPercentMin: math.Round(2*radius/minSide*1000) / 10,
	}, nil
}
