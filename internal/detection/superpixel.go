package detection

import (
	"fmt"
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/circularity-mcp/internal/imaging"
)

// Superpixel defaults, matching the hand painting workflow.
const (
	DefaultSuperpixels = 2500
	DefaultCompactness = 15.0

	slicIterations = 10
)

// SuperpixelMap assigns every pixel to a compact region of similar color.
type SuperpixelMap struct {
	Width  int
	Height int

	// Labels holds the region index of each pixel, row-major, in
	// [0, Count).
	Labels []int

	// Count is the number of regions.
	Count int
}

// At returns the region index at (x, y), or -1 outside the frame.
func (s *SuperpixelMap) At(x, y int) int {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return -1
	}
	return s.Labels[y*s.Width+x]
}

type slicCenter struct {
	l, a, b float64
	x, y    float64
}

// Superpixels partitions img into roughly `segments` regions with SLIC
// (simple linear iterative clustering) in CIE-Lab space.
//
// Parameters:
//   - img: Source image.
//   - segments: Approximate number of regions. Zero selects
//     DefaultSuperpixels.
//   - compactness: Balance between color and spatial proximity; higher
//     values give squarer regions. Zero selects DefaultCompactness.
//
// # Algorithm
//
//  1. Convert every pixel to Lab (go-colorful), L scaled to 0-100
//  2. Seed cluster centers on a regular grid with spacing S = sqrt(N/segments)
//  3. For 10 iterations, assign each pixel in the 2S-wide box (±S)
//     around a center to the nearest center by d² = dLab² + (dxy·compactness/S)², then move
//     every center to the mean of its pixels
//  4. Relabel 4-connected components and merge fragments smaller than a
//     quarter of the expected region size into a neighboring region
func Superpixels(img image.Image, segments int, compactness float64) (*SuperpixelMap, error) {
	if err := imaging.ValidateShape(img); err != nil {
		return nil, err
	}
	if segments <= 0 {
		segments = DefaultSuperpixels
	}
	if compactness <= 0 {
		compactness = DefaultCompactness
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	n := width * height
	if segments > n {
		segments = n
	}

	lab := make([][3]float64, n)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c, ok := colorful.MakeColor(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			if !ok {
				continue
			}
			l, a, b := c.Lab()
			lab[y*width+x] = [3]float64{l * 100, a * 100, b * 100}
		}
	}

	step := math.Sqrt(float64(n) / float64(segments))
	if step < 1 {
		step = 1
	}
	centers := make([]slicCenter, 0, segments)
	for cy := step / 2; cy < float64(height); cy += step {
		for cx := step / 2; cx < float64(width); cx += step {
			p := lab[int(cy)*width+int(cx)]
			centers = append(centers, slicCenter{l: p[0], a: p[1], b: p[2], x: cx, y: cy})
		}
	}
	if len(centers) == 0 {
		return nil, fmt.Errorf("%w: no superpixel centers for %dx%d", imaging.ErrInvalidImageShape, width, height)
	}

	labels := make([]int, n)
	dist := make([]float64, n)
	spatial := compactness / step
	window := int(math.Ceil(step))

	for iter := 0; iter < slicIterations; iter++ {
		for i := range dist {
			dist[i] = math.Inf(1)
		}

		for k, c := range centers {
			x0, x1 := clampInt(int(c.x)-window, 0, width-1), clampInt(int(c.x)+window, 0, width-1)
			y0, y1 := clampInt(int(c.y)-window, 0, height-1), clampInt(int(c.y)+window, 0, height-1)
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					i := y*width + x
					p := lab[i]
					dl, da, db := p[0]-c.l, p[1]-c.a, p[2]-c.b
					dx, dy := (float64(x)-c.x)*spatial, (float64(y)-c.y)*spatial
					d := dl*dl + da*da + db*db + dx*dx + dy*dy
					if d < dist[i] {
						dist[i] = d
						labels[i] = k
					}
				}
			}
		}

		sums := make([]slicCenter, len(centers))
		counts := make([]int, len(centers))
		for i, k := range labels {
			p := lab[i]
			sums[k].l += p[0]
			sums[k].a += p[1]
			sums[k].b += p[2]
			sums[k].x += float64(i % width)
			sums[k].y += float64(i / width)
			counts[k]++
		}
		for k := range centers {
			if counts[k] == 0 {
				continue
			}
			f := float64(counts[k])
			centers[k] = slicCenter{
				l: sums[k].l / f, a: sums[k].a / f, b: sums[k].b / f,
				x: sums[k].x / f, y: sums[k].y / f,
			}
		}
	}

	minSize := n / len(centers) / 4
	relabeled, count := enforceConnectivity(labels, width, height, minSize)

	return &SuperpixelMap{
		Width:  width,
		Height: height,
		Labels: relabeled,
		Count:  count,
	}, nil
}

// enforceConnectivity gives every 4-connected component its own label and
// folds components of at most minSize pixels into the previously labeled
// neighbor of their first pixel.
func enforceConnectivity(labels []int, width, height, minSize int) ([]int, int) {
	out := make([]int, len(labels))
	for i := range out {
		out[i] = -1
	}

	next := 0
	component := make([]int, 0, 256)
	neighbors := func(i int) [4]int {
		x, y := i%width, i/width
		n := [4]int{-1, -1, -1, -1}
		if x > 0 {
			n[0] = i - 1
		}
		if x < width-1 {
			n[1] = i + 1
		}
		if y > 0 {
			n[2] = i - width
		}
		if y < height-1 {
			n[3] = i + width
		}
		return n
	}

	for start := range labels {
		if out[start] >= 0 {
			continue
		}

		adjacent := -1
		for _, j := range neighbors(start) {
			if j >= 0 && out[j] >= 0 {
				adjacent = out[j]
				break
			}
		}

		component = component[:0]
		component = append(component, start)
		out[start] = next
		for head := 0; head < len(component); head++ {
			for _, j := range neighbors(component[head]) {
				if j >= 0 && out[j] < 0 && labels[j] == labels[start] {
					out[j] = next
					component = append(component, j)
				}
			}
		}

		if len(component) <= minSize && adjacent >= 0 {
			for _, i := range component {
				out[i] = adjacent
			}
			continue
		}
		next++
	}
	return out, next
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
