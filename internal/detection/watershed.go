package detection

import (
	"container/heap"
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/circularity-mcp/internal/imaging"
	"github.com/ironsheep/circularity-mcp/internal/mask"
)

// ErrInsufficientSeeds is returned when a seed map does not hold at least
// two distinct non-zero labels.
var ErrInsufficientSeeds = errors.New("insufficient seeds")

// GradientSurface returns the topographic surface flooded by Watershed: a
// median filter of radius edgeSize followed by a morphological gradient
// (dilation minus erosion) of the same radius. Values are high on real
// edges and low on flat regions.
func GradientSurface(img image.Image, edgeSize int) (*image.Gray, error) {
	gray, err := imaging.Gray(img)
	if err != nil {
		return nil, err
	}
	if edgeSize < 1 {
		edgeSize = 1
	}
	radius := float64(edgeSize)

	smoothed := effect.Median(gray, radius)
	dilated := effect.Dilate(smoothed, radius)
	eroded := effect.Erode(smoothed, radius)

	b := gray.Bounds()
	surface := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hi := dilated.RGBAAt(x, y).R
			lo := eroded.RGBAAt(x, y).R
			if hi > lo {
				surface.Pix[surface.PixOffset(x, y)] = hi - lo
			}
		}
	}
	return surface, nil
}

// Watershed grows the seeds of a SeedMap over the gradient surface of img
// and returns the mask of pixels that end up inside.
//
// The flood is a priority flood over 4-connected pixels: every seed pixel
// starts in a queue ordered by gradient value, and popping a pixel claims
// each unlabeled neighbor for the popped pixel's label. Equal gradient
// values are served first in, first out, so competing fronts advance at
// the same pace across a plateau. Growth therefore follows the flattest
// path and fronts meet on gradient ridges. The seed map is not modified.
//
// # Errors
//
//   - imaging.ErrInvalidImageShape if img is empty or its size differs from
//     the seed map
//   - ErrInsufficientSeeds if the seed map has fewer than two distinct
//     non-zero labels
func Watershed(img image.Image, seeds *SeedMap, edgeSize int) (*mask.Mask, error) {
	surface, err := GradientSurface(img, edgeSize)
	if err != nil {
		return nil, err
	}
	b := surface.Bounds()
	width, height := b.Dx(), b.Dy()
	if seeds.Width != width || seeds.Height != height || len(seeds.Labels) != width*height {
		return nil, fmt.Errorf("%w: seed map %dx%d does not match image %dx%d",
			imaging.ErrInvalidImageShape, seeds.Width, seeds.Height, width, height)
	}

	distinct := make(map[uint8]struct{}, 2)
	for _, v := range seeds.Labels {
		if v != SeedUnknown {
			distinct[v] = struct{}{}
		}
	}
	if len(distinct) < 2 {
		return nil, fmt.Errorf("%w: found %d distinct label(s)", ErrInsufficientSeeds, len(distinct))
	}

	labels := make([]uint8, len(seeds.Labels))
	copy(labels, seeds.Labels)

	q := &floodQueue{}
	age := 0
	for i, v := range labels {
		if v != SeedUnknown {
			heap.Push(q, floodItem{level: surface.Pix[(i/width)*surface.Stride+i%width], age: age, index: i})
			age++
		}
	}

	for q.Len() > 0 {
		item := heap.Pop(q).(floodItem)
		x, y := item.index%width, item.index/width
		label := labels[item.index]

		for _, n := range [4][2]int{{x + 1, y}, {x - 1, y}, {x, y + 1}, {x, y - 1}} {
			nx, ny := n[0], n[1]
			if nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			j := ny*width + nx
			if labels[j] != SeedUnknown {
				continue
			}
			labels[j] = label
			heap.Push(q, floodItem{level: surface.Pix[ny*surface.Stride+nx], age: age, index: j})
			age++
		}
	}

	inside := make([]uint8, len(labels))
	for i, v := range labels {
		if v == SeedInside {
			inside[i] = 1
		}
	}
	return mask.FromBits(width, height, inside)
}

// floodItem is a pixel waiting in the flood queue.
type floodItem struct {
	level uint8
	age   int
	index int
}

// floodQueue is a min-heap on (level, age).
type floodQueue []floodItem

func (q floodQueue) Len() int { return len(q) }

func (q floodQueue) Less(i, j int) bool {
	if q[i].level != q[j].level {
		return q[i].level < q[j].level
	}
	return q[i].age < q[j].age
}

func (q floodQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *floodQueue) Push(x any) { *q = append(*q, x.(floodItem)) }

func (q *floodQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
