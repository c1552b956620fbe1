// Package paint builds masks by hand from superpixels.
//
// A Painter splits an image into superpixels once and then lets the caller
// add or remove whole regions by pointing at any pixel inside them. Each
// edit produces a new mask snapshot; earlier snapshots are kept for Undo.
package paint

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/circularity-mcp/internal/detection"
	"github.com/ironsheep/circularity-mcp/internal/mask"
)

// maxUndo bounds the number of snapshots kept for Undo.
const maxUndo = 256

// ErrOutOfBounds is returned when a point lies outside the image.
var ErrOutOfBounds = errors.New("point out of bounds")

// BoundaryColor is the default superpixel border color.
var BoundaryColor = color.NRGBA{R: 255, G: 255, A: 255}

// Painter edits a mask one superpixel at a time. It is safe for
// concurrent use.
type Painter struct {
	mu sync.Mutex

	segments    int
	compactness float64
	regions     *detection.SuperpixelMap
	boundaries  *image.NRGBA

	current *mask.Mask
	history []*mask.Mask
}

// New segments img into superpixels and returns a painter with an empty
// mask. Zero segments or compactness select the detection defaults.
func New(img image.Image, segments int, compactness float64) (*Painter, error) {
	regions, err := detection.Superpixels(img, segments, compactness)
	if err != nil {
		return nil, fmt.Errorf("failed to compute superpixels: %w", err)
	}
	empty, err := mask.New(regions.Width, regions.Height)
	if err != nil {
		return nil, err
	}
	return &Painter{
		segments:    segments,
		compactness: compactness,
		regions:     regions,
		boundaries:  Boundaries(img, regions, BoundaryColor),
		current:     empty,
	}, nil
}

// Segments returns the requested superpixel count.
func (p *Painter) Segments() int { return p.segments }

// Compactness returns the requested superpixel compactness.
func (p *Painter) Compactness() float64 { return p.compactness }

// Regions returns the superpixel labels.
func (p *Painter) Regions() *detection.SuperpixelMap { return p.regions }

// Mask returns the current snapshot.
func (p *Painter) Mask() *mask.Mask {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Region returns the superpixel label under (x, y).
func (p *Painter) Region(x, y int) (int, error) {
	label := p.regions.At(x, y)
	if label < 0 {
		return 0, fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrOutOfBounds, x, y, p.regions.Width, p.regions.Height)
	}
	return label, nil
}

// Add paints the superpixel under (x, y) into the mask.
func (p *Painter) Add(x, y int) (*mask.Mask, error) {
	return p.edit(x, y, (*mask.Mask).Union)
}

// Remove erases the superpixel under (x, y) from the mask.
func (p *Painter) Remove(x, y int) (*mask.Mask, error) {
	return p.edit(x, y, (*mask.Mask).Subtract)
}

func (p *Painter) edit(x, y int, op func(a, b *mask.Mask) (*mask.Mask, error)) (*mask.Mask, error) {
	label, err := p.Region(x, y)
	if err != nil {
		return nil, err
	}
	region, err := mask.Select(p.regions.Width, p.regions.Height, func(px, py int) bool {
		return p.regions.Labels[py*p.regions.Width+px] == label
	})
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	next, err := op(p.current, region)
	if err != nil {
		return nil, err
	}
	p.push(next)
	return next, nil
}

// Fill closes every hole in the mask.
func (p *Painter) Fill() *mask.Mask {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.current.FillHoles()
	p.push(next)
	return next
}

// Clear resets the mask to empty. Clear can be undone.
func (p *Painter) Clear() *mask.Mask {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, _ := mask.New(p.regions.Width, p.regions.Height)
	p.push(next)
	return next
}

// Undo restores the previous snapshot. It reports false when there is
// nothing to undo.
func (p *Painter) Undo() (*mask.Mask, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.history) == 0 {
		return p.current, false
	}
	p.current = p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	return p.current, true
}

// push records the current snapshot and makes next current. Callers hold mu.
func (p *Painter) push(next *mask.Mask) {
	p.history = append(p.history, p.current)
	if len(p.history) > maxUndo {
		p.history = p.history[len(p.history)-maxUndo:]
	}
	p.current = next
}

// Display renders the superpixel borders with the painted mask in white.
func (p *Painter) Display() *image.NRGBA {
	m := p.Mask()
	out := imaging.Clone(p.boundaries)
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.At(x, y) {
				out.SetNRGBA(x, y, white)
			}
		}
	}
	return out
}

// Boundaries draws the borders between superpixels over a copy of img.
// A pixel is a border pixel when its right or lower neighbor belongs to a
// different region.
func Boundaries(img image.Image, regions *detection.SuperpixelMap, c color.Color) *image.NRGBA {
	out := imaging.Clone(img)
	edge := color.NRGBAModel.Convert(c).(color.NRGBA)
	for y := 0; y < regions.Height; y++ {
		for x := 0; x < regions.Width; x++ {
			label := regions.Labels[y*regions.Width+x]
			right := regions.At(x+1, y)
			down := regions.At(x, y+1)
			if (right >= 0 && right != label) || (down >= 0 && down != label) {
				out.SetNRGBA(x, y, edge)
			}
		}
	}
	return out
}
