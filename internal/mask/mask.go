package mask

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/segment"
)

var (
	// ErrEmptyMask is returned when an operation needs at least one set pixel.
	ErrEmptyMask = errors.New("mask has no nonzero pixels")

	// ErrInvalidSize is returned for non-positive dimensions or bad buffers.
	ErrInvalidSize = errors.New("invalid mask size")

	// ErrSizeMismatch is returned when two masks of different sizes are combined.
	ErrSizeMismatch = errors.New("mask sizes differ")
)

// Mask is an immutable 2-D array of {0, 1} values stored row-major.
type Mask struct {
	width  int
	height int
	pix    []uint8
}

// New returns an all-zero mask of the given size.
func New(width, height int) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Mask{width: width, height: height, pix: make([]uint8, width*height)}, nil
}

// FromBits builds a mask from a row-major buffer. Any nonzero value counts
// as set. The buffer is copied.
func FromBits(width, height int, bits []uint8) (*Mask, error) {
	m, err := New(width, height)
	if err != nil {
		return nil, err
	}
	if len(bits) != width*height {
		return nil, fmt.Errorf("%w: buffer has %d values, want %d", ErrInvalidSize, len(bits), width*height)
	}
	for i, v := range bits {
		if v != 0 {
			m.pix[i] = 1
		}
	}
	return m, nil
}

// Select builds a mask whose pixels are set wherever fn returns true.
func Select(width, height int, fn func(x, y int) bool) (*Mask, error) {
	m, err := New(width, height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if fn(x, y) {
				m.pix[y*width+x] = 1
			}
		}
	}
	return m, nil
}

// FromImage binarizes an image into a mask. Pixels whose luminance is at
// least mid-gray are set, which matches the 0/255 masks written by Image.
func FromImage(img image.Image) (*Mask, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: image is empty", ErrInvalidSize)
	}

	binary := segment.Threshold(img, 128)
	b := binary.Bounds()
	m, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if binary.GrayAt(x+b.Min.X, y+b.Min.Y).Y != 0 {
				m.pix[y*m.width+x] = 1
			}
		}
	}
	return m, nil
}

// Width returns the number of columns.
func (m *Mask) Width() int { return m.width }

// Height returns the number of rows.
func (m *Mask) Height() int { return m.height }

// At reports whether (x, y) is set. Out-of-range coordinates are unset.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.pix[y*m.width+x] != 0
}

// Bits returns a copy of the row-major pixel buffer.
func (m *Mask) Bits() []uint8 {
	out := make([]uint8, len(m.pix))
	copy(out, m.pix)
	return out
}

// Area returns the number of set pixels.
func (m *Mask) Area() int {
	n := 0
	for _, v := range m.pix {
		n += int(v)
	}
	return n
}

// Equal reports whether both masks have the same size and pixels.
func (m *Mask) Equal(o *Mask) bool {
	if o == nil || m.width != o.width || m.height != o.height {
		return false
	}
	for i := range m.pix {
		if m.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

// Image renders the mask as a grayscale image with set pixels at 255.
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.width, m.height))
	for i, v := range m.pix {
		if v != 0 {
			img.Pix[i] = 255
		}
	}
	return img
}

// Union returns a mask set wherever either mask is set.
func (m *Mask) Union(o *Mask) (*Mask, error) {
	return m.combine(o, func(a, b uint8) uint8 { return a | b })
}

// Subtract returns a mask set where m is set and o is not.
func (m *Mask) Subtract(o *Mask) (*Mask, error) {
	return m.combine(o, func(a, b uint8) uint8 { return a &^ b })
}

// Invert returns the complement of m.
func (m *Mask) Invert() *Mask {
	out := &Mask{width: m.width, height: m.height, pix: make([]uint8, len(m.pix))}
	for i, v := range m.pix {
		out.pix[i] = 1 - v
	}
	return out
}

func (m *Mask) combine(o *Mask, op func(a, b uint8) uint8) (*Mask, error) {
	if m.width != o.width || m.height != o.height {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, m.width, m.height, o.width, o.height)
	}
	out := &Mask{width: m.width, height: m.height, pix: make([]uint8, len(m.pix))}
	for i := range m.pix {
		out.pix[i] = op(m.pix[i], o.pix[i])
	}
	return out, nil
}
