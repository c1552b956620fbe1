package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrInvalidImageShape is returned when an image has no pixels.
var ErrInvalidImageShape = errors.New("invalid image shape")

// Gray converts an image to 8-bit single-channel intensity.
//
// Multi-channel images are reduced with disintegration/imaging.Grayscale
// (ITU-R BT.601 weights). The result always has its origin at (0, 0).
//
// # Errors
//
//   - ErrInvalidImageShape if img is nil or has empty bounds
func Gray(img image.Image) (*image.Gray, error) {
	if err := ValidateShape(img); err != nil {
		return nil, err
	}
	return toGray(imaging.Grayscale(img)), nil
}

// ValidateShape returns ErrInvalidImageShape for nil and zero-area images.
func ValidateShape(img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidImageShape)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidImageShape, b.Dx(), b.Dy())
	}
	return nil
}

// toGray copies the red channel of an already-gray NRGBA image.
func toGray(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[y*dst.Stride+x] = row[x*4]
		}
	}
	return dst
}
