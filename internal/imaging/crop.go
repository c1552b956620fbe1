package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropResult contains the cropped image data
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropToRegion extracts r from img, typically the bounding box of a mask,
// so the photographed object can be shown next to its cropped mask.
// Region coordinates are relative to the image origin.
func CropToRegion(img image.Image, r image.Rectangle) (*CropResult, error) {
	if err := ValidateShape(img); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	abs := r.Add(bounds.Min)

	if !abs.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, 0, 0, bounds.Dx(), bounds.Dy())
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: rectangle is empty", r)
	}

	cropped := imaging.Crop(img, abs)

	encoded, err := EncodePNG(cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
