package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Canny thresholds on the 8-bit intensity scale. The high threshold is fixed
// and sensitive enough for photographs of a single object on a background.
const (
	cannyLowThreshold  = 25.0
	cannyHighThreshold = 100.0
)

// EdgeMap is a binary edge image with the same dimensions as its source.
type EdgeMap struct {
	Width  int
	Height int

	// Pix holds one value per pixel, row-major. True marks an edge.
	Pix []bool
}

// At reports whether (x, y) is an edge pixel. Out-of-range coordinates
// are never edges.
func (e *EdgeMap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= e.Width || y >= e.Height {
		return false
	}
	return e.Pix[y*e.Width+x]
}

// Count returns the number of edge pixels.
func (e *EdgeMap) Count() int {
	n := 0
	for _, v := range e.Pix {
		if v {
			n++
		}
	}
	return n
}

// Image renders the edge map with edges in white (255) on black.
func (e *EdgeMap) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, e.Width, e.Height))
	for i, v := range e.Pix {
		if v {
			img.Pix[i] = 255
		}
	}
	return img
}

// DetectEdges runs Canny edge detection with smoothing proportional to
// edgeSize.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - edgeSize: Gaussian sigma in pixels. Values below 1 are treated as 1.
//
// Returns:
//   - *EdgeMap: Edge pixels, same size as img.
//   - error: ErrInvalidImageShape for nil or empty images.
//
// # Algorithm
//
//  1. Grayscale conversion (disintegration/imaging.Grayscale)
//  2. Gaussian blur with sigma = edgeSize (disintegration/imaging.Blur)
//  3. Sobel gradients on the 8-bit scale, magnitude = sqrt(Gx² + Gy²)
//  4. Non-maximum suppression along the gradient direction
//  5. Hysteresis: pixels above 100 seed edges, which then extend through
//     8-connected pixels above 25
func DetectEdges(img image.Image, edgeSize int) (*EdgeMap, error) {
	if err := ValidateShape(img); err != nil {
		return nil, err
	}
	if edgeSize < 1 {
		edgeSize = 1
	}

	smoothed := imaging.Blur(imaging.Grayscale(img), float64(edgeSize))
	b := smoothed.Bounds()
	width, height := b.Dx(), b.Dy()

	intensity := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			intensity[y*width+x] = float64(smoothed.Pix[y*smoothed.Stride+x*4])
		}
	}

	magnitude, direction := sobel(intensity, width, height)
	suppressed := suppressNonMaxima(magnitude, direction, width, height)

	return &EdgeMap{
		Width:  width,
		Height: height,
		Pix:    hysteresis(suppressed, width, height, cannyLowThreshold, cannyHighThreshold),
	}, nil
}

// sobel computes gradient magnitude and direction with replicated borders.
func sobel(src []float64, width, height int) (magnitude, direction []float64) {
	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude = make([]float64, width*height)
	direction = make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := src[clamp(y+ky, 0, height-1)*width+clamp(x+kx, 0, width-1)]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y*width+x] = math.Hypot(gx, gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}
	return magnitude, direction
}

// suppressNonMaxima keeps only pixels that are local maxima along their
// gradient direction. Border pixels are always suppressed.
func suppressNonMaxima(magnitude, direction []float64, width, height int) []float64 {
	out := make([]float64, width*height)
	at := func(x, y int) float64 { return magnitude[y*width+x] }

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			angle := direction[y*width+x]
			mag := at(x, y)
			if mag == 0 {
				continue
			}

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = at(x-1, y), at(x+1, y)
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = at(x-1, y-1), at(x+1, y+1)
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = at(x, y-1), at(x, y+1)
			default:
				n1, n2 = at(x+1, y-1), at(x-1, y+1)
			}

			if mag >= n1 && mag >= n2 {
				out[y*width+x] = mag
			}
		}
	}
	return out
}

// hysteresis marks strong pixels and every weak pixel 8-connected to one.
func hysteresis(suppressed []float64, width, height int, low, high float64) []bool {
	edges := make([]bool, width*height)
	stack := make([]int, 0, 1024)

	for i, v := range suppressed {
		if v >= high {
			edges[i] = true
			stack = append(stack, i)
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if !edges[j] && suppressed[j] >= low {
					edges[j] = true
					stack = append(stack, j)
				}
			}
		}
	}
	return edges
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// EdgeDetectResult contains an edge map encoded as base64 PNG.
type EdgeDetectResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	EdgePixels  int    `json:"edge_pixels"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EdgeDetect runs DetectEdges and encodes the result for transport.
func EdgeDetect(img image.Image, edgeSize int) (*EdgeDetectResult, error) {
	edges, err := DetectEdges(img, edgeSize)
	if err != nil {
		return nil, err
	}

	encoded, err := EncodePNG(edges.Image())
	if err != nil {
		return nil, err
	}

	return &EdgeDetectResult{
		Width:       edges.Width,
		Height:      edges.Height,
		EdgePixels:  edges.Count(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
