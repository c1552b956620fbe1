package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

// createInMemoryImage creates a uniform image without touching disk.
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createDiskTestImage draws a light disk on a dark background.
func createDiskTestImage(width, height, cx, cy, r int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) + 0.5 - float64(cx)
			dy := float64(y) + 0.5 - float64(cy)
			c := color.RGBA{20, 20, 40, 255}
			if dx*dx+dy*dy <= float64(r*r) {
				c = color.RGBA{230, 180, 90, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// decodeBase64PNG decodes a base64 PNG produced by EncodePNG.
func decodeBase64PNG(t *testing.T, s string) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func TestDetectEdges_Disk(t *testing.T) {
	const cx, cy, r = 50, 50, 30
	img := createDiskTestImage(100, 100, cx, cy, r)

	edges, err := DetectEdges(img, 2)
	if err != nil {
		t.Fatalf("DetectEdges failed: %v", err)
	}

	if edges.Width != 100 || edges.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", edges.Width, edges.Height)
	}

	// a thin ring should cover at least half the circumference
	if got, want := edges.Count(), 3*r; got < want {
		t.Errorf("edge pixels: got %d, want at least %d", got, want)
	}

	for y := 0; y < edges.Height; y++ {
		for x := 0; x < edges.Width; x++ {
			if !edges.At(x, y) {
				continue
			}
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			if math.Abs(d-r) > 3 {
				t.Fatalf("edge at (%d,%d) is %.1f pixels from the center, want about %d", x, y, d, r)
			}
		}
	}
}

func TestDetectEdges_UniformImage(t *testing.T) {
	img := createInMemoryImage(50, 50, color.RGBA{128, 128, 128, 255})

	edges, err := DetectEdges(img, 3)
	if err != nil {
		t.Fatalf("DetectEdges failed: %v", err)
	}
	if n := edges.Count(); n != 0 {
		t.Errorf("uniform image produced %d edge pixels, want 0", n)
	}
}

func TestDetectEdges_SmallEdgeSize(t *testing.T) {
	img := createDiskTestImage(60, 60, 30, 30, 15)

	a, err := DetectEdges(img, 0)
	if err != nil {
		t.Fatalf("DetectEdges failed: %v", err)
	}
	b, err := DetectEdges(img, 1)
	if err != nil {
		t.Fatalf("DetectEdges failed: %v", err)
	}

	// sizes below 1 behave like 1
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("edge maps differ at pixel %d", i)
		}
	}
}

func TestDetectEdges_InvalidImage(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{"nil", nil},
		{"empty", image.NewRGBA(image.Rect(0, 0, 0, 10))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DetectEdges(tt.img, 3)
			if !errors.Is(err, ErrInvalidImageShape) {
				t.Errorf("got %v, want ErrInvalidImageShape", err)
			}
		})
	}
}

func TestEdgeMap_At(t *testing.T) {
	e := &EdgeMap{Width: 3, Height: 2, Pix: []bool{false, true, false, false, false, true}}

	if !e.At(1, 0) || !e.At(2, 1) {
		t.Error("expected edges at (1,0) and (2,1)")
	}
	if e.At(0, 0) {
		t.Error("unexpected edge at (0,0)")
	}
	if e.At(-1, 0) || e.At(3, 0) || e.At(0, 2) {
		t.Error("out-of-range coordinates must not be edges")
	}
	if e.Count() != 2 {
		t.Errorf("Count: got %d, want 2", e.Count())
	}

	img := e.Image()
	if img.GrayAt(1, 0).Y != 255 || img.GrayAt(0, 0).Y != 0 {
		t.Error("Image should render edges white on black")
	}
}

func TestEdgeDetect(t *testing.T) {
	img := createDiskTestImage(100, 80, 50, 40, 25)

	result, err := EdgeDetect(img, 2)
	if err != nil {
		t.Fatalf("EdgeDetect failed: %v", err)
	}

	if result.Width != 100 || result.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	if result.EdgePixels == 0 {
		t.Error("expected edge pixels")
	}

	edgeImg := decodeBase64PNG(t, result.ImageBase64)
	if edgeImg.Bounds().Dx() != 100 || edgeImg.Bounds().Dy() != 80 {
		t.Errorf("decoded image dimensions: got %dx%d, want 100x80",
			edgeImg.Bounds().Dx(), edgeImg.Bounds().Dy())
	}

	// white pixels in the PNG match the reported count
	white := 0
	b := edgeImg.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := edgeImg.At(x, y).RGBA(); r == 0xffff {
				white++
			}
		}
	}
	if white != result.EdgePixels {
		t.Errorf("white pixels: got %d, want %d", white, result.EdgePixels)
	}
}
